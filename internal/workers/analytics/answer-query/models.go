// internal/workers/analytics/answer-query/models.go
package answerquery

import "freelancer-analytics/internal/common/validation"

type Input struct {
	Query    string `json:"query"`
	UseCache *bool  `json:"useCache,omitempty"`
}

type Output struct {
	Answer     string                 `json:"answer"`
	Intent     string                 `json:"intent,omitempty"`
	Subkind    string                 `json:"subkind,omitempty"`
	Statistics map[string]interface{} `json:"statistics,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Cached     bool                   `json:"cached"`
	RequestID  string                 `json:"requestId"`
}

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["query"],
	"properties": {
		"query": {"type": "string", "minLength": 1, "pattern": "\\S"},
		"useCache": {"type": "boolean"}
	}
}`)
