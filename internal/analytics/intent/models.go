// internal/analytics/intent/models.go
package intent

import "regexp"

type Kind string

const (
	KindComparison   Kind = "comparison"
	KindDistribution Kind = "distribution"
	KindPercentage   Kind = "percentage"
	KindCorrelation  Kind = "correlation"
	KindExtreme      Kind = "extreme"
	KindAverage      Kind = "average"
	KindUnknown      Kind = "unknown"
)

// Subkind tags referenced outside the rule table.
const (
	SubkindTrendBy           = "trend_by"
	SubkindExpertProjects    = "expert_projects"
	SubkindProjectsThreshold = "projects_threshold"
)

// Parameter names.
const (
	ParamPaymentMethod   = "payment_method"
	ParamExperience      = "experience"
	ParamRegion          = "region"
	ParamJobCategory     = "job_category"
	ParamExperienceYears = "experience_years"
	ParamThreshold       = "threshold"
)

// Trace stages.
const (
	StageIntent          = "intent"
	StageParameter       = "parameter"
	StageExperienceYears = "experience_years"
)

// Intent is the classification of one query. Subkind is empty when nothing matched.
type Intent struct {
	Kind    Kind         `json:"type"`
	Subkind string       `json:"subtype,omitempty"`
	Params  Params       `json:"params"`
	Groups  []string     `json:"groups"`
	Query   string       `json:"query"`
	Trace   []TraceEntry `json:"trace,omitempty"`
}

// Params holds presence flags (bool) and extracted numbers (int).
type Params map[string]interface{}

func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

func (p Params) Int(name string) (int, bool) {
	v, ok := p[name].(int)
	return v, ok
}

// TraceEntry records one rule that fired during classification.
type TraceEntry struct {
	Stage    string   `json:"stage"`
	Group    string   `json:"group"`
	Tag      string   `json:"tag"`
	Pattern  string   `json:"pattern"`
	Captures []string `json:"captures,omitempty"`
}

// PatternRule maps any of its language variants to one subkind.
type PatternRule struct {
	Subkind  string
	Variants []*regexp.Regexp
}

type IntentGroup struct {
	Kind  Kind
	Rules []PatternRule
}

// ParameterRule flags its parameter kind when any variant matches.
type ParameterRule struct {
	Tag      string
	Variants []*regexp.Regexp
}

type ParameterGroup struct {
	Kind  string
	Rules []ParameterRule
}
