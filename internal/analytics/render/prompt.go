// internal/analytics/render/prompt.go
package render

import (
	"fmt"
	"sort"
	"strings"
)

const instruction = "Answer the question using only these data. For comparisons state the income difference in USD where applicable."

// BuildPrompt lists numeric metrics in key order under the question.
func BuildPrompt(query string, stats map[string]interface{}) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Question: %s", query))
	parts = append(parts, "Data:")
	for _, key := range sortedKeys(stats) {
		if line, ok := FormatMetric(key, stats[key]); ok {
			parts = append(parts, "- "+line)
		}
	}
	parts = append(parts, instruction)

	return strings.Join(parts, "\n")
}

// FormatMetric renders one metric as "Label: value unit". Non-numeric values
// are reported as not formattable.
func FormatMetric(key string, value interface{}) (string, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return "", false
	}
	return fmt.Sprintf("%s: %.2f%s", Label(key), f, unit(key)), true
}

// Label turns "crypto_avg" into "Crypto avg".
func Label(key string) string {
	s := strings.ToLower(strings.ReplaceAll(key, "_", " "))
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func unit(key string) string {
	switch {
	case strings.Contains(key, "avg") || strings.Contains(key, "difference"):
		return " USD"
	case strings.Contains(key, "percentage"):
		return " %"
	}
	return ""
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
