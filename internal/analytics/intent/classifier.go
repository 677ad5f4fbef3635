// internal/analytics/intent/classifier.go
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Classify maps free text to an Intent. It never fails: text matching no rule
// yields KindUnknown, and parameters are extracted regardless of the kind.
func Classify(text string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))

	result := Intent{
		Kind:   KindUnknown,
		Params: Params{},
		Groups: []string{},
		Query:  normalized,
	}
	if normalized == "" {
		return result
	}

	matchIntent(&result, normalized)
	yearsRuleFired := extractParameters(&result, normalized)
	if yearsRuleFired {
		extractExperienceYears(&result)
	}

	return result
}

// matchIntent stops at the first rule that matches anywhere in the text.
func matchIntent(result *Intent, text string) {
	for _, group := range intentGroups {
		for _, rule := range group.Rules {
			for _, re := range rule.Variants {
				loc := re.FindStringSubmatchIndex(text)
				if loc == nil {
					continue
				}

				captures := participating(text, loc)
				result.Kind = group.Kind
				result.Subkind = rule.Subkind
				result.Groups = append(result.Groups, captures...)
				result.Trace = append(result.Trace, TraceEntry{
					Stage:    StageIntent,
					Group:    string(group.Kind),
					Tag:      rule.Subkind,
					Pattern:  re.String(),
					Captures: captures,
				})

				if rule.Subkind == SubkindExpertProjects || rule.Subkind == SubkindProjectsThreshold {
					if n, ok := lastNumber(captures); ok {
						result.Params[ParamThreshold] = n
					}
				}
				return
			}
		}
	}
}

// extractParameters tries every parameter group. Within a group only the first
// matching rule fires, but all of its occurrences are captured. It reports
// whether the experience_years rule was the one that fired.
func extractParameters(result *Intent, text string) bool {
	yearsRuleFired := false

	for _, group := range parameterGroups {
	rules:
		for _, rule := range group.Rules {
			for _, re := range rule.Variants {
				matches := re.FindAllStringSubmatchIndex(text, -1)
				if len(matches) == 0 {
					continue
				}

				var captures []string
				for _, loc := range matches {
					captures = append(captures, participating(text, loc)...)
				}

				result.Params[group.Kind] = true
				result.Groups = append(result.Groups, captures...)
				result.Trace = append(result.Trace, TraceEntry{
					Stage:    StageParameter,
					Group:    group.Kind,
					Tag:      rule.Tag,
					Pattern:  re.String(),
					Captures: captures,
				})

				if group.Kind == ParamExperience && rule.Tag == ParamExperienceYears {
					yearsRuleFired = true
				}
				break rules
			}
		}
	}

	return yearsRuleFired
}

func extractExperienceYears(result *Intent) {
	for _, fragment := range result.Groups {
		m := yearsToken.FindStringSubmatch(fragment)
		if m == nil {
			continue
		}
		years, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		result.Params[ParamExperienceYears] = years
		result.Trace = append(result.Trace, TraceEntry{
			Stage:    StageExperienceYears,
			Group:    ParamExperience,
			Tag:      ParamExperienceYears,
			Pattern:  yearsToken.String(),
			Captures: []string{fragment},
		})
		return
	}
}

// participating returns the capture groups of one match that took part in it.
func participating(text string, loc []int) []string {
	var out []string
	for i := 2; i+1 < len(loc); i += 2 {
		if loc[i] < 0 {
			continue
		}
		out = append(out, text[loc[i]:loc[i+1]])
	}
	return out
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

func lastNumber(fragments []string) (int, bool) {
	for i := len(fragments) - 1; i >= 0; i-- {
		if !digitsOnly.MatchString(fragments[i]) {
			continue
		}
		if n, err := strconv.Atoi(fragments[i]); err == nil {
			return n, true
		}
	}
	return 0, false
}
