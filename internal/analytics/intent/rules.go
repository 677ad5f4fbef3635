// internal/analytics/intent/rules.go
package intent

import "regexp"

// Rule tables are scanned in declaration order. Each rule lists a Russian
// variant first and an English variant second.

var intentGroups = []IntentGroup{
	{Kind: KindComparison, Rules: []PatternRule{
		rule("magnitude_comparison",
			`(насколько|во сколько раз) (выше|ниже|больше|меньше)`,
			`(how much|how many times) (higher|lower|more|less|greater|bigger)`),
		rule("direct_comparison",
			`(сравни|разница между) (.+?) и (.+)`,
			`(compare|difference between) (.+?) (?:and|with|vs\.?|versus) (.+)`),
		rule("group_comparison",
			`кто (зарабатывает|получает) (больше|меньше): (.+?) или (.+)`,
			`who (earns|makes|gets) (more|less):? (.+?) or (.+)`),
	}},
	{Kind: KindDistribution, Rules: []PatternRule{
		rule("distribution_by",
			`распределение (доход[а-я]*|зарплат[а-я]*) по (.+)`,
			`distribution of (income|earnings|salary|salaries) (?:by|across) (.+)`),
		rule(SubkindTrendBy,
			`как (распределяется|изменяются|варьируются) (доход[а-я]*|зарплат[а-я]*) .*в зависимости от (.+)`,
			`how (?:is|are|do|does) (?:\S+ )?(income|earnings|salary|salaries)(?: of \S+)? (distributed|change|vary|varies)\b.*(?:depending on|based on|by|across) (.+)`),
		rule("percentage_with",
			`процент фрилансеров с (.+)`,
			`percent(?:age)? of freelancers with (.+)`),
	}},
	{Kind: KindPercentage, Rules: []PatternRule{
		rule(SubkindExpertProjects,
			`какой процент фрилансеров.*(эксперт[а-я]*).*менее (\d+)`,
			`(?:what|which) percent(?:age)? of .*?(experts?)\b.*(?:fewer|less) than (\d+)`),
		rule(SubkindProjectsThreshold,
			`сколько процентов.*выполнил[ио] менее (\d+)`,
			`how many percent.*completed (?:fewer|less) than (\d+)`),
	}},
	{Kind: KindCorrelation, Rules: []PatternRule{
		rule("influence",
			`как (.+) влияет на доход`,
			`how (?:does|do) (.+) (?:affect|influence|impact) (?:income|earnings)`),
		rule("relationship",
			`связь между (.+) и доходом`,
			`relationship between (.+) and (?:income|earnings)`),
		rule("dependency",
			`зависит ли доход от (.+)`,
			`(?:does|do) (?:income|earnings) depend on (.+)`),
	}},
	{Kind: KindExtreme, Rules: []PatternRule{
		rule("extreme_values",
			`(максимальн|минимальн)(ый|ая) (зарплата|доход)`,
			`(maximum|minimum|highest|lowest|max|min) (income|earnings|salary)`),
		rule("top_values",
			`топ-\d+ (по зарплате|по доходам)`,
			`top[- ]\d+ (?:by|in) (salary|income|earnings)`),
	}},
	{Kind: KindAverage, Rules: []PatternRule{
		rule("average_value",
			`(средн|осреднен)(ый|ий|ая) (зарплата|доход)`,
			`(average|mean) (income|earnings|salary)`),
		rule("simple_average",
			`какой средний доход`,
			`what is the average`),
	}},
}

var parameterGroups = []ParameterGroup{
	{Kind: ParamPaymentMethod, Rules: []ParameterRule{
		param("crypto", `(криптовалют[а-я]*)`, `(crypto(?:currency|currencies)?)`),
		param("bank_transfer", `(банковск[а-я]* перевод[а-я]*)`, `(bank transfers?|wire transfers?)`),
		param("paypal", `(paypal|пайпал)`),
	}},
	{Kind: ParamExperience, Rules: []ParameterRule{
		param(ParamExperienceYears,
			`(опыт[а-я]*|стаж[а-я]*) (\d+ [летгода]+)`,
			`(experience|tenure) (?:of )?(\d+ (?:years?|yrs?))`,
			`(\d+ (?:years?|yrs?)) of (experience)`),
		param("expert", `(эксперт[а-я]*|профессионал[а-я]*)`, `(experts?|professionals?)`),
		param("beginner", `(новичок[а-я]*|начинающ[а-я]*)`, `(beginners?|entry[- ]level|novices?)`),
	}},
	{Kind: ParamRegion, Rules: []ParameterRule{
		param("region", `(регион[а-я]*|област[а-я]*)`, `(regions?|regional)`),
		param("country", `(стран[а-я]*)`, `(country|countries)`),
		param("city", `(город[а-я]*)`, `(city|cities)`),
	}},
	{Kind: ParamJobCategory, Rules: []ParameterRule{
		param("web_development", `(веб-?разработк[а-я]*)`, `(web[- ]?development)`),
		param("mobile_development", `(мобильн[а-я]* разработк[а-я]*)`, `(mobile (?:app )?development)`),
		param("design", `(дизайн[а-я]*)`, `(design\w*)`),
	}},
}

// yearsToken recognises "<digits> <year word>" inside a captured fragment.
var yearsToken = regexp.MustCompile(`(\d+) (?:years?|yrs?|[летгода]+)`)

func rule(subkind string, patterns ...string) PatternRule {
	return PatternRule{Subkind: subkind, Variants: compileAll(patterns)}
}

func param(tag string, patterns ...string) ParameterRule {
	return ParameterRule{Tag: tag, Variants: compileAll(patterns)}
}

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// IntentGroups returns the intent rule table in priority order.
func IntentGroups() []IntentGroup {
	return intentGroups
}

// ParameterGroups returns the parameter rule table in scan order.
func ParameterGroups() []ParameterGroup {
	return parameterGroups
}
