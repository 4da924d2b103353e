package completeness

import (
	"regexp"
	"strings"

	"github.com/smallnest/talentsearch/filters"
)

var anyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^any`),
	regexp.MustCompile(`(?i)doesn'?t?\s*matter`),
	regexp.MustCompile(`(?i)don'?t\s*care`),
	regexp.MustCompile(`(?i)no\s*preference`),
	regexp.MustCompile(`(?i)anywhere`),
	regexp.MustCompile(`(?i)whatever`),
	regexp.MustCompile(`(?i)^all\s*(of them|locations?|industries?)?$`),
	regexp.MustCompile(`(?i)^ok$`),
	regexp.MustCompile(`(?i)^fine$`),
	regexp.MustCompile(`都行|无所谓|随便|没关系|都可以|不限|任意`),
}

// IsAnyResponse reports whether text dismisses the question just asked,
// e.g. "any location is fine" or "都行".
func IsAnyResponse(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, p := range anyPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

var fieldHints = []struct {
	field   filters.Field
	pattern *regexp.Regexp
}{
	{filters.Locations, regexp.MustCompile(`(?i)location|place|city|country|region|anywhere|地点|地方|位置|城市`)},
	{filters.Industries, regexp.MustCompile(`(?i)industr|sector|field|行业|领域`)},
	{filters.CompanyHeadcount, regexp.MustCompile(`(?i)company\s*size|headcount|公司规模`)},
	{filters.Seniorities, regexp.MustCompile(`(?i)seniority|level|级别`)},
	{filters.Titles, regexp.MustCompile(`(?i)title|role|position|职位`)},
}

// DetectField returns the field a dismissal names ("any industry" →
// industries), or "" when it names none.
func DetectField(text string) filters.Field {
	for _, h := range fieldHints {
		if h.pattern.MatchString(text) {
			return h.field
		}
	}
	return ""
}
