package completeness

import (
	"fmt"

	"github.com/smallnest/talentsearch/filters"
)

type description struct {
	en       string
	zh       string
	examples string
}

var descriptions = map[filters.Field]description{
	filters.Titles:            {"specific job titles", "具体职位", `e.g., "CTO", "Software Engineer", "Product Manager"`},
	filters.Locations:         {"geographic locations", "地理位置", `e.g., "Singapore", "New York", "Europe"`},
	filters.Industries:        {"industry sectors", "行业领域", `e.g., "Technology", "Finance", "Healthcare"`},
	filters.Seniorities:       {"seniority levels", "职位级别", `e.g., "Senior", "Director", "VP"`},
	filters.CompanyHeadcount:  {"company size", "公司规模", `e.g., "startup", "mid-size", "enterprise"`},
	filters.YearsOfExperience: {"years of experience", "工作经验", `e.g., "5+ years", "3-5 years"`},
	filters.Skills:            {"specific skills", "技能要求", `e.g., "Python", "Machine Learning"`},
	filters.Companies:         {"specific companies", "特定公司", `e.g., "Google", "startups"`},
}

// Question renders the clarifying question for field. hasTitle switches to
// the narrower wording used once the user has named a role.
func Question(field filters.Field, hasTitle bool) string {
	d, ok := descriptions[field]
	if !ok {
		return "Could you provide more details for your search?"
	}

	switch {
	case field == filters.Locations && hasTitle:
		return fmt.Sprintf(`To narrow down the search, which location(s) are you interested in? (%s) Or you can say "any location" if you don't have a preference.`, d.examples)
	case field == filters.Industries && hasTitle:
		return fmt.Sprintf(`What industry should I focus on? (%s) Or say "any industry" if it doesn't matter.`, d.examples)
	default:
		return fmt.Sprintf(`Could you specify %s (%s)? (%s) Or say "any" if you don't have a preference.`, d.en, d.zh, d.examples)
	}
}

// Describe returns the English description of field.
func Describe(field filters.Field) string {
	return descriptions[field].en
}
