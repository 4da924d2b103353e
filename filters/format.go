package filters

import (
	"fmt"
	"strings"
)

// Labels are the English display names of each field.
var Labels = map[Field]string{
	Titles:            "Job Titles",
	Locations:         "Locations",
	Industries:        "Industries",
	Seniorities:       "Seniority Levels",
	CompanyHeadcount:  "Company Size",
	YearsOfExperience: "Experience",
	Skills:            "Skills",
	Companies:         "Companies",
}

// LabelsZH are the Chinese display names of each field.
var LabelsZH = map[Field]string{
	Titles:            "职位",
	Locations:         "地点",
	Industries:        "行业",
	Seniorities:       "级别",
	CompanyHeadcount:  "公司规模",
	YearsOfExperience: "工作经验",
	Skills:            "技能",
	Companies:         "公司",
}

// FormatRange renders an experience range as "3-5 years" or "5+ years".
func FormatRange(r Range) string {
	lo := 0
	if r.Min != nil {
		lo = *r.Min
	}
	if r.Max != nil {
		return fmt.Sprintf("%d-%d years", lo, *r.Max)
	}
	return fmt.Sprintf("%d+ years", lo)
}

// FormatValue renders one field's value, or "" when the field is absent.
func (f SearchFilters) FormatValue(field Field) string {
	if !f.Has(field) {
		return ""
	}
	if field == YearsOfExperience {
		return FormatRange(f.YearsOfExperience.Value)
	}
	return strings.Join(f.Values(field), ", ")
}

func (f SearchFilters) confidence(field Field) Confidence {
	if field == YearsOfExperience {
		return f.YearsOfExperience.Confidence
	}
	return (*f.list(field)).Confidence
}

// Lines renders each present field as "Label: values", marking inferred
// values. labels selects the language (Labels or LabelsZH).
func (f SearchFilters) Lines(labels map[Field]string) []string {
	var lines []string
	for _, field := range f.Filled() {
		line := labels[field] + ": " + f.FormatValue(field)
		if f.confidence(field) == Guess {
			line += " (inferred)"
		}
		lines = append(lines, line)
	}
	return lines
}

// String renders the filters as a semicolon separated summary.
func (f SearchFilters) String() string {
	if f.Empty() {
		return "(none)"
	}
	return strings.Join(f.Lines(Labels), "; ")
}
