package filters

import "strconv"

// Flat is the simplified filter shape understood by search backends.
type Flat struct {
	JobTitles         []string `json:"jobTitle,omitempty"`
	Locations         []string `json:"location,omitempty"`
	Industries        []string `json:"industry,omitempty"`
	Seniorities       []string `json:"seniority,omitempty"`
	CompanyHeadcount  []string `json:"companyHeadcount,omitempty"`
	Skills            []string `json:"skills,omitempty"`
	YearsOfExperience string   `json:"yearsOfExperience,omitempty"`
	CompanyName       string   `json:"companyName,omitempty"`
}

// Flatten converts filters to the search backend shape: string sets pass
// through, the experience floor becomes "N+", and only the first company
// name is kept.
func Flatten(f SearchFilters) Flat {
	out := Flat{
		JobTitles:        f.Values(Titles),
		Locations:        f.Values(Locations),
		Industries:       f.Values(Industries),
		Seniorities:      f.Values(Seniorities),
		CompanyHeadcount: f.Values(CompanyHeadcount),
		Skills:           f.Values(Skills),
	}
	if f.Has(YearsOfExperience) && f.YearsOfExperience.Value.Min != nil {
		out.YearsOfExperience = strconv.Itoa(*f.YearsOfExperience.Value.Min) + "+"
	}
	if companies := f.Values(Companies); len(companies) > 0 {
		out.CompanyName = companies[0]
	}
	return out
}
