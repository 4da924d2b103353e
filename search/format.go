package search

import (
	"fmt"
	"strings"
)

const (
	maxPeopleShown    = 10
	maxCompaniesShown = 5
)

const noResults = "😔 **No matching results found**\n\n" +
	"Suggestions:\n" +
	"- Try broadening your search criteria\n" +
	"- Check if location or industry is correct\n" +
	"- Use more general job titles"

// FormatResults renders r as the markdown reply sent to the user.
func FormatResults(r Result) string {
	var parts []string

	if r.TotalPeople > 0 {
		parts = append(parts, fmt.Sprintf("🔍 **Search Complete! Found %d matching candidates:**\n", r.TotalPeople))
		for i, p := range r.People[:min(len(r.People), maxPeopleShown)] {
			parts = append(parts,
				fmt.Sprintf("**%d. %s** - %s @ %s", i+1, p.Name, p.Title, p.Company),
				"   - 📍 Location: "+p.Location,
				"   - 🏢 Industry: "+p.Industry,
				"   - 👔 Seniority: "+p.Seniority,
				"   - 📊 Company Size: "+p.CompanyHeadcount,
				fmt.Sprintf("   - ⏱️ Experience: %d years", p.YearsOfExperience),
				"   - 🔧 Skills: "+strings.Join(p.Skills, ", ")+"\n",
			)
		}
		if r.TotalPeople > maxPeopleShown {
			parts = append(parts, fmt.Sprintf("\n... and %d more candidates", r.TotalPeople-maxPeopleShown))
		}
	}

	if r.TotalCompanies > 0 {
		parts = append(parts, fmt.Sprintf("\n**Found %d matching companies:**\n", r.TotalCompanies))
		for i, c := range r.Companies[:min(len(r.Companies), maxCompaniesShown)] {
			parts = append(parts,
				fmt.Sprintf("**%d. %s**", i+1, c.Name),
				"   - 🏢 Industry: "+c.Industry,
				"   - 📍 Location: "+c.Location,
				"   - 📊 Size: "+c.Headcount,
				"   - 🏷️ Type: "+c.Type+"\n",
			)
		}
	}

	if r.TotalPeople == 0 && r.TotalCompanies == 0 {
		parts = append(parts, noResults)
	}
	return strings.Join(parts, "\n")
}
