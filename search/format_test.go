package search

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatResults_NoResults(t *testing.T) {
	out := FormatResults(Result{})
	assert.True(t, strings.HasPrefix(out, "😔 **No matching results found**"))
	assert.Contains(t, out, "- Use more general job titles")
}

func TestFormatResults_People(t *testing.T) {
	people := make([]Person, 12)
	for i := range people {
		people[i] = Person{
			Name:              fmt.Sprintf("P%d", i+1),
			Title:             "CTO",
			Company:           "Acme",
			Location:          "Singapore",
			Industry:          "Technology",
			Seniority:         "C-Level",
			CompanyHeadcount:  "51-200",
			YearsOfExperience: 15,
			Skills:            []string{"AI", "Cloud"},
		}
	}

	out := FormatResults(Result{People: people, TotalPeople: 12})

	assert.True(t, strings.HasPrefix(out, "🔍 **Search Complete! Found 12 matching candidates:**\n"))
	assert.Contains(t, out, "\n**1. P1** - CTO @ Acme\n   - 📍 Location: Singapore\n")
	assert.Contains(t, out, "   - ⏱️ Experience: 15 years\n")
	assert.Contains(t, out, "   - 🔧 Skills: AI, Cloud\n")
	assert.Contains(t, out, "**10. P10**")
	assert.NotContains(t, out, "**11. P11**")
	assert.True(t, strings.HasSuffix(out, "\n... and 2 more candidates"))
	assert.NotContains(t, out, "No matching results")
}

func TestFormatResults_Companies(t *testing.T) {
	companies := make([]Company, 6)
	for i := range companies {
		companies[i] = Company{Name: fmt.Sprintf("C%d", i+1), Industry: "Finance", Location: "London", Headcount: "11-50", Type: "Startup"}
	}

	out := FormatResults(Result{Companies: companies, TotalCompanies: 6})

	assert.True(t, strings.HasPrefix(out, "\n**Found 6 matching companies:**\n"))
	assert.Contains(t, out, "**1. C1**\n   - 🏢 Industry: Finance\n   - 📍 Location: London\n   - 📊 Size: 11-50\n   - 🏷️ Type: Startup\n")
	assert.Contains(t, out, "**5. C5**")
	assert.NotContains(t, out, "**6. C6**")
}
