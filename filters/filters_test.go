package filters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFilters_PresenceInvariant(t *testing.T) {
	t.Parallel()

	var f SearchFilters
	assert.True(t, f.Empty())

	f.Set(Titles, &ListField{Value: []string{}})
	assert.Nil(t, f.Titles)
	assert.True(t, f.Empty())

	f.YearsOfExperience = &RangeField{}
	assert.False(t, f.Has(YearsOfExperience))
	assert.True(t, f.Empty())
	assert.Nil(t, f.Clone().YearsOfExperience)

	f.Set(Skills, DirectList("Go"))
	assert.Equal(t, []Field{Skills}, f.Filled())
}

func TestSearchFilters_JSONShape(t *testing.T) {
	t.Parallel()

	f := SearchFilters{
		Titles:            DirectList("CTO"),
		YearsOfExperience: &RangeField{Value: Range{Min: IntPtr(5)}, Confidence: Guess, Source: "senior"},
	}
	data, err := json.Marshal(f)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"titles": {"value": ["CTO"], "confidence": "DIRECT"},
		"yearsOfExperience": {"value": {"min": 5}, "confidence": "GUESS", "source": "senior"}
	}`, string(data))
}

func TestSearchFilters_CloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := SearchFilters{Titles: DirectList("CTO")}
	cp := orig.Clone()
	cp.Titles.Value[0] = "CEO"

	assert.Equal(t, "CTO", orig.Titles.Value[0])
}

func TestParseField(t *testing.T) {
	t.Parallel()

	f, ok := ParseField("companyHeadcount")
	assert.True(t, ok)
	assert.Equal(t, CompanyHeadcount, f)

	_, ok = ParseField("salary")
	assert.False(t, ok)
}

func TestParseDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Company, ParseDomain("Company"))
	assert.Equal(t, Person, ParseDomain(""))
	assert.Equal(t, Person, ParseDomain("people"))
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	f := SearchFilters{
		Titles:            DirectList("CTO", "VP Engineering"),
		Companies:         DirectList("Google", "Meta"),
		YearsOfExperience: &RangeField{Value: Range{Min: IntPtr(5), Max: IntPtr(10)}, Confidence: Direct},
	}

	flat := Flatten(f)
	assert.Equal(t, []string{"CTO", "VP Engineering"}, flat.JobTitles)
	assert.Equal(t, "Google", flat.CompanyName)
	assert.Equal(t, "5+", flat.YearsOfExperience)
	assert.Empty(t, flat.Locations)
}

func TestFlatten_MaxOnlyRange(t *testing.T) {
	t.Parallel()

	flat := Flatten(SearchFilters{YearsOfExperience: &RangeField{Value: Range{Max: IntPtr(3)}}})
	assert.Empty(t, flat.YearsOfExperience)
}

func TestLines(t *testing.T) {
	t.Parallel()

	f := SearchFilters{
		Titles:            DirectList("CTO"),
		Locations:         GuessList("London", "Berlin"),
		YearsOfExperience: &RangeField{Value: Range{Max: IntPtr(3)}, Confidence: Direct},
	}

	assert.Equal(t, []string{
		"Job Titles: CTO",
		"Locations: London, Berlin (inferred)",
		"Experience: 0-3 years",
	}, f.Lines(Labels))
	assert.Equal(t, "职位: CTO", f.Lines(LabelsZH)[0])
	assert.Equal(t, "(none)", SearchFilters{}.String())
}
