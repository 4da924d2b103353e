package filters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_WrappedAndBare(t *testing.T) {
	t.Parallel()

	raw := json.RawMessage(`{
		"titles": {"value": ["CTO", " ", "cto", "Chief Technology Officer"], "confidence": "GUESS", "source": "tech leaders"},
		"locations": ["Singapore"],
		"industries": "Fintech",
		"salary": ["100k"],
		"skills": {"value": []}
	}`)

	f, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, &ListField{
		Value:      []string{"CTO", "Chief Technology Officer"},
		Confidence: Guess,
		Source:     "tech leaders",
	}, f.Titles)
	assert.Equal(t, DirectList("Singapore"), f.Locations)
	assert.Equal(t, DirectList("Fintech"), f.Industries)
	assert.Nil(t, f.Skills)
}

func TestNormalize_UnknownConfidenceDefaultsToDirect(t *testing.T) {
	t.Parallel()

	f, err := Normalize(json.RawMessage(`{"seniorities": {"value": ["Senior"], "confidence": "maybe"}}`))
	require.NoError(t, err)
	assert.Equal(t, Direct, f.Seniorities.Confidence)
}

func TestNormalize_Experience(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		min  *int
		max  *int
		conf Confidence
	}{
		{"wrapped", `{"yearsOfExperience": {"value": {"min": 3, "max": 5}, "confidence": "GUESS"}}`, IntPtr(3), IntPtr(5), Guess},
		{"bare", `{"yearsOfExperience": {"min": 5}}`, IntPtr(5), nil, Direct},
		{"fractional", `{"yearsOfExperience": {"min": 2.6}}`, IntPtr(3), nil, Direct},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Normalize(json.RawMessage(tc.raw))
			require.NoError(t, err)
			require.NotNil(t, f.YearsOfExperience)
			assert.Equal(t, tc.min, f.YearsOfExperience.Value.Min)
			assert.Equal(t, tc.max, f.YearsOfExperience.Value.Max)
			assert.Equal(t, tc.conf, f.YearsOfExperience.Confidence)
		})
	}
}

func TestNormalize_EmptyRangeDropped(t *testing.T) {
	t.Parallel()

	f, err := Normalize(json.RawMessage(`{"yearsOfExperience": {"min": -1}}`))
	require.NoError(t, err)
	assert.True(t, f.Empty())
}

func TestNormalize_NullAndGarbage(t *testing.T) {
	t.Parallel()

	f, err := Normalize(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.True(t, f.Empty())

	_, err = Normalize(json.RawMessage(`["CTO"]`))
	assert.Error(t, err)
}
