package completeness

import (
	"testing"

	"github.com/smallnest/talentsearch/filters"
	"github.com/stretchr/testify/assert"
)

func TestIsAnyResponse(t *testing.T) {
	t.Parallel()

	yes := []string{
		"Any location is fine",
		"any",
		"都行",
		"whatever",
		"It doesn't matter",
		"I don't care",
		"no preference",
		"ok",
		"Fine",
		"all locations",
		"行业不限",
	}
	for _, s := range yes {
		assert.True(t, IsAnyResponse(s), s)
	}

	no := []string{"Singapore", "", "Find CTOs in Singapore", "ok let's add Tokyo", "fintech"}
	for _, s := range no {
		assert.False(t, IsAnyResponse(s), s)
	}
}

func TestDetectField(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filters.Locations, DetectField("any location"))
	assert.Equal(t, filters.Locations, DetectField("anywhere"))
	assert.Equal(t, filters.Industries, DetectField("any industry is fine"))
	assert.Equal(t, filters.Industries, DetectField("行业都行"))
	assert.Equal(t, filters.CompanyHeadcount, DetectField("company size doesn't matter"))
	assert.Equal(t, filters.Field(""), DetectField("whatever"))
}
