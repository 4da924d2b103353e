package intent

import (
	"testing"

	"github.com/smallnest/talentsearch/filters"
	"github.com/stretchr/testify/assert"
)

func TestIsConfirmWord(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"yes", "OK!", " sure. ", "proceed", "好的", "确认。", "go"} {
		assert.True(t, IsConfirmWord(s), s)
	}
	for _, s := range []string{"yes but in Tokyo", "going", "find CTOs", "", "okay then"} {
		assert.False(t, IsConfirmWord(s), s)
	}
}

func TestIsDomainSwitch(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDomainSwitch("Find companies in Singapore", filters.Person))
	assert.True(t, IsDomainSwitch("show me the company list", filters.Person))
	assert.True(t, IsDomainSwitch("找公司", filters.Person))
	assert.False(t, IsDomainSwitch("Find companies in Singapore", filters.Company))
	assert.False(t, IsDomainSwitch("find CTOs at companies in Singapore", filters.Person))

	assert.True(t, IsDomainSwitch("find people who work there", filters.Company))
	assert.True(t, IsDomainSwitch("search for candidates", filters.Company))
	assert.True(t, IsDomainSwitch("找人", filters.Company))
	assert.False(t, IsDomainSwitch("找人工智能公司", filters.Company))
	assert.False(t, IsDomainSwitch("find people", filters.Person))
}

func TestIsRefineValue(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"Fintech", "Tokyo!", "  new   york ", "startups", "AI", "新加坡", "tech", "10001+"} {
		assert.True(t, IsRefineValue(s), s)
	}
	for _, s := range []string{"", "in", "Find CTOs in Tokyo", "Mars", "?"} {
		assert.False(t, IsRefineValue(s), s)
	}
}

func TestContainsConfirmKeyword(t *testing.T) {
	t.Parallel()

	assert.True(t, ContainsConfirmKeyword("Yes, go ahead"))
	assert.True(t, ContainsConfirmKeyword("looks good to me"))
	assert.True(t, ContainsConfirmKeyword("好的，开始吧"))
	assert.False(t, ContainsConfirmKeyword("Find CTOs in Goa"))
	assert.False(t, ContainsConfirmKeyword("Mongo experts"))
	assert.False(t, ContainsConfirmKeyword("search for designers"))
}

func TestTypePolicy(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filters.ReplaceAll, NewSearch.Policy())
	assert.Equal(t, filters.Union, Refine.Policy())
	assert.Equal(t, filters.FieldReplace, Modify.Policy())
	assert.Equal(t, filters.Inherit, CrossDomain.Policy())
	assert.Equal(t, filters.Keep, Confirm.Policy())
	assert.Equal(t, filters.Keep, Reject.Policy())

	assert.True(t, Refine.KeepsDomain())
	assert.False(t, CrossDomain.KeepsDomain())
}
