package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type intentReply struct {
	Type       string   `json:"type"`
	Confidence *float64 `json:"confidence"`
}

func TestFirstObject(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare", `{"a":1}`, `{"a":1}`, true},
		{"prose around", "Sure! Here it is:\n```json\n{\"a\":{\"b\":2}}\n```\nDone.", `{"a":{"b":2}}`, true},
		{"braces in strings", `{"s":"}{"} trailing }`, `{"s":"}{"}`, true},
		{"escaped quote", `{"s":"say \"{hi}\""}`, `{"s":"say \"{hi}\""}`, true},
		{"skips invalid block", `use {braces} then {"a":1}`, `{"a":1}`, true},
		{"first of two", `{"a":1} {"b":2}`, `{"a":1}`, true},
		{"none", "no json here", "", false},
		{"unbalanced", `{"a":1`, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FirstObject(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	res := DecodeJSON[intentReply](`I think: {"type":"refine","confidence":0.8}`)
	assert.True(t, res.OK)
	assert.NoError(t, res.Err)
	assert.Equal(t, "refine", res.Value.Type)
	assert.InDelta(t, 0.8, *res.Value.Confidence, 1e-9)

	res = DecodeJSON[intentReply]("nothing")
	assert.False(t, res.OK)
	assert.ErrorIs(t, res.Err, ErrNoJSON)
	assert.Equal(t, "nothing", res.Raw)

	res = DecodeJSON[intentReply](`{"type": 7}`)
	assert.False(t, res.OK)
	assert.Error(t, res.Err)
}
