package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is reported when a reply holds no parseable JSON object.
var ErrNoJSON = errors.New("oracle: no JSON object in reply")

// Decoded is the tagged result of decoding a reply: either OK with Value
// set, or not OK with the raw reply and the reason kept for logging.
type Decoded[T any] struct {
	Value T
	OK    bool
	Raw   string
	Err   error
}

// DecodeJSON decodes the first well-formed top-level JSON object embedded in
// reply into T. It never panics and never returns an error past its
// boundary; callers switch on OK.
func DecodeJSON[T any](reply string) Decoded[T] {
	res := Decoded[T]{Raw: reply}

	obj, ok := FirstObject(reply)
	if !ok {
		res.Err = ErrNoJSON
		return res
	}
	if err := json.Unmarshal([]byte(obj), &res.Value); err != nil {
		res.Err = fmt.Errorf("oracle: decode reply: %w", err)
		return res
	}
	res.OK = true
	return res
}

// FirstObject returns the first balanced {...} block of s that is valid
// JSON. Braces inside JSON strings are ignored while matching.
func FirstObject(s string) (string, bool) {
	for start := strings.IndexByte(s, '{'); start >= 0; {
		if end, ok := matchBrace(s, start); ok {
			candidate := s[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the brace closing the one at start.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
