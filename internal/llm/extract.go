package llm

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNoJSONObject = errors.New("no balanced JSON object found")

// ExtractJSONObject returns the first balanced {...} substring of text.
// Braces inside JSON string literals are ignored. The scan is a single
// pass: open braces are kept on a stack and the earliest one that closes
// wins.
func ExtractJSONObject(text string) (string, error) {
	var open []int
	best, bestEnd := -1, -1
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
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
			// Quotes in surrounding prose do not open a string.
			inString = len(open) > 0
		case '{':
			open = append(open, i)
		case '}':
			if len(open) == 0 {
				continue
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			if best < 0 || start < best {
				best, bestEnd = start, i
			}
			if len(open) == 0 {
				return text[best : bestEnd+1], nil
			}
		}
	}
	if best >= 0 {
		return text[best : bestEnd+1], nil
	}
	return "", ErrNoJSONObject
}

// DecodeObject extracts the first JSON object in text and unmarshals it
// into v. Every failure wraps ErrMalformedResponse.
func DecodeObject(text string, v any) error {
	raw, err := ExtractJSONObject(text)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}
