package llm

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"surrounded", "Sure! Here you go:\n{\"a\":1}\nHope it helps.", `{"a":1}`},
		{"fenced", "```json\n{\"a\":{\"b\":[1,2]}}\n```", `{"a":{"b":[1,2]}}`},
		{"first of two", `{"a":1} and {"b":2}`, `{"a":1}`},
		{"braces in strings", `{"caption":"use {curly} and \"}\" freely"}`, `{"caption":"use {curly} and \"}\" freely"}`},
		{"unbalanced prefix", `{ oops {"a":1}`, `{"a":1}`},
		{"quote in prose", `He said "here {"a":1}`, `{"a":1}`},
		{"nested unbalanced", `{ x {"a":{"b":1}} y {"c":2}`, `{"a":{"b":1}}`},
		{"long open run", strings.Repeat("{", 100000) + `{"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.in)
			if err != nil {
				t.Fatalf("ExtractJSONObject: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONObjectNone(t *testing.T) {
	for _, in := range []string{"", "no json here", "{ never closed", "} backwards {", strings.Repeat("{", 200000)} {
		if _, err := ExtractJSONObject(in); !errors.Is(err, ErrNoJSONObject) {
			t.Fatalf("%.40q: expected ErrNoJSONObject, got %v", in, err)
		}
	}
}

func TestDecodeObject(t *testing.T) {
	var out struct {
		Caption string `json:"caption"`
	}
	if err := DecodeObject("reply: {\"caption\":\"hi\"}", &out); err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	if out.Caption != "hi" {
		t.Fatalf("caption = %q", out.Caption)
	}
}

func TestDecodeObjectMalformed(t *testing.T) {
	var out map[string]any
	for _, in := range []string{"nothing", "{not: json}"} {
		err := DecodeObject(in, &out)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("%q: expected ErrMalformedResponse, got %v", in, err)
		}
		if Kind(err) != "malformed" {
			t.Fatalf("Kind = %q", Kind(err))
		}
	}
}
