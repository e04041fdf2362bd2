package llm

import (
	"context"
	"errors"
	"fmt"
)

// Generator is the text-generation capability the synthesizers depend on.
// Implementations send one user-role prompt and return the raw reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Settings configures a concrete backend.
type Settings struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
}

var (
	ErrBackendUnavailable = errors.New("generative backend unavailable")
	ErrBackendTimeout     = errors.New("generative backend timed out")
	ErrMalformedResponse  = errors.New("generative backend returned a malformed response")
)

// classify wraps a transport error with the matching backend sentinel.
func classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", provider, ErrBackendTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", provider, ErrBackendUnavailable, err)
}

// Kind names the failure class of err for logs and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrBackendTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ErrBackendUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
