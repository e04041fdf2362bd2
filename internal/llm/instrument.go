package llm

import (
	"context"
	"time"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/metrics"
)

type instrumented struct {
	next     Generator
	provider string
}

// Instrument records call outcomes and latency of next under provider.
func Instrument(next Generator, provider string) Generator {
	return &instrumented{next: next, provider: provider}
}

func (i *instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := i.next.Generate(ctx, prompt)
	metrics.BackendCallDuration.WithLabelValues(i.provider).Observe(time.Since(start).Seconds())
	metrics.BackendCallsTotal.WithLabelValues(i.provider, Kind(err)).Inc()
	return out, err
}
