package research

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/llm"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/models"
)

var focusFlow = models.GenerationRequest{
	ProductName:         "FocusFlow",
	LandingURL:          "https://focusflow.app",
	Niche:               "productivity",
	MaxImages:           5,
	VariantsPerPlatform: 1,
	HumanReviewRequired: true,
}

const goodReply = `Here is the analysis:
{
  "trends": ["Deep work", "AI assistants", "Async teams", "Timeboxing"],
  "target_audience": "Knowledge workers drowning in notifications",
  "pain_points": ["Context switching", "Meeting overload", "Procrastination"],
  "viral_hooks": ["Before/after screenshots", "Myth busting", "30-day challenges"],
  "content_pillars": ["Tutorials", "Founder story", "Customer wins"]
}`

func TestSynthesizeWithoutBackendReturnsBaseline(t *testing.T) {
	s := NewSynthesizer(nil, time.Second, zaptest.NewLogger(t))
	got, origin := s.Synthesize(context.Background(), focusFlow, "")
	if origin != models.OriginFallback {
		t.Fatalf("origin = %q", origin)
	}
	if diff := cmp.Diff(Baseline("productivity"), got); diff != "" {
		t.Fatalf("insights mismatch (-want +got):\n%s", diff)
	}
	if got.TargetAudience != "productivity enthusiasts and professionals" {
		t.Fatalf("audience = %q", got.TargetAudience)
	}
}

func TestSynthesizeParsesBackendReply(t *testing.T) {
	var prompt string
	gen := llm.GeneratorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return goodReply, nil
	})
	s := NewSynthesizer(gen, time.Second, zaptest.NewLogger(t))

	got, origin := s.Synthesize(context.Background(), focusFlow, "Pomodoro timer with focus analytics")
	if origin != models.OriginAI {
		t.Fatalf("origin = %q", origin)
	}
	if got.TargetAudience != "Knowledge workers drowning in notifications" || len(got.Trends) != 4 {
		t.Fatalf("unexpected insights %+v", got)
	}
	for _, want := range []string{"Product: FocusFlow", "Niche: productivity", "Landing URL: https://focusflow.app", "Product Details: Pomodoro timer"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt lacks %q", want)
		}
	}
}

func TestSynthesizeFallsBack(t *testing.T) {
	tests := []struct {
		name string
		gen  llm.GeneratorFunc
	}{
		{"backend error", func(context.Context, string) (string, error) {
			return "", llm.ErrBackendUnavailable
		}},
		{"no json", func(context.Context, string) (string, error) {
			return "I cannot help with that.", nil
		}},
		{"broken json", func(context.Context, string) (string, error) {
			return `{"trends": [1, 2, 3]}`, nil
		}},
		{"too few entries", func(context.Context, string) (string, error) {
			return `{"trends":["a"],"target_audience":"x","pain_points":["a","b","c"],"viral_hooks":["a","b","c"],"content_pillars":["a","b","c"]}`, nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSynthesizer(tt.gen, time.Second, zaptest.NewLogger(t))
			got, origin := s.Synthesize(context.Background(), focusFlow, "")
			if origin != models.OriginFallback {
				t.Fatalf("origin = %q", origin)
			}
			if diff := cmp.Diff(Baseline(focusFlow.Niche), got); diff != "" {
				t.Fatalf("insights mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSynthesizeBoundsSlowBackend(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	s := NewSynthesizer(gen, 20*time.Millisecond, zaptest.NewLogger(t))

	done := make(chan models.Origin, 1)
	go func() {
		_, origin := s.Synthesize(context.Background(), focusFlow, "")
		done <- origin
	}()
	select {
	case origin := <-done:
		if origin != models.OriginFallback {
			t.Fatalf("origin = %q", origin)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Synthesize did not honour the backend timeout")
	}
}

func TestBuildPromptTruncatesReference(t *testing.T) {
	ref := strings.Repeat("é", maxReferenceChars+500)
	prompt := BuildPrompt(focusFlow, ref)
	if got := strings.Count(prompt, "é"); got != maxReferenceChars {
		t.Fatalf("prompt carries %d reference runes, want %d", got, maxReferenceChars)
	}
}

func TestBuildPromptOmitsEmptyReference(t *testing.T) {
	if strings.Contains(BuildPrompt(focusFlow, "   "), "Product Details") {
		t.Fatal("empty reference text still rendered")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	if _, err := Parse("nope"); !errors.Is(err, llm.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

type mapStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *mapStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func TestSynthesizeRetriesAfterUncachedBadReply(t *testing.T) {
	calls := 0
	backend := llm.GeneratorFunc(func(context.Context, string) (string, error) {
		calls++
		if calls == 1 {
			return "Sorry, overloaded", nil
		}
		return goodReply, nil
	})
	gen := llm.WithCache(backend, &mapStore{data: map[string]string{}}, "test", time.Hour, zaptest.NewLogger(t))
	s := NewSynthesizer(gen, time.Second, zaptest.NewLogger(t))

	want := []models.Origin{models.OriginFallback, models.OriginAI, models.OriginAI}
	for i, w := range want {
		if _, origin := s.Synthesize(context.Background(), focusFlow, ""); origin != w {
			t.Fatalf("call %d: origin = %s, want %s", i, origin, w)
		}
	}
	if calls != 2 {
		t.Fatalf("backend called %d times, want 2", calls)
	}
}
