package models

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewResearchInsightsCleansLists(t *testing.T) {
	ins, err := NewResearchInsights(
		[]string{" AI tools ", "ai tools", "", "Remote work", "Focus", "Deep work", "Async", "Extra"},
		"  Busy founders ",
		[]string{"Distraction", "Burnout", "Context switching"},
		[]string{"Before/after", "Hot takes", "Tutorials"},
		[]string{"Educational", "Inspirational", "Entertaining"},
	)
	if err != nil {
		t.Fatalf("NewResearchInsights: %v", err)
	}
	if diff := cmp.Diff([]string{"AI tools", "Remote work", "Focus", "Deep work", "Async"}, ins.Trends); diff != "" {
		t.Fatalf("trends mismatch (-want +got):\n%s", diff)
	}
	if ins.TargetAudience != "Busy founders" {
		t.Fatalf("audience = %q", ins.TargetAudience)
	}
}

func TestNewResearchInsightsRejectsShortLists(t *testing.T) {
	_, err := NewResearchInsights(
		[]string{"a", "b", "c"},
		"audience",
		[]string{"only", "two"},
		[]string{"a", "b", "c"},
		[]string{"a", "b", "c"},
	)
	if !errors.Is(err, ErrInvalidInsights) {
		t.Fatalf("expected ErrInvalidInsights, got %v", err)
	}
}

func TestNewResearchInsightsRejectsEmptyAudience(t *testing.T) {
	three := []string{"a", "b", "c"}
	if _, err := NewResearchInsights(three, " ", three, three, three); !errors.Is(err, ErrInvalidInsights) {
		t.Fatalf("expected ErrInvalidInsights, got %v", err)
	}
}

func TestCaptionLengthCountsRunes(t *testing.T) {
	if got := CaptionLength("Go 🚀"); got != 4 {
		t.Fatalf("CaptionLength = %d, want 4", got)
	}
}

func TestFallbackAssets(t *testing.T) {
	r := GenerationResult{Assets: []PlatformAsset{{Origin: OriginAI}, {Origin: OriginFallback}, {Origin: OriginFallback}}}
	if got := r.FallbackAssets(); got != 2 {
		t.Fatalf("FallbackAssets = %d, want 2", got)
	}
}
