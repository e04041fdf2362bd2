package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/platform"
)

// Status of a generation result.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Origin records whether content came from the generative backend or the
// deterministic templates.
type Origin string

const (
	OriginAI       Origin = "ai"
	OriginFallback Origin = "fallback"
)

const (
	minInsightEntries = 3
	maxInsightEntries = 5
)

var ErrInvalidInsights = errors.New("invalid research insights")

// ResearchInsights is the shared research summary computed once per request.
// Build it with NewResearchInsights.
type ResearchInsights struct {
	Trends         []string `json:"trends"`
	TargetAudience string   `json:"target_audience"`
	PainPoints     []string `json:"pain_points"`
	ViralHooks     []string `json:"viral_hooks"`
	ContentPillars []string `json:"content_pillars"`
}

// NewResearchInsights cleans and validates every list: blanks and duplicates
// are dropped, lists are cut to five entries and must keep at least three.
func NewResearchInsights(trends []string, audience string, painPoints, hooks, pillars []string) (ResearchInsights, error) {
	audience = strings.TrimSpace(audience)
	if audience == "" {
		return ResearchInsights{}, fmt.Errorf("%w: target_audience is empty", ErrInvalidInsights)
	}

	lists := []struct {
		name   string
		values []string
	}{
		{"trends", trends},
		{"pain_points", painPoints},
		{"viral_hooks", hooks},
		{"content_pillars", pillars},
	}
	cleaned := make([][]string, len(lists))
	for i, l := range lists {
		c := cleanEntries(l.values)
		if len(c) < minInsightEntries {
			return ResearchInsights{}, fmt.Errorf("%w: %s has %d entries, need at least %d",
				ErrInvalidInsights, l.name, len(c), minInsightEntries)
		}
		cleaned[i] = c
	}

	return ResearchInsights{
		Trends:         cleaned[0],
		TargetAudience: audience,
		PainPoints:     cleaned[1],
		ViralHooks:     cleaned[2],
		ContentPillars: cleaned[3],
	}, nil
}

func cleanEntries(values []string) []string {
	out := make([]string, 0, maxInsightEntries)
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
		if len(out) == maxInsightEntries {
			break
		}
	}
	return out
}

// PlatformAsset is one creative variant for one platform.
type PlatformAsset struct {
	Platform           platform.Platform `json:"platform"`
	VariantID          int               `json:"variant_id"`
	Caption            string            `json:"caption"`
	Hashtags           []string          `json:"hashtags"`
	ImagePrompt        string            `json:"image_prompt"`
	ImageURL           string            `json:"image_url,omitempty"`
	CTAText            string            `json:"cta_text"`
	OptimalPostingTime string            `json:"optimal_posting_time"`
	CharacterCount     int               `json:"character_count"`
	Origin             Origin            `json:"origin"`
}

// CaptionLength is the character count reported for a caption.
func CaptionLength(caption string) int {
	return utf8.RuneCountInString(caption)
}

// GenerationResult is the document returned for one request.
type GenerationResult struct {
	RequestID           string           `json:"product_id"`
	SessionID           string           `json:"user_id"`
	Status              Status           `json:"status"`
	Insights            ResearchInsights `json:"research_insights"`
	InsightsOrigin      Origin           `json:"insights_origin"`
	Assets              []PlatformAsset  `json:"assets"`
	MasterAssetsURL     string           `json:"master_assets_s3"`
	ResearchInsightsURL string           `json:"research_insights_s3"`
	GeneratedAt         time.Time        `json:"generated_at"`
	HumanReviewRequired bool             `json:"human_review_required"`
}

// FallbackAssets counts the assets produced from templates.
func (r GenerationResult) FallbackAssets() int {
	n := 0
	for _, a := range r.Assets {
		if a.Origin == OriginFallback {
			n++
		}
	}
	return n
}
