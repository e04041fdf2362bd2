package brief

import (
	"strings"
	"testing"
	"time"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/models"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/platform"
)

func sampleResult() (models.GenerationRequest, models.GenerationResult) {
	req := models.GenerationRequest{
		ProductName:         "FocusFlow",
		LandingURL:          "https://focusflow.app",
		Niche:               "productivity",
		VariantsPerPlatform: 1,
		HumanReviewRequired: true,
	}
	result := models.GenerationResult{
		RequestID:      "req-1",
		SessionID:      "sess-1",
		Status:         models.StatusSuccess,
		InsightsOrigin: models.OriginFallback,
		Insights: models.ResearchInsights{
			Trends:         []string{"Deep work", "Async", "AI"},
			TargetAudience: "Remote teams",
			PainPoints:     []string{"Meetings", "Noise", "Drift"},
			ViralHooks:     []string{"Myths", "Wins", "Tips"},
			ContentPillars: []string{"Guides", "Stories", "Demos"},
		},
		Assets: []models.PlatformAsset{
			{
				Platform:           platform.Twitter,
				VariantID:          1,
				Caption:            "Focus better.\n\nhttps://focusflow.app",
				Hashtags:           []string{"#productivity", "#FocusFlow"},
				ImagePrompt:        "Calm desk",
				CTAText:            "Learn More →",
				OptimalPostingTime: "Mon-Fri 12-1pm, 5-6pm EST",
				CharacterCount:     35,
				Origin:             models.OriginFallback,
			},
			{
				Platform:           platform.LinkedIn,
				VariantID:          1,
				Caption:            "Teams ship more with FocusFlow",
				Hashtags:           []string{},
				ImagePrompt:        "Office",
				CTAText:            "Book a demo",
				OptimalPostingTime: "Tue-Thu 10-11am EST",
				Origin:             models.OriginAI,
			},
		},
		GeneratedAt:         time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		HumanReviewRequired: true,
	}
	return req, result
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleResult())

	for _, want := range []string{
		"# Campaign Brief: FocusFlow",
		"- Landing URL: https://focusflow.app",
		"- Human review required before publishing",
		"## Research Insights (fallback)",
		"**Target Audience:** Remote teams",
		"**Pain Points:**\n- Meetings\n",
		"## Twitter\n",
		"### Variant 1 (fallback)",
		"> Focus better.\n>\n> https://focusflow.app",
		"- Hashtags: #productivity #FocusFlow",
		"## LinkedIn\n",
		"### Variant 1 (ai)",
		"- Best Time: Tue-Thu 10-11am EST",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("brief lacks %q\n%s", want, out)
		}
	}
	if strings.Count(out, "- Hashtags:") != 1 {
		t.Error("empty hashtag list should be omitted")
	}
}

func TestMarkdownWithoutAssets(t *testing.T) {
	req, result := sampleResult()
	result.Assets = nil
	if out := Markdown(req, result); !strings.Contains(out, "No assets generated.") {
		t.Fatalf("brief = %s", out)
	}
}

func TestHTML(t *testing.T) {
	out, err := HTML(Markdown(sampleResult()))
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	for _, want := range []string{
		"<h1>Campaign Brief: FocusFlow</h1>",
		"<h2>Twitter</h2>",
		"<blockquote>",
		"<li>Hashtags: #productivity #FocusFlow</li>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html lacks %q", want)
		}
	}
}
