package brief

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/models"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/platform"
)

// Captions keep their line breaks in HTML.
var md = goldmark.New(goldmark.WithRendererOptions(html.WithHardWraps()))

// Markdown renders a campaign brief for a generation result.
func Markdown(req models.GenerationRequest, result models.GenerationResult) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("# Campaign Brief: %s\n\n", req.ProductName))
	builder.WriteString(fmt.Sprintf("- Niche: %s\n", req.Niche))
	builder.WriteString(fmt.Sprintf("- Landing URL: %s\n", req.LandingURL))
	builder.WriteString(fmt.Sprintf("- Product ID: %s\n", result.RequestID))
	builder.WriteString(fmt.Sprintf("- Generated: %s\n", result.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	builder.WriteString(fmt.Sprintf("- Status: %s\n", result.Status))
	if result.HumanReviewRequired {
		builder.WriteString("- Human review required before publishing\n")
	}

	in := result.Insights
	builder.WriteString(fmt.Sprintf("\n## Research Insights (%s)\n\n", result.InsightsOrigin))
	builder.WriteString(fmt.Sprintf("**Target Audience:** %s\n", in.TargetAudience))
	writeList(&builder, "Trends", in.Trends)
	writeList(&builder, "Pain Points", in.PainPoints)
	writeList(&builder, "Viral Hooks", in.ViralHooks)
	writeList(&builder, "Content Pillars", in.ContentPillars)

	if len(result.Assets) == 0 {
		builder.WriteString("\nNo assets generated.\n")
		return builder.String()
	}

	var current platform.Platform
	for _, a := range result.Assets {
		if a.Platform != current {
			current = a.Platform
			builder.WriteString(fmt.Sprintf("\n## %s\n", titleCase(string(current))))
		}
		builder.WriteString(fmt.Sprintf("\n### Variant %d (%s)\n\n", a.VariantID, a.Origin))
		for _, line := range strings.Split(a.Caption, "\n") {
			if line == "" {
				builder.WriteString(">\n")
				continue
			}
			builder.WriteString(fmt.Sprintf("> %s\n", line))
		}
		builder.WriteString("\n")
		if len(a.Hashtags) > 0 {
			builder.WriteString(fmt.Sprintf("- Hashtags: %s\n", strings.Join(a.Hashtags, " ")))
		}
		builder.WriteString(fmt.Sprintf("- Image Prompt: %s\n", a.ImagePrompt))
		builder.WriteString(fmt.Sprintf("- CTA: %s\n", a.CTAText))
		builder.WriteString(fmt.Sprintf("- Best Time: %s\n", a.OptimalPostingTime))
		builder.WriteString(fmt.Sprintf("- Characters: %d\n", a.CharacterCount))
	}

	return builder.String()
}

func writeList(builder *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	builder.WriteString(fmt.Sprintf("\n**%s:**\n", title))
	for _, item := range items {
		builder.WriteString(fmt.Sprintf("- %s\n", strings.TrimSpace(item)))
	}
}

func titleCase(s string) string {
	switch s {
	case "linkedin":
		return "LinkedIn"
	case "":
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// HTML converts a Markdown brief into an HTML fragment.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render brief: %w", err)
	}
	return buf.String(), nil
}
