package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// MockGenerator answers every prompt with canned JSON so the service can run
// locally without credentials. The reply carries both the research fields and
// the asset fields; each decoder reads only what it needs.
type MockGenerator struct{}

func (MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", classify("mock", err)
	}

	product := promptValue(prompt, "Product:")
	landing := promptValue(prompt, "Landing URL:")
	niche := promptValue(prompt, "Niche:")

	reply := map[string]any{
		"trends":               []string{"Short-form video", "Creator collaborations", "Community-led growth"},
		"target_audience":      "Busy " + niche + " professionals looking for an edge",
		"pain_points":          []string{"Too little time", "Inconsistent results", "Tool overload"},
		"viral_hooks":          []string{"Myth vs. fact", "Day-in-the-life", "Quick wins"},
		"content_pillars":      []string{"How-to", "Customer stories", "Behind the scenes"},
		"caption":              "Meet " + product + ", built for " + niche + ". See it in action: " + landing,
		"hashtags":             []string{"#" + strings.ReplaceAll(niche, " ", ""), "#buildinpublic", "#growth"},
		"image_prompt":         "Clean product hero shot of " + product + ", soft studio lighting, no text",
		"cta_text":             "Try it free",
		"optimal_posting_time": "Tue-Thu 9-11am EST",
	}
	out, err := json.Marshal(reply)
	if err != nil {
		return "", err
	}
	return "```json\n" + string(out) + "\n```", nil
}

func promptValue(prompt, label string) string {
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, label) {
			return strings.TrimSpace(strings.TrimPrefix(line, label))
		}
	}
	return ""
}
