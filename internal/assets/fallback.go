package assets

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/models"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/platform"
)

// DefaultCTA is the call to action used by template assets.
const DefaultCTA = "Learn More →"

const defaultPostingTime = "Weekdays 9am-5pm EST"

var postingTimes = map[platform.Platform]string{
	platform.Twitter:   "Mon-Fri 12-1pm, 5-6pm EST",
	platform.Pinterest: "Sat-Sun 8-11pm EST",
	platform.Instagram: "Wed 11am, Fri 10-11am EST",
	platform.LinkedIn:  "Tue-Thu 10-11am EST",
	platform.Reddit:    "Mon-Fri 6-8am, 12-2pm EST",
}

// PostingTime returns the recommended posting window for p.
func PostingTime(p platform.Platform) string {
	if t, ok := postingTimes[p]; ok {
		return t
	}
	return defaultPostingTime
}

type templateData struct {
	product   string
	niche     string
	url       string
	ratio     string
	painPoint string
}

var captionTemplates = []func(d templateData) string{
	func(d templateData) string {
		return fmt.Sprintf("Transform your %s journey with %s! 🚀\n\nDiscover why thousands trust us: %s", d.niche, d.product, d.url)
	},
	func(d templateData) string {
		return fmt.Sprintf("%s? We've got you covered.\n\n%s - %s", d.painPoint, d.product, d.url)
	},
	func(d templateData) string {
		return fmt.Sprintf("The ultimate %s solution is here! ✨\n\n%s changes everything.\n\nLearn more: %s", d.niche, d.product, d.url)
	},
}

var imagePromptTemplates = []func(d templateData) string{
	func(d templateData) string {
		return fmt.Sprintf("Professional %s marketing image for %s product, modern minimalist design, vibrant colors, high-quality, no text", d.ratio, d.niche)
	},
	func(d templateData) string {
		return fmt.Sprintf("Stunning %s visual showcasing %s success, lifestyle photography, bright and aspirational, professional lighting", d.ratio, d.niche)
	},
	func(d templateData) string {
		return fmt.Sprintf("Eye-catching %s graphic design for %s, bold typography, gradient background, modern aesthetic", d.ratio, d.product)
	},
}

// templateIndex maps a 1-based variant onto a template slot. Anything outside
// the authored range wraps to the first template.
func templateIndex(variant, n int) int {
	if variant < 1 || variant > n {
		return 0
	}
	return variant - 1
}

// Fallback builds a deterministic asset from the authored templates.
func Fallback(spec platform.Spec, variant int, req models.GenerationRequest, insights models.ResearchInsights) models.PlatformAsset {
	d := templateData{
		product: req.ProductName,
		niche:   req.Niche,
		url:     req.LandingURL,
		ratio:   spec.ImageAspectRatio,
	}
	if len(insights.PainPoints) > 0 {
		d.painPoint = insights.PainPoints[0]
	}

	ci := templateIndex(variant, len(captionTemplates))
	if ci == 1 && d.painPoint == "" {
		ci = 0
	}
	caption := captionTemplates[ci](d)

	return models.PlatformAsset{
		Platform:           spec.Platform,
		VariantID:          variant,
		Caption:            caption,
		Hashtags:           FallbackHashtags(req, spec.HashtagLimit),
		ImagePrompt:        imagePromptTemplates[templateIndex(variant, len(imagePromptTemplates))](d),
		CTAText:            DefaultCTA,
		OptimalPostingTime: PostingTime(spec.Platform),
		CharacterCount:     models.CaptionLength(caption),
		Origin:             models.OriginFallback,
	}
}

// FallbackHashtags derives tags from the niche and product name, then pads
// with generic marketing tags, capped at limit.
func FallbackHashtags(req models.GenerationRequest, limit int) []string {
	candidates := []string{
		"#" + strings.Join(strings.Fields(req.Niche), ""),
		"#" + strings.Join(strings.Fields(req.ProductName), ""),
		"#marketing",
		"#growth",
		"#productivity",
	}
	return NormalizeHashtags(candidates, limit)
}
