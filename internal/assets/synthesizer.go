package assets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/llm"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/metrics"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/models"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/platform"
)

// Synthesizer produces one platform asset per (platform, variant) pair.
type Synthesizer struct {
	gen     llm.Generator
	timeout time.Duration
	logger  *zap.Logger
}

// NewSynthesizer builds a Synthesizer. A nil gen sends every call to the
// template path.
func NewSynthesizer(gen llm.Generator, timeout time.Duration, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{gen: gen, timeout: timeout, logger: logger.Named("assets")}
}

// Synthesize never fails. Backend errors, malformed replies and missing
// fields all resolve to Fallback.
func (s *Synthesizer) Synthesize(ctx context.Context, p platform.Platform, variant int, req models.GenerationRequest, insights models.ResearchInsights) models.PlatformAsset {
	spec := platform.MustLookup(p)

	asset, err := s.generate(ctx, spec, variant, req, insights)
	if err != nil {
		s.logger.Warn("asset generation: using template",
			zap.String("platform", string(p)),
			zap.Int("variant", variant),
			zap.String("kind", llm.Kind(err)),
			zap.Error(err))
		asset = Fallback(spec, variant, req, insights)
	}

	metrics.AssetsGenerated.WithLabelValues(string(p), string(asset.Origin)).Inc()
	return asset
}

func (s *Synthesizer) generate(ctx context.Context, spec platform.Spec, variant int, req models.GenerationRequest, insights models.ResearchInsights) (models.PlatformAsset, error) {
	if s.gen == nil {
		return models.PlatformAsset{}, llm.ErrBackendUnavailable
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	callCtx = llm.WithValidator(callCtx, func(reply string) error {
		_, err := Parse(reply, spec, variant)
		return err
	})
	raw, err := s.gen.Generate(callCtx, BuildPrompt(spec, variant, req, insights))
	if err != nil {
		return models.PlatformAsset{}, err
	}
	return Parse(raw, spec, variant)
}

type assetReply struct {
	Caption            string   `json:"caption"`
	Hashtags           []string `json:"hashtags"`
	ImagePrompt        string   `json:"image_prompt"`
	CTAText            string   `json:"cta_text"`
	OptimalPostingTime string   `json:"optimal_posting_time"`
}

// Parse maps a raw backend reply onto a PlatformAsset for spec.
func Parse(raw string, spec platform.Spec, variant int) (models.PlatformAsset, error) {
	var reply assetReply
	if err := llm.DecodeObject(raw, &reply); err != nil {
		return models.PlatformAsset{}, err
	}

	required := []struct{ name, value string }{
		{"caption", reply.Caption},
		{"image_prompt", reply.ImagePrompt},
		{"cta_text", reply.CTAText},
		{"optimal_posting_time", reply.OptimalPostingTime},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return models.PlatformAsset{}, fmt.Errorf("%w: %s is missing", llm.ErrMalformedResponse, f.name)
		}
	}

	caption := strings.TrimSpace(reply.Caption)
	return models.PlatformAsset{
		Platform:           spec.Platform,
		VariantID:          variant,
		Caption:            caption,
		Hashtags:           NormalizeHashtags(reply.Hashtags, spec.HashtagLimit),
		ImagePrompt:        strings.TrimSpace(reply.ImagePrompt),
		CTAText:            strings.TrimSpace(reply.CTAText),
		OptimalPostingTime: strings.TrimSpace(reply.OptimalPostingTime),
		CharacterCount:     models.CaptionLength(caption),
		Origin:             models.OriginAI,
	}, nil
}

// NormalizeHashtags prefixes every tag with '#', strips inner whitespace,
// drops case-insensitive duplicates and keeps at most limit tags.
func NormalizeHashtags(tags []string, limit int) []string {
	out := make([]string, 0, min(len(tags), max(limit, 0)))
	if limit <= 0 {
		return out
	}
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.Join(strings.Fields(tag), "")
		tag = strings.TrimLeft(tag, "#")
		if tag == "" {
			continue
		}
		tag = "#" + tag
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
		if len(out) == limit {
			break
		}
	}
	return out
}

// BuildPrompt renders the generation prompt for one platform variant.
func BuildPrompt(spec platform.Spec, variant int, req models.GenerationRequest, insights models.ResearchInsights) string {
	return fmt.Sprintf(`Create viral %[1]s marketing content (variant %[2]d):

Product: %[3]s
Niche: %[4]s
Landing URL: %[5]s
Target Audience: %[6]s
Pain Points: %[7]s

Platform specs:
- Max characters: %[8]d
- Hashtag limit: %[9]d
- Image ratio: %[10]s

Create a JSON response with:
1. caption: Viral, engaging copy optimized for %[1]s (under %[8]d chars)
2. hashtags: Array of %[9]d relevant hashtags (empty array if 0)
3. image_prompt: Detailed DALL-E/Midjourney prompt for %[10]s image
4. cta_text: Strong call-to-action
5. optimal_posting_time: Best time to post (e.g., "Mon-Fri 9-11am EST")

Make it conversion-focused and platform-specific. Include the landing URL naturally.
Format as valid JSON only.`,
		spec.Platform, variant,
		req.ProductName, req.Niche, req.LandingURL,
		insights.TargetAudience, strings.Join(insights.PainPoints, ", "),
		spec.MaxChars, spec.HashtagLimit, spec.ImageAspectRatio)
}
