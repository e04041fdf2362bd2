package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/llm"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/metrics"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/models"
)

// maxReferenceChars bounds how much of the reference document reaches the prompt.
const maxReferenceChars = 2000

// Synthesizer derives research insights for a product.
type Synthesizer struct {
	gen     llm.Generator
	timeout time.Duration
	logger  *zap.Logger
}

// NewSynthesizer builds a Synthesizer. A nil gen means no backend is
// configured and every call returns the baseline.
func NewSynthesizer(gen llm.Generator, timeout time.Duration, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{gen: gen, timeout: timeout, logger: logger.Named("research")}
}

// Synthesize never fails: backend problems resolve to Baseline.
func (s *Synthesizer) Synthesize(ctx context.Context, req models.GenerationRequest, referenceText string) (models.ResearchInsights, models.Origin) {
	if s.gen == nil {
		return s.fallback(req, nil)
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	callCtx = llm.WithValidator(callCtx, func(reply string) error {
		_, err := Parse(reply)
		return err
	})
	raw, err := s.gen.Generate(callCtx, BuildPrompt(req, referenceText))
	if err != nil {
		return s.fallback(req, err)
	}

	insights, err := Parse(raw)
	if err != nil {
		return s.fallback(req, err)
	}

	metrics.InsightsGenerated.WithLabelValues(string(models.OriginAI)).Inc()
	return insights, models.OriginAI
}

func (s *Synthesizer) fallback(req models.GenerationRequest, err error) (models.ResearchInsights, models.Origin) {
	if err != nil {
		s.logger.Warn("research insights: falling back to baseline",
			zap.String("product", req.ProductName),
			zap.String("kind", llm.Kind(err)),
			zap.Error(err))
	}
	metrics.InsightsGenerated.WithLabelValues(string(models.OriginFallback)).Inc()
	return Baseline(req.Niche), models.OriginFallback
}

// Baseline is the deterministic insights record used without a backend.
func Baseline(niche string) models.ResearchInsights {
	return models.ResearchInsights{
		Trends:         []string{"User engagement", "Visual storytelling", "Authentic content"},
		TargetAudience: fmt.Sprintf("%s enthusiasts and professionals", niche),
		PainPoints:     []string{"Time management", "Quality content creation", "ROI tracking"},
		ViralHooks:     []string{"Problem-solution narratives", "Before/after comparisons", "Expert tips"},
		ContentPillars: []string{"Educational", "Inspirational", "Entertaining"},
	}
}

type insightsReply struct {
	Trends         []string `json:"trends"`
	TargetAudience string   `json:"target_audience"`
	PainPoints     []string `json:"pain_points"`
	ViralHooks     []string `json:"viral_hooks"`
	ContentPillars []string `json:"content_pillars"`
}

// Parse decodes a raw backend reply into validated insights.
func Parse(raw string) (models.ResearchInsights, error) {
	var reply insightsReply
	if err := llm.DecodeObject(raw, &reply); err != nil {
		return models.ResearchInsights{}, err
	}
	insights, err := models.NewResearchInsights(reply.Trends, reply.TargetAudience, reply.PainPoints, reply.ViralHooks, reply.ContentPillars)
	if err != nil {
		return models.ResearchInsights{}, fmt.Errorf("%w: %w", llm.ErrMalformedResponse, err)
	}
	return insights, nil
}

// BuildPrompt renders the analysis prompt for req.
func BuildPrompt(req models.GenerationRequest, referenceText string) string {
	var details string
	if ref := truncateRunes(strings.TrimSpace(referenceText), maxReferenceChars); ref != "" {
		details = fmt.Sprintf("Product Details: %s\n", ref)
	}

	return fmt.Sprintf(`Analyze this product for viral marketing potential:

Product: %s
Niche: %s
Landing URL: %s
%s
Provide a JSON response with:
1. trends: Array of 3-5 current trends in this niche
2. target_audience: Description of ideal customer
3. pain_points: Array of 3-5 pain points this product solves
4. viral_hooks: Array of 3-5 proven viral content strategies
5. content_pillars: Array of 3-5 content themes

Format as valid JSON only.`, req.ProductName, req.Niche, req.LandingURL, details)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
