package campaign

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/metrics"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/models"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/platform"
)

// DefaultConcurrency bounds in-flight asset calls when none is configured.
const DefaultConcurrency = 4

// InsightSource derives the shared research record for a request.
type InsightSource interface {
	Synthesize(ctx context.Context, req models.GenerationRequest, referenceText string) (models.ResearchInsights, models.Origin)
}

// AssetSource produces one asset for a (platform, variant) pair.
type AssetSource interface {
	Synthesize(ctx context.Context, p platform.Platform, variant int, req models.GenerationRequest, insights models.ResearchInsights) models.PlatformAsset
}

// Orchestrator drives one generation batch end to end.
type Orchestrator struct {
	insights    InsightSource
	assets      AssetSource
	assembler   *Assembler
	concurrency int
	logger      *zap.Logger
	newID       func() string
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency sets how many asset calls may run at once. 1 is sequential.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithIDGenerator replaces the UUID source, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) { o.newID = fn }
}

// WithLogger sets the orchestrator logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func NewOrchestrator(insights InsightSource, assets AssetSource, assembler *Assembler, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		insights:    insights,
		assets:      assets,
		assembler:   assembler,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
		newID:       func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.assembler == nil {
		o.assembler = NewAssembler("")
	}
	o.logger = o.logger.Named("campaign")
	return o
}

// GenerateBatch computes insights once, then one asset per platform and
// variant. Assets come back platform-major, variant-minor regardless of the
// order in which the calls complete.
func (o *Orchestrator) GenerateBatch(ctx context.Context, req models.GenerationRequest, referenceText string) models.GenerationResult {
	start := time.Now()
	requestID, sessionID := o.newID(), o.newID()

	insights, insightsOrigin := o.insights.Synthesize(ctx, req, referenceText)

	platforms := platform.All()
	variants := req.VariantsPerPlatform
	if variants < 1 {
		variants = models.DefaultVariantsPerPlatform
	}
	out := make([]models.PlatformAsset, len(platforms)*variants)

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for pi, p := range platforms {
		for v := 1; v <= variants; v++ {
			idx := pi*variants + (v - 1)
			g.Go(func() error {
				out[idx] = o.assets.Synthesize(ctx, p, v, req, insights)
				return nil
			})
		}
	}
	_ = g.Wait()

	result := o.assembler.Assemble(Batch{
		RequestID:           requestID,
		SessionID:           sessionID,
		Insights:            insights,
		InsightsOrigin:      insightsOrigin,
		Assets:              out,
		HumanReviewRequired: req.HumanReviewRequired,
	})

	elapsed := time.Since(start)
	metrics.BatchesGenerated.WithLabelValues(string(result.Status)).Inc()
	metrics.BatchDuration.Observe(elapsed.Seconds())

	o.logger.Info("batch generated",
		zap.String("product_id", result.RequestID),
		zap.String("product", req.ProductName),
		zap.Int("assets", len(result.Assets)),
		zap.Int("fallback_assets", result.FallbackAssets()),
		zap.String("insights_origin", string(result.InsightsOrigin)),
		zap.Duration("elapsed", elapsed))

	return result
}
