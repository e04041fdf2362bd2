package campaign

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/events"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/models"
)

const publishTimeout = 5 * time.Second

// Service runs a batch and announces it.
type Service struct {
	orchestrator *Orchestrator
	publisher    events.Publisher
	logger       *zap.Logger
}

func NewService(o *Orchestrator, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orchestrator: o, publisher: publisher, logger: logger.Named("service")}
}

// Generate returns the assembled result. Publish failures are logged and
// never reach the caller.
func (s *Service) Generate(ctx context.Context, req models.GenerationRequest, referenceText string) models.GenerationResult {
	result := s.orchestrator.GenerateBatch(ctx, req, referenceText)

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishBatch(pubCtx, events.NewBatchGenerated(req, result)); err != nil {
		s.logger.Warn("failed to publish batch event",
			zap.String("product_id", result.RequestID),
			zap.Error(err))
	}
	return result
}
