package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/metrics"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/models"
)

// DefaultSubject is where batch summaries go when none is configured.
const DefaultSubject = "marketing.assets.generated"

// BatchGenerated summarises one assembled result.
type BatchGenerated struct {
	ProductID           string        `json:"product_id"`
	UserID              string        `json:"user_id"`
	ProductName         string        `json:"product_name"`
	Niche               string        `json:"niche"`
	Status              models.Status `json:"status"`
	InsightsOrigin      models.Origin `json:"insights_origin"`
	AssetCount          int           `json:"asset_count"`
	FallbackAssets      int           `json:"fallback_assets"`
	HumanReviewRequired bool          `json:"human_review_required"`
	GeneratedAt         time.Time     `json:"generated_at"`
}

// NewBatchGenerated builds the summary event for result.
func NewBatchGenerated(req models.GenerationRequest, result models.GenerationResult) BatchGenerated {
	return BatchGenerated{
		ProductID:           result.RequestID,
		UserID:              result.SessionID,
		ProductName:         req.ProductName,
		Niche:               req.Niche,
		Status:              result.Status,
		InsightsOrigin:      result.InsightsOrigin,
		AssetCount:          len(result.Assets),
		FallbackAssets:      result.FallbackAssets(),
		HumanReviewRequired: result.HumanReviewRequired,
		GeneratedAt:         result.GeneratedAt,
	}
}

// Publisher announces generated batches.
type Publisher interface {
	PublishBatch(ctx context.Context, event BatchGenerated) error
	Close()
}

// NATSPublisher publishes batch summaries to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

// NewNATSPublisher connects to url. The connection reconnects on its own
// after the first successful dial.
func NewNATSPublisher(url, subject string, logger *zap.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("events")

	nc, err := nats.Connect(url,
		nats.Name("marketing-asset-agent"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{conn: nc, subject: subject, logger: logger}, nil
}

func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

func (p *NATSPublisher) PublishBatch(ctx context.Context, event BatchGenerated) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal batch event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		metrics.EventsPublished.WithLabelValues(p.subject, "error").Inc()
		return fmt.Errorf("failed to publish to NATS: %w", err)
	}
	metrics.EventsPublished.WithLabelValues(p.subject, "success").Inc()

	p.logger.Debug("published batch event",
		zap.String("subject", p.subject),
		zap.String("product_id", event.ProductID))
	return nil
}

// Noop drops every event. Used when NATS is not configured.
type Noop struct{}

func (Noop) PublishBatch(context.Context, BatchGenerated) error { return nil }
func (Noop) Close()                                             {}
