package campaign

import (
	"fmt"
	"strings"
	"time"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/models"
)

// DefaultBucketURL is the placeholder storage root reported to callers.
const DefaultBucketURL = "https://example-bucket.s3.amazonaws.com"

// Batch is the orchestrator output before response metadata is attached.
type Batch struct {
	RequestID           string
	SessionID           string
	Insights            models.ResearchInsights
	InsightsOrigin      models.Origin
	Assets              []models.PlatformAsset
	HumanReviewRequired bool
}

// Assembler attaches timestamps and storage locations to a batch. Nothing is
// written to the bucket; the URLs only say where a caller could persist it.
type Assembler struct {
	bucketURL string
	now       func() time.Time
}

func NewAssembler(bucketURL string) *Assembler {
	bucketURL = strings.TrimRight(strings.TrimSpace(bucketURL), "/")
	if bucketURL == "" {
		bucketURL = DefaultBucketURL
	}
	return &Assembler{bucketURL: bucketURL, now: time.Now}
}

// WithClock returns a copy of a that reads time from now.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	c := *a
	c.now = now
	return &c
}

// Assemble always reports success: per-asset failures are already resolved by
// templates and surface through each asset's origin instead.
func (a *Assembler) Assemble(b Batch) models.GenerationResult {
	return models.GenerationResult{
		RequestID:           b.RequestID,
		SessionID:           b.SessionID,
		Status:              models.StatusSuccess,
		Insights:            b.Insights,
		InsightsOrigin:      b.InsightsOrigin,
		Assets:              b.Assets,
		MasterAssetsURL:     a.storageURL(b.RequestID, "master_assets.json"),
		ResearchInsightsURL: a.storageURL(b.RequestID, "research_insights.json"),
		GeneratedAt:         a.now().UTC(),
		HumanReviewRequired: b.HumanReviewRequired,
	}
}

func (a *Assembler) storageURL(id, name string) string {
	return fmt.Sprintf("%s/%s/%s", a.bucketURL, id, name)
}
