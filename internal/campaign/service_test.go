package campaign

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/events"
)

type recordingPublisher struct {
	events []events.BatchGenerated
	err    error
}

func (r *recordingPublisher) PublishBatch(_ context.Context, e events.BatchGenerated) error {
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingPublisher) Close() {}

func TestServicePublishesSummary(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewService(offlineOrchestrator(t), pub, zaptest.NewLogger(t))

	result := svc.Generate(context.Background(), focusFlow, "")

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	e := pub.events[0]
	if e.ProductID != result.RequestID || e.AssetCount != 5 || e.FallbackAssets != 5 || e.ProductName != "FocusFlow" {
		t.Errorf("unexpected event %+v", e)
	}
}

func TestServiceIgnoresPublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("nats: connection closed")}
	svc := NewService(offlineOrchestrator(t), pub, zaptest.NewLogger(t))

	if result := svc.Generate(context.Background(), focusFlow, ""); len(result.Assets) != 5 {
		t.Fatalf("got %d assets", len(result.Assets))
	}
}
