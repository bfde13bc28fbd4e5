package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/tonipetergugic/trackcheck/internal/store"
	"github.com/tonipetergugic/trackcheck/internal/types"
)

func testAdapter(t *testing.T) *Adapter {
	t.Helper()

	adapter, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		_ = adapter.Close()
	})

	return adapter
}

func TestQueueItemRoundTrip(t *testing.T) {
	adapter := testAdapter(t)
	ctx := context.Background()

	item := &store.QueueItem{
		ID: "q1", UserID: "u1", Status: store.StatusPending,
		AudioHash: "aaa", AudioPath: "/tmp/q1.wav",
	}

	if err := adapter.PutQueueItem(ctx, item); err != nil {
		t.Fatal(err)
	}

	got, err := adapter.QueueItem(ctx, "q1")
	if err != nil {
		t.Fatal(err)
	}

	if *got != *item {
		t.Fatalf("got %+v, want %+v", got, item)
	}

	// Upsert replaces in place.
	item.Status = store.StatusApproved
	item.AudioHash = "bbb"

	if err := adapter.PutQueueItem(ctx, item); err != nil {
		t.Fatal(err)
	}

	got, err = adapter.QueueItem(ctx, "q1")
	if err != nil {
		t.Fatal(err)
	}

	if got.Status != store.StatusApproved || got.AudioHash != "bbb" {
		t.Fatalf("upsert did not replace: %+v", got)
	}
}

func TestQueueItemNotFound(t *testing.T) {
	adapter := testAdapter(t)

	_, err := adapter.QueueItem(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUnlockRoundTrip(t *testing.T) {
	adapter := testAdapter(t)
	ctx := context.Background()

	if _, err := adapter.Unlock(ctx, "q1", "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	unlock := &store.Unlock{QueueID: "q1", UserID: "u1", AudioHash: "aaa"}
	if err := adapter.PutUnlock(ctx, unlock); err != nil {
		t.Fatal(err)
	}

	got, err := adapter.Unlock(ctx, "q1", "u1")
	if err != nil {
		t.Fatal(err)
	}

	if *got != *unlock {
		t.Fatalf("got %+v, want %+v", got, unlock)
	}

	// Re-granting after a new upload repins the hash.
	unlock.AudioHash = "bbb"
	if err := adapter.PutUnlock(ctx, unlock); err != nil {
		t.Fatal(err)
	}

	got, err = adapter.Unlock(ctx, "q1", "u1")
	if err != nil {
		t.Fatal(err)
	}

	if got.AudioHash != "bbb" {
		t.Fatalf("upsert did not repin: %+v", got)
	}
}

func TestPrivateMetrics(t *testing.T) {
	adapter := testAdapter(t)
	ctx := context.Background()

	// Missing row reads as empty metrics, not an error.
	got, err := adapter.PrivateMetrics(ctx, "q1")
	if err != nil {
		t.Fatal(err)
	}

	if len(got.TruePeakOvers) != 0 {
		t.Fatalf("expected empty metrics, got %+v", got)
	}

	metrics := &store.PrivateMetrics{
		TruePeakOvers: []types.Interval{{Start: 12.5, End: 12.8}, {Start: 40, End: 40.1}},
	}

	if err := adapter.PutPrivateMetrics(ctx, "q1", metrics); err != nil {
		t.Fatal(err)
	}

	got, err = adapter.PrivateMetrics(ctx, "q1")
	if err != nil {
		t.Fatal(err)
	}

	if len(got.TruePeakOvers) != 2 || got.TruePeakOvers[0] != metrics.TruePeakOvers[0] {
		t.Fatalf("got %+v, want %+v", got, metrics)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	adapter := testAdapter(t)
	ctx := context.Background()

	if _, err := adapter.Payload(ctx, "q1", "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	lufs := -9.5
	payload := &types.FeedbackPayload{
		PayloadVersion: types.PayloadVersion,
		QueueID:        "q1",
		UserID:         "u1",
		AudioHash:      "aaa",
		Metrics:        types.PayloadMetrics{LufsI: &lufs, DurationSec: 180},
		Events: types.PayloadEvents{
			TruePeakOvers:     []types.Interval{{Start: 3, End: 3.2}},
			TruePeakOverCount: 1,
		},
		Recommendations: []string{"one", "two"},
	}

	if err := adapter.PutPayload(ctx, payload); err != nil {
		t.Fatal(err)
	}

	got, err := adapter.Payload(ctx, "q1", "u1")
	if err != nil {
		t.Fatal(err)
	}

	if got.PayloadVersion != payload.PayloadVersion || got.AudioHash != "aaa" {
		t.Fatalf("identity fields wrong: %+v", got)
	}

	if got.Metrics.LufsI == nil || *got.Metrics.LufsI != lufs {
		t.Fatalf("metrics wrong: %+v", got.Metrics)
	}

	if got.CodecSimulation != nil {
		t.Fatalf("absent simulation must decode as nil, got %+v", got.CodecSimulation)
	}

	if got.Events.TruePeakOverCount != 1 || len(got.Recommendations) != 2 {
		t.Fatalf("payload body wrong: %+v", got)
	}
}

func TestPutPayloadUpsertConverges(t *testing.T) {
	adapter := testAdapter(t)
	ctx := context.Background()

	first := &types.FeedbackPayload{
		PayloadVersion: 1, QueueID: "q1", UserID: "u1", AudioHash: "aaa",
	}
	second := &types.FeedbackPayload{
		PayloadVersion: types.PayloadVersion, QueueID: "q1", UserID: "u1", AudioHash: "bbb",
	}

	if err := adapter.PutPayload(ctx, first); err != nil {
		t.Fatal(err)
	}

	if err := adapter.PutPayload(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := adapter.Payload(ctx, "q1", "u1")
	if err != nil {
		t.Fatal(err)
	}

	if got.PayloadVersion != types.PayloadVersion || got.AudioHash != "bbb" {
		t.Fatalf("second write should win: %+v", got)
	}
}
