package trackcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tonipetergugic/trackcheck/internal/store"
	"github.com/tonipetergugic/trackcheck/internal/types"
)

// State is the outcome of a payload request.
type State string

const (
	// StateLocked: no valid unlock for the queue item's current audio.
	StateLocked State = "locked"

	// StateUnlockedPending: unlocked, but the review has not reached a
	// terminal decision; no payload is computed yet.
	StateUnlockedPending State = "unlocked_pending"

	// StateReady: a fresh payload is available.
	StateReady State = "ready"
)

// ExtractFunc produces the track features for a source file. The extractor
// is an external collaborator, assumed deterministic.
type ExtractFunc func(ctx context.Context, audioPath string) (*types.TrackFeatures, error)

// SimulateFunc runs the codec round trips. Best-effort: an error means the
// simulation is unavailable, not that the payload fails.
type SimulateFunc func(ctx context.Context, audioPath string) (*types.CodecSimulation, error)

// Orchestrator owns the payload rows: it decides on every read whether the
// cached payload is still valid and recomputes in place when it is not.
type Orchestrator struct {
	store    store.Store
	extract  ExtractFunc
	simulate SimulateFunc
	opts     Options
}

// NewOrchestrator wires the orchestrator against its collaborators.
// simulate may be nil when no codec simulation is available in the
// deployment.
func NewOrchestrator(st store.Store, extract ExtractFunc, simulate SimulateFunc, opts Options) *Orchestrator {
	return &Orchestrator{
		store:    st,
		extract:  extract,
		simulate: simulate,
		opts:     opts,
	}
}

// GetOrRefreshPayload implements the per-key state machine. Recomputation
// is a pure function of the current features, so concurrent staleness
// detections converge on identical rows; the storage upsert is the only
// synchronization needed.
func (o *Orchestrator) GetOrRefreshPayload(
	ctx context.Context,
	queueID, userID string,
) (State, *types.FeedbackPayload, error) {
	item, err := o.store.QueueItem(ctx, queueID)
	if err != nil {
		return StateLocked, nil, fmt.Errorf("queue item %s: %w", queueID, err)
	}

	unlock, err := o.store.Unlock(ctx, queueID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return StateLocked, nil, nil
		}

		return StateLocked, nil, fmt.Errorf("unlock %s/%s: %w", queueID, userID, err)
	}

	if unlock.AudioHash != item.AudioHash {
		slog.Debug("orchestrator", "queue", queueID, "stage", "unlock hash mismatch")

		return StateLocked, nil, nil
	}

	if !item.Status.Terminal() {
		return StateUnlockedPending, nil, nil
	}

	metrics, err := o.store.PrivateMetrics(ctx, queueID)
	if err != nil {
		return StateUnlockedPending, nil, fmt.Errorf("private metrics %s: %w", queueID, err)
	}

	payload, err := o.store.Payload(ctx, queueID, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return StateUnlockedPending, nil, fmt.Errorf("payload %s/%s: %w", queueID, userID, err)
	}

	if !stale(payload, item, metrics) {
		return StateReady, payload, nil
	}

	slog.Debug("orchestrator", "queue", queueID, "stage", "recompute", "reason", staleReason(payload, item, metrics))

	fresh, err := o.recompute(ctx, item, userID, metrics)
	if err != nil {
		return StateUnlockedPending, nil, err
	}

	return StateReady, fresh, nil
}

// stale applies the validity invariant: hash pinned, version current, and
// no upstream over events unknown to the cached row.
func stale(payload *types.FeedbackPayload, item *store.QueueItem, metrics *store.PrivateMetrics) bool {
	if payload == nil {
		return true
	}

	if payload.AudioHash != item.AudioHash {
		return true
	}

	if payload.PayloadVersion < types.PayloadVersion {
		return true
	}

	if len(metrics.TruePeakOvers) > 0 && payload.Events.TruePeakOverCount == 0 {
		return true
	}

	return false
}

func staleReason(payload *types.FeedbackPayload, item *store.QueueItem, metrics *store.PrivateMetrics) string {
	switch {
	case payload == nil:
		return "missing"
	case payload.AudioHash != item.AudioHash:
		return "audio hash changed"
	case payload.PayloadVersion < types.PayloadVersion:
		return "payload version outdated"
	case len(metrics.TruePeakOvers) > 0 && payload.Events.TruePeakOverCount == 0:
		return "new true peak overs"
	default:
		return "fresh"
	}
}

func (o *Orchestrator) recompute(
	ctx context.Context,
	item *store.QueueItem,
	userID string,
	metrics *store.PrivateMetrics,
) (*types.FeedbackPayload, error) {
	features, err := o.extract(ctx, item.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", item.ID, err)
	}

	if features.AudioHash == "" {
		features.AudioHash = item.AudioHash
	}

	result := Analyze(features, metrics.TruePeakOvers, o.opts)

	var sim *types.CodecSimulation

	if o.simulate != nil && item.AudioPath != "" {
		sim, err = o.simulate(ctx, item.AudioPath)
		if err != nil {
			// Best-effort: the payload ships without a codec simulation.
			slog.Debug("orchestrator", "queue", item.ID, "stage", "codec simulation unavailable", "error", err)

			sim = nil
		}
	}

	payload := BuildPayload(item.ID, userID, features, result, sim)

	if err := o.store.PutPayload(ctx, payload); err != nil {
		return nil, fmt.Errorf("persist payload %s/%s: %w", item.ID, userID, err)
	}

	return payload, nil
}
