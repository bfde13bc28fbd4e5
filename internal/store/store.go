// Package store defines the persistence ports the payload orchestrator
// depends on. Implementations live in subpackages.
package store

import (
	"context"
	"errors"

	"github.com/tonipetergugic/trackcheck/internal/types"
)

// ErrNotFound is returned when a keyed lookup matches nothing.
var ErrNotFound = errors.New("not found")

// ReviewStatus is the queue item's review lifecycle state.
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
)

// Terminal reports whether the review reached a final decision. Payloads
// are only computed for terminal items.
func (s ReviewStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// QueueItem is the review-queue row for one uploaded track.
type QueueItem struct {
	ID        string
	UserID    string
	Status    ReviewStatus
	AudioHash string

	// AudioPath locates the source file for the codec round trip. Empty
	// when the file is not locally available.
	AudioPath string
}

// Unlock is an entitlement row pinning feedback access to one exact audio
// file.
type Unlock struct {
	QueueID   string
	UserID    string
	AudioHash string
}

// PrivateMetrics carries upstream measurement events not exposed to the
// artist directly.
type PrivateMetrics struct {
	TruePeakOvers []types.Interval
}

// Store is the orchestrator's view of persistence.
type Store interface {
	QueueItem(ctx context.Context, queueID string) (*QueueItem, error)
	Unlock(ctx context.Context, queueID, userID string) (*Unlock, error)
	PrivateMetrics(ctx context.Context, queueID string) (*PrivateMetrics, error)

	Payload(ctx context.Context, queueID, userID string) (*types.FeedbackPayload, error)

	// PutPayload upserts the single payload row for (queueID, userID).
	// It must be atomic per key so concurrent recomputations converge.
	PutPayload(ctx context.Context, payload *types.FeedbackPayload) error
}
