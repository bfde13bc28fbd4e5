// Package sqlite provides a SQLite-backed implementation of the store port.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/tonipetergugic/trackcheck/internal/store"
	"github.com/tonipetergugic/trackcheck/internal/types"
)

// Adapter implements the store port for SQLite.
type Adapter struct {
	db *sql.DB
}

// NewAdapter creates a connection and runs the schema migration.
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}

	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully.
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS queue_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		status TEXT NOT NULL,
		audio_hash TEXT NOT NULL,
		audio_path TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS unlocks (
		queue_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		audio_hash TEXT NOT NULL,
		PRIMARY KEY (queue_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS private_metrics (
		queue_id TEXT PRIMARY KEY,
		true_peak_overs TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS feedback_payloads (
		queue_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		payload_version INTEGER NOT NULL,
		audio_hash TEXT NOT NULL,
		body TEXT NOT NULL,
		PRIMARY KEY (queue_id, user_id)
	);
	`

	_, err := a.db.Exec(schema)

	return err
}

func (a *Adapter) QueueItem(ctx context.Context, queueID string) (*store.QueueItem, error) {
	row := a.db.QueryRowContext(ctx,
		"SELECT id, user_id, status, audio_hash, audio_path FROM queue_items WHERE id = ?", queueID)

	var item store.QueueItem
	if err := row.Scan(&item.ID, &item.UserID, &item.Status, &item.AudioHash, &item.AudioPath); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}

		return nil, fmt.Errorf("failed to load queue item: %w", err)
	}

	return &item, nil
}

func (a *Adapter) PutQueueItem(ctx context.Context, item *store.QueueItem) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO queue_items (id, user_id, status, audio_hash, audio_path)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			status = excluded.status,
			audio_hash = excluded.audio_hash,
			audio_path = excluded.audio_path
	`, item.ID, item.UserID, item.Status, item.AudioHash, item.AudioPath)
	if err != nil {
		return fmt.Errorf("failed to upsert queue item: %w", err)
	}

	return nil
}

func (a *Adapter) Unlock(ctx context.Context, queueID, userID string) (*store.Unlock, error) {
	row := a.db.QueryRowContext(ctx,
		"SELECT queue_id, user_id, audio_hash FROM unlocks WHERE queue_id = ? AND user_id = ?", queueID, userID)

	var unlock store.Unlock
	if err := row.Scan(&unlock.QueueID, &unlock.UserID, &unlock.AudioHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}

		return nil, fmt.Errorf("failed to load unlock: %w", err)
	}

	return &unlock, nil
}

func (a *Adapter) PutUnlock(ctx context.Context, unlock *store.Unlock) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO unlocks (queue_id, user_id, audio_hash)
		VALUES (?, ?, ?)
		ON CONFLICT(queue_id, user_id) DO UPDATE SET audio_hash = excluded.audio_hash
	`, unlock.QueueID, unlock.UserID, unlock.AudioHash)
	if err != nil {
		return fmt.Errorf("failed to upsert unlock: %w", err)
	}

	return nil
}

func (a *Adapter) PrivateMetrics(ctx context.Context, queueID string) (*store.PrivateMetrics, error) {
	row := a.db.QueryRowContext(ctx,
		"SELECT true_peak_overs FROM private_metrics WHERE queue_id = ?", queueID)

	var overs string
	if err := row.Scan(&overs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No metrics row is a normal state, not an error.
			return &store.PrivateMetrics{}, nil
		}

		return nil, fmt.Errorf("failed to load private metrics: %w", err)
	}

	var metrics store.PrivateMetrics
	if err := json.Unmarshal([]byte(overs), &metrics.TruePeakOvers); err != nil {
		return nil, fmt.Errorf("failed to decode true peak overs: %w", err)
	}

	return &metrics, nil
}

func (a *Adapter) PutPrivateMetrics(ctx context.Context, queueID string, metrics *store.PrivateMetrics) error {
	overs := metrics.TruePeakOvers
	if overs == nil {
		overs = []types.Interval{}
	}

	encoded, err := json.Marshal(overs)
	if err != nil {
		return fmt.Errorf("failed to encode true peak overs: %w", err)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO private_metrics (queue_id, true_peak_overs)
		VALUES (?, ?)
		ON CONFLICT(queue_id) DO UPDATE SET true_peak_overs = excluded.true_peak_overs
	`, queueID, string(encoded))
	if err != nil {
		return fmt.Errorf("failed to upsert private metrics: %w", err)
	}

	return nil
}

func (a *Adapter) Payload(ctx context.Context, queueID, userID string) (*types.FeedbackPayload, error) {
	row := a.db.QueryRowContext(ctx,
		"SELECT body FROM feedback_payloads WHERE queue_id = ? AND user_id = ?", queueID, userID)

	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}

		return nil, fmt.Errorf("failed to load payload: %w", err)
	}

	var payload types.FeedbackPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	return &payload, nil
}

// PutPayload upserts the single payload row per (queue_id, user_id). The
// upsert is the only write path, so duplicate concurrent recomputations
// collapse to one row.
func (a *Adapter) PutPayload(ctx context.Context, payload *types.FeedbackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO feedback_payloads (queue_id, user_id, payload_version, audio_hash, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(queue_id, user_id) DO UPDATE SET
			payload_version = excluded.payload_version,
			audio_hash = excluded.audio_hash,
			body = excluded.body
	`, payload.QueueID, payload.UserID, payload.PayloadVersion, payload.AudioHash, string(body))
	if err != nil {
		return fmt.Errorf("failed to upsert payload: %w", err)
	}

	return nil
}
