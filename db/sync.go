// ABOUTME: Database operations for sync_state and sync_log tables
// ABOUTME: Manages sync run status and link tracking for the GHL integration
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/hireos/models"
)

// GetSyncState retrieves the sync state for a service.
func GetSyncState(db *sql.DB, service string) (*models.SyncState, error) {
	var state models.SyncState
	var lastSyncTime sql.NullTime
	var lastRunID sql.NullString
	var errorMessage sql.NullString

	err := db.QueryRow(`
		SELECT service, last_sync_time, last_run_id, status, error_message, created_at, updated_at
		FROM sync_state
		WHERE service = ?
	`, service).Scan(
		&state.Service,
		&lastSyncTime,
		&lastRunID,
		&state.Status,
		&errorMessage,
		&state.CreatedAt,
		&state.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	if lastSyncTime.Valid {
		state.LastSyncTime = &lastSyncTime.Time
	}
	if lastRunID.Valid {
		state.LastRunID = &lastRunID.String
	}
	if errorMessage.Valid {
		state.ErrorMessage = &errorMessage.String
	}

	return &state, nil
}

// UpdateSyncStatus updates the sync status for a service.
func UpdateSyncStatus(db *sql.DB, service, status string, errorMsg *string) error {
	var errorMsgVal sql.NullString
	if errorMsg != nil {
		errorMsgVal = sql.NullString{String: *errorMsg, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO sync_state (service, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			status = excluded.status,
			error_message = excluded.error_message,
			updated_at = CURRENT_TIMESTAMP
	`, service, status, errorMsgVal)

	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}

	return nil
}

// CompleteSync records a finished run and resets the status to idle.
func CompleteSync(db *sql.DB, service, runID string) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (service, last_sync_time, last_run_id, status, created_at, updated_at)
		VALUES (?, CURRENT_TIMESTAMP, ?, 'idle', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			last_sync_time = CURRENT_TIMESTAMP,
			last_run_id = excluded.last_run_id,
			status = 'idle',
			error_message = NULL,
			updated_at = CURRENT_TIMESTAMP
	`, service, runID)

	if err != nil {
		return fmt.Errorf("failed to complete sync: %w", err)
	}

	return nil
}

// ListSyncLog returns the most recent sync_log rows for a service.
func ListSyncLog(db *sql.DB, sourceService string, limit int) ([]models.SyncLog, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(`
		SELECT id, source_service, source_id, entity_type, entity_id, imported_at, metadata
		FROM sync_log
		WHERE source_service = ?
		ORDER BY imported_at DESC
		LIMIT ?
	`, sourceService, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.SyncLog
	for rows.Next() {
		var e models.SyncLog
		var metadata sql.NullString

		if err := rows.Scan(&e.ID, &e.SourceService, &e.SourceID, &e.EntityType, &e.EntityID, &e.ImportedAt, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		e.Metadata = metadata.String

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync log: %w", err)
	}

	return entries, nil
}

// SyncStateRecorder tracks the lifecycle of sync runs for one service.
type SyncStateRecorder struct {
	db      *sql.DB
	service string
}

// NewSyncStateRecorder creates a recorder for the given service.
func NewSyncStateRecorder(db *sql.DB, service string) *SyncStateRecorder {
	return &SyncStateRecorder{db: db, service: service}
}

// RunStarted marks the service as syncing.
func (r *SyncStateRecorder) RunStarted(_ context.Context, _ string) error {
	return UpdateSyncStatus(r.db, r.service, models.SyncStatusSyncing, nil)
}

// RunFinished marks the service idle, or errored when runErr is non-nil.
func (r *SyncStateRecorder) RunFinished(_ context.Context, runID string, runErr error) error {
	if runErr != nil {
		msg := runErr.Error()
		return UpdateSyncStatus(r.db, r.service, models.SyncStatusError, &msg)
	}
	return CompleteSync(r.db, r.service, runID)
}

// LastRun returns the current sync state, or nil before the first run.
func (r *SyncStateRecorder) LastRun() (*models.SyncState, error) {
	return GetSyncState(r.db, r.service)
}

// staleAfter reports whether a syncing state has been stuck longer than d.
func staleAfter(state *models.SyncState, d time.Duration) bool {
	return state != nil && state.Status == models.SyncStatusSyncing && time.Since(state.UpdatedAt) > d
}

// IsSyncStuck reports whether the service has been "syncing" for longer than d,
// which happens when a process dies mid-run.
func (r *SyncStateRecorder) IsSyncStuck(d time.Duration) (bool, error) {
	state, err := r.LastRun()
	if err != nil {
		return false, err
	}
	return staleAfter(state, d), nil
}
