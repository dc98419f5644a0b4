// ABOUTME: Candidate database operations
// ABOUTME: Handles candidate CRUD, sync reference loading, and conditional GHL contact linking
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/hireos/models"
)

var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrInvalidCandidate  = errors.New("invalid candidate")
	ErrAlreadyLinked     = errors.New("candidate already linked to a GHL contact")
)

// CandidateRepository provides access to the candidates table.
type CandidateRepository struct {
	db *sql.DB
}

// NewCandidateRepository creates a new candidate repository.
func NewCandidateRepository(db *sql.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// Create inserts a candidate and fills in its ID and timestamps.
func (r *CandidateRepository) Create(ctx context.Context, c *models.Candidate) error {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return ErrInvalidCandidate
	}
	if c.Status == "" {
		c.Status = models.CandidateStatusNew
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO candidates (name, email, phone, status, ghl_contact_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.Name, c.Email, c.Phone, c.Status, c.GHLContactID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read candidate id: %w", err)
	}
	c.ID = id

	return nil
}

// Get loads a single candidate.
func (r *CandidateRepository) Get(ctx context.Context, id int64) (*models.Candidate, error) {
	c := &models.Candidate{}
	var email, phone, ghlID sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, status, ghl_contact_id, created_at, updated_at
		FROM candidates WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &email, &phone, &c.Status, &ghlID, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCandidateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	c.Email = email.String
	c.Phone = phone.String
	if ghlID.Valid {
		c.GHLContactID = &ghlID.String
	}

	return c, nil
}

// Find searches candidates by name or email. An empty query lists everything.
func (r *CandidateRepository) Find(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	if limit <= 0 {
		limit = models.DefaultCandidateListLimit
	}

	var rows *sql.Rows
	var err error

	if query != "" {
		searchPattern := "%" + strings.ToLower(query) + "%"
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, name, email, phone, status, ghl_contact_id, created_at, updated_at
			FROM candidates
			WHERE LOWER(name) LIKE ? OR LOWER(email) LIKE ?
			ORDER BY id
			LIMIT ?
		`, searchPattern, searchPattern, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, name, email, phone, status, ghl_contact_id, created_at, updated_at
			FROM candidates
			ORDER BY id
			LIMIT ?
		`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []models.Candidate
	for rows.Next() {
		var c models.Candidate
		var email, phone, ghlID sql.NullString

		if err := rows.Scan(&c.ID, &c.Name, &email, &phone, &c.Status, &ghlID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}

		c.Email = email.String
		c.Phone = phone.String
		if ghlID.Valid {
			id := ghlID.String
			c.GHLContactID = &id
		}

		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}

	return candidates, nil
}

// ListCandidateRefs loads every candidate, unfiltered, in ID order.
func (r *CandidateRepository) ListCandidateRefs(ctx context.Context) ([]models.CandidateRef, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, ghl_contact_id FROM candidates ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var refs []models.CandidateRef
	for rows.Next() {
		var ref models.CandidateRef
		var ghlID sql.NullString

		if err := rows.Scan(&ref.ID, &ref.Name, &ghlID); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		if ghlID.Valid && ghlID.String != "" {
			id := ghlID.String
			ref.RemoteContactID = &id
		}

		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}

	return refs, nil
}

// LinkRemoteContact sets ghl_contact_id on a candidate that has none and records
// the link in sync_log. An existing link is never overwritten; ErrAlreadyLinked is
// returned instead.
func (r *CandidateRepository) LinkRemoteContact(ctx context.Context, candidateID int64, remoteID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE candidates
		SET ghl_contact_id = ?, updated_at = ?
		WHERE id = ? AND (ghl_contact_id IS NULL OR ghl_contact_id = '')
	`, remoteID, time.Now().UTC(), candidateID)
	if err != nil {
		return fmt.Errorf("failed to link candidate %d: %w", candidateID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to link candidate %d: %w", candidateID, err)
	}
	if affected == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM candidates WHERE id = ?`, candidateID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check candidate %d: %w", candidateID, err)
		}
		if exists == 0 {
			return ErrCandidateNotFound
		}
		return ErrAlreadyLinked
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO sync_log (id, source_service, source_id, entity_type, entity_id)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.New().String(), models.SyncServiceGHL, remoteID, models.EntityTypeCandidate, strconv.FormatInt(candidateID, 10))
	if err != nil {
		return fmt.Errorf("failed to log link for candidate %d: %w", candidateID, err)
	}

	return tx.Commit()
}
