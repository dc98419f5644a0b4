// ABOUTME: Data models for HireOS candidates and the GoHighLevel integration
// ABOUTME: Defines Candidate, RemoteContact, SyncResult, OAuthToken and sync bookkeeping structs
package models

import (
	"time"
)

type Candidate struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Status       string    `json:"status"`
	GHLContactID *string   `json:"ghl_contact_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CandidateRef is the slice of a candidate the sync reads and writes.
type CandidateRef struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	RemoteContactID *string `json:"remote_contact_id,omitempty"`
}

// Linked reports whether the candidate already carries a remote contact ID.
func (c CandidateRef) Linked() bool {
	return c.RemoteContactID != nil && *c.RemoteContactID != ""
}

// Ref projects a candidate down to the fields the sync needs.
func (c *Candidate) Ref() CandidateRef {
	return CandidateRef{ID: c.ID, Name: c.Name, RemoteContactID: c.GHLContactID}
}

// Candidate status constants.
const (
	CandidateStatusNew       = "new"
	CandidateStatusScreening = "screening"
	CandidateStatusInterview = "interview"
	CandidateStatusOffer     = "offer"
	CandidateStatusHired     = "hired"
	CandidateStatusRejected  = "rejected"
	CandidateStatusWithdrawn = "withdrawn"
)

const DefaultCandidateListLimit = 50

type RemoteContact struct {
	ID          string  `json:"id"`
	DisplayName *string `json:"display_name,omitempty"`
	Email       *string `json:"email,omitempty"`
}

// Name returns the display name or "" when the remote record has none.
func (r RemoteContact) Name() string {
	if r.DisplayName == nil {
		return ""
	}
	return *r.DisplayName
}

// Sync detail actions.
const (
	ActionUpdated     = "updated"
	ActionSkipped     = "skipped"
	ActionError       = "error"
	ActionWouldUpdate = "would_update"
)

type SyncDetail struct {
	RemoteID   string `json:"remote_id"`
	RemoteName string `json:"remote_name"`
	LocalID    int64  `json:"local_id"`
	LocalName  string `json:"local_name"`
	Action     string `json:"action"`
	Reason     string `json:"reason,omitempty"`
}

type SyncResult struct {
	RunID       string       `json:"run_id"`
	DryRun      bool         `json:"dry_run"`
	TotalRemote int          `json:"total_remote"`
	TotalLocal  int          `json:"total_local"`
	Matched     int          `json:"matched"`
	Updated     int          `json:"updated"`
	Skipped     int          `json:"skipped"`
	Errors      []string     `json:"errors"`
	Details     []SyncDetail `json:"details"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
}

// UserTypeLocation keys the single OAuth token row.
const UserTypeLocation = "Location"

type OAuthToken struct {
	UserType     string    `json:"user_type"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	LocationID   string    `json:"location_id,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sync status constants.
const (
	SyncStatusIdle    = "idle"
	SyncStatusSyncing = "syncing"
	SyncStatusError   = "error"
)

// Sync service and entity names used in sync_state and sync_log.
const (
	SyncServiceGHL      = "ghl"
	EntityTypeCandidate = "candidate"
)

type SyncState struct {
	Service      string     `json:"service"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
	LastRunID    *string    `json:"last_run_id,omitempty"`
	Status       string     `json:"status"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type SyncLog struct {
	ID            string    `json:"id"`
	SourceService string    `json:"source_service"`
	SourceID      string    `json:"source_id"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	ImportedAt    time.Time `json:"imported_at"`
	Metadata      string    `json:"metadata,omitempty"`
}
