// ABOUTME: Exact name matching between GHL contacts and local candidates
// ABOUTME: Resolves each remote contact to the first candidate with the same normalized name
package ghl

import (
	"github.com/harperreed/hireos/models"
)

type NameMatcher struct {
	candidates []models.CandidateRef
	byName     map[string]int
	linked     map[int64]string
}

// NewNameMatcher creates a matcher from the local candidate list. When several
// candidates share a normalized name, the earliest one in the list wins.
func NewNameMatcher(candidates []models.CandidateRef) *NameMatcher {
	m := &NameMatcher{
		candidates: make([]models.CandidateRef, len(candidates)),
		byName:     make(map[string]int, len(candidates)),
		linked:     make(map[int64]string),
	}
	copy(m.candidates, candidates)

	for i := range m.candidates {
		key := NormalizeName(m.candidates[i].Name)
		if key == "" {
			continue
		}
		if _, seen := m.byName[key]; !seen {
			m.byName[key] = i
		}
	}

	return m
}

// FindMatch returns the candidate whose normalized name equals the normalized
// remote display name.
func (m *NameMatcher) FindMatch(displayName string) (models.CandidateRef, bool) {
	key := NormalizeName(displayName)
	if key == "" {
		return models.CandidateRef{}, false
	}

	i, found := m.byName[key]
	if !found {
		return models.CandidateRef{}, false
	}
	return m.candidates[i], true
}

// Link records that candidateID now carries remoteID so later lookups in the
// same run see it as linked.
func (m *NameMatcher) Link(candidateID int64, remoteID string) {
	for i := range m.candidates {
		if m.candidates[i].ID == candidateID {
			id := remoteID
			m.candidates[i].RemoteContactID = &id
			m.linked[candidateID] = remoteID
			return
		}
	}
}

// LinkedThisRun reports the remote ID linked to candidateID by this matcher, if any.
func (m *NameMatcher) LinkedThisRun(candidateID int64) (string, bool) {
	id, ok := m.linked[candidateID]
	return id, ok
}

// Match computes the remote ID to candidate ID mapping for a contact set
// without regard to existing links.
func Match(remote []models.RemoteContact, local []models.CandidateRef) map[string]int64 {
	m := NewNameMatcher(local)
	out := make(map[string]int64)

	for _, rc := range remote {
		if ref, ok := m.FindMatch(rc.Name()); ok {
			out[rc.ID] = ref.ID
		}
	}

	return out
}
