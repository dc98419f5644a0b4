// ABOUTME: Diagnostic comparison of GHL contact names against candidate names
// ABOUTME: Reports exact matches, near misses, and unmatched records on both sides
package ghl

import (
	"strings"

	"github.com/harperreed/hireos/models"
)

// minPartialTokenLen is the length a token must exceed to count toward a partial match.
const minPartialTokenLen = 2

type NamePair struct {
	RemoteID   string `json:"remote_id"`
	RemoteName string `json:"remote_name"`
	LocalID    int64  `json:"local_id"`
	LocalName  string `json:"local_name"`
}

type NameAnalysis struct {
	Exact           []NamePair             `json:"exact"`
	Partial         []NamePair             `json:"partial"`
	UnmatchedRemote []models.RemoteContact `json:"unmatched_remote"`
	UnmatchedLocal  []models.CandidateRef  `json:"unmatched_local"`
}

// AnalyzeNames compares every remote contact with every candidate. Exact pairs
// use the same key as the sync; partial pairs share a name token and never
// change data.
func AnalyzeNames(remote []models.RemoteContact, local []models.CandidateRef) *NameAnalysis {
	analysis := &NameAnalysis{}

	localKeys := make([]string, len(local))
	localMatched := make([]bool, len(local))
	for i, c := range local {
		localKeys[i] = NormalizeName(c.Name)
	}

	for _, rc := range remote {
		name := rc.Name()
		key := NormalizeNamePtr(rc.DisplayName)
		exact := false

		for i, c := range local {
			pair := NamePair{RemoteID: rc.ID, RemoteName: name, LocalID: c.ID, LocalName: c.Name}

			if key != "" && key == localKeys[i] {
				analysis.Exact = append(analysis.Exact, pair)
				localMatched[i] = true
				exact = true
				continue
			}
			if tokensOverlap(key, localKeys[i]) {
				analysis.Partial = append(analysis.Partial, pair)
			}
		}

		if !exact {
			analysis.UnmatchedRemote = append(analysis.UnmatchedRemote, rc)
		}
	}

	for i, c := range local {
		if !localMatched[i] {
			analysis.UnmatchedLocal = append(analysis.UnmatchedLocal, c)
		}
	}

	return analysis
}

// tokensOverlap reports whether any token of a is a substring of a token of b
// or the reverse, ignoring tokens of two characters or fewer.
func tokensOverlap(a, b string) bool {
	for _, ta := range strings.Fields(strings.ToLower(a)) {
		if len(ta) <= minPartialTokenLen {
			continue
		}
		for _, tb := range strings.Fields(strings.ToLower(b)) {
			if len(tb) <= minPartialTokenLen {
				continue
			}
			if strings.Contains(ta, tb) || strings.Contains(tb, ta) {
				return true
			}
		}
	}
	return false
}
