// Package cleanup implements pruning of the local session history.
package cleanup

import (
	"fmt"
	"time"

	"github.com/reposcribe/reposcribe-cli/internal/session"
)

// History is the session history being pruned. *session.Store satisfies it.
type History interface {
	ListSessions(limit int) ([]session.Record, error)
	DeleteSession(id string) error
}

// PruneByAge removes sessions last updated more than maxAgeDays ago, except
// keepID (the current session), which is never removed. If dryRun is true,
// nothing is deleted; the function only returns the IDs that would be
// removed.
func PruneByAge(h History, maxAgeDays int, keepID string, dryRun bool) ([]string, error) {
	return PruneByAgeAt(h, maxAgeDays, keepID, dryRun, time.Now())
}

// PruneByAgeAt is PruneByAge with an explicit clock.
func PruneByAgeAt(h History, maxAgeDays int, keepID string, dryRun bool, now time.Time) ([]string, error) {
	records, err := h.ListSessions(0)
	if err != nil {
		return nil, fmt.Errorf("reading session history: %w", err)
	}

	cutoff := now.AddDate(0, 0, -maxAgeDays)
	var victims []string
	for _, r := range records {
		if r.ID != keepID && r.UpdatedAt.Before(cutoff) {
			victims = append(victims, r.ID)
		}
	}
	return remove(h, victims, dryRun)
}

// PruneKeepRecent removes all sessions except the keep most recently
// updated ones and keepID. If dryRun is true, nothing is deleted. Returns
// the removed IDs.
func PruneKeepRecent(h History, keep int, keepID string, dryRun bool) ([]string, error) {
	records, err := h.ListSessions(0)
	if err != nil {
		return nil, fmt.Errorf("reading session history: %w", err)
	}

	// ListSessions is newest first.
	if len(records) <= keep {
		return nil, nil
	}
	var victims []string
	for _, r := range records[keep:] {
		if r.ID != keepID {
			victims = append(victims, r.ID)
		}
	}
	return remove(h, victims, dryRun)
}

func remove(h History, ids []string, dryRun bool) ([]string, error) {
	var pruned []string
	for _, id := range ids {
		if !dryRun {
			if err := h.DeleteSession(id); err != nil {
				return pruned, fmt.Errorf("removing session %s: %w", id, err)
			}
		}
		pruned = append(pruned, id)
	}
	return pruned, nil
}
