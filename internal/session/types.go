// Package session provides SQLite-backed persistence for reposcribe client state:
// durable key/value entries (auth token, current session) and the history of
// ingestion sessions.
package session

import "time"

// Origin records how a repository reached the server.
type Origin string

const (
	OriginFile Origin = "file"
	OriginGit  Origin = "git"
)

// Valid reports whether o is a known origin.
func (o Origin) Valid() bool {
	return o == OriginFile || o == OriginGit
}

// Session is a server-assigned identifier correlating an ingested repository
// with later generation and download calls.
type Session struct {
	ID        string
	Origin    Origin
	Source    string // file name or repository URL
	CreatedAt time.Time
}

// Generation outcome statuses stored in the history table.
const (
	StatusIngested   = "ingested"
	StatusGenerating = "generating"
	StatusDone       = "done"
	StatusFailed     = "failed"
	StatusTimedOut   = "timed_out"
)

// Record is one row of the session history.
type Record struct {
	Session
	Status    string
	UpdatedAt time.Time
}
