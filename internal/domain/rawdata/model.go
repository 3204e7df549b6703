package rawdata

import (
	"context"
	"time"
)

// Payload is one archived upstream response.
type Payload struct {
	Source      string
	Endpoint    string
	EntityKey   string
	PayloadJSON string
	PayloadHash string
	FetchedAt   time.Time
}

// Archiver persists provider payloads for audit and replay. Implementations
// are best-effort; archiving failures must never fail a fetch.
type Archiver interface {
	Archive(ctx context.Context, items []Payload) error
}

// NopArchiver discards payloads; used when the archive is disabled.
type NopArchiver struct{}

func (NopArchiver) Archive(context.Context, []Payload) error { return nil }
