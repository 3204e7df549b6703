package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/yudhapane/fpl-oracle/internal/domain/rawdata"
)

// RawPayloadRepository archives upstream provider responses for audit and
// replay. Identical payloads (same source, key, and hash) are dropped.
type RawPayloadRepository struct {
	db *sqlx.DB
}

func NewRawPayloadRepository(db *sqlx.DB) *RawPayloadRepository {
	return &RawPayloadRepository{db: db}
}

const insertRawPayloadQuery = `
INSERT INTO raw_payloads (source, endpoint, entity_key, payload, payload_hash, fetched_at)
VALUES (:source, :endpoint, :entity_key, :payload, :payload_hash, :fetched_at)
ON CONFLICT (source, entity_key, payload_hash) DO NOTHING`

func (r *RawPayloadRepository) Archive(ctx context.Context, items []rawdata.Payload) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx archive raw payloads: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		row := rawPayloadInsertModel{
			Source:      item.Source,
			Endpoint:    item.Endpoint,
			EntityKey:   item.EntityKey,
			Payload:     item.PayloadJSON,
			PayloadHash: item.PayloadHash,
			FetchedAt:   item.FetchedAt,
		}
		if row.FetchedAt.IsZero() {
			row.FetchedAt = time.Now().UTC()
		}
		if _, err := tx.NamedExecContext(ctx, insertRawPayloadQuery, row); err != nil {
			return fmt.Errorf("archive raw payload source=%s key=%s: %w", item.Source, item.EntityKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive raw payloads tx: %w", err)
	}

	return nil
}

type rawPayloadInsertModel struct {
	Source      string    `db:"source"`
	Endpoint    string    `db:"endpoint"`
	EntityKey   string    `db:"entity_key"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
}
