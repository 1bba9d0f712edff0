package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/studywithme/studywithme/store"
)

func (d *DB) UpsertSnapshot(ctx context.Context, upsert *store.Snapshot) (*store.Snapshot, error) {
	stmt := `
		INSERT INTO snapshot (key, value, updated_ts)
		VALUES (` + placeholders(3) + `)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_ts = EXCLUDED.updated_ts`

	updatedTs := upsert.UpdatedTs
	if updatedTs == 0 {
		updatedTs = time.Now().Unix()
	}

	if _, err := d.db.ExecContext(ctx, stmt, upsert.Key, upsert.Value, updatedTs); err != nil {
		return nil, fmt.Errorf("failed to upsert snapshot %q: %w", upsert.Key, err)
	}

	upsert.UpdatedTs = updatedTs
	return upsert, nil
}

func (d *DB) GetSnapshot(ctx context.Context, find *store.FindSnapshot) (*store.Snapshot, error) {
	var snapshot store.Snapshot
	err := d.db.QueryRowContext(ctx, `
		SELECT key, value, updated_ts
		FROM snapshot
		WHERE key = `+placeholder(1), find.Key,
	).Scan(
		&snapshot.Key,
		&snapshot.Value,
		&snapshot.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot %q: %w", find.Key, err)
	}
	return &snapshot, nil
}
