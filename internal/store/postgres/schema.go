package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS raids (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    saved_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    scene_count INTEGER NOT NULL DEFAULT 0,
    document    JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_raids_created ON raids (created_at, id);
`
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("executing DDL: %w", err)
	}
	return nil
}
