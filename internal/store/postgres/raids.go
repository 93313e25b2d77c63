package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/phanxgames/raidplan"
	"github.com/phanxgames/raidplan/internal/store"
)

func (c *Client) SaveRaid(ctx context.Context, raid raidplan.PersistedRaid) error {
	doc, err := json.Marshal(raid)
	if err != nil {
		return fmt.Errorf("marshaling raid: %w", err)
	}

	query := `
INSERT INTO raids (id, name, created_at, saved_at, scene_count, document)
VALUES ($1, $2, $3, now(), $4, $5)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    saved_at = now(),
    scene_count = EXCLUDED.scene_count,
    document = EXCLUDED.document
`
	_, err = c.pool.Exec(ctx, query,
		raid.Metadata.ID,
		raid.Metadata.Name,
		raid.Metadata.CreatedAt,
		len(raid.Scenes),
		doc,
	)
	if err != nil {
		return fmt.Errorf("upserting raid: %w", err)
	}
	c.log.Debug("raid saved", "raid", raid.Metadata.ID, "scenes", len(raid.Scenes))
	return nil
}

func (c *Client) LoadRaid(ctx context.Context, id string) (*raidplan.PersistedRaid, error) {
	var doc []byte
	err := c.pool.QueryRow(ctx, `SELECT document FROM raids WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("loading raid %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading raid %s: %w", id, err)
	}

	var raid raidplan.PersistedRaid
	if err := json.Unmarshal(doc, &raid); err != nil {
		return nil, fmt.Errorf("unmarshaling raid %s: %w", id, err)
	}
	return &raid, nil
}

func (c *Client) ListRaids(ctx context.Context) ([]store.RaidSummary, error) {
	rows, err := c.pool.Query(ctx, `
SELECT id, name, created_at, saved_at, scene_count
FROM raids
ORDER BY created_at, id
`)
	if err != nil {
		return nil, fmt.Errorf("listing raids: %w", err)
	}
	defer rows.Close()

	var out []store.RaidSummary
	for rows.Next() {
		var s store.RaidSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.SavedAt, &s.SceneCount); err != nil {
			return nil, fmt.Errorf("scanning raid: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing raids: %w", err)
	}
	return out, nil
}

func (c *Client) DeleteRaid(ctx context.Context, id string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM raids WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting raid %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting raid %s: %w", id, store.ErrNotFound)
	}
	return nil
}
