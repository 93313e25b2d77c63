package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

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
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		saved_at = excluded.saved_at,
		scene_count = excluded.scene_count,
		document = excluded.document
	`

	_, err = c.db.ExecContext(ctx, query,
		raid.Metadata.ID,
		raid.Metadata.Name,
		raid.Metadata.CreatedAt.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
		len(raid.Scenes),
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("upserting raid: %w", err)
	}
	c.log.Debug("raid saved", "raid", raid.Metadata.ID, "scenes", len(raid.Scenes))
	return nil
}

func (c *Client) LoadRaid(ctx context.Context, id string) (*raidplan.PersistedRaid, error) {
	var doc string
	err := c.db.QueryRowContext(ctx, `SELECT document FROM raids WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("loading raid %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading raid %s: %w", id, err)
	}

	var raid raidplan.PersistedRaid
	if err := json.Unmarshal([]byte(doc), &raid); err != nil {
		return nil, fmt.Errorf("unmarshaling raid %s: %w", id, err)
	}
	return &raid, nil
}

func (c *Client) ListRaids(ctx context.Context) ([]store.RaidSummary, error) {
	rows, err := c.db.QueryContext(ctx, `
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
		var createdAt, savedAt string
		if err := rows.Scan(&s.ID, &s.Name, &createdAt, &savedAt, &s.SceneCount); err != nil {
			return nil, fmt.Errorf("scanning raid: %w", err)
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		s.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing raids: %w", err)
	}
	return out, nil
}

func (c *Client) DeleteRaid(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM raids WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting raid %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting raid %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("deleting raid %s: %w", id, store.ErrNotFound)
	}
	return nil
}
