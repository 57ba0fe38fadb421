// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const founderColumns = `id, name, photo_url, background, more_info, created_at, updated_at`

func scanFounder(row rowScanner) (Founder, error) {
	var f Founder
	err := row.Scan(&f.ID, &f.Name, &f.PhotoUrl, &f.Background, &f.MoreInfo, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

// GetFounder returns the founder profile. The table is treated as a
// singleton; if more than one row exists the oldest wins.
func (q *Queries) GetFounder(ctx context.Context) (Founder, error) {
	return scanFounder(q.db.QueryRowContext(ctx,
		`SELECT `+founderColumns+` FROM founder ORDER BY created_at LIMIT 1`))
}

// FounderParams holds the editable founder fields.
type FounderParams struct {
	Name       string
	PhotoUrl   string
	Background string
	MoreInfo   string
}

func (q *Queries) CreateFounder(ctx context.Context, id string, arg FounderParams, now time.Time) (Founder, error) {
	return scanFounder(q.db.QueryRowContext(ctx,
		`INSERT INTO founder (id, name, photo_url, background, more_info, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+founderColumns,
		id, arg.Name, nullString(arg.PhotoUrl), nullString(arg.Background), nullString(arg.MoreInfo), now, now))
}

func (q *Queries) UpdateFounder(ctx context.Context, id string, arg FounderParams, now time.Time) (Founder, error) {
	return scanFounder(q.db.QueryRowContext(ctx,
		`UPDATE founder SET name = ?, photo_url = ?, background = ?, more_info = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+founderColumns,
		arg.Name, nullString(arg.PhotoUrl), nullString(arg.Background), nullString(arg.MoreInfo), now, id))
}
