// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"
)

// Taxonomy names one of the (value, label) tables.
type Taxonomy string

const (
	TaxonomyCategories   Taxonomy = "categories"
	TaxonomyProjectTypes Taxonomy = "project_types"
)

// table returns the table name, refusing anything that is not a known
// taxonomy so the name can be interpolated into SQL.
func (t Taxonomy) table() (string, error) {
	switch t {
	case TaxonomyCategories, TaxonomyProjectTypes:
		return string(t), nil
	default:
		return "", fmt.Errorf("unknown taxonomy %q", string(t))
	}
}

func scanTerm(row rowScanner) (Term, error) {
	var t Term
	err := row.Scan(&t.ID, &t.Value, &t.Label, &t.CreatedAt)
	return t, err
}

// ListTerms returns the terms of a taxonomy in insertion order. Callers
// sort by label themselves.
func (q *Queries) ListTerms(ctx context.Context, tax Taxonomy) ([]Term, error) {
	table, err := tax.table()
	if err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT id, value, label, created_at FROM `+table+` ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Term{}
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) GetTerm(ctx context.Context, tax Taxonomy, id string) (Term, error) {
	table, err := tax.table()
	if err != nil {
		return Term{}, err
	}
	return scanTerm(q.db.QueryRowContext(ctx,
		`SELECT id, value, label, created_at FROM `+table+` WHERE id = ?`, id))
}

// CreateTermParams holds the columns of a new term.
type CreateTermParams struct {
	ID        string
	Value     string
	Label     string
	CreatedAt time.Time
}

func (q *Queries) CreateTerm(ctx context.Context, tax Taxonomy, arg CreateTermParams) (Term, error) {
	table, err := tax.table()
	if err != nil {
		return Term{}, err
	}
	return scanTerm(q.db.QueryRowContext(ctx,
		`INSERT INTO `+table+` (id, value, label, created_at) VALUES (?, ?, ?, ?)
		RETURNING id, value, label, created_at`,
		arg.ID, arg.Value, arg.Label, arg.CreatedAt))
}

func (q *Queries) UpdateTerm(ctx context.Context, tax Taxonomy, id, value, label string) (Term, error) {
	table, err := tax.table()
	if err != nil {
		return Term{}, err
	}
	return scanTerm(q.db.QueryRowContext(ctx,
		`UPDATE `+table+` SET value = ?, label = ? WHERE id = ?
		RETURNING id, value, label, created_at`,
		value, label, id))
}

// DeleteTerm removes a term. Projects referencing its value are left as is.
func (q *Queries) DeleteTerm(ctx context.Context, tax Taxonomy, id string) (int64, error) {
	table, err := tax.table()
	if err != nil {
		return 0, err
	}
	res, err := q.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
