// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const projectColumns = `id, title, description, category, project_type, tags,
	before_image_1, after_image_1, before_image_2, after_image_2, additional_images,
	duration, budget, materials, is_hero, display_order, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (Project, error) {
	var p Project
	var tags, additional, materials string
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Category,
		&p.ProjectType,
		&tags,
		&p.BeforeImage1,
		&p.AfterImage1,
		&p.BeforeImage2,
		&p.AfterImage2,
		&additional,
		&p.Duration,
		&p.Budget,
		&materials,
		&p.IsHero,
		&p.DisplayOrder,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return Project{}, err
	}
	p.Tags = decodeList(tags)
	p.AdditionalImages = decodeList(additional)
	p.Materials = decodeList(materials)
	return p, nil
}

// ProjectParams carries the writable columns of a project.
type ProjectParams struct {
	Title            string
	Description      string
	Category         string
	ProjectType      string
	Tags             []string
	BeforeImage1     string
	AfterImage1      string
	BeforeImage2     string
	AfterImage2      string
	AdditionalImages []string
	Duration         string
	Budget           string
	Materials        []string
	IsHero           bool
}

func (p ProjectParams) args() []any {
	return []any{
		p.Title,
		p.Description,
		p.Category,
		p.ProjectType,
		encodeList(p.Tags),
		p.BeforeImage1,
		p.AfterImage1,
		nullString(p.BeforeImage2),
		nullString(p.AfterImage2),
		encodeList(p.AdditionalImages),
		nullString(p.Duration),
		nullString(p.Budget),
		encodeList(p.Materials),
		p.IsHero,
	}
}

// CreateProjectParams adds identity and timestamps to ProjectParams.
type CreateProjectParams struct {
	ID string
	ProjectParams
	DisplayOrder int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const createProject = `INSERT INTO projects (
	title, description, category, project_type, tags,
	before_image_1, after_image_1, before_image_2, after_image_2, additional_images,
	duration, budget, materials, is_hero,
	id, display_order, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + projectColumns

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	args := append(arg.args(), arg.ID, arg.DisplayOrder, arg.CreatedAt, arg.UpdatedAt)
	return scanProject(q.db.QueryRowContext(ctx, createProject, args...))
}

const getProject = `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

func (q *Queries) GetProject(ctx context.Context, id string) (Project, error) {
	return scanProject(q.db.QueryRowContext(ctx, getProject, id))
}

const listProjects = `SELECT ` + projectColumns + ` FROM projects
ORDER BY display_order DESC, created_at DESC`

// ListProjects returns every project, highest display order first and
// newest first within equal orders.
func (q *Queries) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := q.db.QueryContext(ctx, listProjects)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateProjectParams identifies the row and carries the new values.
type UpdateProjectParams struct {
	ID string
	ProjectParams
	UpdatedAt time.Time
}

const updateProject = `UPDATE projects SET
	title = ?, description = ?, category = ?, project_type = ?, tags = ?,
	before_image_1 = ?, after_image_1 = ?, before_image_2 = ?, after_image_2 = ?,
	additional_images = ?, duration = ?, budget = ?, materials = ?, is_hero = ?,
	updated_at = ?
WHERE id = ?
RETURNING ` + projectColumns

func (q *Queries) UpdateProject(ctx context.Context, arg UpdateProjectParams) (Project, error) {
	args := append(arg.args(), arg.UpdatedAt, arg.ID)
	return scanProject(q.db.QueryRowContext(ctx, updateProject, args...))
}

const updateProjectOrder = `UPDATE projects SET display_order = ? WHERE id = ?`

// UpdateProjectOrder sets the sort key of one project and reports how many
// rows changed.
func (q *Queries) UpdateProjectOrder(ctx context.Context, id string, order int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateProjectOrder, order, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteProject = `DELETE FROM projects WHERE id = ?`

func (q *Queries) DeleteProject(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteProject, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
