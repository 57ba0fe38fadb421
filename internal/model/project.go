// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model holds the domain types shared by services, handlers and
// templates, together with their conversions from store rows.
package model

import (
	"slices"
	"strings"
	"time"

	"github.com/olegiv/ecovibe-go/internal/store"
)

// Project is one before/after renovation entry in the portfolio.
type Project struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	ProjectType      string    `json:"projectType"`
	Tags             []string  `json:"tags"`
	BeforeImage1     string    `json:"beforeImage1"`
	AfterImage1      string    `json:"afterImage1"`
	BeforeImage2     string    `json:"beforeImage2"`
	AfterImage2      string    `json:"afterImage2"`
	AdditionalImages []string  `json:"additionalImages"`
	Duration         string    `json:"duration"`
	Budget           string    `json:"budget"`
	Materials        []string  `json:"materials"`
	IsHero           bool      `json:"isHero"`
	DisplayOrder     int64     `json:"displayOrder"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ProjectInput is what an admin submits. Identity, order and timestamps
// are assigned by the service.
type ProjectInput struct {
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

// Image fields that can be removed individually from a project.
const (
	ImageFieldAdditional   = "additional"
	ImageFieldBeforeImage2 = "beforeImage2"
	ImageFieldAfterImage2  = "afterImage2"
)

// ProjectFromStore converts a projects row.
func ProjectFromStore(p store.Project) Project {
	return Project{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		Category:         p.Category,
		ProjectType:      p.ProjectType,
		Tags:             nonNil(p.Tags),
		BeforeImage1:     p.BeforeImage1,
		AfterImage1:      p.AfterImage1,
		BeforeImage2:     p.BeforeImage2.String,
		AfterImage2:      p.AfterImage2.String,
		AdditionalImages: nonNil(p.AdditionalImages),
		Duration:         p.Duration.String,
		Budget:           p.Budget.String,
		Materials:        nonNil(p.Materials),
		IsHero:           p.IsHero,
		DisplayOrder:     p.DisplayOrder,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ProjectsFromStore converts a list of rows.
func ProjectsFromStore(rows []store.Project) []Project {
	out := make([]Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, ProjectFromStore(r))
	}
	return out
}

// Input returns the editable part of p.
func (p Project) Input() ProjectInput {
	return ProjectInput{
		Title:            p.Title,
		Description:      p.Description,
		Category:         p.Category,
		ProjectType:      p.ProjectType,
		Tags:             slices.Clone(p.Tags),
		BeforeImage1:     p.BeforeImage1,
		AfterImage1:      p.AfterImage1,
		BeforeImage2:     p.BeforeImage2,
		AfterImage2:      p.AfterImage2,
		AdditionalImages: slices.Clone(p.AdditionalImages),
		Duration:         p.Duration,
		Budget:           p.Budget,
		Materials:        slices.Clone(p.Materials),
		IsHero:           p.IsHero,
	}
}

// Params converts the input into store parameters, trimming free text.
func (in ProjectInput) Params() store.ProjectParams {
	return store.ProjectParams{
		Title:            strings.TrimSpace(in.Title),
		Description:      strings.TrimSpace(in.Description),
		Category:         strings.TrimSpace(in.Category),
		ProjectType:      strings.TrimSpace(in.ProjectType),
		Tags:             nonNil(in.Tags),
		BeforeImage1:     strings.TrimSpace(in.BeforeImage1),
		AfterImage1:      strings.TrimSpace(in.AfterImage1),
		BeforeImage2:     strings.TrimSpace(in.BeforeImage2),
		AfterImage2:      strings.TrimSpace(in.AfterImage2),
		AdditionalImages: nonNil(in.AdditionalImages),
		Duration:         strings.TrimSpace(in.Duration),
		Budget:           strings.TrimSpace(in.Budget),
		Materials:        nonNil(in.Materials),
		IsHero:           in.IsHero,
	}
}

// Validate runs the presence checks of the admin form and returns a map of
// field name to message. An empty map means the input is acceptable.
func (in ProjectInput) Validate() map[string]string {
	errs := make(map[string]string)
	required := []struct {
		field, value, label string
	}{
		{"title", in.Title, "Title"},
		{"description", in.Description, "Description"},
		{"category", in.Category, "Category"},
		{"projectType", in.ProjectType, "Project type"},
		{"beforeImage1", in.BeforeImage1, "Before image"},
		{"afterImage1", in.AfterImage1, "After image"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs[r.field] = r.label + " is required"
		}
	}
	return errs
}

// Images returns every image URL referenced by the project.
func (p Project) Images() []string {
	var out []string
	for _, u := range []string{p.BeforeImage1, p.AfterImage1, p.BeforeImage2, p.AfterImage2} {
		if u != "" {
			out = append(out, u)
		}
	}
	return append(out, p.AdditionalImages...)
}

// HasSecondPair reports whether a second before/after pair is present.
func (p Project) HasSecondPair() bool {
	return p.BeforeImage2 != "" && p.AfterImage2 != ""
}

// AddItem appends value to list after trimming it. Empty values and values
// already present are ignored.
func AddItem(list []string, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" || slices.Contains(list, value) {
		return list
	}
	return append(list, value)
}

// RemoveItem drops every occurrence of value from list.
func RemoveItem(list []string, value string) []string {
	return slices.DeleteFunc(slices.Clone(list), func(s string) bool { return s == value })
}

// ParseList splits comma or newline separated text and feeds every piece
// through AddItem.
func ParseList(text string) []string {
	out := []string{}
	for _, part := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' || r == '\r' }) {
		out = AddItem(out, part)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
