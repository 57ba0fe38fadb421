// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/olegiv/ecovibe-go/internal/model"
)

// Sort is an admin list ordering.
type Sort string

const (
	SortUpdatedAt Sort = "updatedAt"
	SortCreatedAt Sort = "createdAt"
	SortTitle     Sort = "title"
	SortCategory  Sort = "category"
	SortOrder     Sort = "order"
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

// SortOptions lists the orderings offered by the dashboard.
var SortOptions = []struct {
	Value Sort
	Label string
}{
	{SortUpdatedAt, "Last Updated"},
	{SortCreatedAt, "Date Created"},
	{SortTitle, "Title"},
	{SortCategory, "Category"},
	{SortOrder, "Display Order"},
}

// ParseSort maps unknown values to SortUpdatedAt.
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortCreatedAt, SortTitle, SortCategory, SortOrder:
		return Sort(s)
	default:
		return SortUpdatedAt
	}
}

// Query filters, searches and sorts a project list.
type Query struct {
	Search   string
	Category string
	Sort     Sort
}

// Apply returns the matching projects in the requested order. The input is
// not modified.
func (q Query) Apply(projects []model.Project) []model.Project {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if q.Category != "" && q.Category != CategoryAll && p.Category != q.Category {
			continue
		}
		if needle != "" && !matches(p, needle) {
			continue
		}
		out = append(out, p)
	}

	coll := collate.New(language.English, collate.IgnoreCase)
	switch ParseSort(string(q.Sort)) {
	case SortCreatedAt:
		slices.SortStableFunc(out, func(a, b model.Project) int { return b.CreatedAt.Compare(a.CreatedAt) })
	case SortTitle:
		slices.SortStableFunc(out, func(a, b model.Project) int { return coll.CompareString(a.Title, b.Title) })
	case SortCategory:
		slices.SortStableFunc(out, func(a, b model.Project) int { return coll.CompareString(a.Category, b.Category) })
	case SortOrder:
		SortByDisplayOrder(out)
	default:
		slices.SortStableFunc(out, func(a, b model.Project) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	}
	return out
}

func matches(p model.Project, needle string) bool {
	if strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) {
		return true
	}
	return slices.ContainsFunc(p.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), needle)
	})
}

// SortByDisplayOrder orders projects by descending display order, newest
// first on ties.
func SortByDisplayOrder(projects []model.Project) {
	slices.SortStableFunc(projects, func(a, b model.Project) int {
		if c := cmp.Compare(b.DisplayOrder, a.DisplayOrder); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// FeaturedSlots is how many projects the home page features.
const FeaturedSlots = 2

// Featured picks up to n projects for the top of the home page: flagged
// projects first, then the rest, each group in display order.
func Featured(projects []model.Project, n int) []model.Project {
	ordered := slices.Clone(projects)
	SortByDisplayOrder(ordered)
	slices.SortStableFunc(ordered, func(a, b model.Project) int {
		switch {
		case a.IsHero == b.IsHero:
			return 0
		case a.IsHero:
			return -1
		default:
			return 1
		}
	})
	return ordered[:min(n, len(ordered))]
}

// Hero is the first featured project. ok is false when there are no
// projects.
func Hero(projects []model.Project) (hero model.Project, ok bool) {
	if f := Featured(projects, 1); len(f) == 1 {
		return f[0], true
	}
	return model.Project{}, false
}

// GalleryCategory is one filter button of the public gallery.
type GalleryCategory struct {
	Value string
	Label string
}

// GalleryCategories returns "all" followed by the distinct categories of
// the given projects in order of first appearance. Labels come from terms
// when a matching one exists.
func GalleryCategories(projects []model.Project, terms []model.Term) []GalleryCategory {
	out := []GalleryCategory{{Value: CategoryAll, Label: "All"}}
	seen := map[string]bool{}
	for _, p := range projects {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, GalleryCategory{Value: p.Category, Label: categoryLabel(terms, p.Category)})
	}
	return out
}

func categoryLabel(terms []model.Term, value string) string {
	label := model.LabelFor(terms, value)
	if label != value || value == "" {
		return label
	}
	return strings.ToUpper(value[:1]) + value[1:]
}
