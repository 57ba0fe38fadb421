// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/olegiv/ecovibe-go/internal/store"
)

// Term is a (value, label) pair used for categories and project types.
type Term struct {
	ID        string    `json:"id"`
	Value     string    `json:"value"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

// TermsFromStore converts rows of a taxonomy table.
func TermsFromStore(rows []store.Term) []Term {
	out := make([]Term, 0, len(rows))
	for _, r := range rows {
		out = append(out, Term{ID: r.ID, Value: r.Value, Label: r.Label, CreatedAt: r.CreatedAt})
	}
	return out
}

// LabelFor returns the label of the term with the given value, or the
// value itself when no such term exists. Deleted terms leave projects
// pointing at raw values.
func LabelFor(terms []Term, value string) string {
	for _, t := range terms {
		if t.Value == value {
			return t.Label
		}
	}
	return value
}

// SortTerms orders terms by label with case-insensitive, locale-aware
// collation, so "Éclairage" sorts next to "Eclairage" rather than after "Z".
func SortTerms(terms []Term) {
	c := collate.New(language.English, collate.IgnoreCase)
	slices.SortStableFunc(terms, func(a, b Term) int {
		return c.CompareString(a.Label, b.Label)
	})
}
