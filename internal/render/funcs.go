// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate":     func(t time.Time) string { return t.Format("Jan 2, 2006") },
		"formatDateTime": func(t time.Time) string { return t.Format("Jan 2, 2006 3:04 PM") },
		"truncate":       truncate,
		"add":            func(a, b int) int { return a + b },
		"join":           strings.Join,
		"dict":           dict,
	}
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}

// dict lets a partial take several named arguments:
//
//	{{template "comparison" (dict "View" .Comparison "Title" .Title)}}
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 == 1 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[k] = pairs[i+1]
	}
	return m, nil
}
