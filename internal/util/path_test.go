// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"path/filepath"
	"testing"
)

func TestSafeJoinPath(t *testing.T) {
	base := t.TempDir()

	got, err := SafeJoinPath(base, "project-images", "projects/a.jpg")
	if err != nil {
		t.Fatalf("SafeJoinPath: %v", err)
	}
	if want := filepath.Join(base, "project-images", "projects", "a.jpg"); got != want {
		t.Errorf("SafeJoinPath = %q, want %q", got, want)
	}

	if _, err := SafeJoinPath(base, "..", "etc", "passwd"); err == nil {
		t.Error("expected traversal error")
	}
}

func TestValidatePathWithinBase(t *testing.T) {
	base := t.TempDir()
	if err := ValidatePathWithinBase(base, base); err != nil {
		t.Errorf("base itself should be valid: %v", err)
	}
	if err := ValidatePathWithinBase(base, base+"-evil/x"); err == nil {
		t.Error("sibling directory with shared prefix must be rejected")
	}
}

func TestContainsPathTraversal(t *testing.T) {
	tests := map[string]bool{
		"projects/batch/a.jpg":  false,
		"projects/..hidden.jpg": false,
		"../a.jpg":              true,
		"projects/../../a.jpg":  true,
		"/etc/passwd":           true,
		`projects\..\a.jpg`:     true,
	}
	for in, want := range tests {
		if got := ContainsPathTraversal(in); got != want {
			t.Errorf("ContainsPathTraversal(%q) = %v, want %v", in, got, want)
		}
	}
}
