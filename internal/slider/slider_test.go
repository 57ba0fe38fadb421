// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package slider

import (
	"io/fs"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/olegiv/ecovibe-go/web"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-5, 0},
		{0, 0},
		{42.5, 42.5},
		{100, 100},
		{250, 100},
		{math.Inf(1), 100},
		{math.Inf(-1), 0},
		{math.NaN(), DefaultPosition},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromOffset(t *testing.T) {
	tests := []struct {
		offset, width, want float64
	}{
		{50, 200, 25},
		{-10, 200, 0},
		{300, 200, 100},
		{10, 0, DefaultPosition},
		{10, -1, DefaultPosition},
	}
	for _, tt := range tests {
		if got := FromOffset(tt.offset, tt.width); got != tt.want {
			t.Errorf("FromOffset(%v, %v) = %v, want %v", tt.offset, tt.width, got, tt.want)
		}
	}
}

func TestParsePosition(t *testing.T) {
	tests := map[string]float64{
		"":      DefaultPosition,
		"abc":   DefaultPosition,
		"Inf":   DefaultPosition,
		"35":    35,
		" 35% ": 35,
		"-3":    0,
		"120":   100,
		"12.5":  12.5,
	}
	for in, want := range tests {
		if got := ParsePosition(in); got != want {
			t.Errorf("ParsePosition(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestViewPercent(t *testing.T) {
	if got := NewView("b", "a", 20).Percent(); got != "20%" {
		t.Errorf("Percent() = %q, want 20%%", got)
	}
	if got := NewView("b", "a", 33.333).Percent(); got != "33.3%" {
		t.Errorf("Percent() = %q, want 33.3%%", got)
	}
	if got := NewView("b", "a", 140).Position; got != 100 {
		t.Errorf("NewView clamps position, got %v", got)
	}
}

func TestClassifyGesture(t *testing.T) {
	tests := []struct {
		dx, dy float64
		want   Gesture
	}{
		{0, 0, GestureUndecided},
		{10, 0, GestureUndecided},
		{-10, 10, GestureUndecided},
		{11, 0, GestureHorizontal},
		{-11, 3, GestureHorizontal},
		{0, 11, GestureVertical},
		{12, 12, GestureVertical},
		{12, -13, GestureVertical},
	}
	for _, tt := range tests {
		if got := ClassifyGesture(tt.dx, tt.dy); got != tt.want {
			t.Errorf("ClassifyGesture(%v, %v) = %v, want %v", tt.dx, tt.dy, got, tt.want)
		}
	}
}

// The browser script repeats these rules; keep the two in step.
func TestBrowserScriptRules(t *testing.T) {
	raw, err := fs.ReadFile(web.Static, "static/dist/js/slider.js")
	if err != nil {
		t.Fatalf("reading slider.js: %v", err)
	}
	script := string(raw)

	for _, want := range []string{
		"var DEFAULT = " + strconv.FormatFloat(DefaultPosition, 'f', -1, 64) + ";",
		"if (isNaN(p)) return DEFAULT;",
		"dx <= threshold && dy <= threshold",
		"if (dx <= dy) {",
		"|| " + strconv.Itoa(GestureThreshold) + ";",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("slider.js is missing %q", want)
		}
	}
}
