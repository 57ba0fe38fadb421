// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package slider holds the position math of the before/after image
// comparison widget. The browser script mirrors these rules; the server
// uses them to render the no-script fallback.
package slider

import (
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultPosition is where the divider starts, as a percentage from the left.
	DefaultPosition = 20.0
	// MinPosition and MaxPosition bound every position.
	MinPosition = 0.0
	MaxPosition = 100.0
	// GestureThreshold is how far, in CSS pixels, a touch must travel before
	// it is classified as a horizontal drag or a vertical scroll.
	GestureThreshold = 10
)

// Clamp limits p to [MinPosition, MaxPosition]. NaN maps to the default.
func Clamp(p float64) float64 {
	if math.IsNaN(p) {
		return DefaultPosition
	}
	return math.Max(MinPosition, math.Min(MaxPosition, p))
}

// FromOffset converts a pointer offset inside an element of the given width
// into a clamped percentage. A non-positive width yields the default.
func FromOffset(offset, width float64) float64 {
	if width <= 0 {
		return DefaultPosition
	}
	return Clamp(offset / width * 100)
}

// ParsePosition reads a position from a query value such as "35" or "35.5".
// Empty or malformed input yields the default.
func ParsePosition(raw string) float64 {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if raw == "" {
		return DefaultPosition
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(p, 0) {
		return DefaultPosition
	}
	return Clamp(p)
}

// Gesture is the direction a touch settles on.
type Gesture int

const (
	GestureUndecided Gesture = iota
	GestureHorizontal
	GestureVertical
)

// ClassifyGesture decides a touch that has moved dx, dy pixels from where
// it started. It stays undecided until one axis exceeds GestureThreshold.
// Only a strictly horizontal movement (|dx| > |dy|) drags the slider.
func ClassifyGesture(dx, dy float64) Gesture {
	dx, dy = math.Abs(dx), math.Abs(dy)
	switch {
	case dx <= GestureThreshold && dy <= GestureThreshold:
		return GestureUndecided
	case dx > dy:
		return GestureHorizontal
	default:
		return GestureVertical
	}
}

// View is what a template needs to draw one comparison.
type View struct {
	Before   string
	After    string
	Position float64
}

// NewView builds a view with a clamped position.
func NewView(before, after string, position float64) View {
	return View{Before: before, After: after, Position: Clamp(position)}
}

// Percent formats the position for CSS, e.g. "20%" or "33.3%".
func (v View) Percent() string {
	return strconv.FormatFloat(math.Round(v.Position*10)/10, 'f', -1, 64) + "%"
}

// ShowBeforeAt is the position that reveals the whole before image.
func (View) ShowBeforeAt() float64 { return MaxPosition }

// ShowAfterAt is the position that reveals the whole after image.
func (View) ShowAfterAt() float64 { return MinPosition }

// Threshold exposes GestureThreshold to templates.
func (View) Threshold() int { return GestureThreshold }
