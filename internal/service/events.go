// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/store"
)

// DefaultEventListLimit is how many events the admin log shows.
const DefaultEventListLimit = 200

// Event is one row of the admin event log. UserID is zero for events not
// tied to an admin.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    int64
	Metadata  map[string]any
	CreatedAt time.Time
}

func eventFromStore(r store.Event) Event {
	e := Event{
		ID:        r.ID,
		Level:     r.Level,
		Category:  r.Category,
		Message:   r.Message,
		UserID:    r.UserID.Int64,
		CreatedAt: r.CreatedAt,
	}
	if r.Metadata != "" && r.Metadata != "{}" {
		if err := json.Unmarshal([]byte(r.Metadata), &e.Metadata); err != nil {
			slog.Debug("unreadable event metadata", "id", r.ID, "error", err)
		}
	}
	return e
}

// EventService writes and reads the event log. Most events arrive through
// the slog handler in internal/logging; this service records the ones a
// handler wants to name explicitly, such as login outcomes.
type EventService struct {
	queries *store.Queries
	now     func() time.Time
}

func NewEventService(db *sql.DB) *EventService {
	return &EventService{queries: store.New(db), now: time.Now}
}

// Record stores e, stamped now. Zero fields fall back to info/system.
func (s *EventService) Record(ctx context.Context, e Event) error {
	meta := []byte("{}")
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("encoding event metadata: %w", err)
		}
		meta = b
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     cmp.Or(e.Level, model.EventLevelInfo),
		Category:  cmp.Or(e.Category, model.EventCategorySystem),
		Message:   e.Message,
		UserID:    sql.NullInt64{Int64: e.UserID, Valid: e.UserID > 0},
		Metadata:  string(meta),
		CreatedAt: s.now(),
	})
	return err
}

// LogEvent is Record with positional arguments.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, metadata map[string]any) error {
	e := Event{Level: level, Category: category, Message: message, Metadata: metadata}
	if userID != nil {
		e.UserID = *userID
	}
	return s.Record(ctx, e)
}

// LogAuthEvent records a login or logout outcome.
func (s *EventService) LogAuthEvent(ctx context.Context, level, message string, userID *int64, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryAuth, message, userID, metadata)
}

// ListRecent returns up to limit events, newest first.
func (s *EventService) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultEventListLimit
	}
	rows, err := s.queries.ListRecentEvents(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	events := make([]Event, len(rows))
	for i, r := range rows {
		events[i] = eventFromStore(r)
	}
	return events, nil
}

// DeleteOldEvents prunes events older than olderThan and reports how many
// went.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.queries.DeleteEventsBefore(ctx, s.now().Add(-olderThan))
}
