// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"

	"github.com/olegiv/ecovibe-go/internal/store"
)

// Founder is the singleton biography shown on the home page.
type Founder struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PhotoURL   string    `json:"photoUrl"`
	Background string    `json:"background"`
	MoreInfo   string    `json:"moreInfo"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FounderFromStore converts the founder row.
func FounderFromStore(f store.Founder) Founder {
	return Founder{
		ID:         f.ID,
		Name:       f.Name,
		PhotoURL:   f.PhotoUrl.String,
		Background: f.Background.String,
		MoreInfo:   f.MoreInfo.String,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}
