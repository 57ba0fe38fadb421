// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api serves the portfolio as read-only JSON under /api/v1.
// Every body is an envelope: {"data": ..., "meta": ...} on success and
// {"error": {...}} otherwise.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/olegiv/ecovibe-go/internal/service"
)

// Version is reported by the status endpoint and prefixes the routes.
const Version = "v1"

// Handler serves the API routes.
type Handler struct {
	portfolio *service.PortfolioService
}

// NewHandler returns an API handler reading from portfolio.
func NewHandler(portfolio *service.PortfolioService) *Handler {
	return &Handler{portfolio: portfolio}
}

type envelope struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta accompanies list payloads.
type Meta struct {
	Total int `json:"total"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StatusResponse is the payload of GET /api/v1/status.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Debug("api: writing response", "error", err)
	}
}

func respond(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Data: data})
}

func respondList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, envelope{Data: items, Meta: &Meta{Total: len(items)}})
}

func fail(w http.ResponseWriter, status int, code, message string) {
	var body ErrorResponse
	body.Error.Code = code
	body.Error.Message = message
	writeJSON(w, status, body)
}

func notFound(w http.ResponseWriter, message string) {
	fail(w, http.StatusNotFound, "not_found", message)
}

// serverError logs err against the request and answers 500 with message.
func serverError(w http.ResponseWriter, r *http.Request, message string, err error) {
	slog.Error("api: "+message, "path", r.URL.Path, "error", err)
	fail(w, http.StatusInternalServerError, "internal_error", message)
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	respond(w, StatusResponse{Status: "ok", Version: Version})
}
