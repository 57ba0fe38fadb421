// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/olegiv/ecovibe-go/internal/imaging"
	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/storage"
	"github.com/olegiv/ecovibe-go/internal/store"
)

// DefaultMaxUploadSize caps a single uploaded file.
const DefaultMaxUploadSize = 20 * 1024 * 1024

// ErrFileTooLarge is returned for files above the upload limit.
var ErrFileTooLarge = errors.New("file exceeds maximum upload size")

// MediaService processes uploaded images and stores them in the bucket.
// Uploads happen before the record they belong to is saved; a failed save
// leaves the objects for SweepOrphans.
type MediaService struct {
	db        *sql.DB
	bucket    storage.Bucket
	processor *imaging.Processor
	maxSize   int64
}

// NewMediaService creates a new media service.
func NewMediaService(db *sql.DB, bucket storage.Bucket, maxSize int64) *MediaService {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &MediaService{
		db:        db,
		bucket:    bucket,
		processor: imaging.NewProcessor(imaging.DefaultMaxDimension, imaging.DefaultQuality),
		maxSize:   maxSize,
	}
}

// Upload processes one image and stores it under the batch folder. It
// returns the public URL.
func (s *MediaService) Upload(ctx context.Context, batch string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return "", ErrFileTooLarge
	}

	if mime := imaging.DetectMimeType(data); !imaging.IsImage(mime) {
		return "", fmt.Errorf("file type %s is not allowed: %w", mime, imaging.ErrUnsupportedFormat)
	}

	res, err := s.processor.Process(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("processing image: %w", err)
	}

	key := storage.NewKey(batch, res.Ext)
	if err := s.bucket.Put(ctx, key, bytes.NewReader(res.Data)); err != nil {
		return "", fmt.Errorf("storing image: %w", err)
	}

	slog.Debug("image uploaded", "key", key, "width", res.Width, "height", res.Height)
	return s.bucket.URL(key), nil
}

// UploadFile uploads a multipart file part.
func (s *MediaService) UploadFile(ctx context.Context, batch string, fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxSize {
		return "", ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()

	return s.Upload(ctx, batch, f)
}

// SweepOrphans deletes stored objects older than grace that no project or
// founder photo references. It returns the number of removed objects.
func (s *MediaService) SweepOrphans(ctx context.Context, grace time.Duration) (int, error) {
	referenced, err := s.referencedKeys(ctx)
	if err != nil {
		return 0, err
	}

	objects, err := s.bucket.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-grace)
	removed := 0
	for _, obj := range objects {
		if referenced[obj.Key] || obj.ModTime.After(cutoff) {
			continue
		}
		if err := s.bucket.Remove(ctx, obj.Key); err != nil {
			slog.Warn("failed to remove orphaned image", "key", obj.Key, "error", err, "category", model.EventCategoryMedia)
			continue
		}
		removed++
	}

	if removed > 0 {
		slog.Info("orphaned images removed", "count", removed, "category", model.EventCategoryMedia)
	}
	return removed, nil
}

func (s *MediaService) referencedKeys(ctx context.Context) (map[string]bool, error) {
	q := store.New(s.db)

	rows, err := q.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	urls := []string{}
	for _, p := range model.ProjectsFromStore(rows) {
		urls = append(urls, p.Images()...)
	}

	founder, err := q.GetFounder(ctx)
	switch {
	case err == nil:
		urls = append(urls, founder.PhotoUrl.String)
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("loading founder: %w", err)
	}

	keys := make(map[string]bool, len(urls))
	for _, u := range urls {
		if key, ok := s.bucket.KeyFromURL(u); ok {
			keys[key] = true
		}
	}
	return keys, nil
}
