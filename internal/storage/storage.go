// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage keeps uploaded objects in named buckets on local disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ecovibe-go/internal/util"
)

// ProjectImages is the bucket holding every project and founder image.
const ProjectImages = "project-images"

// URLPrefix is where buckets are served from.
const URLPrefix = "/uploads/"

// ErrInvalidKey is returned for empty keys and keys escaping the bucket.
var ErrInvalidKey = errors.New("invalid object key")

// Object describes a stored object.
type Object struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Bucket is a flat key/value object store addressed by slash separated keys.
type Bucket interface {
	Name() string
	Put(ctx context.Context, key string, r io.Reader) error
	Remove(ctx context.Context, key string) error
	List(ctx context.Context) ([]Object, error)
	URL(key string) string
	KeyFromURL(url string) (string, bool)
}

// LocalBucket stores objects as files below <root>/<name>.
type LocalBucket struct {
	name string
	dir  string
}

// NewLocal opens (creating if needed) the bucket directory under root.
func NewLocal(root, name string) (*LocalBucket, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid bucket name %q", name)
	}
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating bucket dir: %w", err)
	}
	return &LocalBucket{name: name, dir: dir}, nil
}

func (b *LocalBucket) Name() string { return b.name }

// Put writes r under key. The write goes through a temp file so readers
// never see a partial object.
func (b *LocalBucket) Put(ctx context.Context, key string, r io.Reader) error {
	target, err := b.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing object %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing object %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("storing object %s: %w", key, err)
	}
	return nil
}

// Remove deletes the object. A missing object is not an error. Empty batch
// folders left behind are removed too.
func (b *LocalBucket) Remove(_ context.Context, key string) error {
	target, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing object %s: %w", key, err)
	}

	for dir := filepath.Dir(target); dir != b.dir && strings.HasPrefix(dir, b.dir); dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break
		}
	}
	return nil
}

// List returns every object in the bucket.
func (b *LocalBucket) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	err := filepath.WalkDir(b.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(b.dir, p)
		if err != nil {
			return err
		}
		objects = append(objects, Object{
			Key:     filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing bucket %s: %w", b.name, err)
	}
	return objects, nil
}

// URL returns the public URL of key.
func (b *LocalBucket) URL(key string) string {
	return URLPrefix + b.name + "/" + key
}

// KeyFromURL returns the key of an URL produced by URL. External URLs
// (seeded demo images, for example) report false.
func (b *LocalBucket) KeyFromURL(url string) (string, bool) {
	prefix := URLPrefix + b.name + "/"
	key, ok := strings.CutPrefix(url, prefix)
	if !ok || key == "" || util.ContainsPathTraversal(key) {
		return "", false
	}
	return key, true
}

func (b *LocalBucket) path(key string) (string, error) {
	if key == "" || util.ContainsPathTraversal(key) || path.Clean(key) != key {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	p, err := util.SafeJoinPath(b.dir, filepath.FromSlash(key))
	if err != nil || p == b.dir {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return p, nil
}

// NewBatch returns a folder name shared by all files of one form submission.
func NewBatch() string {
	return uuid.NewString()
}

// NewKey builds projects/<batch>/<unixms>-<rand>.<ext>.
func NewKey(batch, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "bin"
	}
	suffix := strconv.FormatUint(rand.Uint64(), 36)
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("projects/%s/%d-%s.%s", batch, time.Now().UnixMilli(), suffix, ext)
}
