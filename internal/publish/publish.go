// Package publish writes rendered pages to a directory or an S3 bucket.
package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/reactor/internal/config"
)

// ErrInvalidTarget is returned for a target Open cannot parse.
var ErrInvalidTarget = errors.New("publish: invalid target")

// Store is a destination for published files.
type Store interface {
	// Put writes body under key, replacing any previous object.
	Put(ctx context.Context, key, contentType string, body []byte) error

	// Location describes where key ends up, for messages.
	Location(key string) string
}

// Open returns the store for target. "s3://bucket/prefix" publishes to
// S3 using cfg; anything else is a local directory.
func Open(target string, cfg config.PublishConfig) (Store, error) {
	if rest, ok := strings.CutPrefix(target, "s3://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, ErrInvalidTarget
		}
		return NewS3Store(bucket, prefix, cfg), nil
	}
	if target == "" {
		return nil, ErrInvalidTarget
	}
	return &DirStore{Root: target}, nil
}

// DirStore writes files below Root, creating directories as needed.
type DirStore struct {
	Root string
}

// Put implements Store.
func (d *DirStore) Put(_ context.Context, key, _ string, body []byte) error {
	path := d.Location(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, body, 0644)
}

// Location implements Store.
func (d *DirStore) Location(key string) string {
	return filepath.Join(d.Root, filepath.FromSlash(key))
}
