// Package blobx stores uploaded objects and hands back a public URL.
package blobx

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Store persists a single object and returns the URL clients fetch it from.
// Implementations must honour ctx cancellation.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

var (
	ErrEmptyKey    = errors.New("blobx: empty key")
	ErrUnavailable = errors.New("blobx: store unavailable")
)

// NewKey returns folder/<uuid>.<ext>.
func NewKey(folder, ext string) string {
	name := uuid.NewString()
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	return path.Join(folder, name)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
