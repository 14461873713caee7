// Package upload admits a single image file from a multipart request,
// normalises it and writes it to a blob store before the handler runs.
package upload

import (
	"context"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/blobx"
)

const (
	DefaultField    = "product_image"
	DefaultFolder   = "ecommerce-images"
	DefaultMaxBytes = 5 * 1024 * 1024
	DefaultTimeout  = 30 * time.Second

	// defaultMaxFieldBytes bounds each non-file form value.
	defaultMaxFieldBytes = 64 * 1024
	maxFields            = 64
)

// DefaultAllowed lists accepted file extensions as detected from content.
var DefaultAllowed = []string{"jpg", "jpeg", "png", "webp"}

// Outcome labels passed to the observer.
const (
	OutcomeStored      = "stored"
	OutcomeBadType     = "invalid_type"
	OutcomeTooLarge    = "too_large"
	OutcomeStoreFailed = "store_failed"
)

type Config struct {
	Field         string
	Folder        string
	MaxBytes      int64
	MaxFieldBytes int64
	Allowed       []string
	Policy        blobx.ImagePolicy
	Timeout       time.Duration
}

func (c Config) withDefaults() Config {
	if c.Field == "" {
		c.Field = DefaultField
	}
	if c.Folder == "" {
		c.Folder = DefaultFolder
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.MaxFieldBytes <= 0 {
		c.MaxFieldBytes = defaultMaxFieldBytes
	}
	if len(c.Allowed) == 0 {
		c.Allowed = DefaultAllowed
	}
	if c.Policy == (blobx.ImagePolicy{}) {
		c.Policy = blobx.DefaultImagePolicy
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Descriptor describes the file part as the client sent it.
type Descriptor struct {
	DeclaredMIME string
	Size         int64
	FieldName    string
	Filename     string
}

// Result is attached to the request context once a file is stored.
type Result struct {
	Descriptor

	URL         string
	Key         string
	ContentType string
	Resized     bool
}

type resultKey struct{}

func withResult(ctx context.Context, res Result) context.Context {
	return context.WithValue(ctx, resultKey{}, res)
}

// FromContext returns the stored upload, if the request carried one.
func FromContext(ctx context.Context) (Result, bool) {
	res, ok := ctx.Value(resultKey{}).(Result)
	return res, ok
}
