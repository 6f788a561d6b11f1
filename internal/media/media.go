// Package media handles binary asset storage (avatars, cover images) and
// the short-lived registry that ties an upload to a registration request.
package media

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Asset is a stored binary object, addressable by URL.
type Asset struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType,omitempty"`
}

// Store uploads binary objects to durable storage.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (*Asset, error)
}

// Registry tracks uploaded assets by opaque reference until a registration
// claims them. Entries expire; an expired reference resolves to nothing.
type Registry interface {
	Record(ctx context.Context, ref string, a Asset, ttl time.Duration) error

	// Resolve returns the asset for ref, or (nil, nil) when the reference
	// is unknown or expired.
	Resolve(ctx context.Context, ref string) (*Asset, error)
}

// StorageKey builds a date-bucketed object key under prefix.
func StorageKey(prefix string) string {
	d := time.Now()
	return fmt.Sprintf("%s/%d/%d/%d/%v", prefix, d.Year(), d.Month(), d.Day(), uuid.New())
}
