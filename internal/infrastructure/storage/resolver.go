package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Backend names recorded on StoredAsset. A stored asset has exactly one
// authoritative backend at a time.
const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// ErrAllBackendsFailed is returned when every backend in the chain rejected
// the write. This is the only storage outcome surfaced to the caller as a
// hard failure.
var ErrAllBackendsFailed = errors.New("all storage backends failed")

// Backend is one persistence target in the resolver's ordered chain.
type Backend interface {
	Name() string
	// Put persists the buffer under key and returns a publicly resolvable URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes the object; deleting an object that is already gone
	// must succeed.
	Delete(ctx context.Context, key string) error
}

// StoredAsset records where a processed image ended up.
type StoredAsset struct {
	URL         string
	Backend     string
	Key         string
	ContentType string
	SizeBytes   int64
}

// Resolver tries an ordered list of backends and stops at the first success.
// Adding another tier later means appending to the list, not touching
// calling code.
type Resolver struct {
	backends []Backend
}

func NewResolver(backends ...Backend) *Resolver {
	return &Resolver{backends: backends}
}

// Persist writes the buffer under a deterministic key shaped as
// {category}/{uuid}.{ext} and returns the stored asset. Failures of
// individual backends are logged and swallowed; only the whole chain failing
// reaches the caller.
func (r *Resolver) Persist(ctx context.Context, category, ext string, data []byte, contentType string) (*StoredAsset, error) {
	key := fmt.Sprintf("%s/%s.%s", category, uuid.New().String(), ext)

	for _, b := range r.backends {
		url, err := b.Put(ctx, key, data, contentType)
		if err != nil {
			log.Warn().
				Err(err).
				Str("backend", b.Name()).
				Str("key", key).
				Msg("Storage backend failed, falling through")
			continue
		}
		return &StoredAsset{
			URL:         url,
			Backend:     b.Name(),
			Key:         key,
			ContentType: contentType,
			SizeBytes:   int64(len(data)),
		}, nil
	}

	return nil, fmt.Errorf("%w: key %s", ErrAllBackendsFailed, key)
}

// Delete removes an asset from the backend recorded at persist time only.
// It never touches the other tiers. Idempotent: an already-deleted object is
// success.
func (r *Resolver) Delete(ctx context.Context, backend, key string) error {
	for _, b := range r.backends {
		if b.Name() == backend {
			return b.Delete(ctx, key)
		}
	}
	return fmt.Errorf("unknown storage backend %q", backend)
}

// Backends returns the configured chain, remote first when present.
func (r *Resolver) Backends() []Backend {
	return r.backends
}
