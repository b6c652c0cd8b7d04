package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
	pkgredis "github.com/poornima-canteen/canteen-backend/pkg/redis"
)

// Cache is the slice of the redis client the cart needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Store mirrors one principal's cart into a single durable cache slot.
// The slot either holds the full serialized line set or does not exist:
// an empty cart is persisted by deleting the key, never by writing [].
type Store struct {
	cache Cache
	key   string
}

// NewStore binds a store to one principal's cart slot.
func NewStore(cache Cache, key string) *Store {
	return &Store{cache: cache, key: key}
}

// Load hydrates the cart from the cache slot. A missing slot yields an
// empty cart. A corrupt payload also yields an empty cart; the bad entry
// is dropped best-effort so the next load starts clean.
func (s *Store) Load(ctx context.Context) (*Cart, error) {
	payload, err := s.cache.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return New(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	var lines []Line
	if err := json.Unmarshal([]byte(payload), &lines); err != nil {
		_ = s.cache.Del(ctx, s.key)
		return New(), nil
	}

	cart := New()
	cart.replace(lines)
	return cart, nil
}

// Save writes the cart back to its slot. Carts never expire on their own,
// so the write carries no TTL; an empty cart removes the slot instead.
func (s *Store) Save(ctx context.Context, cart *Cart) error {
	if cart.IsEmpty() {
		if err := s.cache.Del(ctx, s.key); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart slot")
		}
		return nil
	}

	payload, err := json.Marshal(cart.Lines())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart")
	}
	if err := s.cache.Set(ctx, s.key, payload, 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return nil
}
