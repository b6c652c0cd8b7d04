package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type memoryStore struct {
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (m *memoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.data[key] = value.(string)
	return nil
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

type prefixKeyer struct{}

func (prefixKeyer) AccessSessionKey(accessID string) string { return "session:access:" + accessID }

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := &Manager{store: newMemoryStore(), keyer: prefixKeyer{}, ttl: time.Minute}

	accessID := NewAccessID()
	if err := m.Establish(ctx, accessID, "subject-1"); err != nil {
		t.Fatalf("establish failed: %v", err)
	}

	ok, err := m.HasSession(ctx, accessID)
	if err != nil || !ok {
		t.Fatalf("expected live session, got ok=%v err=%v", ok, err)
	}

	if err := m.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	ok, err = m.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("unexpected error after revoke: %v", err)
	}
	if ok {
		t.Fatal("expected session to be gone after revoke")
	}
}

func TestEstablishValidatesInput(t *testing.T) {
	t.Parallel()

	m := &Manager{store: newMemoryStore(), keyer: prefixKeyer{}, ttl: time.Minute}
	if err := m.Establish(context.Background(), "", "subject"); err == nil {
		t.Fatal("expected error for empty access id")
	}
	if err := m.Establish(context.Background(), "access", " "); err == nil {
		t.Fatal("expected error for empty subject id")
	}
}
