package notify

import (
	"context"
	"testing"
	"time"

	"github.com/poornima-canteen/canteen-backend/pkg/config"
)

type memoryRing struct {
	lists map[string][]string
	ttls  map[string]time.Duration
}

func newMemoryRing() *memoryRing {
	return &memoryRing{lists: map[string][]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryRing) LPush(_ context.Context, key string, ttl time.Duration, values ...any) error {
	for _, value := range values {
		var s string
		switch v := value.(type) {
		case []byte:
			s = string(v)
		case string:
			s = v
		}
		m.lists[key] = append([]string{s}, m.lists[key]...)
	}
	m.ttls[key] = ttl
	return nil
}

func (m *memoryRing) DrainList(_ context.Context, key string) ([]string, error) {
	values := m.lists[key]
	delete(m.lists, key)
	return values, nil
}

func (m *memoryRing) NotificationKey(subjectID string) string {
	return "notify:" + subjectID
}

func TestPushDrainOrderAndEmptiness(t *testing.T) {
	t.Parallel()

	ring := newMemoryRing()
	svc, err := NewService(ring, config.NotifyConfig{TTL: time.Minute})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	if err := svc.Push(ctx, "alice", "Poha added to cart"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Push(ctx, "alice", "Chai added to cart"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notes, err := svc.Drain(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notes))
	}
	if notes[0].Message != "Poha added to cart" || notes[1].Message != "Chai added to cart" {
		t.Fatalf("expected chronological order, got %+v", notes)
	}

	again, err := svc.Drain(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected drained queue, got %d", len(again))
	}
	if ring.ttls["notify:alice"] != time.Minute {
		t.Fatalf("expected queue ttl applied, got %v", ring.ttls["notify:alice"])
	}
}

func TestPushValidatesInput(t *testing.T) {
	t.Parallel()

	svc, err := NewService(newMemoryRing(), config.NotifyConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Push(context.Background(), "", "hello"); err == nil {
		t.Fatal("expected validation error for empty subject")
	}
	if err := svc.Push(context.Background(), "alice", ""); err == nil {
		t.Fatal("expected validation error for empty message")
	}
}

func TestDrainSkipsCorruptEntries(t *testing.T) {
	t.Parallel()

	ring := newMemoryRing()
	svc, err := NewService(ring, config.NotifyConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	if err := svc.Push(ctx, "alice", "kept"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ring.lists["notify:alice"] = append([]string{"{bad"}, ring.lists["notify:alice"]...)

	notes, err := svc.Drain(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 1 || notes[0].Message != "kept" {
		t.Fatalf("expected corrupt entry skipped, got %+v", notes)
	}
}
