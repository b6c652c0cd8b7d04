package cart

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
	pkgredis "github.com/poornima-canteen/canteen-backend/pkg/redis"
)

type memoryCache struct {
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	value, ok := m.data[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return value, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return nil
}

func (m *memoryCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

type staticKeyer struct{}

func (staticKeyer) CartKey(subjectID string) string { return "cart:" + subjectID }

type stubItems struct {
	items map[string]CatalogItem
}

func (s *stubItems) Item(_ context.Context, sectionID, itemID string) (CatalogItem, error) {
	item, ok := s.items[sectionID+"/"+itemID]
	if !ok {
		return CatalogItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return item, nil
}

type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Push(_ context.Context, _ string, message string) error {
	r.messages = append(r.messages, message)
	return nil
}

func newTestService(t *testing.T) (Service, *memoryCache, *recordingNotifier) {
	t.Helper()

	cache := newMemoryCache()
	notifier := &recordingNotifier{}
	items := &stubItems{items: map[string]CatalogItem{
		"breakfast/1": {ID: "1", Name: "Poha", UnitPrice: decimal.RequireFromString("25.00")},
		"snacks/1":    {ID: "1", Name: "Samosa", UnitPrice: decimal.RequireFromString("15.00")},
	}}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	svc, err := NewService(cache, staticKeyer{}, items, notifier, logg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc, cache, notifier
}

func TestServiceAddMergesAndNotifies(t *testing.T) {
	t.Parallel()

	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "alice", AddInput{SectionID: "breakfast", ItemID: "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, err := svc.Add(ctx, "alice", AddInput{SectionID: "breakfast", ItemID: "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Count != 1 {
		t.Fatalf("expected one merged line, got %d", snap.Count)
	}
	if snap.Lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", snap.Lines[0].Quantity)
	}
	if len(notifier.messages) != 2 {
		t.Fatalf("expected one notification per mutation, got %d", len(notifier.messages))
	}
	// Each notification names the item and the quantity it landed on.
	if notifier.messages[0] != "Poha added to cart (x1)" || notifier.messages[1] != "Poha added to cart (x2)" {
		t.Fatalf("unexpected notifications: %v", notifier.messages)
	}
}

func TestServiceSurvivesRestart(t *testing.T) {
	t.Parallel()

	svc, cache, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "alice", AddInput{SectionID: "breakfast", ItemID: "1", Quantity: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A fresh service over the same cache sees the persisted lines.
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	items := &stubItems{items: map[string]CatalogItem{}}
	fresh, err := NewService(cache, staticKeyer{}, items, &recordingNotifier{}, logg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, err := fresh.Snapshot(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Count != 1 || snap.Lines[0].Quantity != 3 {
		t.Fatalf("expected rehydrated cart, got %+v", snap)
	}
}

func TestServiceRemoveLastLineDeletesSlot(t *testing.T) {
	t.Parallel()

	svc, cache, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "alice", AddInput{SectionID: "breakfast", ItemID: "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, err := svc.Remove(ctx, "alice", "1", "Poha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Count != 0 {
		t.Fatalf("expected empty cart, got %d lines", snap.Count)
	}
	if _, ok := cache.data["cart:alice"]; ok {
		t.Fatal("expected cart slot removed when emptied")
	}
}

func TestServiceCorruptSlotFallsBackToEmpty(t *testing.T) {
	t.Parallel()

	svc, cache, _ := newTestService(t)
	ctx := context.Background()

	cache.data["cart:alice"] = "{not json"
	snap, err := svc.Snapshot(ctx, "alice")
	if err != nil {
		t.Fatalf("expected corrupt slot tolerated, got %v", err)
	}
	if snap.Count != 0 {
		t.Fatalf("expected empty cart, got %d lines", snap.Count)
	}
	if _, ok := cache.data["cart:alice"]; ok {
		t.Fatal("expected corrupt slot dropped")
	}
}

func TestServiceSetQuantityUnknownItem(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetQuantity(ctx, "alice", SetQuantityInput{SectionID: "breakfast", ItemID: "99", Quantity: 2})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestServiceClearRemovesSlot(t *testing.T) {
	t.Parallel()

	svc, cache, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "alice", AddInput{SectionID: "snacks", ItemID: "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Clear(ctx, "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cache.data["cart:alice"]; ok {
		t.Fatal("expected cart slot removed")
	}
}
