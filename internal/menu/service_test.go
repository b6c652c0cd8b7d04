package menu

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/poornima-canteen/canteen-backend/pkg/db/models"
	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
)

type memoryRepo struct {
	sections map[string]*models.MenuSection
	order    []string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{sections: map[string]*models.MenuSection{}}
}

func (m *memoryRepo) Sections(_ context.Context) ([]models.MenuSection, error) {
	out := make([]models.MenuSection, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.sections[id])
	}
	return out, nil
}

func (m *memoryRepo) Section(_ context.Context, sectionID string) (*models.MenuSection, error) {
	section, ok := m.sections[sectionID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu section not found")
	}
	copied := *section
	return &copied, nil
}

func (m *memoryRepo) Item(_ context.Context, sectionID, itemID string) (*models.MenuItem, error) {
	section, ok := m.sections[sectionID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	for i := range section.Items {
		if section.Items[i].ID == itemID {
			item := section.Items[i]
			return &item, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
}

func (m *memoryRepo) CreateSection(_ context.Context, section *models.MenuSection) error {
	m.sections[section.ID] = section
	m.order = append(m.order, section.ID)
	return nil
}

func (m *memoryRepo) DeleteSection(_ context.Context, sectionID string) error {
	if _, ok := m.sections[sectionID]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu section not found")
	}
	delete(m.sections, sectionID)
	for i, id := range m.order {
		if id == sectionID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memoryRepo) CreateItem(_ context.Context, item *models.MenuItem) error {
	section, ok := m.sections[item.SectionID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu section not found")
	}
	section.Items = append(section.Items, *item)
	return nil
}

func (m *memoryRepo) DeleteItem(_ context.Context, sectionID, itemID string) error {
	section, ok := m.sections[sectionID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	for i := range section.Items {
		if section.Items[i].ID == itemID {
			section.Items = append(section.Items[:i], section.Items[i+1:]...)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
}

func (m *memoryRepo) CountSections(_ context.Context) (int64, error) {
	return int64(len(m.sections)), nil
}

func newTestService(t *testing.T) (Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, logg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc, repo
}

func TestAddItemAssignsSectionScopedIDs(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	breakfast, err := svc.AddSection(ctx, AddSectionInput{Name: "Breakfast"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snacks, err := svc.AddSection(ctx, AddSectionInput{Name: "Snacks"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := svc.AddItem(ctx, AddItemInput{SectionID: breakfast.ID, Name: "Poha", Price: "25.00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.AddItem(ctx, AddItemInput{SectionID: breakfast.ID, Name: "Idli Sambhar", Price: "40"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other, err := svc.AddItem(ctx, AddItemInput{SectionID: snacks.ID, Name: "Samosa", Price: "15"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != "1" || second.ID != "2" {
		t.Fatalf("expected sequential ids within section, got %q and %q", first.ID, second.ID)
	}
	// Ids restart per section: two different products can share id "1".
	if other.ID != "1" {
		t.Fatalf("expected section-scoped id 1, got %q", other.ID)
	}
}

func TestAddItemRejectsBadPrice(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	section, err := svc.AddSection(ctx, AddSectionInput{Name: "Breakfast"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, price := range []string{"", "abc", "-5", "10.123"} {
		_, err := svc.AddItem(ctx, AddItemInput{SectionID: section.ID, Name: "Poha", Price: price})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("price %q: expected validation error, got %v", price, err)
		}
	}
}

func TestItemResolvesCatalogEntry(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	section, err := svc.AddSection(ctx, AddSectionInput{Name: "Breakfast"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddItem(ctx, AddItemInput{SectionID: section.ID, Name: "Poha", Price: "25.00"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item, err := svc.Item(ctx, section.ID, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Name != "Poha" || !item.UnitPrice.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("unexpected catalog item: %+v", item)
	}

	if _, err := svc.Item(ctx, section.ID, "99"); pkgerrors.As(err) == nil {
		t.Fatal("expected not found for unknown item")
	}
}

func TestDeleteItemAndSection(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	ctx := context.Background()

	section, err := svc.AddSection(ctx, AddSectionInput{Name: "Snacks"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddItem(ctx, AddItemInput{SectionID: section.ID, Name: "Samosa", Price: "15"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteItem(ctx, section.ID, "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteItem(ctx, section.ID, "1"); pkgerrors.As(err) == nil {
		t.Fatal("expected not found for repeat delete")
	}

	if err := svc.DeleteSection(ctx, section.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.sections) != 0 {
		t.Fatal("expected section removed")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo()
	ctx := context.Background()

	if err := Seed(ctx, repo, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count, _ := repo.CountSections(ctx)
	if count != 4 {
		t.Fatalf("expected 4 default sections, got %d", count)
	}

	poha, err := repo.Item(ctx, "Breakfast", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if poha.Name != "Poha" || !poha.Price.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("unexpected seed item: %+v", poha)
	}

	if err := Seed(ctx, repo, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again, _ := repo.CountSections(ctx); again != count {
		t.Fatal("expected second seed to be a no-op")
	}
}
