package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
)

// ItemSource resolves a menu item so the cart never trusts client-supplied
// names or prices.
type ItemSource interface {
	Item(ctx context.Context, sectionID, itemID string) (CatalogItem, error)
}

// Notifier receives one message per state-changing cart operation.
type Notifier interface {
	Push(ctx context.Context, subjectID, message string) error
}

// Keyer maps a principal to its cart slot.
type Keyer interface {
	CartKey(subjectID string) string
}

// AddInput adds delta units of a catalog item to the cart.
type AddInput struct {
	SectionID string `json:"section_id" validate:"required"`
	ItemID    string `json:"item_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gt=0"`
}

// SetQuantityInput pins a line to an absolute quantity.
type SetQuantityInput struct {
	SectionID string `json:"section_id" validate:"required"`
	ItemID    string `json:"item_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required"`
}

// Snapshot is the cart as returned to callers.
type Snapshot struct {
	Lines      []Line          `json:"items"`
	Total      decimal.Decimal `json:"total"`
	TotalPaise int64           `json:"total_paise"`
	Count      int             `json:"count"`
}

// Service exposes the cart operations for one principal at a time.
type Service interface {
	Snapshot(ctx context.Context, subjectID string) (*Snapshot, error)
	Add(ctx context.Context, subjectID string, input AddInput) (*Snapshot, error)
	SetQuantity(ctx context.Context, subjectID string, input SetQuantityInput) (*Snapshot, error)
	Remove(ctx context.Context, subjectID, itemID, name string) (*Snapshot, error)
	Clear(ctx context.Context, subjectID string) error
}

type service struct {
	cache  Cache
	keyer  Keyer
	items  ItemSource
	notify Notifier
	logg   *logger.Logger
}

// NewService wires the cart service.
func NewService(cache Cache, keyer Keyer, items ItemSource, notify Notifier, logg *logger.Logger) (Service, error) {
	if cache == nil {
		return nil, errors.New("cart service requires a cache")
	}
	if keyer == nil {
		return nil, errors.New("cart service requires a keyer")
	}
	if items == nil {
		return nil, errors.New("cart service requires an item source")
	}
	if notify == nil {
		return nil, errors.New("cart service requires a notifier")
	}
	if logg == nil {
		return nil, errors.New("cart service requires a logger")
	}
	return &service{cache: cache, keyer: keyer, items: items, notify: notify, logg: logg}, nil
}

func (s *service) storeFor(subjectID string) *Store {
	return NewStore(s.cache, s.keyer.CartKey(subjectID))
}

func (s *service) Snapshot(ctx context.Context, subjectID string) (*Snapshot, error) {
	cart, err := s.storeFor(subjectID).Load(ctx)
	if err != nil {
		return nil, err
	}
	return snapshotOf(cart), nil
}

func (s *service) Add(ctx context.Context, subjectID string, input AddInput) (*Snapshot, error) {
	delta := input.Quantity
	if delta == 0 {
		delta = 1
	}

	item, err := s.items.Item(ctx, input.SectionID, input.ItemID)
	if err != nil {
		return nil, err
	}

	store := s.storeFor(subjectID)
	cart, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	line, changed := cart.Increment(item, delta)
	if changed {
		if err := store.Save(ctx, cart); err != nil {
			return nil, err
		}
		s.pushNote(ctx, subjectID, fmt.Sprintf("%s added to cart (x%d)", line.Name, line.Quantity))
	}
	return snapshotOf(cart), nil
}

func (s *service) SetQuantity(ctx context.Context, subjectID string, input SetQuantityInput) (*Snapshot, error) {
	item, err := s.items.Item(ctx, input.SectionID, input.ItemID)
	if err != nil {
		return nil, err
	}

	store := s.storeFor(subjectID)
	cart, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	line, changed := cart.SetQuantity(item, input.Quantity)
	if changed {
		if err := store.Save(ctx, cart); err != nil {
			return nil, err
		}
		s.pushNote(ctx, subjectID, fmt.Sprintf("%s quantity set to %d", line.Name, line.Quantity))
	}
	return snapshotOf(cart), nil
}

func (s *service) Remove(ctx context.Context, subjectID, itemID, name string) (*Snapshot, error) {
	if itemID == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id and name are required")
	}

	store := s.storeFor(subjectID)
	cart, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if cart.Remove(itemID, name) {
		if err := store.Save(ctx, cart); err != nil {
			return nil, err
		}
		s.pushNote(ctx, subjectID, fmt.Sprintf("%s removed from cart", name))
	}
	return snapshotOf(cart), nil
}

func (s *service) Clear(ctx context.Context, subjectID string) error {
	cart := New()
	return s.storeFor(subjectID).Save(ctx, cart)
}

// pushNote is best effort: losing a toast must never fail the mutation.
func (s *service) pushNote(ctx context.Context, subjectID, message string) {
	if err := s.notify.Push(ctx, subjectID, message); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("notification dropped: %v", err))
	}
}

func snapshotOf(cart *Cart) *Snapshot {
	return &Snapshot{
		Lines:      cart.Lines(),
		Total:      cart.Total(),
		TotalPaise: cart.TotalPaise(),
		Count:      cart.Len(),
	}
}
