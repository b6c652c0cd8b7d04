package menu

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poornima-canteen/canteen-backend/internal/cart"
	"github.com/poornima-canteen/canteen-backend/pkg/db/models"
	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
)

// AddSectionInput creates one new display section.
type AddSectionInput struct {
	Name string `json:"name" validate:"required,min=2,max=80"`
}

// AddItemInput creates one orderable item under an existing section. The
// section id arrives from the route, not the body.
type AddItemInput struct {
	SectionID   string `json:"-"`
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Price       string `json:"price" validate:"required"`
	Description string `json:"description" validate:"omitempty,max=500"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}

// Service exposes catalog reads for everyone and catalog writes for the
// privileged principal. Authorization happens upstream.
type Service interface {
	Menu(ctx context.Context) ([]models.MenuSection, error)
	Item(ctx context.Context, sectionID, itemID string) (cart.CatalogItem, error)
	AddSection(ctx context.Context, input AddSectionInput) (*models.MenuSection, error)
	DeleteSection(ctx context.Context, sectionID string) error
	AddItem(ctx context.Context, input AddItemInput) (*models.MenuItem, error)
	DeleteItem(ctx context.Context, sectionID, itemID string) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the menu service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("menu service requires a repository")
	}
	if logg == nil {
		return nil, errors.New("menu service requires a logger")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Menu(ctx context.Context) ([]models.MenuSection, error) {
	return s.repo.Sections(ctx)
}

func (s *service) Item(ctx context.Context, sectionID, itemID string) (cart.CatalogItem, error) {
	item, err := s.repo.Item(ctx, sectionID, itemID)
	if err != nil {
		return cart.CatalogItem{}, err
	}
	out := cart.CatalogItem{
		ID:        item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
	}
	if item.ImageURL != nil {
		out.ImageURL = *item.ImageURL
	}
	return out, nil
}

func (s *service) AddSection(ctx context.Context, input AddSectionInput) (*models.MenuSection, error) {
	count, err := s.repo.CountSections(ctx)
	if err != nil {
		return nil, err
	}
	section := &models.MenuSection{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(input.Name),
		Position: int(count),
	}
	if err := s.repo.CreateSection(ctx, section); err != nil {
		return nil, err
	}
	s.logg.Info(ctx, "menu section created")
	return section, nil
}

func (s *service) DeleteSection(ctx context.Context, sectionID string) error {
	if err := s.repo.DeleteSection(ctx, sectionID); err != nil {
		return err
	}
	s.logg.Info(ctx, "menu section deleted")
	return nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*models.MenuItem, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(input.Price))
	if err != nil || price.IsNegative() || price.Exponent() < -2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be a non-negative amount with at most two decimals")
	}

	section, err := s.repo.Section(ctx, input.SectionID)
	if err != nil {
		return nil, err
	}

	item := &models.MenuItem{
		ID:        nextItemID(section.Items),
		SectionID: section.ID,
		Name:      strings.TrimSpace(input.Name),
		Price:     price,
	}
	if input.Description != "" {
		desc := strings.TrimSpace(input.Description)
		item.Description = &desc
	}
	if input.ImageURL != "" {
		img := input.ImageURL
		item.ImageURL = &img
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	s.logg.Info(ctx, "menu item created")
	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, sectionID, itemID string) error {
	if err := s.repo.DeleteItem(ctx, sectionID, itemID); err != nil {
		return err
	}
	s.logg.Info(ctx, "menu item deleted")
	return nil
}

// nextItemID assigns sequential ids scoped to the section. Ids restart at 1
// per section, so two sections can both hold an item "1"; the cart's
// composite (id, name) key keeps those apart.
func nextItemID(items []models.MenuItem) string {
	max := 0
	for _, item := range items {
		if n, err := strconv.Atoi(item.ID); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}
