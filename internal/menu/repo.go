package menu

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/poornima-canteen/canteen-backend/pkg/db"
	"github.com/poornima-canteen/canteen-backend/pkg/db/models"
	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
)

// Repository is the persistence surface for the menu catalog.
type Repository interface {
	Sections(ctx context.Context) ([]models.MenuSection, error)
	Section(ctx context.Context, sectionID string) (*models.MenuSection, error)
	Item(ctx context.Context, sectionID, itemID string) (*models.MenuItem, error)
	CreateSection(ctx context.Context, section *models.MenuSection) error
	DeleteSection(ctx context.Context, sectionID string) error
	CreateItem(ctx context.Context, item *models.MenuItem) error
	DeleteItem(ctx context.Context, sectionID, itemID string) error
	CountSections(ctx context.Context) (int64, error)
}

type gormRepository struct {
	client *db.Client
}

// NewRepository builds the GORM-backed menu repository.
func NewRepository(client *db.Client) (Repository, error) {
	if client == nil {
		return nil, errors.New("menu repository requires a db client")
	}
	return &gormRepository{client: client}, nil
}

func (r *gormRepository) conn(ctx context.Context) *gorm.DB {
	return r.client.DB().WithContext(ctx)
}

func (r *gormRepository) Sections(ctx context.Context) ([]models.MenuSection, error) {
	var sections []models.MenuSection
	err := r.conn(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("menu_items.id ASC")
		}).
		Order("position ASC, id ASC").
		Find(&sections).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing menu sections")
	}
	return sections, nil
}

func (r *gormRepository) Section(ctx context.Context, sectionID string) (*models.MenuSection, error) {
	var section models.MenuSection
	err := r.conn(ctx).
		Preload("Items").
		Where("id = ?", sectionID).
		First(&section).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu section not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading menu section")
	}
	return &section, nil
}

func (r *gormRepository) Item(ctx context.Context, sectionID, itemID string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.conn(ctx).
		Where("section_id = ? AND id = ?", sectionID, itemID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading menu item")
	}
	return &item, nil
}

func (r *gormRepository) CreateSection(ctx context.Context, section *models.MenuSection) error {
	if err := r.conn(ctx).Create(section).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating menu section")
	}
	return nil
}

func (r *gormRepository) DeleteSection(ctx context.Context, sectionID string) error {
	return r.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("section_id = ?", sectionID).Delete(&models.MenuItem{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting section items")
		}
		result := tx.Where("id = ?", sectionID).Delete(&models.MenuSection{})
		if result.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "deleting menu section")
		}
		if result.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "menu section not found")
		}
		return nil
	})
}

func (r *gormRepository) CreateItem(ctx context.Context, item *models.MenuItem) error {
	if err := r.conn(ctx).Create(item).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating menu item")
	}
	return nil
}

func (r *gormRepository) DeleteItem(ctx context.Context, sectionID, itemID string) error {
	result := r.conn(ctx).
		Where("section_id = ? AND id = ?", sectionID, itemID).
		Delete(&models.MenuItem{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "deleting menu item")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return nil
}

func (r *gormRepository) CountSections(ctx context.Context) (int64, error) {
	var count int64
	if err := r.conn(ctx).Model(&models.MenuSection{}).Count(&count).Error; err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting menu sections")
	}
	return count, nil
}
