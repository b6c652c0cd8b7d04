package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is one orderable catalog entry. Item ids are only unique within
// their section, which is why cart lines are addressed by (id, name).
type MenuItem struct {
	ID          string          `gorm:"column:id;primaryKey" json:"id"`
	SectionID   string          `gorm:"column:section_id;primaryKey" json:"section_id"`
	Name        string          `gorm:"column:name;not null" json:"name"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	Description *string         `gorm:"column:description" json:"description,omitempty"`
	ImageURL    *string         `gorm:"column:image_url" json:"image_url,omitempty"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (MenuItem) TableName() string { return "menu_items" }
