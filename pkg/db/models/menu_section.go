package models

import "time"

// MenuSection groups menu items under one display heading.
type MenuSection struct {
	ID        string     `gorm:"column:id;primaryKey" json:"id"`
	Name      string     `gorm:"column:name;not null" json:"name"`
	Position  int        `gorm:"column:position;not null;default:0" json:"position"`
	Items     []MenuItem `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (MenuSection) TableName() string { return "menu_sections" }
