package models

import (
	"time"

	"gorm.io/gorm"
)

type DietType string

const (
	DietVeg    DietType = "veg"
	DietNonVeg DietType = "non-veg"
)

type Category struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string     `gorm:"unique;not null" json:"name"`
	DietType  DietType   `gorm:"type:VARCHAR(10);not null" json:"diet_type"`
	Image     string     `json:"image"`
	MenuItems []MenuItem `gorm:"foreignKey:CategoryID" json:"menu_items,omitempty"`
}

type MenuItem struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Vegetarian  bool           `json:"vegetarian"`
	BasePrice   float64        `gorm:"not null" json:"base_price"`
	Image       string         `json:"image"`
	Available   bool           `gorm:"default:true" json:"available"`
	CategoryID  uint           `gorm:"index" json:"category_id"`
	Sizes       []MenuItemSize `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE" json:"sizes"`
	AddOns      []AddOn        `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE" json:"add_ons"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// MenuItemSize is a named portion with its own price, e.g. "regular", "large".
type MenuItemSize struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	MenuItemID uint    `gorm:"index" json:"menu_item_id"`
	Name       string  `gorm:"not null" json:"name"`
	Price      float64 `gorm:"not null" json:"price"`
}

type AddOn struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	MenuItemID uint    `gorm:"index" json:"menu_item_id"`
	Name       string  `gorm:"not null" json:"name"`
	Price      float64 `json:"price"`
}

// PriceForSize resolves the unit price for a chosen size name, falling back
// to the base price when the item has no such size.
func (m *MenuItem) PriceForSize(size string) float64 {
	for _, s := range m.Sizes {
		if s.Name == size {
			return s.Price
		}
	}
	return m.BasePrice
}

// AddOnByID looks up one of the item's add-ons.
func (m *MenuItem) AddOnByID(id uint) (AddOn, bool) {
	for _, a := range m.AddOns {
		if a.ID == id {
			return a, true
		}
	}
	return AddOn{}, false
}
