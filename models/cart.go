package models

import "time"

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	OwnerID   string     `gorm:"uniqueIndex" json:"owner_id"` // Enforces ONE cart per owner (guest session or user)
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CartID       uint            `gorm:"index" json:"cart_id"`
	MenuItemID   uint            `json:"menu_item_id"`
	ItemName     string          `json:"item_name"`
	Vegetarian   bool            `json:"vegetarian"`
	Size         string          `json:"size"`
	UnitPrice    float64         `json:"unit_price"` // size price + add-on prices, snapshotted
	Quantity     int             `json:"quantity"`
	Instructions string          `json:"instructions"`
	AddOns       []CartItemAddOn `gorm:"foreignKey:CartItemID;constraint:OnDelete:CASCADE" json:"add_ons"`
	AddedAt      time.Time       `json:"added_at"`
}

// CartItemAddOn snapshots a chosen add-on's name and price at the time it
// was added, so later menu edits never change what the cart charges.
type CartItemAddOn struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	CartItemID uint    `gorm:"index" json:"cart_item_id"`
	AddOnID    uint    `json:"add_on_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
}

// LineSubtotal is the derived per-line amount.
func (ci *CartItem) LineSubtotal() float64 {
	return ci.UnitPrice * float64(ci.Quantity)
}

// Subtotal sums every line's unit price times quantity.
func (c *Cart) Subtotal() float64 {
	var total float64
	for i := range c.Items {
		total += c.Items[i].LineSubtotal()
	}
	return total
}
