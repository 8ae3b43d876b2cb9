package models

import "time"

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"    // Order created from a cart at checkout
	OrderStatusConfirmed OrderStatus = "confirmed" // Accepted by the kitchen
	OrderStatusPreparing OrderStatus = "preparing" // Being cooked
	OrderStatusReady     OrderStatus = "ready"     // Ready for pickup/delivery
	OrderStatusCompleted OrderStatus = "completed" // Handed to the customer
	OrderStatusCancelled OrderStatus = "cancelled" // Cancelled before it was ready
)

type Order struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	OrderRef string `gorm:"uniqueIndex" json:"order_ref"`
	OwnerID  string `gorm:"index;not null" json:"owner_id"`
	// ContainsNonVeg records the diet partition the order falls in; it gates
	// which admin roles may act on it.
	ContainsNonVeg bool        `json:"contains_non_veg"`
	Items          []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal       float64     `json:"subtotal"`
	Tax            float64     `json:"tax"`
	Total          float64     `json:"total"`
	Status         OrderStatus `gorm:"type:VARCHAR(20);default:'placed'" json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	OrderID      uint             `gorm:"index" json:"order_id"`
	MenuItemID   uint             `json:"menu_item_id"`
	ItemName     string           `json:"item_name"`
	Vegetarian   bool             `json:"vegetarian"`
	Size         string           `json:"size"`
	UnitPrice    float64          `json:"unit_price"`
	Quantity     int              `json:"quantity"`
	Instructions string           `json:"instructions"`
	AddOns       []OrderItemAddOn `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE" json:"add_ons"`
}

type OrderItemAddOn struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderItemID uint    `gorm:"index" json:"order_item_id"`
	AddOnID     uint    `json:"add_on_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
}

// Diet returns the partition the order belongs to.
func (o *Order) Diet() DietType {
	if o.ContainsNonVeg {
		return DietNonVeg
	}
	return DietVeg
}

// Terminal reports whether no further status change is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}
