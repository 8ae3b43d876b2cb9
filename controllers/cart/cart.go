package cartControllers

import (
	"errors"
	"os"
	"sort"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/walthampeppinosdosa/peppinos-api/apperr"
	"github.com/walthampeppinosdosa/peppinos-api/events"
	"github.com/walthampeppinosdosa/peppinos-api/models"
)

// defaultTaxRate applies when TAX_RATE is unset: the Massachusetts meals tax.
const defaultTaxRate = 0.0625

// TaxRate reads the configured fixed tax rate.
func TaxRate() float64 {
	if v := os.Getenv("TAX_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil && rate >= 0 {
			return rate
		}
	}
	return defaultTaxRate
}

// Totals is the checkout-facing breakdown of a cart.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	TaxRate  float64 `json:"tax_rate"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// ComputeTotals derives subtotal, tax and grand total from the cart contents.
func ComputeTotals(cart *models.Cart) Totals {
	subtotal := cart.Subtotal()
	rate := TaxRate()
	tax := subtotal * rate
	return Totals{
		Subtotal: subtotal,
		TaxRate:  rate,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

type AddItemInput struct {
	MenuItemID   uint   `json:"menu_item_id" binding:"required"`
	Size         string `json:"size"`
	AddOnIDs     []uint `json:"add_on_ids"`
	Quantity     int    `json:"quantity" binding:"required"`
	Instructions string `json:"instructions"`
}

// lockForUpdate takes a row-level lock on Postgres so concurrent mutations of
// the same cart serialize instead of losing updates. SQLite (tests) has a
// single writer, so the clause is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// getOrCreateCart loads the owner's single cart under the transaction's lock,
// creating an empty one when absent. An absent cart is a normal initial
// state, never an error.
func getOrCreateCart(tx *gorm.DB, ownerID string) (*models.Cart, error) {
	var cart models.Cart
	err := lockForUpdate(tx).Preload("Items.AddOns").Preload("Items").
		Where("owner_id = ?", ownerID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}

	cart = models.Cart{OwnerID: ownerID}
	if err := tx.Create(&cart).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &cart, nil
}

// GetCart fetches the owner's cart outside any mutation path.
func GetCart(db *gorm.DB, ownerID string) (*models.Cart, error) {
	var cart *models.Cart
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = getOrCreateCart(tx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// sameAddOnSet compares a line's snapshotted add-ons against a chosen set.
func sameAddOnSet(existing []models.CartItemAddOn, chosen []uint) bool {
	if len(existing) != len(chosen) {
		return false
	}
	have := make([]uint, 0, len(existing))
	for _, a := range existing {
		have = append(have, a.AddOnID)
	}
	want := append([]uint(nil), chosen...)
	sort.Slice(have, func(i, j int) bool { return have[i] < have[j] })
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	for i := range have {
		if have[i] != want[i] {
			return false
		}
	}
	return true
}

// AddItem appends a line to the owner's cart, merging with an existing
// identical line (same menu item, size, add-on set and instructions).
func AddItem(db *gorm.DB, pub *events.CartPublisher, ownerID string, input AddItemInput) (*models.Cart, error) {
	if input.Quantity < 1 {
		return nil, apperr.InvalidArgument("quantity must be at least 1")
	}

	var menuItem models.MenuItem
	if err := db.Preload("Sizes").Preload("AddOns").
		First(&menuItem, "id = ?", input.MenuItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("menu item %d does not exist", input.MenuItemID)
		}
		return nil, apperr.Internal(err)
	}

	if input.Size != "" && len(menuItem.Sizes) > 0 {
		found := false
		for _, s := range menuItem.Sizes {
			if s.Name == input.Size {
				found = true
				break
			}
		}
		if !found {
			return nil, apperr.InvalidArgument("menu item %s has no size %q", menuItem.Name, input.Size)
		}
	}

	unitPrice := menuItem.PriceForSize(input.Size)
	var addOns []models.CartItemAddOn
	for _, id := range input.AddOnIDs {
		addOn, ok := menuItem.AddOnByID(id)
		if !ok {
			return nil, apperr.InvalidArgument("menu item %s has no add-on %d", menuItem.Name, id)
		}
		unitPrice += addOn.Price
		addOns = append(addOns, models.CartItemAddOn{
			AddOnID: addOn.ID,
			Name:    addOn.Name,
			Price:   addOn.Price,
		})
	}

	var cart *models.Cart
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = getOrCreateCart(tx, ownerID)
		if err != nil {
			return err
		}

		// Merge with an identical existing line.
		for i := range cart.Items {
			line := &cart.Items[i]
			if line.MenuItemID == input.MenuItemID &&
				line.Size == input.Size &&
				line.Instructions == input.Instructions &&
				sameAddOnSet(line.AddOns, input.AddOnIDs) {
				line.Quantity += input.Quantity
				line.AddedAt = time.Now()
				return tx.Save(line).Error
			}
		}

		newItem := models.CartItem{
			CartID:       cart.CartID,
			MenuItemID:   menuItem.ID,
			ItemName:     menuItem.Name,
			Vegetarian:   menuItem.Vegetarian,
			Size:         input.Size,
			UnitPrice:    unitPrice,
			Quantity:     input.Quantity,
			Instructions: input.Instructions,
			AddOns:       addOns,
			AddedAt:      time.Now(),
		}
		if err := tx.Create(&newItem).Error; err != nil {
			return err
		}
		cart.Items = append(cart.Items, newItem)
		return nil
	})
	if err != nil {
		return nil, wrap(err)
	}

	pub.Publish(ownerID, *cart)
	return cart, nil
}

// UpdateQuantity sets a line's quantity; zero removes the line entirely.
func UpdateQuantity(db *gorm.DB, pub *events.CartPublisher, ownerID string, itemID uint, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, apperr.InvalidArgument("quantity cannot be negative")
	}
	if quantity == 0 {
		return RemoveItem(db, pub, ownerID, itemID)
	}

	var cart *models.Cart
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = getOrCreateCart(tx, ownerID)
		if err != nil {
			return err
		}
		for i := range cart.Items {
			line := &cart.Items[i]
			if line.ID == itemID {
				line.Quantity = quantity
				return tx.Save(line).Error
			}
		}
		return apperr.NotFound("cart item %d not found", itemID)
	})
	if err != nil {
		return nil, wrap(err)
	}

	pub.Publish(ownerID, *cart)
	return cart, nil
}

// RemoveItem deletes a line and its add-on snapshots, leaving no trace of the
// item in the cart.
func RemoveItem(db *gorm.DB, pub *events.CartPublisher, ownerID string, itemID uint) (*models.Cart, error) {
	var cart *models.Cart
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = getOrCreateCart(tx, ownerID)
		if err != nil {
			return err
		}

		idx := -1
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperr.NotFound("cart item %d not found", itemID)
		}

		if err := tx.Where("cart_item_id = ?", itemID).Delete(&models.CartItemAddOn{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.CartItem{}, itemID).Error; err != nil {
			return err
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		return nil
	})
	if err != nil {
		return nil, wrap(err)
	}

	pub.Publish(ownerID, *cart)
	return cart, nil
}

// ClearCart empties the owner's cart. Clearing an already-empty or absent
// cart is a no-op so checkout retries stay idempotent.
func ClearCart(db *gorm.DB, pub *events.CartPublisher, ownerID string) error {
	var cart *models.Cart
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = getOrCreateCart(tx, ownerID)
		if err != nil {
			return err
		}
		return clearCartItems(tx, cart)
	})
	if err != nil {
		return wrap(err)
	}

	pub.Publish(ownerID, *cart)
	return nil
}

// clearCartItems removes every line of an already-locked cart. The checkout
// path reuses it through ClearLockedCart inside its own transaction.
func clearCartItems(tx *gorm.DB, cart *models.Cart) error {
	if len(cart.Items) == 0 {
		return nil
	}
	var itemIDs []uint
	for _, item := range cart.Items {
		itemIDs = append(itemIDs, item.ID)
	}
	if err := tx.Where("cart_item_id IN ?", itemIDs).Delete(&models.CartItemAddOn{}).Error; err != nil {
		return err
	}
	if err := tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	cart.Items = nil
	return nil
}

// LockCartForCheckout exposes the locked read + clear pair to the order
// package so cart-to-order conversion happens in one transaction.
func LockCartForCheckout(tx *gorm.DB, ownerID string) (*models.Cart, error) {
	return getOrCreateCart(tx, ownerID)
}

// ClearLockedCart empties a cart previously loaded by LockCartForCheckout.
func ClearLockedCart(tx *gorm.DB, cart *models.Cart) error {
	return clearCartItems(tx, cart)
}

// wrap keeps apperr kinds intact and folds raw DB errors into internal.
func wrap(err error) error {
	if apperr.KindOf(err) != apperr.KindInternal {
		return err
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperr.Internal(err)
}
