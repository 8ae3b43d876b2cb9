package orderControllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/walthampeppinosdosa/peppinos-api/apperr"
	"github.com/walthampeppinosdosa/peppinos-api/middleware"
	"github.com/walthampeppinosdosa/peppinos-api/models"
	"github.com/walthampeppinosdosa/peppinos-api/permissions"
	"github.com/walthampeppinosdosa/peppinos-api/realtime"
	"github.com/walthampeppinosdosa/peppinos-api/statemachine"

	cartControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/cart"
)

// generateOrderRef builds a unique, human-sortable order reference.
func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// Checkout converts the owner's cart into an order in a single transaction:
// read the locked cart, snapshot its lines, compute totals with tax, create
// the order, clear the cart. A retry after partial completion only re-clears
// an already-empty cart, which is a no-op.
func Checkout(db *gorm.DB, ownerID string) (*models.Order, error) {
	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		cart, err := cartControllers.LockCartForCheckout(tx, ownerID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return apperr.InvalidArgument("cart is empty")
		}

		containsNonVeg := false
		var orderItems []models.OrderItem
		for _, line := range cart.Items {
			if !line.Vegetarian {
				containsNonVeg = true
			}
			var addOns []models.OrderItemAddOn
			for _, a := range line.AddOns {
				addOns = append(addOns, models.OrderItemAddOn{
					AddOnID: a.AddOnID,
					Name:    a.Name,
					Price:   a.Price,
				})
			}
			orderItems = append(orderItems, models.OrderItem{
				MenuItemID:   line.MenuItemID,
				ItemName:     line.ItemName,
				Vegetarian:   line.Vegetarian,
				Size:         line.Size,
				UnitPrice:    line.UnitPrice,
				Quantity:     line.Quantity,
				Instructions: line.Instructions,
				AddOns:       addOns,
			})
		}

		totals := cartControllers.ComputeTotals(cart)
		order = models.Order{
			OrderRef:       generateOrderRef(),
			OwnerID:        ownerID,
			ContainsNonVeg: containsNonVeg,
			Items:          orderItems,
			Subtotal:       totals.Subtotal,
			Tax:            totals.Tax,
			Total:          totals.Total,
			Status:         models.OrderStatusPlaced,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return cartControllers.ClearLockedCart(tx, cart)
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}
	return &order, nil
}

// UpdateStatus validates the role's diet-partition permission, then the
// state machine, then persists. The order is left untouched when either
// check fails.
func UpdateStatus(db *gorm.DB, role models.Role, orderID uint, newStatus models.OrderStatus) (*models.Order, error) {
	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items.AddOns").Preload("Items").
			First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order %d not found", orderID)
			}
			return err
		}

		// Permission before transition.
		if err := permissions.CheckOrderAccess(role, permissions.ActionUpdateOrders, order.Diet()); err != nil {
			return err
		}
		if err := statemachine.CanTransition(order.Status, newStatus); err != nil {
			return err
		}

		order.Status = newStatus
		return tx.Model(&models.Order{}).Where("id = ?", orderID).
			Update("status", newStatus).Error
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}
	return &order, nil
}

// -------- Handlers --------

func respondErr(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
}

// POST /checkout - converts the caller's cart into a placed order.
func CheckoutHandler(db *gorm.DB, hub *realtime.Hub, owner cartControllers.OwnerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, err := owner(c)
		if err != nil {
			respondErr(c, err)
			return
		}
		order, err := Checkout(db, ownerID)
		if err != nil {
			respondErr(c, err)
			return
		}
		hub.BroadcastOrderEvent(realtime.OrderEvent{
			OrderID:   order.ID,
			OrderRef:  order.OrderRef,
			Status:    order.Status,
			Timestamp: time.Now(),
		})
		c.JSON(http.StatusCreated, order)
	}
}

// GET /admin/orders - list, filtered to the admin's diet partitions.
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := middleware.GetRole(c)
		query := db.Preload("Items.AddOns").Preload("Items").Order("created_at DESC")

		if role != models.RoleSuperAdmin {
			switch {
			case permissions.CoversDiet(role, models.DietVeg):
				query = query.Where("contains_non_veg = ?", false)
			case permissions.CoversDiet(role, models.DietNonVeg):
				query = query.Where("contains_non_veg = ?", true)
			default:
				respondErr(c, apperr.Forbidden("role %s may not view orders", role))
				return
			}
		}

		var orders []models.Order
		if err := query.Find(&orders).Error; err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /user/orders - the caller's own orders.
func GetOwnOrdersHandler(db *gorm.DB, owner cartControllers.OwnerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, err := owner(c)
		if err != nil {
			respondErr(c, err)
			return
		}
		var orders []models.Order
		if err := db.Where("owner_id = ?", ownerID).
			Preload("Items.AddOns").Preload("Items").
			Order("created_at DESC").Find(&orders).Error; err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/:orderID - by numeric id or order ref.
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("orderID")
		if id == "" {
			respondErr(c, apperr.InvalidArgument("orderID is required"))
			return
		}
		query := db.Preload("Items.AddOns").Preload("Items")
		if n, convErr := strconv.ParseUint(id, 10, 64); convErr == nil {
			query = query.Where("id = ?", n)
		} else {
			query = query.Where("order_ref = ?", id)
		}
		var order models.Order
		if err := query.First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondErr(c, apperr.NotFound("order not found"))
				return
			}
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PUT /admin/orders/:orderID/status
func UpdateOrderStatusHandler(db *gorm.DB, hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := parseOrderID(c)
		if err != nil {
			respondErr(c, err)
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, apperr.InvalidArgument("invalid input: %s", err.Error()))
			return
		}
		newStatus, err := statemachine.ParseStatus(req.Status)
		if err != nil {
			respondErr(c, err)
			return
		}

		order, err := UpdateStatus(db, middleware.GetRole(c), orderID, newStatus)
		if err != nil {
			respondErr(c, err)
			return
		}

		hub.BroadcastOrderEvent(realtime.OrderEvent{
			OrderID:   order.ID,
			OrderRef:  order.OrderRef,
			Status:    order.Status,
			Timestamp: time.Now(),
		})
		c.JSON(http.StatusOK, order)
	}
}

// DELETE /admin/orders/:orderID - super-admin only via the capability table.
func DeleteOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := parseOrderID(c)
		if err != nil {
			respondErr(c, err)
			return
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			var itemIDs []uint
			if err := tx.Model(&models.OrderItem{}).Where("order_id = ?", orderID).
				Pluck("id", &itemIDs).Error; err != nil {
				return err
			}
			if len(itemIDs) > 0 {
				if err := tx.Where("order_item_id IN ?", itemIDs).
					Delete(&models.OrderItemAddOn{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Order{}, orderID).Error
		})
		if err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}

func parseOrderID(c *gin.Context) (uint, error) {
	raw := c.Param("orderID")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.InvalidArgument("invalid orderID %q", raw)
	}
	return uint(id), nil
}
