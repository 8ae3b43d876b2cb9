package cartControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/walthampeppinosdosa/peppinos-api/apperr"
	"github.com/walthampeppinosdosa/peppinos-api/auth"
	"github.com/walthampeppinosdosa/peppinos-api/events"
	"github.com/walthampeppinosdosa/peppinos-api/middleware"
)

// OwnerResolver yields the cart-owning identity for a request. Authenticated
// routes read it from the verified token; guest routes resolve the session
// identifier, creating the guest user on first cart interaction.
type OwnerResolver func(c *gin.Context) (string, error)

// TokenOwner reads the identity the auth middleware injected.
func TokenOwner(c *gin.Context) (string, error) {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return "", apperr.Forbidden("missing authenticated identity")
	}
	return ownerID, nil
}

// GuestOwner resolves (or creates) a guest user from the session identifier
// passed as a bearer-equivalent query parameter or header.
func GuestOwner(db *gorm.DB) OwnerResolver {
	return func(c *gin.Context) (string, error) {
		sessionID := c.Query("session_id")
		if sessionID == "" {
			sessionID = c.GetHeader("X-Guest-Session")
		}
		guest, err := auth.ResolveGuest(db, sessionID)
		if err != nil {
			return "", err
		}
		return guest.OwnerID(), nil
	}
}

func respondErr(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
}

// GET /cart
func GetCartHandler(db *gorm.DB, owner OwnerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, err := owner(c)
		if err != nil {
			respondErr(c, err)
			return
		}
		cart, err := GetCart(db, ownerID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// POST /cart
func AddItemHandler(db *gorm.DB, pub *events.CartPublisher, owner OwnerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, err := owner(c)
		if err != nil {
			respondErr(c, err)
			return
		}
		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondErr(c, apperr.InvalidArgument("invalid input: %s", err.Error()))
			return
		}
		cart, err := AddItem(db, pub, ownerID, input)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, cart)
	}
}

type UpdateQuantityInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// PUT /cart/:item_id
func UpdateQuantityHandler(db *gorm.DB, pub *events.CartPublisher, owner OwnerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, err := owner(c)
		if err != nil {
			respondErr(c, err)
			return
		}
		itemID, err := parseItemID(c)
		if err != nil {
			respondErr(c, err)
			return
		}
		var input UpdateQuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondErr(c, apperr.InvalidArgument("invalid input: %s", err.Error()))
			return
		}
		cart, err := UpdateQuantity(db, pub, ownerID, itemID, *input.Quantity)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /cart/:item_id
func RemoveItemHandler(db *gorm.DB, pub *events.CartPublisher, owner OwnerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, err := owner(c)
		if err != nil {
			respondErr(c, err)
			return
		}
		itemID, err := parseItemID(c)
		if err != nil {
			respondErr(c, err)
			return
		}
		cart, err := RemoveItem(db, pub, ownerID, itemID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /cart
func ClearCartHandler(db *gorm.DB, pub *events.CartPublisher, owner OwnerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, err := owner(c)
		if err != nil {
			respondErr(c, err)
			return
		}
		if err := ClearCart(db, pub, ownerID); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /cart/totals
func TotalsHandler(db *gorm.DB, owner OwnerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, err := owner(c)
		if err != nil {
			respondErr(c, err)
			return
		}
		cart, err := GetCart(db, ownerID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ComputeTotals(cart))
	}
}

// GET /admin/user-cart/:owner_id
func GetAdminUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := c.Param("owner_id")
		if ownerID == "" {
			respondErr(c, apperr.InvalidArgument("owner_id is required"))
			return
		}
		cart, err := GetCart(db, ownerID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func parseItemID(c *gin.Context) (uint, error) {
	raw := c.Param("item_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.InvalidArgument("invalid item_id %q", raw)
	}
	return uint(id), nil
}
