package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/cart"
	orderControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/order"
	userControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/user"
	"github.com/walthampeppinosdosa/peppinos-api/events"
	"github.com/walthampeppinosdosa/peppinos-api/middleware"
	"github.com/walthampeppinosdosa/peppinos-api/realtime"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB, pub *events.CartPublisher, hub *realtime.Hub) {
	owner := cartControllers.OwnerResolver(cartControllers.TokenOwner)

	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("", userControllers.GetUser(db))
		userGroup.PUT("", userControllers.UpdateUser(db))

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetCartHandler(db, owner))
			cartGroup.POST("", cartControllers.AddItemHandler(db, pub, owner))
			cartGroup.PUT("/:item_id", cartControllers.UpdateQuantityHandler(db, pub, owner))
			cartGroup.DELETE("/:item_id", cartControllers.RemoveItemHandler(db, pub, owner))
			cartGroup.DELETE("", cartControllers.ClearCartHandler(db, pub, owner))
			cartGroup.GET("/totals", cartControllers.TotalsHandler(db, owner))
		}

		// ──────────────── Checkout & Orders ────────────────
		userGroup.POST("/checkout", orderControllers.CheckoutHandler(db, hub, owner))
		userGroup.GET("/orders", orderControllers.GetOwnOrdersHandler(db, owner))
		userGroup.GET("/orders/:orderID", orderControllers.GetOrderByIDHandler(db))
	}
}
