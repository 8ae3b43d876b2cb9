package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/cart"
	orderControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/order"
	"github.com/walthampeppinosdosa/peppinos-api/events"
	"github.com/walthampeppinosdosa/peppinos-api/realtime"
)

// SetupGuestRoutes registers all "/guest/*" endpoints. The guest session
// identifier travels as a query parameter or X-Guest-Session header; the
// guest user record is created on first cart interaction.
func SetupGuestRoutes(r *gin.Engine, db *gorm.DB, pub *events.CartPublisher, hub *realtime.Hub) {
	owner := cartControllers.GuestOwner(db)

	guestGroup := r.Group("/guest")
	{
		cartGroup := guestGroup.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetCartHandler(db, owner))
			cartGroup.POST("", cartControllers.AddItemHandler(db, pub, owner))
			cartGroup.PUT("/:item_id", cartControllers.UpdateQuantityHandler(db, pub, owner))
			cartGroup.DELETE("/:item_id", cartControllers.RemoveItemHandler(db, pub, owner))
			cartGroup.DELETE("", cartControllers.ClearCartHandler(db, pub, owner))
			cartGroup.GET("/totals", cartControllers.TotalsHandler(db, owner))
		}

		guestGroup.POST("/checkout", orderControllers.CheckoutHandler(db, hub, owner))
		guestGroup.GET("/orders", orderControllers.GetOwnOrdersHandler(db, owner))
	}
}
