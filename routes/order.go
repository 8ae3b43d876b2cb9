package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/order"
	"github.com/walthampeppinosdosa/peppinos-api/realtime"
)

// SetupOrderRoutes registers the shared order endpoints and the real-time
// channel admin dashboards subscribe to.
func SetupOrderRoutes(r *gin.Engine, db *gorm.DB, hub *realtime.Hub) {
	orders := r.Group("/orders")
	{
		// websocket endpoint for real-time order updates; the token travels
		// as a query parameter
		orders.GET("/ws", realtime.ServeWS(hub))

		// fetch a single order by numeric id or order ref
		orders.GET("/:orderID", orderControllers.GetOrderByIDHandler(db))
	}
}
