package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/walthampeppinosdosa/peppinos-api/events"
	"github.com/walthampeppinosdosa/peppinos-api/realtime"
)

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, db *gorm.DB, pub *events.CartPublisher, hub *realtime.Hub) {
	// Public auth + marketing endpoints (no middleware)
	SetupAuthRoutes(r, db)
	SetupPublicRoutes(r, db)

	// Guest routes (session identifier as bearer-equivalent)
	SetupGuestRoutes(r, db, pub, hub)

	// User routes (JWT-protected)
	SetupUserRoutes(r, db, pub, hub)

	// Admin routes (JWT + role-protected)
	SetupAdminRoutes(r, db, hub)

	// Real-time order channel
	SetupOrderRoutes(r, db, hub)
}
