package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	contactControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/contact"
	menuControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/menu"
)

// SetupPublicRoutes registers the marketing-site endpoints: menu browsing,
// contact form and newsletter opt-in/out.
func SetupPublicRoutes(r *gin.Engine, db *gorm.DB) {
	r.GET("/menu", menuControllers.GetMenuItems(db))
	r.GET("/menu/:id", menuControllers.GetMenuItemByID(db))
	r.GET("/categories", menuControllers.GetAllCategories(db))

	r.POST("/contact", contactControllers.SubmitContactMessage(db))

	newsletter := r.Group("/newsletter")
	{
		newsletter.POST("/subscribe", contactControllers.Subscribe(db))
		newsletter.POST("/unsubscribe", contactControllers.Unsubscribe(db))
	}
}
