package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	adminController "github.com/walthampeppinosdosa/peppinos-api/controllers/admin"
	cartControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/cart"
	contactControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/contact"
	menuControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/menu"
	orderControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/order"
	reportControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/report"
	userControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/user"
	"github.com/walthampeppinosdosa/peppinos-api/middleware"
	"github.com/walthampeppinosdosa/peppinos-api/permissions"
	"github.com/walthampeppinosdosa/peppinos-api/realtime"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires a dashboard
// role; fine-grained actions go through the capability table, and the
// diet-partition half of each check happens in the handlers.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB, hub *realtime.Hub) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateToken, middleware.RequireAdmin)
	{
		// ─────────── Admin & User Management ───────────
		adminGroup.GET("/admins", adminController.GetAllAdmins(db))

		userMgmt := adminGroup.Group("", middleware.RequireAction(permissions.ActionManageUsers))
		{
			userMgmt.GET("/users", userControllers.GetAllUsers(db))
			userMgmt.POST("/admin-management/assign-role", adminController.AssignRole(db))
		}

		// ─────────── Menu Management ───────────
		menuAdmin := adminGroup.Group("/menu", middleware.RequireAction(permissions.ActionManageMenu))
		{
			menuAdmin.POST("", menuControllers.CreateMenuItem(db))
			menuAdmin.PUT("/:id", menuControllers.UpdateMenuItem(db))
			menuAdmin.DELETE("/:id", menuControllers.DeleteMenuItem(db))
			menuAdmin.POST("/import-excel", menuControllers.ImportMenuFromExcel(db))
			menuAdmin.GET("/export-excel", menuControllers.ExportMenuToExcel(db))
		}

		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories", middleware.RequireAction(permissions.ActionManageCategories))
		{
			categoryAdmin.POST("", menuControllers.CreateCategory(db))
			categoryAdmin.PUT("/:id", menuControllers.UpdateCategory(db))
			categoryAdmin.DELETE("/:id", menuControllers.DeleteCategory(db))
		}

		// ─────────── Orders ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", middleware.RequireAction(permissions.ActionViewOrders), orderControllers.GetAllOrdersHandler(db))
			orderAdmin.GET("/:orderID", middleware.RequireAction(permissions.ActionViewOrders), orderControllers.GetOrderByIDHandler(db))
			orderAdmin.PUT("/:orderID/status", middleware.RequireAction(permissions.ActionUpdateOrders), orderControllers.UpdateOrderStatusHandler(db, hub))
			orderAdmin.DELETE("/:orderID", middleware.RequireAction(permissions.ActionDeleteOrders), orderControllers.DeleteOrderHandler(db))
		}

		// ─────────── Carts ───────────
		cartMgmt := adminGroup.Group("/user-cart", middleware.RequireAction(permissions.ActionManageUsers))
		{
			cartMgmt.GET("/:owner_id", cartControllers.GetAdminUserCart(db))
		}

		// ─────────── Contact & Newsletter ───────────
		contactMgmt := adminGroup.Group("", middleware.RequireAction(permissions.ActionManageContact))
		{
			contactMgmt.GET("/contact", contactControllers.GetContactMessages(db))
			contactMgmt.PUT("/contact/:id/resolve", contactControllers.ResolveContactMessage(db))
			contactMgmt.GET("/newsletter", contactControllers.GetSubscribers(db))
		}
	}

	// Report downloads open in a new browser tab, so they authenticate with
	// an API key instead of the Authorization header.
	reports := r.Group("/admin/reports", middleware.ValidateAPIKey)
	{
		reports.GET("/orders/export", reportControllers.ExportOrders(db))
	}
}
