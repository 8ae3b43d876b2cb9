package adminController

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/walthampeppinosdosa/peppinos-api/apperr"
	"github.com/walthampeppinosdosa/peppinos-api/models"
)

func respondErr(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
}

// GET /admin/admins
func GetAllAdmins(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var admins []models.User
		if err := db.
			Where("role IN ?", []models.Role{models.RoleSuperAdmin, models.RoleVegAdmin, models.RoleNonVegAdmin}).
			Select("id", "email", "name", "role", "created_at").
			Find(&admins).Error; err != nil {
			log.Println("❌ Failed to fetch admins:", err)
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, admins)
	}
}

type AssignRoleRequest struct {
	Email string      `json:"email" binding:"required"`
	Role  models.Role `json:"role" binding:"required"`
}

// POST /admin/admin-management/assign-role - super-admin only. Guest is a
// lifecycle state, not an assignable role.
func AssignRole(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AssignRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, apperr.InvalidArgument("invalid input: %s", err.Error()))
			return
		}

		switch req.Role {
		case models.RoleSuperAdmin, models.RoleVegAdmin, models.RoleNonVegAdmin, models.RoleCustomer:
		default:
			respondErr(c, apperr.InvalidArgument("role %q cannot be assigned", req.Role))
			return
		}

		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondErr(c, apperr.NotFound("no user with email %s", req.Email))
				return
			}
			respondErr(c, apperr.Internal(err))
			return
		}
		if user.Role == models.RoleGuest {
			respondErr(c, apperr.InvalidArgument("guest accounts must be promoted before role assignment"))
			return
		}

		if err := db.Model(&user).Update("role", req.Role).Error; err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Role updated", "user_id": user.ID, "role": req.Role})
	}
}
