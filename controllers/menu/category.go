package menuControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/walthampeppinosdosa/peppinos-api/apperr"
	"github.com/walthampeppinosdosa/peppinos-api/middleware"
	"github.com/walthampeppinosdosa/peppinos-api/models"
	"github.com/walthampeppinosdosa/peppinos-api/permissions"
)

type CategoryInput struct {
	Name     string          `json:"name" binding:"required"`
	DietType models.DietType `json:"diet_type" binding:"required"`
	Image    string          `json:"image"`
}

func validDiet(d models.DietType) bool {
	return d == models.DietVeg || d == models.DietNonVeg
}

// POST /admin/categories
func CreateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondErr(c, apperr.InvalidArgument("invalid input: %s", err.Error()))
			return
		}
		if !validDiet(input.DietType) {
			respondErr(c, apperr.InvalidArgument("diet_type must be %s or %s", models.DietVeg, models.DietNonVeg))
			return
		}

		role := middleware.GetRole(c)
		if err := permissions.CheckCatalogAccess(role, permissions.ActionManageCategories, input.DietType); err != nil {
			respondErr(c, err)
			return
		}

		category := models.Category{
			Name:     input.Name,
			DietType: input.DietType,
			Image:    input.Image,
		}
		if err := db.Create(&category).Error; err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

// PUT /admin/categories/:id
func UpdateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			respondErr(c, err)
			return
		}
		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondErr(c, apperr.InvalidArgument("invalid input: %s", err.Error()))
			return
		}
		if !validDiet(input.DietType) {
			respondErr(c, apperr.InvalidArgument("diet_type must be %s or %s", models.DietVeg, models.DietNonVeg))
			return
		}

		var category models.Category
		if err := db.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondErr(c, apperr.NotFound("category %d does not exist", id))
				return
			}
			respondErr(c, apperr.Internal(err))
			return
		}

		role := middleware.GetRole(c)
		if err := permissions.CheckCatalogAccess(role, permissions.ActionManageCategories, category.DietType); err != nil {
			respondErr(c, err)
			return
		}
		if err := permissions.CheckCatalogAccess(role, permissions.ActionManageCategories, input.DietType); err != nil {
			respondErr(c, err)
			return
		}

		category.Name = input.Name
		category.DietType = input.DietType
		category.Image = input.Image
		if err := db.Save(&category).Error; err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// DELETE /admin/categories/:id - refused while menu items still reference it.
func DeleteCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			respondErr(c, err)
			return
		}

		var category models.Category
		if err := db.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondErr(c, apperr.NotFound("category %d does not exist", id))
				return
			}
			respondErr(c, apperr.Internal(err))
			return
		}

		role := middleware.GetRole(c)
		if err := permissions.CheckCatalogAccess(role, permissions.ActionManageCategories, category.DietType); err != nil {
			respondErr(c, err)
			return
		}

		var count int64
		if err := db.Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		if count > 0 {
			respondErr(c, apperr.Conflict("category %s still has %d menu items", category.Name, count))
			return
		}

		if err := db.Delete(&category).Error; err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
	}
}

// GET /categories - public, with menu items preloaded.
func GetAllCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Preload("MenuItems.Sizes").Preload("MenuItems.AddOns").
			Preload("MenuItems").Order("name ASC").Find(&categories).Error; err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}
