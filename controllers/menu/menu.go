package menuControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/walthampeppinosdosa/peppinos-api/apperr"
	"github.com/walthampeppinosdosa/peppinos-api/middleware"
	"github.com/walthampeppinosdosa/peppinos-api/models"
	"github.com/walthampeppinosdosa/peppinos-api/permissions"
)

type SizeInput struct {
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price" binding:"required"`
}

type AddOnInput struct {
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price"`
}

type MenuItemInput struct {
	Name        string       `json:"name" binding:"required"`
	Description string       `json:"description"`
	Vegetarian  *bool        `json:"vegetarian" binding:"required"`
	BasePrice   float64      `json:"base_price" binding:"required"`
	Image       string       `json:"image"`
	Available   *bool        `json:"available"`
	CategoryID  uint         `json:"category_id" binding:"required"`
	Sizes       []SizeInput  `json:"sizes"`
	AddOns      []AddOnInput `json:"add_ons"`
}

func respondErr(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
}

func dietOf(vegetarian bool) models.DietType {
	if vegetarian {
		return models.DietVeg
	}
	return models.DietNonVeg
}

// loadCategory fetches the category and checks item/category diet agreement.
func loadCategory(db *gorm.DB, id uint, vegetarian bool) (*models.Category, error) {
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category %d does not exist", id)
		}
		return nil, apperr.Internal(err)
	}
	if category.DietType != dietOf(vegetarian) {
		return nil, apperr.InvalidArgument(
			"a %s item cannot live in the %s category %s",
			dietOf(vegetarian), category.DietType, category.Name,
		)
	}
	return &category, nil
}

// POST /admin/menu
func CreateMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input MenuItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondErr(c, apperr.InvalidArgument("invalid input: %s", err.Error()))
			return
		}

		role := middleware.GetRole(c)
		if err := permissions.CheckCatalogAccess(role, permissions.ActionManageMenu, dietOf(*input.Vegetarian)); err != nil {
			respondErr(c, err)
			return
		}
		if _, err := loadCategory(db, input.CategoryID, *input.Vegetarian); err != nil {
			respondErr(c, err)
			return
		}

		item := models.MenuItem{
			Name:        input.Name,
			Description: input.Description,
			Vegetarian:  *input.Vegetarian,
			BasePrice:   input.BasePrice,
			Image:       input.Image,
			Available:   input.Available == nil || *input.Available,
			CategoryID:  input.CategoryID,
		}
		for _, s := range input.Sizes {
			item.Sizes = append(item.Sizes, models.MenuItemSize{Name: s.Name, Price: s.Price})
		}
		for _, a := range input.AddOns {
			item.AddOns = append(item.AddOns, models.AddOn{Name: a.Name, Price: a.Price})
		}

		if err := db.Create(&item).Error; err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// PUT /admin/menu/:id
func UpdateMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			respondErr(c, err)
			return
		}
		var input MenuItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondErr(c, apperr.InvalidArgument("invalid input: %s", err.Error()))
			return
		}

		var existing models.MenuItem
		if err := db.Preload("Sizes").Preload("AddOns").First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondErr(c, apperr.NotFound("menu item %d does not exist", id))
				return
			}
			respondErr(c, apperr.Internal(err))
			return
		}

		// The role must cover both the item's current partition and the one
		// it is being moved into.
		role := middleware.GetRole(c)
		if err := permissions.CheckCatalogAccess(role, permissions.ActionManageMenu, dietOf(existing.Vegetarian)); err != nil {
			respondErr(c, err)
			return
		}
		if err := permissions.CheckCatalogAccess(role, permissions.ActionManageMenu, dietOf(*input.Vegetarian)); err != nil {
			respondErr(c, err)
			return
		}
		if _, err := loadCategory(db, input.CategoryID, *input.Vegetarian); err != nil {
			respondErr(c, err)
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("menu_item_id = ?", existing.ID).Delete(&models.MenuItemSize{}).Error; err != nil {
				return err
			}
			if err := tx.Where("menu_item_id = ?", existing.ID).Delete(&models.AddOn{}).Error; err != nil {
				return err
			}

			existing.Name = input.Name
			existing.Description = input.Description
			existing.Vegetarian = *input.Vegetarian
			existing.BasePrice = input.BasePrice
			existing.Image = input.Image
			if input.Available != nil {
				existing.Available = *input.Available
			}
			existing.CategoryID = input.CategoryID
			existing.Sizes = nil
			existing.AddOns = nil
			for _, s := range input.Sizes {
				existing.Sizes = append(existing.Sizes, models.MenuItemSize{MenuItemID: existing.ID, Name: s.Name, Price: s.Price})
			}
			for _, a := range input.AddOns {
				existing.AddOns = append(existing.AddOns, models.AddOn{MenuItemID: existing.ID, Name: a.Name, Price: a.Price})
			}
			return tx.Save(&existing).Error
		})
		if err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, existing)
	}
}

// DELETE /admin/menu/:id - soft delete.
func DeleteMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			respondErr(c, err)
			return
		}

		var existing models.MenuItem
		if err := db.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondErr(c, apperr.NotFound("menu item %d does not exist", id))
				return
			}
			respondErr(c, apperr.Internal(err))
			return
		}

		role := middleware.GetRole(c)
		if err := permissions.CheckCatalogAccess(role, permissions.ActionManageMenu, dietOf(existing.Vegetarian)); err != nil {
			respondErr(c, err)
			return
		}

		if err := db.Delete(&existing).Error; err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
	}
}

// GET /menu - public browse with optional category/diet filters.
func GetMenuItems(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Sizes").Preload("AddOns").Where("available = ?", true)

		if cat := c.Query("category_id"); cat != "" {
			query = query.Where("category_id = ?", cat)
		}
		switch c.Query("diet") {
		case string(models.DietVeg):
			query = query.Where("vegetarian = ?", true)
		case string(models.DietNonVeg):
			query = query.Where("vegetarian = ?", false)
		}

		var items []models.MenuItem
		if err := query.Order("name ASC").Find(&items).Error; err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// GET /menu/:id
func GetMenuItemByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			respondErr(c, err)
			return
		}
		var item models.MenuItem
		if err := db.Preload("Sizes").Preload("AddOns").First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondErr(c, apperr.NotFound("menu item %d does not exist", id))
				return
			}
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func parseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.InvalidArgument("invalid %s %q", name, raw)
	}
	return uint(id), nil
}
