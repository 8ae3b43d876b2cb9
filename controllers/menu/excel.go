package menuControllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/walthampeppinosdosa/peppinos-api/models"
)

// GET /admin/menu/export-excel
func ExportMenuToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var items []models.MenuItem
		if err := db.Preload("Sizes").Preload("AddOns").Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch menu items"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Menu")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		// Header row
		headers := []string{
			"ID", "Name", "Description", "Vegetarian", "BasePrice",
			"Available", "CategoryID", "Sizes", "AddOns", "Image",
			"CreatedAt", "UpdatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		// Data rows; sizes and add-ons are packed as name:price pairs.
		for _, item := range items {
			row := sheet.AddRow()
			row.AddCell().SetValue(item.ID)
			row.AddCell().SetValue(item.Name)
			row.AddCell().SetValue(item.Description)
			row.AddCell().SetValue(strconv.FormatBool(item.Vegetarian))
			row.AddCell().SetValue(item.BasePrice)
			row.AddCell().SetValue(strconv.FormatBool(item.Available))
			row.AddCell().SetValue(item.CategoryID)
			row.AddCell().SetValue(packSizes(item.Sizes))
			row.AddCell().SetValue(packAddOns(item.AddOns))
			row.AddCell().SetValue(item.Image)
			row.AddCell().SetValue(item.CreatedAt.Format("2006-01-02 15:04:05"))
			row.AddCell().SetValue(item.UpdatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=menu.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}

// POST /admin/menu/import-excel
func ImportMenuFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse Excel file"})
			return
		}

		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		sheet := xlFile.Sheets[0]
		createdCount, updatedCount, skippedCount := 0, 0, 0

		for i := 1; i < sheet.MaxRow; i++ {
			row := sheet.Rows[i]
			if len(row.Cells) < 7 {
				skippedCount++
				continue
			}

			get := func(index int) string {
				if index < len(row.Cells) {
					return strings.TrimSpace(row.Cells[index].String())
				}
				return ""
			}

			idStr := get(0)
			name := get(1)
			description := get(2)
			vegetarian := strings.EqualFold(get(3), "true")
			basePrice, errPrice := strconv.ParseFloat(get(4), 64)
			available := get(5) == "" || strings.EqualFold(get(5), "true")
			categoryID, errCat := strconv.Atoi(get(6))
			sizes := unpackSizes(get(7))
			addOns := unpackAddOns(get(8))
			image := get(9)

			if name == "" || errPrice != nil || errCat != nil {
				skippedCount++
				continue
			}

			item := models.MenuItem{
				Name:        name,
				Description: description,
				Vegetarian:  vegetarian,
				BasePrice:   basePrice,
				Available:   available,
				CategoryID:  uint(categoryID),
				Image:       image,
				Sizes:       sizes,
				AddOns:      addOns,
			}

			if idStr != "" {
				if id, err := strconv.Atoi(idStr); err == nil {
					var existing models.MenuItem
					if err := db.First(&existing, id).Error; err == nil {
						existing.Name = item.Name
						existing.Description = item.Description
						existing.Vegetarian = item.Vegetarian
						existing.BasePrice = item.BasePrice
						existing.Available = item.Available
						existing.CategoryID = item.CategoryID
						existing.Image = item.Image

						err := db.Transaction(func(tx *gorm.DB) error {
							if err := tx.Where("menu_item_id = ?", existing.ID).Delete(&models.MenuItemSize{}).Error; err != nil {
								return err
							}
							if err := tx.Where("menu_item_id = ?", existing.ID).Delete(&models.AddOn{}).Error; err != nil {
								return err
							}
							existing.Sizes = item.Sizes
							existing.AddOns = item.AddOns
							return tx.Save(&existing).Error
						})
						if err == nil {
							updatedCount++
							continue
						}
						skippedCount++
						continue
					}
				}
			}

			if err := db.Create(&item).Error; err == nil {
				createdCount++
			} else {
				skippedCount++
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": createdCount,
			"updated_count": updatedCount,
			"skipped_count": skippedCount,
		})
	}
}

// packSizes flattens sizes to "regular:9.99|large:12.99".
func packSizes(sizes []models.MenuItemSize) string {
	parts := make([]string, 0, len(sizes))
	for _, s := range sizes {
		parts = append(parts, s.Name+":"+strconv.FormatFloat(s.Price, 'f', 2, 64))
	}
	return strings.Join(parts, "|")
}

func packAddOns(addOns []models.AddOn) string {
	parts := make([]string, 0, len(addOns))
	for _, a := range addOns {
		parts = append(parts, a.Name+":"+strconv.FormatFloat(a.Price, 'f', 2, 64))
	}
	return strings.Join(parts, "|")
}

func unpackSizes(packed string) []models.MenuItemSize {
	var sizes []models.MenuItemSize
	for _, part := range strings.Split(packed, "|") {
		name, price, ok := splitNamePrice(part)
		if !ok {
			continue
		}
		sizes = append(sizes, models.MenuItemSize{Name: name, Price: price})
	}
	return sizes
}

func unpackAddOns(packed string) []models.AddOn {
	var addOns []models.AddOn
	for _, part := range strings.Split(packed, "|") {
		name, price, ok := splitNamePrice(part)
		if !ok {
			continue
		}
		addOns = append(addOns, models.AddOn{Name: name, Price: price})
	}
	return addOns
}

func splitNamePrice(part string) (string, float64, bool) {
	idx := strings.LastIndex(part, ":")
	if idx <= 0 {
		return "", 0, false
	}
	price, err := strconv.ParseFloat(part[idx+1:], 64)
	if err != nil {
		return "", 0, false
	}
	return part[:idx], price, true
}
