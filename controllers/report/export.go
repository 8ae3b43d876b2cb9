// Package reportControllers builds the order report files the admin
// dashboard's reporting pages download.
package reportControllers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/walthampeppinosdosa/peppinos-api/apperr"
	"github.com/walthampeppinosdosa/peppinos-api/models"
)

var colorGray = &props.Color{Red: 100, Green: 100, Blue: 100}

// GET /admin/reports/orders/export?format=pdf|excel|csv
func ExportOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		format := c.DefaultQuery("format", "csv")

		var orders []models.Order
		if err := db.Preload("Items.AddOns").Preload("Items").
			Order("created_at DESC").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, apperr.Payload(apperr.Internal(err)))
			return
		}

		switch format {
		case "csv":
			writeCSV(c, orders)
		case "excel":
			writeExcel(c, orders)
		case "pdf":
			writePDF(c, orders)
		default:
			err := apperr.InvalidArgument("format must be one of pdf, excel, csv")
			c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
		}
	}
}

func writeCSV(c *gin.Context, orders []models.Order) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"OrderRef", "Owner", "Status", "Diet", "Items", "Subtotal", "Tax", "Total", "CreatedAt"})
	for _, o := range orders {
		w.Write([]string{
			o.OrderRef,
			o.OwnerID,
			string(o.Status),
			string(o.Diet()),
			strconv.Itoa(len(o.Items)),
			strconv.FormatFloat(o.Subtotal, 'f', 2, 64),
			strconv.FormatFloat(o.Tax, 'f', 2, 64),
			strconv.FormatFloat(o.Total, 'f', 2, 64),
			o.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		c.JSON(http.StatusInternalServerError, apperr.Payload(apperr.Internal(err)))
		return
	}

	c.Header("Content-Disposition", "attachment; filename=orders.csv")
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func writeExcel(c *gin.Context, orders []models.Order) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		c.JSON(http.StatusInternalServerError, apperr.Payload(apperr.Internal(err)))
		return
	}

	headers := []string{"OrderRef", "Owner", "Status", "Diet", "Items", "Subtotal", "Tax", "Total", "CreatedAt"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, o := range orders {
		r := sheet.AddRow()
		r.AddCell().SetValue(o.OrderRef)
		r.AddCell().SetValue(o.OwnerID)
		r.AddCell().SetValue(string(o.Status))
		r.AddCell().SetValue(string(o.Diet()))
		r.AddCell().SetValue(len(o.Items))
		r.AddCell().SetValue(o.Subtotal)
		r.AddCell().SetValue(o.Tax)
		r.AddCell().SetValue(o.Total)
		r.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, apperr.Payload(apperr.Internal(err)))
	}
}

func writePDF(c *gin.Context, orders []models.Order) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Peppino's Dosa Orders Report", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(row.New(12).Add(
		col.New(8).Add(
			text.New("Peppino's Dosa Orders Report", props.Text{
				Style: fontstyle.Bold, Size: 13, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Generated "+time.Now().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	))
	m.AddRows(line.NewRow(1, props.Line{Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	var grandTotal float64
	for _, o := range orders {
		m.AddRows(orderRow(&o))
		grandTotal += o.Total
	}

	m.AddRows(line.NewRow(1, props.Line{Thickness: 0.3}))
	m.AddRows(row.New(8).Add(
		col.New(9).Add(text.New(fmt.Sprintf("%d orders", len(orders)), props.Text{Size: 9, Top: 1})),
		col.New(3).Add(text.New(fmt.Sprintf("TOTAL  $%.2f", grandTotal), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
		})),
	))

	doc, err := m.Generate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, apperr.Payload(apperr.Internal(err)))
		return
	}

	c.Header("Content-Disposition", "attachment; filename=orders.pdf")
	c.Data(http.StatusOK, "application/pdf", doc.GetBytes())
}

func tableHeaderRow() core.Row {
	return row.New(7).Add(
		col.New(3).Add(text.New("Order", props.Text{Style: fontstyle.Bold, Size: 8})),
		col.New(2).Add(text.New("Status", props.Text{Style: fontstyle.Bold, Size: 8})),
		col.New(2).Add(text.New("Diet", props.Text{Style: fontstyle.Bold, Size: 8})),
		col.New(2).Add(text.New("Placed", props.Text{Style: fontstyle.Bold, Size: 8})),
		col.New(3).Add(text.New("Total", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right})),
	)
}

func orderRow(o *models.Order) core.Row {
	return row.New(6).Add(
		col.New(3).Add(text.New(o.OrderRef, props.Text{Size: 7})),
		col.New(2).Add(text.New(string(o.Status), props.Text{Size: 8})),
		col.New(2).Add(text.New(string(o.Diet()), props.Text{Size: 8})),
		col.New(2).Add(text.New(o.CreatedAt.Format("02/01 15:04"), props.Text{Size: 8})),
		col.New(3).Add(text.New(fmt.Sprintf("$%.2f", o.Total), props.Text{Size: 8, Align: align.Right})),
	)
}
