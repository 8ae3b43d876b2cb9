package orderControllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/walthampeppinosdosa/peppinos-api/apperr"
	cartControllers "github.com/walthampeppinosdosa/peppinos-api/controllers/cart"
	"github.com/walthampeppinosdosa/peppinos-api/events"
	"github.com/walthampeppinosdosa/peppinos-api/models"
	"github.com/walthampeppinosdosa/peppinos-api/realtime"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.MenuItem{},
		&models.MenuItemSize{},
		&models.AddOn{},
		&models.Cart{},
		&models.CartItem{},
		&models.CartItemAddOn{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemAddOn{},
	))
	return db
}

func seedCart(t *testing.T, db *gorm.DB, ownerID string, veg bool) *models.Cart {
	t.Helper()
	category := models.Category{Name: ownerID + " category", DietType: models.DietVeg}
	if !veg {
		category.DietType = models.DietNonVeg
	}
	require.NoError(t, db.Create(&category).Error)

	item := models.MenuItem{
		Name:       "Seed item for " + ownerID,
		Vegetarian: veg,
		BasePrice:  12.00,
		Available:  true,
		CategoryID: category.ID,
		AddOns:     []models.AddOn{{Name: "extra", Price: 1.00}},
	}
	require.NoError(t, db.Create(&item).Error)

	pub := events.NewCartPublisher()
	cart, err := cartControllers.AddItem(db, pub, ownerID, cartControllers.AddItemInput{
		MenuItemID: item.ID,
		AddOnIDs:   []uint{item.AddOns[0].ID},
		Quantity:   2,
	})
	require.NoError(t, err)
	return cart
}

func TestCheckoutSnapshotsCartAndClearsIt(t *testing.T) {
	t.Setenv("TAX_RATE", "0.10")
	db := testDB(t)
	seedCart(t, db, "user_1", true)

	order, err := Checkout(db, "user_1")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPlaced, order.Status)
	assert.NotEmpty(t, order.OrderRef)
	assert.False(t, order.ContainsNonVeg)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.InDelta(t, 13.00, order.Items[0].UnitPrice, 1e-9)
	require.Len(t, order.Items[0].AddOns, 1)
	assert.InDelta(t, 26.00, order.Subtotal, 1e-9)
	assert.InDelta(t, 2.60, order.Tax, 1e-9)
	assert.InDelta(t, 28.60, order.Total, 1e-9)

	// Cart is cleared in the same transaction.
	cart, err := cartControllers.GetCart(db, "user_1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// A second checkout finds an empty cart.
	_, err = Checkout(db, "user_1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestCheckoutFlagsNonVegOrders(t *testing.T) {
	db := testDB(t)
	seedCart(t, db, "user_2", false)

	order, err := Checkout(db, "user_2")
	require.NoError(t, err)
	assert.True(t, order.ContainsNonVeg)
	assert.Equal(t, models.DietNonVeg, order.Diet())
}

func TestUpdateStatusFollowsStateMachine(t *testing.T) {
	db := testDB(t)
	seedCart(t, db, "user_3", true)
	order, err := Checkout(db, "user_3")
	require.NoError(t, err)

	for _, next := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
		models.OrderStatusReady,
		models.OrderStatusCompleted,
	} {
		updated, err := UpdateStatus(db, models.RoleSuperAdmin, order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	// Terminal: nothing further is allowed and the row stays untouched.
	_, err = UpdateStatus(db, models.RoleSuperAdmin, order.ID, models.OrderStatusCancelled)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidStateTransition, apperr.KindOf(err))

	var persisted models.Order
	require.NoError(t, db.First(&persisted, order.ID).Error)
	assert.Equal(t, models.OrderStatusCompleted, persisted.Status)
}

func TestInvalidTransitionLeavesOrderUnchanged(t *testing.T) {
	db := testDB(t)
	seedCart(t, db, "user_4", true)
	order, err := Checkout(db, "user_4")
	require.NoError(t, err)

	_, err = UpdateStatus(db, models.RoleSuperAdmin, order.ID, models.OrderStatusReady)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidStateTransition, apperr.KindOf(err))

	var persisted models.Order
	require.NoError(t, db.First(&persisted, order.ID).Error)
	assert.Equal(t, models.OrderStatusPlaced, persisted.Status)
}

func TestDietPartitionGatesAdmins(t *testing.T) {
	db := testDB(t)
	seedCart(t, db, "user_5", false)
	order, err := Checkout(db, "user_5")
	require.NoError(t, err)

	// A veg-admin may not touch a non-veg order; the order stays as it was.
	_, err = UpdateStatus(db, models.RoleVegAdmin, order.ID, models.OrderStatusConfirmed)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	var persisted models.Order
	require.NoError(t, db.First(&persisted, order.ID).Error)
	assert.Equal(t, models.OrderStatusPlaced, persisted.Status)

	// The non-veg admin and the super-admin both may.
	_, err = UpdateStatus(db, models.RoleNonVegAdmin, order.ID, models.OrderStatusConfirmed)
	require.NoError(t, err)
	_, err = UpdateStatus(db, models.RoleSuperAdmin, order.ID, models.OrderStatusPreparing)
	require.NoError(t, err)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	db := testDB(t)
	_, err := UpdateStatus(db, models.RoleSuperAdmin, 424242, models.OrderStatusConfirmed)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

// fakeAuth injects a role the way the JWT middleware would.
func fakeAuth(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("owner_id", "user_99")
		c.Set("role", string(role))
		c.Next()
	}
}

func TestUpdateOrderStatusHandlerForbiddenPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testDB(t)
	seedCart(t, db, "user_6", false)
	order, err := Checkout(db, "user_6")
	require.NoError(t, err)

	hub := realtime.NewHub()
	r := gin.New()
	r.PUT("/admin/orders/:orderID/status", fakeAuth(models.RoleVegAdmin), UpdateOrderStatusHandler(db, hub))

	body, _ := json.Marshal(UpdateOrderStatusRequest{Status: "confirmed"})
	req := httptest.NewRequest(http.MethodPut,
		"/admin/orders/"+strconv.Itoa(int(order.ID))+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(apperr.KindForbidden), resp.Error.Kind)
	assert.NotEmpty(t, resp.Error.Message)
}

func TestUpdateOrderStatusHandlerRejectsUnknownLiteral(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testDB(t)
	seedCart(t, db, "user_7", true)
	order, err := Checkout(db, "user_7")
	require.NoError(t, err)

	hub := realtime.NewHub()
	r := gin.New()
	r.PUT("/admin/orders/:orderID/status", fakeAuth(models.RoleSuperAdmin), UpdateOrderStatusHandler(db, hub))

	body, _ := json.Marshal(UpdateOrderStatusRequest{Status: "shipped"})
	req := httptest.NewRequest(http.MethodPut,
		"/admin/orders/"+strconv.Itoa(int(order.ID))+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
