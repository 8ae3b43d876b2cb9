package cartControllers

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/walthampeppinosdosa/peppinos-api/apperr"
	"github.com/walthampeppinosdosa/peppinos-api/events"
	"github.com/walthampeppinosdosa/peppinos-api/models"
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

func seedMenuItem(t *testing.T, db *gorm.DB, name string, veg bool, basePrice float64) *models.MenuItem {
	t.Helper()
	category := models.Category{Name: name + " category", DietType: models.DietVeg}
	if !veg {
		category.DietType = models.DietNonVeg
	}
	require.NoError(t, db.Create(&category).Error)

	item := models.MenuItem{
		Name:       name,
		Vegetarian: veg,
		BasePrice:  basePrice,
		Available:  true,
		CategoryID: category.ID,
		Sizes: []models.MenuItemSize{
			{Name: "regular", Price: basePrice},
			{Name: "large", Price: basePrice + 3},
		},
		AddOns: []models.AddOn{
			{Name: "extra chutney", Price: 1.50},
			{Name: "ghee roast", Price: 2.00},
		},
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func subtotalInvariant(t *testing.T, cart *models.Cart) {
	t.Helper()
	var expected float64
	for _, line := range cart.Items {
		expected += line.UnitPrice * float64(line.Quantity)
	}
	assert.InDelta(t, expected, cart.Subtotal(), 1e-9)
}

func TestAddItemCreatesCartAndLine(t *testing.T) {
	db := testDB(t)
	pub := events.NewCartPublisher()
	item := seedMenuItem(t, db, "Masala Dosa", true, 9.99)

	cart, err := AddItem(db, pub, "guest_1_aa", AddItemInput{
		MenuItemID: item.ID,
		Size:       "regular",
		Quantity:   2,
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.InDelta(t, 9.99, cart.Items[0].UnitPrice, 1e-9)
	subtotalInvariant(t, cart)
}

func TestAddOnsArePricedIntoTheLine(t *testing.T) {
	db := testDB(t)
	pub := events.NewCartPublisher()
	item := seedMenuItem(t, db, "Mysore Dosa", true, 10.99)

	cart, err := AddItem(db, pub, "guest_1_ab", AddItemInput{
		MenuItemID: item.ID,
		Size:       "large",
		AddOnIDs:   []uint{item.AddOns[0].ID, item.AddOns[1].ID},
		Quantity:   1,
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	// large 13.99 + 1.50 + 2.00
	assert.InDelta(t, 17.49, cart.Items[0].UnitPrice, 1e-9)
	assert.Len(t, cart.Items[0].AddOns, 2)
	subtotalInvariant(t, cart)
}

func TestIdenticalLinesMerge(t *testing.T) {
	db := testDB(t)
	pub := events.NewCartPublisher()
	item := seedMenuItem(t, db, "Idli", true, 6.49)

	input := AddItemInput{
		MenuItemID: item.ID,
		Size:       "regular",
		AddOnIDs:   []uint{item.AddOns[0].ID},
		Quantity:   1,
	}
	_, err := AddItem(db, pub, "user_5", input)
	require.NoError(t, err)
	cart, err := AddItem(db, pub, "user_5", input)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1, "identical lines must merge")
	assert.Equal(t, 2, cart.Items[0].Quantity)
	subtotalInvariant(t, cart)
}

func TestDifferentSizesStaySeparateLines(t *testing.T) {
	db := testDB(t)
	pub := events.NewCartPublisher()
	item := seedMenuItem(t, db, "Vada", true, 5.49)

	_, err := AddItem(db, pub, "user_6", AddItemInput{MenuItemID: item.ID, Size: "regular", Quantity: 1})
	require.NoError(t, err)
	cart, err := AddItem(db, pub, "user_6", AddItemInput{MenuItemID: item.ID, Size: "large", Quantity: 1})
	require.NoError(t, err)

	assert.Len(t, cart.Items, 2)
	subtotalInvariant(t, cart)
}

func TestAddRejectsBadInput(t *testing.T) {
	db := testDB(t)
	pub := events.NewCartPublisher()
	item := seedMenuItem(t, db, "Uttapam", true, 8.99)

	_, err := AddItem(db, pub, "user_7", AddItemInput{MenuItemID: item.ID, Quantity: 0})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	_, err = AddItem(db, pub, "user_7", AddItemInput{MenuItemID: 9999, Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = AddItem(db, pub, "user_7", AddItemInput{MenuItemID: item.ID, Size: "gigantic", Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	_, err = AddItem(db, pub, "user_7", AddItemInput{MenuItemID: item.ID, AddOnIDs: []uint{4242}, Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	db := testDB(t)
	pub := events.NewCartPublisher()
	item := seedMenuItem(t, db, "Rava Dosa", true, 11.49)

	cart, err := AddItem(db, pub, "user_8", AddItemInput{MenuItemID: item.ID, Size: "regular", Quantity: 3})
	require.NoError(t, err)
	lineID := cart.Items[0].ID

	cart, err = UpdateQuantity(db, pub, "user_8", lineID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items, "quantity 0 must remove the line")

	// No trace left behind.
	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("id = ?", lineID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.CartItemAddOn{}).Where("cart_item_id = ?", lineID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateQuantityAdjustsSubtotal(t *testing.T) {
	db := testDB(t)
	pub := events.NewCartPublisher()
	item := seedMenuItem(t, db, "Onion Dosa", true, 10.49)

	cart, err := AddItem(db, pub, "user_9", AddItemInput{MenuItemID: item.ID, Size: "regular", Quantity: 1})
	require.NoError(t, err)

	cart, err = UpdateQuantity(db, pub, "user_9", cart.Items[0].ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	subtotalInvariant(t, cart)

	_, err = UpdateQuantity(db, pub, "user_9", 9999, 2)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestOneCartPerOwner(t *testing.T) {
	db := testDB(t)
	pub := events.NewCartPublisher()
	item := seedMenuItem(t, db, "Pongal", true, 7.99)

	for i := 0; i < 3; i++ {
		_, err := AddItem(db, pub, "guest_9_zz", AddItemInput{MenuItemID: item.ID, Size: "large", Quantity: 1})
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&models.Cart{}).Where("owner_id = ?", "guest_9_zz").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetCartCreatesFreshEmptyCart(t *testing.T) {
	db := testDB(t)

	// An absent cart is a normal initial state, not an error.
	cart, err := GetCart(db, "guest_new_owner")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.Subtotal())
}

func TestComputeTotals(t *testing.T) {
	t.Setenv("TAX_RATE", "0.10")

	db := testDB(t)
	pub := events.NewCartPublisher()
	item := seedMenuItem(t, db, "Chicken Curry", false, 14.00)

	cart, err := AddItem(db, pub, "user_10", AddItemInput{MenuItemID: item.ID, Size: "regular", Quantity: 2})
	require.NoError(t, err)

	totals := ComputeTotals(cart)
	assert.InDelta(t, 28.00, totals.Subtotal, 1e-9)
	assert.InDelta(t, 2.80, totals.Tax, 1e-9)
	assert.InDelta(t, 30.80, totals.Total, 1e-9)
}

func TestClearCartIsIdempotent(t *testing.T) {
	db := testDB(t)
	pub := events.NewCartPublisher()
	item := seedMenuItem(t, db, "Sambar Vada", true, 6.99)

	_, err := AddItem(db, pub, "user_11", AddItemInput{MenuItemID: item.ID, Size: "regular", Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, ClearCart(db, pub, "user_11"))
	// Retrying a clear after it already happened is a no-op.
	require.NoError(t, ClearCart(db, pub, "user_11"))

	cart, err := GetCart(db, "user_11")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestMutationsPublishCartChanged(t *testing.T) {
	db := testDB(t)
	pub := events.NewCartPublisher()
	item := seedMenuItem(t, db, "Ghee Dosa", true, 9.49)

	var published []string
	pub.Subscribe(events.CartObserverFunc(func(ownerID string, cart models.Cart) {
		published = append(published, ownerID)
	}))

	cart, err := AddItem(db, pub, "user_12", AddItemInput{MenuItemID: item.ID, Size: "regular", Quantity: 1})
	require.NoError(t, err)
	_, err = UpdateQuantity(db, pub, "user_12", cart.Items[0].ID, 2)
	require.NoError(t, err)
	require.NoError(t, ClearCart(db, pub, "user_12"))

	assert.Equal(t, []string{"user_12", "user_12", "user_12"}, published)
}
