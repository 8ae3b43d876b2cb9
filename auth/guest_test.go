package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/walthampeppinosdosa/peppinos-api/apperr"
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
		&models.Cart{},
		&models.CartItem{},
		&models.CartItemAddOn{},
	))
	return db
}

func TestNewSessionIDFormat(t *testing.T) {
	id := NewSessionID()
	parts := strings.SplitN(id, "_", 3)
	require.Len(t, parts, 3)
	assert.Equal(t, "guest", parts[0])
	assert.NotEmpty(t, parts[1])
	assert.Len(t, parts[2], 16)
}

func TestResolveGuestCreatesOnFirstContact(t *testing.T) {
	db := testDB(t)

	guest, err := ResolveGuest(db, "guest_123_abc")
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuest, guest.Role)
	require.NotNil(t, guest.SessionID)
	assert.Equal(t, "guest_123_abc", *guest.SessionID)
	// Placeholder email is synthetic and non-contactable.
	assert.Equal(t, "guest_123_abc@guest.invalid", guest.Email)

	again, err := ResolveGuest(db, "guest_123_abc")
	require.NoError(t, err)
	assert.Equal(t, guest.ID, again.ID, "same session must resolve to the same record")

	_, err = ResolveGuest(db, "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestPromoteGuestClearsSession(t *testing.T) {
	db := testDB(t)
	_, err := ResolveGuest(db, "guest_123_abc")
	require.NoError(t, err)

	user, err := PromoteGuest(db, "guest_123_abc", "s3cret-pass", "Priya", "priya@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.Nil(t, user.SessionID)
	assert.False(t, user.EmailVerified)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))

	// The old session identifier no longer resolves to anything promotable.
	_, err = PromoteGuest(db, "guest_123_abc", "another-pass", "", "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPromoteRequiresPasswordAndExistingGuest(t *testing.T) {
	db := testDB(t)

	_, err := PromoteGuest(db, "guest_nope", "pw", "", "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = PromoteGuest(db, "guest_nope", "", "", "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestCleanupExpiredGuests(t *testing.T) {
	db := testDB(t)

	stale, err := ResolveGuest(db, "guest_1_old")
	require.NoError(t, err)
	fresh, err := ResolveGuest(db, "guest_2_new")
	require.NoError(t, err)

	// The stale guest owns a cart that must go with it.
	cart := models.Cart{OwnerID: stale.OwnerID(), Items: []models.CartItem{{MenuItemID: 1, Quantity: 2}}}
	require.NoError(t, db.Create(&cart).Error)

	// Backdate the stale guest past the retention window.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", stale.ID).
		Update("updated_at", time.Now().Add(-8*24*time.Hour)).Error)

	swept, err := CleanupExpiredGuests(db, 7*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, swept)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", stale.ID).Count(&count).Error)
	assert.Zero(t, count, "stale guest must be removed")
	require.NoError(t, db.Model(&models.Cart{}).Where("owner_id = ?", stale.OwnerID()).Count(&count).Error)
	assert.Zero(t, count, "stale guest's cart must be removed")
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", cart.CartID).Count(&count).Error)
	assert.Zero(t, count, "stale guest's cart items must be removed")

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", fresh.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "fresh guest must be retained")
}

func TestIssueAndParseToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")

	session := "guest_9_ff"
	user := &models.User{ID: 3, Role: models.RoleGuest, SessionID: &session}
	token, err := IssueToken(user, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, session, claims.UserID)
	assert.Equal(t, models.RoleGuest, claims.Role)

	_, err = ParseToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
