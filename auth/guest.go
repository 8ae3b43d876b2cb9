package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/walthampeppinosdosa/peppinos-api/apperr"
	"github.com/walthampeppinosdosa/peppinos-api/models"
)

const guestTokenTTL = 24 * time.Hour

// NewSessionID builds the opaque guest identifier: guest_<timestamp>_<random-hex>.
func NewSessionID() string {
	return fmt.Sprintf("guest_%d_%s", time.Now().Unix(), randomHex(8))
}

func randomHex(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "rand_guest"
	}
	return hex.EncodeToString(bytes)
}

// placeholderEmail is allocated when a guest supplies no contact address.
// It is synthetic: non-unique across promotions and never contactable.
func placeholderEmail(sessionID string) string {
	return sessionID + "@guest.invalid"
}

// ResolveGuest returns the guest user for a session identifier, creating the
// record on first contact.
func ResolveGuest(db *gorm.DB, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, apperr.InvalidArgument("session identifier is required")
	}

	var user models.User
	err := db.Where("session_id = ?", sessionID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}

	user = models.User{
		Name:      "Guest",
		Email:     placeholderEmail(sessionID),
		Role:      models.RoleGuest,
		SessionID: &sessionID,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &user, nil
}

// PromoteGuest turns a guest record into a customer account: the password is
// hashed, the session identifier cleared and the email left unverified until
// the customer confirms it. Lookups by the old session identifier fail with
// NotFound afterwards.
func PromoteGuest(db *gorm.DB, sessionID, password, name, email string) (*models.User, error) {
	if password == "" {
		return nil, apperr.InvalidArgument("password is required")
	}

	var user models.User
	if err := db.Where("session_id = ? AND role = ?", sessionID, models.RoleGuest).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no guest found for session %s", sessionID)
		}
		return nil, apperr.Internal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}
	user.PasswordHash = string(hash)
	user.Role = models.RoleCustomer
	user.EmailVerified = false
	user.SessionID = nil

	if err := db.Save(&user).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &user, nil
}

// CleanupExpiredGuests removes guest users idle longer than ttl together with
// their carts. Returns how many guests were swept.
func CleanupExpiredGuests(db *gorm.DB, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)

	var stale []models.User
	if err := db.Where("role = ? AND updated_at < ?", models.RoleGuest, cutoff).
		Find(&stale).Error; err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, guest := range stale {
			var cart models.Cart
			err := tx.Where("owner_id = ?", guest.OwnerID()).First(&cart).Error
			switch {
			case err == nil:
				var itemIDs []uint
				if err := tx.Model(&models.CartItem{}).Where("cart_id = ?", cart.CartID).
					Pluck("id", &itemIDs).Error; err != nil {
					return err
				}
				if len(itemIDs) > 0 {
					if err := tx.Where("cart_item_id IN ?", itemIDs).Delete(&models.CartItemAddOn{}).Error; err != nil {
						return err
					}
				}
				if err := tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
					return err
				}
				if err := tx.Delete(&cart).Error; err != nil {
					return err
				}
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
			if err := tx.Delete(&models.User{}, guest.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int64(len(stale)), nil
}

// -------- Handlers --------

// POST /auth/guest
func CreateGuestSession(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := NewSessionID()

		guest, err := ResolveGuest(db, sessionID)
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
			return
		}

		token, err := IssueToken(guest, guestTokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, apperr.Payload(apperr.Internal(err)))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"session_id": sessionID,
			"token":      token,
			"expires_at": time.Now().Add(guestTokenTTL),
		})
	}
}

type PromoteGuestRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// POST /auth/guest/promote
func PromoteGuestHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PromoteGuestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			aerr := apperr.InvalidArgument("invalid input: %s", err.Error())
			c.JSON(apperr.HTTPStatus(aerr), apperr.Payload(aerr))
			return
		}

		user, err := PromoteGuest(db, req.SessionID, req.Password, req.Name, req.Email)
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
			return
		}

		token, err := IssueToken(user, guestTokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, apperr.Payload(apperr.Internal(err)))
			return
		}

		log.Printf("✅ Promoted guest to customer account %d", user.ID)
		c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
	}
}
