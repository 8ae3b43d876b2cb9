package contactControllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/walthampeppinosdosa/peppinos-api/apperr"
	"github.com/walthampeppinosdosa/peppinos-api/models"
)

func respondErr(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
}

type ContactInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Body    string `json:"body" binding:"required"`
}

// POST /contact
func SubmitContactMessage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ContactInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondErr(c, apperr.InvalidArgument("invalid input: %s", err.Error()))
			return
		}
		msg := models.ContactMessage{
			Name:    input.Name,
			Email:   input.Email,
			Subject: input.Subject,
			Body:    input.Body,
		}
		if err := db.Create(&msg).Error; err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}

// GET /admin/contact
func GetContactMessages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Order("created_at DESC")
		if c.Query("unresolved") == "true" {
			query = query.Where("resolved = ?", false)
		}
		var messages []models.ContactMessage
		if err := query.Find(&messages).Error; err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, messages)
	}
}

// PUT /admin/contact/:id/resolve
func ResolveContactMessage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			respondErr(c, apperr.InvalidArgument("invalid id %q", c.Param("id")))
			return
		}

		var msg models.ContactMessage
		if err := db.First(&msg, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondErr(c, apperr.NotFound("contact message %d not found", id))
				return
			}
			respondErr(c, apperr.Internal(err))
			return
		}

		if err := db.Model(&msg).Update("resolved", true).Error; err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, msg)
	}
}

type NewsletterInput struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /newsletter/subscribe - re-subscribing an existing address just
// re-activates it.
func Subscribe(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input NewsletterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondErr(c, apperr.InvalidArgument("invalid input: %s", err.Error()))
			return
		}

		var sub models.NewsletterSubscriber
		err := db.Where("email = ?", input.Email).First(&sub).Error
		switch {
		case err == nil:
			if err := db.Model(&sub).Update("active", true).Error; err != nil {
				respondErr(c, apperr.Internal(err))
				return
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			sub = models.NewsletterSubscriber{
				Email:        input.Email,
				Active:       true,
				SubscribedAt: time.Now(),
			}
			if err := db.Create(&sub).Error; err != nil {
				respondErr(c, apperr.Internal(err))
				return
			}
		default:
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, sub)
	}
}

// POST /newsletter/unsubscribe
func Unsubscribe(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input NewsletterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondErr(c, apperr.InvalidArgument("invalid input: %s", err.Error()))
			return
		}
		result := db.Model(&models.NewsletterSubscriber{}).
			Where("email = ?", input.Email).Update("active", false)
		if result.Error != nil {
			respondErr(c, apperr.Internal(result.Error))
			return
		}
		if result.RowsAffected == 0 {
			respondErr(c, apperr.NotFound("no subscription for %s", input.Email))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed"})
	}
}

// GET /admin/newsletter
func GetSubscribers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var subs []models.NewsletterSubscriber
		if err := db.Where("active = ?", true).
			Order("subscribed_at DESC").Find(&subs).Error; err != nil {
			respondErr(c, apperr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, subs)
	}
}
