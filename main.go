package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/walthampeppinosdosa/peppinos-api/auth"
	"github.com/walthampeppinosdosa/peppinos-api/events"
	"github.com/walthampeppinosdosa/peppinos-api/models"
	"github.com/walthampeppinosdosa/peppinos-api/realtime"
	"github.com/walthampeppinosdosa/peppinos-api/routes"
)

func main() {
	log.Println("✅ Starting application...")

	// Load environment variables
	_ = godotenv.Load()

	// Init DB
	db := initDatabase()

	// Auto-migrate all tables
	if err := db.AutoMigrate(
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
		&models.ContactMessage{},
		&models.NewsletterSubscriber{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	// Gin setup
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", "X-Guest-Session"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Cart change observers; the registry is shared with every cart handler
	pub := events.NewCartPublisher()
	pub.Subscribe(events.CartObserverFunc(func(ownerID string, cart models.Cart) {
		log.Printf("🛒 Cart updated for %s: %d items, subtotal %.2f", ownerID, len(cart.Items), cart.Subtotal())
	}))

	// Real-time order channel
	hub := realtime.NewHub()

	// Setup routes
	routes.SetupRoutes(r, db, pub, hub)

	// Sweep stale guest users (and their carts) daily at 3 AM
	go startDailyGuestSweepAtFixedTime(db, guestTTL(), 3, 0)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server running on port %s...", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase() *gorm.DB {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			log.Fatalf("❌ DB connection failed: %v", err)
		}
		return db
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ Failed to connect DB: %v", err)
	}
	return db
}

// guestTTL reads how long idle guests are kept, defaulting to seven days.
func guestTTL() time.Duration {
	if v := os.Getenv("GUEST_TTL_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	return 7 * 24 * time.Hour
}

// startDailyGuestSweepAtFixedTime removes expired guest data every day at a
// fixed hour
func startDailyGuestSweepAtFixedTime(db *gorm.DB, ttl time.Duration, hour, min int) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		sleepDuration := next.Sub(now)
		log.Printf("⏳ Next guest sweep scheduled at: %s", next.Format("2006-01-02 15:04:05"))
		time.Sleep(sleepDuration)

		swept, err := auth.CleanupExpiredGuests(db, ttl)
		if err != nil {
			log.Printf("❌ Guest sweep failed: %v", err)
			continue
		}
		log.Printf("🗑️ Guest sweep removed %d stale guests", swept)
	}
}
