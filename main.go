package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-backend/audit"
	"marketplace-backend/config"
	"marketplace-backend/database"
	"marketplace-backend/routes"
	"marketplace-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"
)

// setupAudit writes audit events to the database and, when AUDIT_AMQP_URL is
// set, also publishes them to a topic exchange. The returned function closes
// the broker connection.
func setupAudit(db *gorm.DB) (audit.Recorder, func()) {
	trail := audit.Trail{&audit.GormRecorder{DB: db}}

	url := os.Getenv("AUDIT_AMQP_URL")
	if url == "" {
		return trail, func() {}
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Printf("Warning: audit broker unavailable, events go to the database only: %v", err)
		return trail, func() {}
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Printf("Warning: could not open audit channel: %v", err)
		conn.Close()
		return trail, func() {}
	}

	exchange := config.GetEnv("AUDIT_EXCHANGE", "marketplace.audit")
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		log.Printf("Warning: could not declare audit exchange %s: %v", exchange, err)
		ch.Close()
		conn.Close()
		return trail, func() {}
	}

	log.Printf("Publishing audit events to exchange %s", exchange)
	trail = append(trail, audit.NewAMQPPublisher(ch, exchange))
	return trail, func() {
		ch.Close()
		conn.Close()
	}
}

func main() {
	// Load environment variables
	if err := config.LoadEnv(); err != nil {
		log.Fatal("Error loading .env file:", err)
	}

	// Validate critical environment variables
	if err := config.ValidateEnv(); err != nil {
		log.Fatal("Environment validation failed: ", err)
	}

	utils.RegisterValidators()

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Create default admin user if not exists
	if err := database.CreateDefaultAdmin(db); err != nil {
		log.Printf("Warning: Could not create default admin: %v", err)
	}

	recorder, closeAudit := setupAudit(db)
	defer closeAudit()

	// Setup Gin router
	r := gin.Default()

	// CORS configuration - filter out empty strings from AllowOrigins
	origins := []string{os.Getenv("FRONTEND_URL"), os.Getenv("ADMIN_URL")}
	var filteredOrigins []string
	for _, o := range origins {
		if o != "" {
			filteredOrigins = append(filteredOrigins, o)
		}
	}
	if len(filteredOrigins) == 0 {
		filteredOrigins = []string{"http://localhost:3000"}
		log.Println("WARNING: No CORS origins configured, defaulting to http://localhost:3000")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     filteredOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
	}))

	// Setup routes
	stopLimiters := routes.SetupRoutes(r, db, recorder)
	defer stopLimiters()

	port := config.GetEnv("PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		} else {
			log.Println("Database connection closed")
		}
	}

	log.Println("Server exited gracefully")
}
