package routes

import (
	"time"

	"marketplace-backend/audit"
	"marketplace-backend/config"
	"marketplace-backend/handlers"
	"marketplace-backend/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes registers every API route on r. The returned function stops
// the rate limiters' background cleanup.
func SetupRoutes(r *gin.Engine, db *gorm.DB, rec audit.Recorder) (stop func()) {
	if rec == nil {
		rec = audit.Discard
	}

	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	ownerProfileHandler := &handlers.OwnerProfileHandler{DB: db, Audit: rec}
	storeHandler := &handlers.StoreHandler{DB: db, Audit: rec}
	productHandler := &handlers.ProductHandler{DB: db, Audit: rec}
	staffHandler := &handlers.StaffHandler{DB: db, Audit: rec}
	businessHoursHandler := &handlers.BusinessHoursHandler{DB: db, Audit: rec}
	taxiStandHandler := &handlers.TaxiStandHandler{DB: db, Audit: rec}
	userHandler := &handlers.UserHandler{DB: db, Audit: rec}
	analyticsHandler := &handlers.AnalyticsHandler{DB: db}

	perMinute := config.GetEnvInt("RATE_LIMIT_PER_MINUTE", 30)
	loginLimiter := middleware.NewRateLimiter(perMinute, time.Minute)
	nearbyLimiter := middleware.NewRateLimiter(perMinute, time.Minute)

	// Public routes
	api := r.Group("/api")
	{
		api.POST("/auth/register", loginLimiter.Middleware(), authHandler.Register)
		api.POST("/auth/login", loginLimiter.Middleware(), authHandler.Login)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
		protected.PUT("/auth/profile", authHandler.UpdateProfile)
		protected.PUT("/auth/password", authHandler.ChangePassword)

		// Taxi stand reads are open to every signed-in role
		protected.GET("/taxi-stands", taxiStandHandler.ListTaxiStands)
		protected.GET("/taxi-stands/:id", taxiStandHandler.GetTaxiStand)
		protected.POST("/taxi-stands/nearby", nearbyLimiter.Middleware(), taxiStandHandler.FindNearby)
	}

	// Store owner self-service
	owner := protected.Group("/store-owner")
	owner.Use(middleware.StoreOwnerMiddleware())
	{
		owner.POST("/profile", ownerProfileHandler.CreateProfile)
		owner.GET("/profile", ownerProfileHandler.GetProfile)
	}

	// Store management (store owners see only their own stores)
	stores := protected.Group("/stores")
	stores.Use(middleware.StoreManagerMiddleware())
	{
		stores.POST("", storeHandler.CreateStore)
		stores.GET("", storeHandler.ListStores)
		stores.GET("/:id", storeHandler.GetStore)
		stores.PUT("/:id", storeHandler.UpdateStore)
		stores.PUT("/:id/closure", storeHandler.UpdateClosure)
		stores.DELETE("/:id", storeHandler.DeleteStore)

		stores.POST("/business-hours", businessHoursHandler.ReplaceBusinessHours)
		stores.GET("/:id/business-hours", businessHoursHandler.GetBusinessHours)

		stores.POST("/products", productHandler.CreateProduct)
		stores.GET("/products", productHandler.ListProducts)
		stores.GET("/product-categories", productHandler.GetCategories)
		stores.GET("/products/categories", productHandler.GetCategories)
		stores.PUT("/products/bulk", productHandler.BulkUpdateProducts)
		stores.GET("/products/:id", productHandler.GetProduct)
		stores.PUT("/products/:id", productHandler.UpdateProduct)
		stores.DELETE("/products/:id", productHandler.DeleteProduct)

		stores.POST("/staff", staffHandler.CreateStaff)
		stores.GET("/staff", staffHandler.ListStaff)
		stores.GET("/staff/:id", staffHandler.GetStaff)
		stores.PUT("/staff/:id", staffHandler.UpdateStaff)
		stores.DELETE("/staff/:id", staffHandler.DeleteStaff)
	}

	// Admin routes (require admin role)
	admin := protected.Group("")
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("/taxi-stands", taxiStandHandler.CreateTaxiStand)
		admin.PUT("/taxi-stands/:id", taxiStandHandler.UpdateTaxiStand)
		admin.DELETE("/taxi-stands/:id", taxiStandHandler.DeleteTaxiStand)

		admin.GET("/users", userHandler.ListUsers)
		admin.GET("/users/:id", userHandler.GetUser)
		admin.PUT("/users/:id/status", userHandler.UpdateUserStatus)
		admin.PUT("/users/:id/verification", userHandler.UpdateUserVerification)
		admin.GET("/users/:id/analytics", analyticsHandler.GetUserAnalytics)
		admin.GET("/users/:id/analytics/report", analyticsHandler.GetUserAnalyticsReport)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return func() {
		loginLimiter.Stop()
		nearbyLimiter.Stop()
	}
}
