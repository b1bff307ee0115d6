package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/controllers"
	"github.com/sparesx/sparesx-api/logger"
	"github.com/sparesx/sparesx-api/middleware"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/utils"
)

// Setup builds the router with every API route. limiter throttles the
// password reset and upload endpoints per client IP.
func Setup(cfg *config.Config, limiter middleware.Limiter) *gin.Engine {
	utils.RegisterValidators()

	router := gin.New()
	// Forwarded client addresses are only honoured from configured proxies
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.L().Errorw("invalid trusted proxies, trusting none", "error", err)
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(cors.New(corsConfig(cfg)))

	router.GET("/health", healthCheck)
	router.GET("/health/database", databaseStatus)
	router.GET("/metrics", gin.WrapH(middleware.MetricsHandler()))

	api := router.Group("/api")
	throttle := middleware.RateLimit(limiter, middleware.ClientIPKey)
	authenticated := middleware.EnsureValidToken(cfg)

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.GET("/me", authenticated, controllers.GetMe)

		reset := auth.Group("/forgot-password")
		reset.POST("/request", throttle, controllers.RequestPasswordReset)
		reset.POST("/verify", throttle, controllers.VerifyPasswordReset)
		reset.POST("/reset", throttle, controllers.ResetPassword)
	}

	products := api.Group("/products")
	{
		products.GET("", controllers.ListProducts)
		products.GET("/:id", middleware.OptionalToken(cfg), controllers.GetProduct)
		products.POST("", authenticated, middleware.RequireRole(models.RoleTechnician), controllers.CreateProduct)
	}

	technician := api.Group("/technician", authenticated, middleware.RequireRole(models.RoleTechnician))
	{
		technician.GET("/profile", controllers.GetTechnicianProfile)
		technician.PUT("/profile", controllers.UpdateTechnicianProfile)
		technician.GET("/products", controllers.ListMyProducts)
		technician.POST("/products", controllers.CreateProduct)
		technician.PUT("/products/edit/:id", controllers.UpdateMyProduct)
		technician.DELETE("/products/delete/:id", controllers.DeleteMyProduct)
	}

	api.GET("/device-types", controllers.ListActiveDeviceTypes)
	api.GET("/device-types/:slug/categories", controllers.ListDeviceTypeCategories)

	api.GET("/categories/:category/brands", controllers.ListPublicBrands)
	api.GET("/categories/:category/brands/:slug/models", controllers.SearchBrandModels)
	api.GET("/brands", controllers.ListLegacyBrands)
	api.GET("/brands/:slug/models", controllers.SearchLegacyBrandModels)

	api.POST("/requests", controllers.CreatePartRequest)
	api.GET("/sellers", controllers.ListSellers)
	api.POST("/upload", throttle, controllers.UploadImages)
	api.GET("/uploads/:filename", controllers.GetUploadedImage)

	registerAdminRoutes(api, cfg)

	return router
}

func registerAdminRoutes(api *gin.RouterGroup, cfg *config.Config) {
	guard := []gin.HandlerFunc{middleware.EnsureValidToken(cfg), middleware.RequireRole(models.RoleAdmin)}

	admin := api.Group("/admin", guard...)
	{
		admin.GET("/dashboard", controllers.GetDashboard)

		admin.GET("/products", controllers.ListAdminProducts)
		admin.PATCH("/products/:id/status", controllers.UpdateProductStatus)

		admin.GET("/technicians", controllers.ListTechnicians)
		admin.GET("/technicians/:id", controllers.GetTechnician)
		admin.PUT("/technicians/:id", controllers.UpdateTechnician)
		admin.PUT("/technicians/:id/block", controllers.BlockTechnician)
		admin.PUT("/technicians/:id/unblock", controllers.UnblockTechnician)
		admin.DELETE("/technicians/:id", controllers.DeleteTechnician)

		admin.GET("/users", controllers.ListUsers)
		admin.GET("/users/:id", controllers.GetUser)
		admin.PATCH("/users/:id", controllers.UpdateUser)
		admin.DELETE("/users/:id", controllers.DeleteUser)
		admin.POST("/users/:id/reset-password", controllers.AdminResetUserPassword)

		admin.GET("/requests", controllers.ListRequests)
		admin.PATCH("/requests/:id/status", controllers.UpdateRequestStatus)

		admin.GET("/categories", controllers.ListCategories)
		admin.GET("/categories/:id", controllers.GetCategory)
		admin.POST("/categories", controllers.CreateCategory)
		admin.PUT("/categories/:id", controllers.UpdateCategory)
		admin.DELETE("/categories/:id", controllers.DeleteCategory)

		admin.GET("/device-types", controllers.ListDeviceTypes)
		admin.GET("/device-types/:id", controllers.GetDeviceType)
		admin.POST("/device-types", controllers.CreateDeviceType)
		admin.PUT("/device-types/:id", controllers.UpdateDeviceType)
		admin.DELETE("/device-types/:id", controllers.DeleteDeviceType)
	}

	brands := admin.Group("/device-categories/:category/brands")
	{
		brands.GET("", controllers.ListBrands)
		brands.POST("", controllers.CreateBrand)
		brands.POST("/bulk", controllers.BulkCreateBrands)
		brands.GET("/:slug", controllers.GetBrand)
		brands.PUT("/:slug", controllers.UpdateBrand)
		brands.DELETE("/:slug", controllers.DeleteBrand)
		brands.POST("/:slug/models", controllers.AddBrandModel)
		brands.DELETE("/:slug/models/:model", controllers.RemoveBrandModel)
	}

	parts := api.Group("/device-management/part-categories", guard...)
	{
		parts.GET("", controllers.ListPartCategories)
		parts.GET("/:id", controllers.GetPartCategory)
		parts.POST("", controllers.CreatePartCategory)
		parts.PUT("/:id", controllers.UpdatePartCategory)
		parts.DELETE("/:id", controllers.DeletePartCategory)
	}
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}

	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}

	corsCfg.AllowOrigins = cfg.CORSOrigins
	corsCfg.AllowCredentials = true
	return corsCfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "SparesX API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database is not initialized",
			},
		})
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
