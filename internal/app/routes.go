package app

import (
	"Sweetshop/internal/auth"
	"Sweetshop/internal/cache"
	"Sweetshop/internal/config"
	"Sweetshop/internal/handlers"
	"Sweetshop/internal/repo"
	"Sweetshop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api")

	tokens := auth.NewManager([]byte(cfg.Auth.Secret), cfg.Auth.TokenTTL.Duration())
	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo)
	authHandler := handlers.NewAuthHandler(tokens, userSvc)
	registerAuthRoutes(api, authHandler)

	protected := api.Group("", auth.RequireAuth(tokens, userSvc))
	sweetRepo := repo.NewPGSweetRepo(db)
	sweetCache := cache.NewSweetCache(rdb, cfg.Redis.DefaultTTL.Duration())
	sweetSvc := service.NewSweetService(sweetRepo, sweetCache)
	sweetHandler := handlers.NewSweetHandler(sweetSvc)
	registerSweetRoutes(protected, sweetHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Welcome to Sweet Shop Management System API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerSweetRoutes(api *gin.RouterGroup, h *handlers.SweetHandler) {
	api.POST("/sweets", h.Create)
	api.GET("/sweets", h.List)
	api.GET("/sweets/search", h.Search)
	api.GET("/sweets/:id", h.GetByID)
	api.PUT("/sweets/:id", h.Update)
	api.POST("/sweets/:id/purchase", h.Purchase)

	admin := api.Group("", auth.RequireAdmin())
	admin.DELETE("/sweets/:id", h.Delete)
	admin.POST("/sweets/:id/restock", h.Restock)
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
}
