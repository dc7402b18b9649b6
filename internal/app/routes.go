package app

import (
	"time"

	"github.com/suchockipawel/nottodo/internal/auth"
	"github.com/suchockipawel/nottodo/internal/cache"
	"github.com/suchockipawel/nottodo/internal/config"
	"github.com/suchockipawel/nottodo/internal/handlers"
	"github.com/suchockipawel/nottodo/internal/repo"
	"github.com/suchockipawel/nottodo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, logger zerolog.Logger, db *pgxpool.Pool, rdb *redis.Client) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))

	api := r.Group("/api/v1")

	sessionStore := auth.NewStore(rdb, 24*time.Hour)
	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo)
	authHandler := handlers.NewAuthHandler(sessionStore, userSvc)
	registerAuthRoutes(api, sessionStore, authHandler)

	protected := api.Group("", auth.RequireSession(sessionStore))

	nottodoRepo := repo.NewPGNotToDoRepo(db)
	shareRepo := repo.NewPGShareRepo(db)
	emailLogRepo := repo.NewPGEmailLogRepo(db)
	nottodoCache := cache.NewNotToDoCache(rdb, cfg.Redis.DefaultTTL.Duration())

	nottodoSvc := service.NewNotToDoService(nottodoRepo, shareRepo, emailLogRepo, nottodoCache,
		logger.With().Str("component", "nottodo").Logger())
	nottodoHandler := handlers.NewNotToDoHandler(nottodoSvc)
	registerNotToDoRoutes(protected, nottodoHandler)

	shareSvc := service.NewShareService(shareRepo, nottodoRepo, userRepo)
	shareHandler := handlers.NewShareHandler(shareSvc)
	registerShareRoutes(protected, shareHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Not To Do API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"health":  "/health",
			"api":     "/api/v1",
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

func registerNotToDoRoutes(api *gin.RouterGroup, h *handlers.NotToDoHandler) {
	api.POST("/nottodos", h.Create)
	api.GET("/nottodos", h.List)
	api.GET("/nottodos/events", h.Events)
	api.GET("/nottodos/reminders/check", h.CheckReminders)
	api.GET("/nottodos/:id", h.GetByID)
	api.PATCH("/nottodos/:id", h.Update)
	api.DELETE("/nottodos/:id", h.Delete)
	api.POST("/nottodos/:id/copy", h.Copy)
	api.GET("/nottodos/:id/reminders", h.ReminderLog)
}

func registerShareRoutes(api *gin.RouterGroup, h *handlers.ShareHandler) {
	api.POST("/nottodos/:id/share", h.Share)
	api.GET("/shared", h.ListShared)
	api.DELETE("/shared/:id", h.Unshare)
	api.POST("/shared/:id/comments", h.AddComment)
}

func registerAuthRoutes(api *gin.RouterGroup, sessions *auth.Store, h *handlers.AuthHandler) {
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/logout", h.Logout)
	api.PATCH("/auth/email", auth.RequireSession(sessions), h.ChangeEmail)
}
