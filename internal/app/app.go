package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/raline/core/internal/config"
	"github.com/raline/core/internal/database"
	"github.com/raline/core/internal/middleware"
	"github.com/raline/core/internal/modules/comment"
	"github.com/raline/core/internal/modules/user"
	"github.com/raline/core/internal/modules/view"
	"github.com/raline/core/internal/pkg/akismet"
	"github.com/raline/core/internal/pkg/jwt"
	pkgredis "github.com/raline/core/internal/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	rc     *pkgredis.Client
	logger *zap.Logger
}

// New initializes the application: config → DB → Redis → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	jwt.SetSecret(cfg.JWTSecret)

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	app := &App{cfg: cfg, router: router, db: db, rc: rc, logger: logger}
	if err := app.registerRoutes(); err != nil {
		return nil, err
	}

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown releases external connections.
func (a *App) Shutdown() {
	if err := a.rc.Close(); err != nil {
		a.logger.Warn("redis close", zap.Error(err))
	}
}

func (a *App) registerRoutes() error {
	userSvc := user.NewService(a.db, a.logger)

	var checker comment.SpamChecker
	if a.cfg.Comment.AkismetEnabled() {
		checker = akismet.New(a.cfg.Comment.AkismetKey, a.cfg.Comment.SiteURL)
	}

	store := comment.NewStore(a.db)
	pipeline, err := comment.NewPipeline(a.cfg.Comment, store, checker, a.logger)
	if err != nil {
		return err
	}
	presenter := comment.NewPresenter(a.cfg.Comment, nil, nil)
	commentSvc := comment.NewService(store, userSvc, pipeline, presenter, a.cfg.Comment, a.logger)

	api := a.router.Group("/api")
	api.Use(middleware.OptionalAuth())
	api.Use(middleware.RateLimit(a.rc.Raw()))

	comment.NewHandler(commentSvc).RegisterRoutes(api)
	user.NewHandler(userSvc).RegisterRoutes(api)
	view.NewHandler(view.NewService(a.db)).RegisterRoutes(api)

	a.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return nil
}
