package app

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vmunrayos/multi-workspace/internal/auth"
	"github.com/vmunrayos/multi-workspace/internal/auth/handler"
	"github.com/vmunrayos/multi-workspace/internal/config"
	"github.com/vmunrayos/multi-workspace/internal/middleware"
	"github.com/vmunrayos/multi-workspace/internal/session"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	store, cleanup, err := setupStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	verifier, err := auth.NewDemoVerifier()
	if err != nil {
		return nil, nil, err
	}

	cookieOpts := session.CookieOptionsFor(cfg.SecureCookies)

	authHandler := handler.NewHandler(verifier, store, cookieOpts)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog())

	// Credentialed CORS: explicit origins only. cfg.Validate has
	// already rejected wildcards before we get here.
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// ----------------------------
	// Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router, cleanup, nil
}
