package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ksrami99/video-tube/internal/auth"
	"github.com/ksrami99/video-tube/internal/auth/handler"
	"github.com/ksrami99/video-tube/internal/auth/token"
	"github.com/ksrami99/video-tube/internal/config"
	"github.com/ksrami99/video-tube/internal/httpx"
	"github.com/ksrami99/video-tube/internal/media"
	"github.com/ksrami99/video-tube/internal/middleware"
	"github.com/ksrami99/video-tube/internal/user"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	userRepo := user.NewPostgresRepository(infra.DB)
	uploads := media.NewRedisRegistry(infra.Redis)

	mediaStore, err := media.NewS3Store(ctx, media.S3Config{
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})
	if err != nil {
		return nil, nil, err
	}

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	sessions := auth.NewSessionService(userRepo, uploads, issuer)

	authHandler := handler.NewHandler(sessions, mediaStore, uploads, handler.Config{
		Cookies: httpx.CookieOptions{
			Domain: cfg.CookieDomain,
			Secure: cfg.CookieSecure,
		},
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		UploadTTL:       cfg.UploadTTL,
	})

	authMiddleware := middleware.NewAuthMiddleware(issuer)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	authHandler.RegisterRoutes(router, middleware.GinRequireAuth(authMiddleware))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		if err := infra.Redis.Close(); err != nil {
			return err
		}
		return infra.DB.Close()
	}, nil
}
