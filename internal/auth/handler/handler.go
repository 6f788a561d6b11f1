package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ksrami99/video-tube/internal/auth"
	"github.com/ksrami99/video-tube/internal/httpx"
	"github.com/ksrami99/video-tube/internal/media"
	"github.com/ksrami99/video-tube/internal/middleware"
)

type Config struct {
	Cookies         httpx.CookieOptions
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	UploadTTL       time.Duration
}

type Handler struct {
	sessions *auth.SessionService
	store    media.Store
	uploads  media.Registry
	cfg      Config
}

func NewHandler(
	sessions *auth.SessionService,
	store media.Store,
	uploads media.Registry,
	cfg Config,
) *Handler {
	return &Handler{
		sessions: sessions,
		store:    store,
		uploads:  uploads,
		cfg:      cfg,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, requireAuth gin.HandlerFunc) {
	users := r.Group("/api/v1/users")

	users.POST("/register", h.Register)
	users.POST("/login", h.Login)

	users.POST("/logout", requireAuth, h.Logout)
	users.GET("/me", requireAuth, h.Me)
}

func (h *Handler) Logout(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		httpx.Fail(c, httpx.E(httpx.KindAuthentication, "unauthorized request"))
		return
	}

	// Teardown must be durable before the success response goes out.
	if err := h.sessions.Logout(c.Request.Context(), userID); err != nil {
		httpx.Fail(c, err)
		return
	}

	httpx.ClearSessionCookies(c.Writer, h.cfg.Cookies)

	httpx.OK(c, http.StatusOK, gin.H{}, "user logged out")
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		httpx.Fail(c, httpx.E(httpx.KindAuthentication, "unauthorized request"))
		return
	}

	me, err := h.sessions.Me(c.Request.Context(), userID)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, http.StatusOK, me, "current user fetched successfully")
}
