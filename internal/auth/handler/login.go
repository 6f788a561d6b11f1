package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ksrami99/video-tube/internal/auth"
	"github.com/ksrami99/video-tube/internal/httpx"
)

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, httpx.E(httpx.KindValidation, "invalid request body"))
		return
	}

	res, err := h.sessions.Login(c.Request.Context(), auth.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	httpx.SetSessionCookies(
		c.Writer,
		res.Tokens.AccessToken,
		res.Tokens.RefreshToken,
		h.cfg.AccessTokenTTL,
		h.cfg.RefreshTokenTTL,
		h.cfg.Cookies,
	)

	httpx.OK(c, http.StatusOK, gin.H{
		"user":         res.User,
		"accessToken":  res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
	}, "user logged in successfully")
}

