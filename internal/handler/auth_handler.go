package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"clinica-agenda-api/internal/auth"
	"clinica-agenda-api/internal/model"
	"clinica-agenda-api/internal/store"
)

const refreshTTL = 30 * 24 * time.Hour

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *Handler) RegisterUser(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "all fields required")
	}
	if len(req.Password) < 8 {
		return echo.NewHTTPError(http.StatusBadRequest, "password too short")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
	}

	if err := h.users.CreateUser(c.Request().Context(), u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			// don't confirm which emails are registered
			return echo.NewHTTPError(http.StatusConflict, "registration failed")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	tok, err := auth.MakeToken(u.ID, h.secret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"user_id": u.ID,
		"token":   tok,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	ctx := c.Request().Context()

	u, err := h.users.UserByEmail(ctx, req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	tok, err := auth.MakeToken(u.ID, h.secret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if _, err := h.users.CreateRefreshToken(ctx, u.ID, refreshHash, time.Now().Add(refreshTTL)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"token":         tok,
		"refresh_token": rawRefresh,
		"user_id":       u.ID,
		"name":          u.Name,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh_token required")
	}

	ctx := c.Request().Context()

	rt, err := h.users.GetRefreshTokenByHash(ctx, auth.HashRefreshToken(req.RefreshToken))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}
	if rt.Revoked {
		// reuse of a rotated token smells like theft; kill the session family
		_ = h.users.RevokeAllRefreshTokens(ctx, rt.UserID)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}
	if time.Now().After(rt.ExpiresAt) {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token expired")
	}

	rawNew, newHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	newID := uuid.New().String()
	if err := h.users.RotateRefreshToken(ctx, rt.ID, newID, rt.UserID, newHash, time.Now().Add(refreshTTL)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	tok, err := auth.MakeToken(rt.UserID, h.secret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"token":         tok,
		"refresh_token": rawNew,
	})
}
