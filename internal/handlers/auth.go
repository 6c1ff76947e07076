package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/storetrack/storetrack/internal/auth"
	"github.com/storetrack/storetrack/internal/events"
	"github.com/storetrack/storetrack/internal/hash"
	"github.com/storetrack/storetrack/internal/logging"
	"github.com/storetrack/storetrack/internal/models"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *auth.TokenService
	Producer events.Publisher
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var existing models.User
	err = h.DB.Where("username = ?", req.Username).First(&existing).Error
	switch {
	case err == nil:
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		l.Error("register_failed", "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         "user",
	}
	if err := h.DB.Create(&user).Error; err != nil {
		l.Error("register_failed", "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("register_success", "userID", user.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"userId":   user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		l.Warn("login_failed", "reason", "unknown user")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "reason", "bad password", "userID", user.ID)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	token, exp, err := h.Tokens.SignAccessToken(user.ID, user.Role)
	if err != nil {
		l.Error("login_failed", "reason", "cannot sign token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	c.SetCookie(auth.CreateCookie("accessToken", token, "/", exp))

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
	})

	l.Info("login_success", "userID", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"userId": user.ID,
		"role":   user.Role,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(auth.DeleteCookie("accessToken", "/"))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
