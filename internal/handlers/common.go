package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/storetrack/storetrack/internal/auth"
	"github.com/storetrack/storetrack/internal/events"
	"github.com/storetrack/storetrack/internal/logging"
)

func parseUintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// canActFor reports whether the caller may operate on userID's data. Admins
// may act for anyone.
func canActFor(c echo.Context, userID uint) bool {
	return auth.Role(c) == "admin" || auth.UserID(c) == userID
}

// publish sends a domain event best-effort: a broker outage must never fail
// the request that triggered the event.
func publish(c echo.Context, p events.Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("event publish failed",
			"topic", topic, "error", err)
	}
}
