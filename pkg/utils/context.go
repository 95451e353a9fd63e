package utils

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// Ctx - контекст запроса с таймаутом в секундах.
func Ctx(c echo.Context, seconds int) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), time.Duration(seconds)*time.Second)
}
