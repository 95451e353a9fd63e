package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"isp-system/internal/controllers"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/middleware"
	"isp-system/pkg/utils"
)

// authRateLimiter ограничивает /api/auth/* по IP: защита от перебора паролей поверх блокировки по логину.
func authRateLimiter(perSecond float64) echo.MiddlewareFunc {
	burst := int(perSecond * 2)
	if burst < 1 {
		burst = 1
	}
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return utils.ErrorResponse(c, apperrors.NewHttpError(http.StatusForbidden, "Не удалось определить клиента", err, nil), nil)
		},
		DenyHandler: func(c echo.Context, _ string, err error) error {
			return utils.ErrorResponse(c, apperrors.NewHttpError(http.StatusTooManyRequests, "Слишком много запросов, попробуйте позже", err, nil), nil)
		},
	})
}

func runAuthRouter(api *echo.Group, authCtrl *controllers.AuthController, authMW *middleware.AuthMiddleware, perSecond float64) {
	authGroup := api.Group("/auth")
	if perSecond > 0 {
		authGroup.Use(authRateLimiter(perSecond))
	}
	{
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/refresh", authCtrl.RefreshToken)
		authGroup.POST("/logout", authCtrl.Logout, authMW.Auth)
		authGroup.GET("/me", authCtrl.Me, authMW.Auth)
	}
}
