package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-system/internal/dto"
	"isp-system/internal/services"
	"isp-system/pkg/api"
	"isp-system/pkg/utils"
)

type AuthController struct {
	authService services.AuthServiceInterface
	logger      *zap.Logger
}

func NewAuthController(authService services.AuthServiceInterface, logger *zap.Logger) *AuthController {
	return &AuthController{authService: authService, logger: logger}
}

func (ctrl *AuthController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := utils.BindAndValidate(c, &payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	result, err := ctrl.authService.Login(c.Request().Context(), payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "Авторизация прошла успешно", result)
}

func (ctrl *AuthController) RefreshToken(c echo.Context) error {
	var payload dto.RefreshTokenDTO
	if err := utils.BindAndValidate(c, &payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	result, err := ctrl.authService.Refresh(c.Request().Context(), payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "Токены обновлены", result)
}

func (ctrl *AuthController) Logout(c echo.Context) error {
	if err := ctrl.authService.Logout(c.Request().Context()); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "Вы успешно вышли из системы.", struct{}{})
}

func (ctrl *AuthController) Me(c echo.Context) error {
	user, err := ctrl.authService.Me(c.Request().Context())
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "Профиль получен", user)
}
