package utils

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "isp-system/pkg/errors"
)

// ParseIDParam достаёт положительный uint64 из path-параметра.
func ParseIDParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Неверный идентификатор: "+name, err, nil)
	}
	return id, nil
}

// BindAndValidate - Bind + Validate с единым форматом ошибки.
func BindAndValidate(c echo.Context, dto interface{}) error {
	if err := c.Bind(dto); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных", err, nil)
	}
	return c.Validate(dto)
}
