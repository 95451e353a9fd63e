package controllers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-system/pkg/api"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/export"
	"isp-system/pkg/types"
	"isp-system/pkg/utils"
)

// Общие обработчики: контроллеры ресурсов отличаются только сообщениями и методами сервиса.

type listFunc[T any] func(ctx context.Context, filter types.Filter) ([]T, uint64, error)

func respondList[T any](c echo.Context, logger *zap.Logger, message string, fn listFunc[T]) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	list, total, err := fn(c.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(c, err, logger)
	}
	return api.SuccessList(c, message, list, total, filter.Page, filter.Limit, filter.WithPagination)
}

func respondStats[T any](c echo.Context, logger *zap.Logger, fn func(ctx context.Context, filter types.Filter) (T, error)) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	stats, err := fn(c.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(c, err, logger)
	}
	return api.SuccessOne(c, http.StatusOK, "Статистика получена", stats)
}

func respondByID[T any](c echo.Context, logger *zap.Logger, message string, fn func(ctx context.Context, id uint64) (T, error)) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, logger)
	}
	result, err := fn(c.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(c, err, logger)
	}
	return api.SuccessOne(c, http.StatusOK, message, result)
}

func respondCreate[D any, T any](c echo.Context, logger *zap.Logger, message string, fn func(ctx context.Context, payload D) (T, error)) error {
	var payload D
	if err := utils.BindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, logger)
	}
	result, err := fn(c.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(c, err, logger)
	}
	return api.SuccessOne(c, http.StatusCreated, message, result)
}

// respondPatch - частичное обновление: сервис получает набор реально присланных полей.
func respondPatch[D any, T any](c echo.Context, logger *zap.Logger, message string, fn func(ctx context.Context, id uint64, payload D, fields utils.Fields) (T, error)) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, logger)
	}
	var payload D
	fields, err := utils.BindPatch(c, &payload)
	if err != nil {
		return utils.ErrorResponse(c, err, logger)
	}
	result, err := fn(c.Request().Context(), id, payload, fields)
	if err != nil {
		return utils.ErrorResponse(c, err, logger)
	}
	return api.SuccessOne(c, http.StatusOK, message, result)
}

// respondAction - действие над записью с телом целиком (assign, review, adjust, status).
func respondAction[D any, T any](c echo.Context, logger *zap.Logger, message string, fn func(ctx context.Context, id uint64, payload D) (T, error)) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, logger)
	}
	var payload D
	if err := utils.BindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, logger)
	}
	result, err := fn(c.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, logger)
	}
	return api.SuccessOne(c, http.StatusOK, message, result)
}

func respondDelete(c echo.Context, logger *zap.Logger, message string, fn func(ctx context.Context, id uint64) error) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, logger)
	}
	if err := fn(c.Request().Context(), id); err != nil {
		return utils.ErrorResponse(c, err, logger)
	}
	return api.SuccessOne(c, http.StatusOK, message, struct{}{})
}

// respondExport отдаёт xlsx. Файл собирается в память целиком: при ошибке клиент получает
// обычный JSON-конверт, а не обрезанный файл.
func respondExport(c echo.Context, logger *zap.Logger, name string, fn func(ctx context.Context, filter types.Filter, w io.Writer) error) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	var buf bytes.Buffer
	if err := fn(c.Request().Context(), filter, &buf); err != nil {
		return utils.ErrorResponse(c, err, logger)
	}
	fileName := fmt.Sprintf("%s_%s.xlsx", name, time.Now().Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Blob(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}

func badRequest(message string, err error) error {
	return apperrors.NewHttpError(http.StatusBadRequest, message, err, nil)
}
