package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "isp-system/pkg/errors"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	})
}

// sentinelCodes - соответствие доменных ошибок HTTP-кодам.
var sentinelCodes = []struct {
	err  error
	code int
}{
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrUserNotFound, http.StatusNotFound},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized},
	{apperrors.ErrEmptyAuthHeader, http.StatusUnauthorized},
	{apperrors.ErrInvalidAuthHeader, http.StatusUnauthorized},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
	{apperrors.ErrUserInactive, http.StatusUnauthorized},
	{apperrors.ErrInvalidToken, http.StatusUnauthorized},
	{apperrors.ErrInvalidSigningMethod, http.StatusUnauthorized},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized},
	{apperrors.ErrTokenNotYetValid, http.StatusUnauthorized},
	{apperrors.ErrTokenIsNotRefresh, http.StatusUnauthorized},
	{apperrors.ErrTokenIsNotAccess, http.StatusUnauthorized},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized},
	{apperrors.ErrTooManyAttempts, http.StatusTooManyRequests},
	{apperrors.ErrConflict, http.StatusConflict},
	{apperrors.ErrFinalStatus, http.StatusUnprocessableEntity},
	{apperrors.ErrBadRequest, http.StatusBadRequest},
}

// ErrorResponse пишет конверт ошибки. Всё, что не распознано, уходит как 500 и логируется.
func ErrorResponse(ctx echo.Context, err error, logger *zap.Logger) error {
	code := http.StatusInternalServerError
	message := "Внутренняя ошибка сервера"
	var details interface{}

	var httpErr *apperrors.HttpError
	var inputErr *apperrors.InvalidInputError
	var validationErrs validator.ValidationErrors
	var echoErr *echo.HTTPError

	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		message = httpErr.Message
		details = httpErr.Details
		if details == nil && errors.As(httpErr.Err, &validationErrs) {
			details = validationDetails(validationErrs)
		}
	case errors.As(err, &validationErrs):
		code = http.StatusBadRequest
		message = "Ошибка валидации"
		details = validationDetails(validationErrs)
	case errors.As(err, &inputErr):
		code = http.StatusBadRequest
		message = inputErr.Message
	case errors.As(err, &echoErr):
		code = echoErr.Code
		if m, ok := echoErr.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	default:
		for _, s := range sentinelCodes {
			if errors.Is(err, s.err) {
				code = s.code
				message = s.err.Error()
				break
			}
		}
	}

	if logger != nil {
		fields := []zap.Field{
			zap.Int("status", code),
			zap.String("method", ctx.Request().Method),
			zap.String("uri", ctx.Request().RequestURI),
			zap.Error(err),
		}
		if code >= http.StatusInternalServerError {
			logger.Error("Ошибка обработки запроса", fields...)
		} else {
			logger.Warn("Запрос отклонён", fields...)
		}
	}

	body := interface{}(struct{}{})
	if details != nil {
		body = details
	}
	return ctx.JSON(code, &HttpResponse{
		Status:  false,
		Body:    body,
		Message: message,
	})
}

func validationDetails(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = "обязательное поле"
		case "oneof":
			out[field] = "допустимые значения: " + fe.Param()
		case "min", "gte", "gt":
			out[field] = "значение слишком мало (" + fe.Tag() + "=" + fe.Param() + ")"
		case "max", "lte", "lt":
			out[field] = "значение слишком велико (" + fe.Tag() + "=" + fe.Param() + ")"
		case "email":
			out[field] = "неверный формат email"
		default:
			out[field] = "не прошло проверку: " + fe.Tag()
		}
	}
	return out
}
