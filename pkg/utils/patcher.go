package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "isp-system/pkg/errors"
)

// Fields - набор json-полей, реально присланных в теле запроса.
// Нужен, чтобы отличить "поле не прислали" от "прислали null".
type Fields map[string]struct{}

func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// BindPatch читает тело, заполняет dto, валидирует и возвращает присланные поля.
func BindPatch(c echo.Context, dto interface{}) (Fields, error) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Не удалось прочитать тело запроса", err, nil)
	}
	if len(raw) == 0 {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Пустое тело запроса", nil, nil)
	}

	var sent map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sent); err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат JSON", err, nil)
	}
	if err := json.Unmarshal(raw, dto); err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных", err, nil)
	}
	if err := c.Validate(dto); err != nil {
		return nil, err
	}

	fields := make(Fields, len(sent))
	for k := range sent {
		fields[k] = struct{}{}
	}
	return fields, nil
}
