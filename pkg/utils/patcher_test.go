package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopValidator struct{}

func (noopValidator) Validate(interface{}) error { return nil }

type patchTaskDTO struct {
	Title *string     `json:"title"`
	Notes null.String `json:"notes"`
}

func TestBindPatch(t *testing.T) {
	e := echo.New()
	e.Validator = noopValidator{}

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"notes": null}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	var dto patchTaskDTO
	fields, err := BindPatch(c, &dto)
	require.NoError(t, err)

	assert.True(t, fields.Has("notes"))
	assert.False(t, fields.Has("title"))
	assert.False(t, dto.Notes.Valid)
	assert.Nil(t, dto.Title)
}

func TestBindPatch_EmptyBody(t *testing.T) {
	e := echo.New()
	e.Validator = noopValidator{}
	c := e.NewContext(httptest.NewRequest(http.MethodPut, "/", strings.NewReader("")), httptest.NewRecorder())

	_, err := BindPatch(c, &patchTaskDTO{})
	assert.Error(t, err)
}

func TestParseIDParam(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("42")

	id, err := ParseIDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	c.SetParamValues("abc")
	_, err = ParseIDParam(c, "id")
	assert.Error(t, err)
}
