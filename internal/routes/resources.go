package routes

import (
	"github.com/labstack/echo/v4"

	"isp-system/pkg/middleware"
)

// crudController - стандартный набор ручек ресурса.
type crudController interface {
	GetAll(c echo.Context) error
	GetStats(c echo.Context) error
	GetByID(c echo.Context) error
	Create(c echo.Context) error
	Update(c echo.Context) error
	Delete(c echo.Context) error
}

// mountCRUD вешает list/stats/get/create/update/delete на /<resource>.
// Привилегии "<resource>:<action>"; область видимости дополнительно проверяет сервис.
func mountCRUD(g *echo.Group, authMW *middleware.AuthMiddleware, resource string, ctrl crudController) *echo.Group {
	rg := g.Group("/" + resource)
	view := authMW.AuthorizeAny(resource + ":view")

	rg.GET("", ctrl.GetAll, view)
	rg.GET("/stats", ctrl.GetStats, view)
	rg.GET("/:id", ctrl.GetByID, view)
	rg.POST("", ctrl.Create, authMW.AuthorizeAny(resource+":create"))
	rg.PUT("/:id", ctrl.Update, authMW.AuthorizeAny(resource+":update"))
	rg.DELETE("/:id", ctrl.Delete, authMW.AuthorizeAny(resource+":delete"))
	return rg
}
