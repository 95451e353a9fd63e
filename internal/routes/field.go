package routes

import (
	"github.com/labstack/echo/v4"

	"isp-system/internal/authz"
	"isp-system/internal/controllers"
	"isp-system/pkg/middleware"
)

func runFieldRouter(secureGroup *echo.Group, authMW *middleware.AuthMiddleware, taskCtrl *controllers.TaskController) {
	tasks := mountCRUD(secureGroup, authMW, "tasks", taskCtrl)
	tasks.PUT("/:id/assign", taskCtrl.Assign, authMW.AuthorizeAny(authz.TasksAssign))

	// Кабинет техника: список своих задач и смена статуса/заметок.
	technician := secureGroup.Group("/technician/tasks")
	{
		technician.GET("", taskCtrl.GetAll, authMW.AuthorizeAny(authz.TasksView))
		technician.GET("/stats", taskCtrl.GetStats, authMW.AuthorizeAny(authz.TasksView))
		technician.GET("/:id", taskCtrl.GetByID, authMW.AuthorizeAny(authz.TasksView))
		technician.PUT("/:id", taskCtrl.UpdateByTechnician, authMW.AuthorizeAny(authz.TasksUpdate))
	}
}
