package routes

import (
	"github.com/labstack/echo/v4"

	"isp-system/internal/authz"
	"isp-system/internal/controllers"
	"isp-system/pkg/middleware"
)

func runAdminRouter(
	secureGroup *echo.Group,
	authMW *middleware.AuthMiddleware,
	operatorCtrl *controllers.OperatorController,
	userCtrl *controllers.UserController,
	roleCtrl *controllers.RoleController,
	logCtrl *controllers.ActivityLogController,
	dashboardCtrl *controllers.DashboardController,
) {
	mountCRUD(secureGroup, authMW, "operators", operatorCtrl)

	users := secureGroup.Group("/users")
	{
		users.GET("", userCtrl.GetUsers, authMW.AuthorizeAny(authz.UsersView))
		users.GET("/stats", userCtrl.GetUserStats, authMW.AuthorizeAny(authz.UsersView))
		users.GET("/:id", userCtrl.GetUser, authMW.AuthorizeAny(authz.UsersView))
		users.POST("", userCtrl.CreateUser, authMW.AuthorizeAny(authz.UsersCreate))
		users.PUT("/:id", userCtrl.UpdateUser, authMW.AuthorizeAny(authz.UsersUpdate))
		users.PUT("/:id/password", userCtrl.ChangePassword, authMW.AuthorizeAny(authz.UsersUpdate, authz.StaffUpdate))
		users.DELETE("/:id", userCtrl.DeleteUser, authMW.AuthorizeAny(authz.UsersDelete))
	}

	staff := secureGroup.Group("/staff")
	{
		staff.GET("", userCtrl.GetStaff, authMW.AuthorizeAny(authz.StaffView))
		staff.GET("/stats", userCtrl.GetStaffStats, authMW.AuthorizeAny(authz.StaffView))
		staff.GET("/:id", userCtrl.GetStaffMember, authMW.AuthorizeAny(authz.StaffView))
		staff.POST("", userCtrl.CreateStaff, authMW.AuthorizeAny(authz.StaffCreate))
		staff.PUT("/:id", userCtrl.UpdateStaff, authMW.AuthorizeAny(authz.StaffUpdate))
		staff.DELETE("/:id", userCtrl.DeleteStaff, authMW.AuthorizeAny(authz.StaffDelete))
	}

	secureGroup.GET("/roles", roleCtrl.GetRoles, authMW.AuthorizeAny(authz.RolesView))
	secureGroup.GET("/roles/:id", roleCtrl.GetRole, authMW.AuthorizeAny(authz.RolesView))
	secureGroup.PUT("/roles/:id/permissions", roleCtrl.UpdatePermissions, authMW.AuthorizeAny(authz.RolesUpdate))
	secureGroup.GET("/permissions", roleCtrl.GetPermissions, authMW.AuthorizeAny(authz.RolesView))

	secureGroup.GET("/logs", logCtrl.GetAll, authMW.AuthorizeAny(authz.LogsView))
	secureGroup.GET("/dashboard", dashboardCtrl.GetDashboard, authMW.AuthorizeAny(authz.DashboardView))
}
