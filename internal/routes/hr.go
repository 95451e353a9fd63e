package routes

import (
	"github.com/labstack/echo/v4"

	"isp-system/internal/authz"
	"isp-system/internal/controllers"
	"isp-system/pkg/middleware"
)

func runHRRouter(
	secureGroup *echo.Group,
	authMW *middleware.AuthMiddleware,
	attendanceCtrl *controllers.AttendanceController,
	leaveCtrl *controllers.LeaveController,
) {
	attendance := mountCRUD(secureGroup, authMW, "attendance", attendanceCtrl)
	{
		attendance.POST("/check-in", attendanceCtrl.CheckIn, authMW.AuthorizeAny(authz.AttendanceCreate))
		attendance.POST("/check-out", attendanceCtrl.CheckOut, authMW.AuthorizeAny(authz.AttendanceCreate))
	}

	leaves := mountCRUD(secureGroup, authMW, "leaves", leaveCtrl)
	leaves.PUT("/:id/review", leaveCtrl.Review, authMW.AuthorizeAny(authz.LeavesReview))
}
