package routes

import (
	"github.com/labstack/echo/v4"

	"isp-system/internal/authz"
	"isp-system/internal/controllers"
	"isp-system/pkg/middleware"
)

func runSupportRouter(
	secureGroup *echo.Group,
	authMW *middleware.AuthMiddleware,
	complaintCtrl *controllers.ComplaintController,
	ticketCtrl *controllers.TicketController,
) {
	complaints := mountCRUD(secureGroup, authMW, "complaints", complaintCtrl)
	{
		complaints.GET("/export", complaintCtrl.Export, authMW.AuthorizeAny(authz.ComplaintsExport))
		complaints.GET("/:id/attachments", complaintCtrl.GetAttachments, authMW.AuthorizeAny(authz.ComplaintsView))
		complaints.POST("/:id/attachments", complaintCtrl.AddAttachment, authMW.AuthorizeAny(authz.ComplaintsView))
	}

	tickets := mountCRUD(secureGroup, authMW, "tickets", ticketCtrl)
	tickets.POST("/:id/escalate", ticketCtrl.Escalate, authMW.AuthorizeAny(authz.TicketsUpdate))
}
