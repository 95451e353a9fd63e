package routes

import (
	"github.com/labstack/echo/v4"

	"isp-system/internal/authz"
	"isp-system/internal/controllers"
	"isp-system/pkg/middleware"
)

func runBillingRouter(
	secureGroup *echo.Group,
	authMW *middleware.AuthMiddleware,
	planCtrl *controllers.PlanController,
	subscriptionCtrl *controllers.SubscriptionController,
	paymentCtrl *controllers.PaymentController,
) {
	mountCRUD(secureGroup, authMW, "plans", planCtrl)
	mountCRUD(secureGroup, authMW, "subscriptions", subscriptionCtrl)

	// статический сегмент /export у echo приоритетнее /:id
	payments := mountCRUD(secureGroup, authMW, "payments", paymentCtrl)
	payments.GET("/export", paymentCtrl.Export, authMW.AuthorizeAny(authz.PaymentsExport))
}
