package routes

import (
	"github.com/labstack/echo/v4"

	"isp-system/internal/authz"
	"isp-system/internal/controllers"
	"isp-system/pkg/middleware"
)

func runSupplyRouter(
	secureGroup *echo.Group,
	authMW *middleware.AuthMiddleware,
	vendorCtrl *controllers.VendorController,
	inventoryCtrl *controllers.InventoryController,
	orderCtrl *controllers.OrderController,
	returnCtrl *controllers.ReturnController,
	shipmentCtrl *controllers.ShipmentController,
) {
	mountCRUD(secureGroup, authMW, "vendors", vendorCtrl)

	// Кабинет поставщика
	profile := secureGroup.Group("/vendor/profile")
	{
		profile.GET("", vendorCtrl.GetProfile, authMW.AuthorizeAny(authz.VendorsView))
		profile.PUT("", vendorCtrl.UpdateProfile, authMW.AuthorizeAny(authz.VendorsUpdate))
	}

	inventory := mountCRUD(secureGroup, authMW, "inventory", inventoryCtrl)
	{
		inventory.POST("/:id/adjust", inventoryCtrl.Adjust, authMW.AuthorizeAny(authz.InventoryUpdate))
		inventory.POST("/import", inventoryCtrl.Import, authMW.AuthorizeAny(authz.InventoryImport))
		inventory.GET("/export", inventoryCtrl.Export, authMW.AuthorizeAny(authz.InventoryExport))
	}

	mountCRUD(secureGroup, authMW, "orders", orderCtrl)
	mountCRUD(secureGroup, authMW, "returns", returnCtrl)
	mountCRUD(secureGroup, authMW, "shipments", shipmentCtrl)
}
