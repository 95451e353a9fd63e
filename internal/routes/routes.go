package routes

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-system/internal/controllers"
	"isp-system/internal/listeners"
	"isp-system/internal/repositories"
	"isp-system/internal/services"
	"isp-system/pkg/config"
	"isp-system/pkg/eventbus"
	"isp-system/pkg/filestorage"
	"isp-system/pkg/middleware"
	"isp-system/pkg/service"
	"isp-system/pkg/websocket"
)

// Loggers - именованные логгеры по доменам.
type Loggers struct {
	Main    *zap.Logger
	Auth    *zap.Logger
	Billing *zap.Logger
	Support *zap.Logger
	Field   *zap.Logger
	Supply  *zap.Logger
	HR      *zap.Logger
}

func NewLoggers(root *zap.Logger) *Loggers {
	return &Loggers{
		Main:    root.Named("main"),
		Auth:    root.Named("auth"),
		Billing: root.Named("billing"),
		Support: root.Named("support"),
		Field:   root.Named("field"),
		Supply:  root.Named("supply"),
		HR:      root.Named("hr"),
	}
}

// Deps - всё, что создаётся в main и нужно маршрутам.
type Deps struct {
	DB      *pgxpool.Pool
	Redis   *redis.Client
	JWT     service.JWTService
	Hub     *websocket.Hub
	Bus     *eventbus.Bus
	Metrics *middleware.Metrics
	Config  *config.Config
	Loggers *Loggers
}

type redisPinger struct{ client *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.client.Ping(ctx).Err() }

// InitRouter возвращает слушатель уведомлений: при остановке его нужно сбросить.
func InitRouter(e *echo.Echo, d Deps) (*listeners.NotificationListener, error) {
	loggers := d.Loggers
	loggers.Main.Info("InitRouter: начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	fileStorage, err := filestorage.NewLocalFileStorage(d.Config.Server.UploadDir)
	if err != nil {
		return nil, err
	}
	txManager := repositories.NewTxManager(d.DB)
	cacheRepo := repositories.NewRedisCacheRepository(d.Redis)

	// --- 1. РЕПОЗИТОРИИ ---
	logRepo := repositories.NewActivityLogRepository(d.DB, loggers.Main)
	operatorRepo := repositories.NewOperatorRepository(d.DB, loggers.Main)
	userRepo := repositories.NewUserRepository(d.DB, loggers.Auth)
	roleRepo := repositories.NewRoleRepository(d.DB, loggers.Auth)
	permissionRepo := repositories.NewPermissionRepository(d.DB)
	planRepo := repositories.NewPlanRepository(d.DB, loggers.Billing)
	subscriptionRepo := repositories.NewSubscriptionRepository(d.DB, loggers.Billing)
	paymentRepo := repositories.NewPaymentRepository(d.DB, loggers.Billing)
	complaintRepo := repositories.NewComplaintRepository(d.DB, loggers.Support)
	ticketRepo := repositories.NewTicketRepository(d.DB, loggers.Support)
	taskRepo := repositories.NewTaskRepository(d.DB, loggers.Field)
	attendanceRepo := repositories.NewAttendanceRepository(d.DB, loggers.HR)
	leaveRepo := repositories.NewLeaveRepository(d.DB, loggers.HR)
	vendorRepo := repositories.NewVendorRepository(d.DB, loggers.Supply)
	inventoryRepo := repositories.NewInventoryRepository(d.DB, loggers.Supply)
	orderRepo := repositories.NewOrderRepository(d.DB, loggers.Supply)
	returnRepo := repositories.NewReturnRepository(d.DB, loggers.Supply)
	shipmentRepo := repositories.NewShipmentRepository(d.DB, loggers.Supply)

	// --- 2. СЕРВИСЫ ---
	base := func(logger *zap.Logger) *services.BaseService {
		return services.NewBaseService(txManager, logRepo, d.Bus, logger)
	}
	authPermissionService := services.NewAuthPermissionService(roleRepo, cacheRepo, loggers.Auth, d.Config.Cache.PermissionsTTL)
	authService := services.NewAuthService(userRepo, cacheRepo, authPermissionService, d.JWT, loggers.Auth, d.Config.Auth)
	authMW := middleware.NewAuthMiddleware(d.JWT, authPermissionService, authService, loggers.Auth)

	listener := listeners.NewNotificationListener(d.Hub, userRepo, d.Config.Notify.GroupWindow, loggers.Main)
	listener.Register(d.Bus)

	// --- 3. КОНТРОЛЛЕРЫ ---
	authCtrl := controllers.NewAuthController(authService, loggers.Auth)
	operatorCtrl := controllers.NewOperatorController(services.NewOperatorService(base(loggers.Main), operatorRepo), loggers.Main)
	userCtrl := controllers.NewUserController(services.NewUserService(base(loggers.Auth), userRepo, roleRepo), loggers.Auth)
	roleCtrl := controllers.NewRoleController(services.NewRoleService(base(loggers.Auth), roleRepo, permissionRepo, authPermissionService), loggers.Auth)
	logCtrl := controllers.NewActivityLogController(services.NewActivityLogService(base(loggers.Main)), loggers.Main)
	dashboardCtrl := controllers.NewDashboardController(services.NewDashboardService(base(loggers.Main), services.DashboardRepos{
		Complaints:    complaintRepo,
		Tickets:       ticketRepo,
		Tasks:         taskRepo,
		Subscriptions: subscriptionRepo,
		Orders:        orderRepo,
		Shipments:     shipmentRepo,
		Payments:      paymentRepo,
		Inventory:     inventoryRepo,
		Leaves:        leaveRepo,
	}, cacheRepo, d.Config.Cache.DashboardTTL), loggers.Main)

	planCtrl := controllers.NewPlanController(services.NewPlanService(base(loggers.Billing), planRepo), loggers.Billing)
	subscriptionCtrl := controllers.NewSubscriptionController(services.NewSubscriptionService(base(loggers.Billing), subscriptionRepo, planRepo, userRepo), loggers.Billing)
	paymentCtrl := controllers.NewPaymentController(services.NewPaymentService(base(loggers.Billing), paymentRepo, subscriptionRepo), loggers.Billing)

	complaintCtrl := controllers.NewComplaintController(services.NewComplaintService(base(loggers.Support), complaintRepo, userRepo, subscriptionRepo, fileStorage), loggers.Support)
	ticketCtrl := controllers.NewTicketController(services.NewTicketService(base(loggers.Support), ticketRepo, complaintRepo, userRepo), loggers.Support)

	taskCtrl := controllers.NewTaskController(services.NewTaskService(base(loggers.Field), taskRepo, userRepo), loggers.Field)

	attendanceCtrl := controllers.NewAttendanceController(services.NewAttendanceService(base(loggers.HR), attendanceRepo, userRepo), loggers.HR)
	leaveCtrl := controllers.NewLeaveController(services.NewLeaveService(base(loggers.HR), leaveRepo), loggers.HR)

	vendorCtrl := controllers.NewVendorController(services.NewVendorService(base(loggers.Supply), vendorRepo, userRepo), loggers.Supply)
	inventoryCtrl := controllers.NewInventoryController(services.NewInventoryService(base(loggers.Supply), inventoryRepo, vendorRepo), loggers.Supply)
	orderCtrl := controllers.NewOrderController(services.NewOrderService(base(loggers.Supply), orderRepo, vendorRepo), loggers.Supply)
	returnCtrl := controllers.NewReturnController(services.NewReturnService(base(loggers.Supply), returnRepo, orderRepo, vendorRepo), loggers.Supply)
	shipmentCtrl := controllers.NewShipmentController(services.NewShipmentService(base(loggers.Supply), shipmentRepo, orderRepo, vendorRepo), loggers.Supply)

	healthCtrl := controllers.NewHealthController(map[string]controllers.Pinger{
		"postgres": d.DB,
		"redis":    redisPinger{client: d.Redis},
	}, loggers.Main)
	wsCtrl := controllers.NewWebSocketController(d.Hub, d.JWT, authService, d.Config.Server.CORSOrigins, loggers.Main)

	// --- 4. РОУТЕРЫ ---
	e.GET("/health", healthCtrl.Health)
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics.Handler())
	}
	e.Static(filestorage.URLPrefix, d.Config.Server.UploadDir)

	api := e.Group("/api")
	api.GET("/ws", wsCtrl.ServeWs)
	runAuthRouter(api, authCtrl, authMW, d.Config.Auth.RateLimitPerSecond)

	secureGroup := api.Group("", authMW.Auth)
	runAdminRouter(secureGroup, authMW, operatorCtrl, userCtrl, roleCtrl, logCtrl, dashboardCtrl)
	runBillingRouter(secureGroup, authMW, planCtrl, subscriptionCtrl, paymentCtrl)
	runSupportRouter(secureGroup, authMW, complaintCtrl, ticketCtrl)
	runFieldRouter(secureGroup, authMW, taskCtrl)
	runHRRouter(secureGroup, authMW, attendanceCtrl, leaveCtrl)
	runSupplyRouter(secureGroup, authMW, vendorCtrl, inventoryCtrl, orderCtrl, returnCtrl, shipmentCtrl)

	loggers.Main.Info("InitRouter: создание маршрутов завершено", zap.Int("routes", len(e.Routes())))
	return listener, nil
}
