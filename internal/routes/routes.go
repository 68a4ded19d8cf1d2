package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"window-crm/internal/controllers"
	telegramctrl "window-crm/internal/controllers/telegram"
	"window-crm/internal/listeners"
	"window-crm/internal/repositories"
	"window-crm/internal/services"
	"window-crm/pkg/config"
	"window-crm/pkg/eventbus"
	"window-crm/pkg/middleware"
	"window-crm/pkg/service"
	"window-crm/pkg/telegram"
)

// Deps - зависимости, собираемые в точке входа.
type Deps struct {
	DB             *pgxpool.Pool
	Redis          *redis.Client
	JWTService     service.JWTService
	TelegramClient telegram.ServiceInterface
	Bus            *eventbus.Bus
	Config         *config.Config
	Logger         *zap.Logger
}

// Runtime - собранные компоненты, которые нужны точке входа после
// инициализации маршрутов (поллер работает с тем же шлюзом, что и webhook).
type Runtime struct {
	Gateway *services.TelegramGatewayService
}

// InitRouter собирает репозитории, сервисы, слушателей и маршруты.
func InitRouter(e *echo.Echo, deps Deps) *Runtime {
	logger := deps.Logger
	cfg := deps.Config

	// --- репозитории ---
	cacheRepo := repositories.NewRedisCacheRepository(deps.Redis)
	stageRepo := repositories.NewStageRepository(deps.DB)
	partnerRepo := repositories.NewPartnerRepository(deps.DB)
	leadRepo := repositories.NewLeadRepository(deps.DB, logger)
	measurementRepo := repositories.NewMeasurementRepository(deps.DB)
	orderRepo := repositories.NewOrderRepository(deps.DB)
	productRepo := repositories.NewProductRepository(deps.DB)
	productionRepo := repositories.NewProductionRepository(deps.DB)
	taskRepo := repositories.NewTaskRepository(deps.DB)
	ticketRepo := repositories.NewTicketRepository(deps.DB)
	telegramRepo := repositories.NewTelegramRepository(deps.DB)
	educationRepo := repositories.NewEducationRepository(deps.DB)
	dashboardRepo := repositories.NewDashboardRepository(deps.DB)

	// --- сервисы ---
	leadService := services.NewLeadService(leadRepo, stageRepo, partnerRepo, measurementRepo, taskRepo, deps.Bus, logger)
	measurementService := services.NewMeasurementService(measurementRepo, orderRepo, leadRepo, deps.Bus, logger)
	orderService := services.NewOrderService(orderRepo, productRepo, productionRepo, leadRepo, deps.Bus, logger)
	productionService := services.NewProductionService(productionRepo, deps.Bus, logger)
	installationService := services.NewInstallationService(taskRepo, orderRepo, leadRepo, deps.Bus, logger)
	ticketService := services.NewTicketService(ticketRepo, orderRepo, taskRepo, cfg.Warranty, logger)
	gatewayService := services.NewTelegramGatewayService(
		telegramRepo, partnerRepo, leadRepo, orderRepo, cacheRepo, deps.TelegramClient, logger)
	educationService := services.NewEducationService(educationRepo, logger)
	dashboardService := services.NewDashboardService(dashboardRepo, logger)

	// --- слушатели событий ---
	listeners.NewLeadStageListener(leadRepo, orderRepo, stageRepo, cacheRepo, deps.Bus, logger).Register()
	listeners.NewTelegramNotificationListener(telegramRepo, leadRepo, deps.TelegramClient, deps.Bus, logger).Register()

	// --- контроллеры ---
	leadCtrl := controllers.NewLeadController(leadService, logger)
	measurementCtrl := controllers.NewMeasurementController(measurementService, logger)
	orderCtrl := controllers.NewOrderController(orderService, logger)
	productionCtrl := controllers.NewProductionController(productionService, logger)
	installationCtrl := controllers.NewInstallationController(installationService, logger)
	ticketCtrl := controllers.NewTicketController(ticketService, logger)
	educationCtrl := controllers.NewEducationController(educationService, logger)
	dashboardCtrl := controllers.NewDashboardController(dashboardService, logger)
	telegramCtrl := telegramctrl.NewTelegramController(gatewayService, cfg.Server.BaseURL, logger)

	// --- маршруты ---
	// Webhook живет вне /api и без авторизации: его дергает Telegram.
	e.POST("/telegram/webhook/:secret", telegramCtrl.Webhook)

	authMW := middleware.NewAuthMiddleware(deps.JWTService, logger)
	api := e.Group("/api", authMW.Auth)

	runLeadRouter(api, leadCtrl)
	runMeasurementRouter(api, measurementCtrl)
	runOrderRouter(api, orderCtrl)
	runProductionRouter(api, productionCtrl)
	runInstallationRouter(api, installationCtrl)
	runTicketRouter(api, ticketCtrl)
	runEducationRouter(api, educationCtrl)
	runDashboardRouter(api, dashboardCtrl)
	runTelegramRouter(api, telegramCtrl)

	logger.Info("Маршруты инициализированы")
	return &Runtime{Gateway: gatewayService}
}
