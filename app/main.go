// Файл: main.go

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	telegramctrl "window-crm/internal/controllers/telegram"
	"window-crm/internal/db"
	"window-crm/internal/routes"
	"window-crm/pkg/api"
	"window-crm/pkg/config"
	"window-crm/pkg/database/postgresql"
	apperrors "window-crm/pkg/errors"
	"window-crm/pkg/eventbus"
	applogger "window-crm/pkg/logger"
	"window-crm/pkg/service"
	"window-crm/pkg/telegram"
	"window-crm/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	e := echo.New()
	logger := applogger.NewLogger()
	cfg := config.New()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err)
				return api.ErrorResponse(c, httpErr)
			}
			return err
		},
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{"Content-Disposition"},
	}))

	e.Validator = utils.NewValidator(validator.New())

	dbConn := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbConn.Close()

	if err := db.Migrate(context.Background(), dbConn); err != nil {
		logger.Fatal("Не удалось применить миграции", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("Не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	telegramClient := telegram.NewService(cfg.Telegram.BotToken)
	bus := eventbus.New(logger)

	runtime := routes.InitRouter(e, routes.Deps{
		DB:             dbConn,
		Redis:          redisClient,
		JWTService:     jwtSvc,
		TelegramClient: telegramClient,
		Bus:            bus,
		Config:         cfg,
		Logger:         logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := runtime.Gateway.EnsureConfig(ctx, cfg.Telegram.BotName, cfg.Telegram.BotToken,
		cfg.Telegram.WebhookSecret, cfg.Telegram.UseWebhook); err != nil {
		logger.Fatal("Не удалось актуализировать конфигурацию бота", zap.Error(err))
	}

	// Режим доставки обновлений выбирается конфигом: либо Telegram сам
	// стучится в webhook, либо мы опрашиваем getUpdates.
	if cfg.Telegram.UseWebhook {
		if err := runtime.Gateway.RegisterWebhook(ctx, cfg.Server.BaseURL); err != nil {
			logger.Warn("Не удалось зарегистрировать webhook Telegram", zap.Error(err))
		}
	} else {
		poller := telegramctrl.NewPoller(runtime.Gateway, cfg.Telegram.PollInterval, logger)
		go poller.Run(ctx)
	}

	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Получен сигнал остановки, завершаем работу")
	if err := e.Shutdown(context.Background()); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}
}
