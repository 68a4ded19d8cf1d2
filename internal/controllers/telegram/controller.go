package telegram

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"window-crm/internal/services"
	"window-crm/pkg/api"
	apperrors "window-crm/pkg/errors"
	"window-crm/pkg/telegram"
)

// webhookResponse - формат ответа на webhook Bot API. Всегда HTTP 200:
// иначе Telegram будет бесконечно ретраить обновление.
type webhookResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type TelegramController struct {
	gateway *services.TelegramGatewayService
	baseURL string
	logger  *zap.Logger
}

func NewTelegramController(gateway *services.TelegramGatewayService, baseURL string, logger *zap.Logger) *TelegramController {
	return &TelegramController{gateway: gateway, baseURL: baseURL, logger: logger}
}

// Webhook принимает обновление от Telegram. Секрет в URL сверяется с
// активной конфигурацией бота.
func (c *TelegramController) Webhook(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	secret := ctx.Param("secret")
	if err := c.gateway.ValidateSecret(reqCtx, secret); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.logger.Warn("Webhook с неверным секретом")
			return ctx.JSON(http.StatusOK, webhookResponse{OK: false, Error: "invalid secret"})
		}
		c.logger.Error("Ошибка проверки секрета webhook", zap.Error(err))
		return ctx.JSON(http.StatusOK, webhookResponse{OK: false, Error: "internal error"})
	}

	var upd telegram.Update
	if err := ctx.Bind(&upd); err != nil {
		c.logger.Warn("Некорректное тело webhook", zap.Error(err))
		return ctx.JSON(http.StatusOK, webhookResponse{OK: false, Error: "bad request"})
	}

	if err := c.gateway.ProcessUpdate(reqCtx, upd); err != nil {
		c.logger.Error("Ошибка обработки обновления из webhook",
			zap.Int64("updateID", upd.UpdateID), zap.Error(err))
		return ctx.JSON(http.StatusOK, webhookResponse{OK: false, Error: "processing error"})
	}
	return ctx.JSON(http.StatusOK, webhookResponse{OK: true})
}

// RegisterWebhook - действие сотрудника. Ошибка Telegram возвращается как есть.
func (c *TelegramController) RegisterWebhook(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	if err := c.gateway.RegisterWebhook(reqCtx, c.baseURL); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne[any](ctx, http.StatusOK, "Webhook зарегистрирован", nil)
}

// DeleteWebhook - действие сотрудника. Ошибка Telegram возвращается как есть.
func (c *TelegramController) DeleteWebhook(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	if err := c.gateway.DeleteWebhook(reqCtx); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne[any](ctx, http.StatusOK, "Webhook удален", nil)
}
