package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"window-crm/internal/entities"
	"window-crm/internal/services"
	"window-crm/pkg/api"
)

type InstallationController struct {
	installationService *services.InstallationService
	logger              *zap.Logger
}

func NewInstallationController(installationService *services.InstallationService, logger *zap.Logger) *InstallationController {
	return &InstallationController{installationService: installationService, logger: logger}
}

type createInstallationTaskRequest struct {
	OrderID    uint64     `json:"order_id" validate:"required"`
	AssigneeID *uint64    `json:"assignee_id"`
	Deadline   *time.Time `json:"deadline"`
}

func (c *InstallationController) CreateTask(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload createInstallationTaskRequest
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	task, err := c.installationService.CreateTask(reqCtx, payload.OrderID, payload.AssigneeID, payload.Deadline)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Монтажная задача создана", task)
}

func (c *InstallationController) GetTasks(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	page, limit, limitU, offsetU := parsePagination(ctx)

	tasks, total, err := c.installationService.GetTasks(reqCtx, limitU, offsetU)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessList(ctx, "Список монтажных задач получен", tasks, total, page, limit)
}

func (c *InstallationController) FindTask(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	task, err := c.installationService.FindTask(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Монтажная задача найдена", task)
}

func (c *InstallationController) StartDelivery(ctx echo.Context) error {
	return c.doTransition(ctx, c.installationService.StartDelivery, "Доставка начата")
}

func (c *InstallationController) StartInstallation(ctx echo.Context) error {
	return c.doTransition(ctx, c.installationService.StartInstallation, "Монтаж начат")
}

func (c *InstallationController) StartCleaning(ctx echo.Context) error {
	return c.doTransition(ctx, c.installationService.StartCleaning, "Уборка начата")
}

// SignAct подписывает акт и завершает сделку.
func (c *InstallationController) SignAct(ctx echo.Context) error {
	return c.doTransition(ctx, c.installationService.SignAct, "Акт подписан")
}

func (c *InstallationController) doTransition(
	ctx echo.Context,
	fn func(context.Context, uint64) (*entities.Task, error),
	message string,
) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	task, err := fn(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, message, task)
}
