package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"window-crm/internal/dto"
	"window-crm/internal/entities"
	"window-crm/internal/services"
	"window-crm/pkg/api"
)

type MeasurementController struct {
	measurementService *services.MeasurementService
	logger             *zap.Logger
}

func NewMeasurementController(measurementService *services.MeasurementService, logger *zap.Logger) *MeasurementController {
	return &MeasurementController{measurementService: measurementService, logger: logger}
}

func (c *MeasurementController) GetMeasurements(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	page, limit, limitU, offsetU := parsePagination(ctx)

	measurements, total, err := c.measurementService.GetMeasurements(reqCtx, limitU, offsetU)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessList(ctx, "Список замеров успешно получен", measurements, total, page, limit)
}

func (c *MeasurementController) FindMeasurement(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	measurement, err := c.measurementService.FindMeasurement(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Замер найден", measurement)
}

func (c *MeasurementController) UpdateMeasurement(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	var payload dto.UpdateMeasurementDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	measurement, err := c.measurementService.UpdateMeasurement(reqCtx, id, payload)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Замер обновлен", measurement)
}

func (c *MeasurementController) Confirm(ctx echo.Context) error {
	return c.doTransition(ctx, c.measurementService.Confirm, "Замер запланирован")
}

func (c *MeasurementController) Start(ctx echo.Context) error {
	return c.doTransition(ctx, c.measurementService.Start, "Замер взят в работу")
}

func (c *MeasurementController) Complete(ctx echo.Context) error {
	return c.doTransition(ctx, c.measurementService.Complete, "Замер завершен")
}

func (c *MeasurementController) Cancel(ctx echo.Context) error {
	return c.doTransition(ctx, c.measurementService.Cancel, "Замер отменен")
}

// CreateOffer создает КП по замеру. Повторный вызов вернет уже созданный заказ.
func (c *MeasurementController) CreateOffer(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	order, err := c.measurementService.CreateOffer(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "КП создано", order)
}

func (c *MeasurementController) doTransition(
	ctx echo.Context,
	fn func(context.Context, uint64) (*entities.Measurement, error),
	message string,
) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	measurement, err := fn(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, message, measurement)
}
