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

type OrderController struct {
	orderService *services.OrderService
	logger       *zap.Logger
}

func NewOrderController(orderService *services.OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{orderService: orderService, logger: logger}
}

func (c *OrderController) GetOrders(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	page, limit, limitU, offsetU := parsePagination(ctx)

	orders, total, err := c.orderService.GetOrders(reqCtx, limitU, offsetU)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessList(ctx, "Список заказов успешно получен", orders, total, page, limit)
}

func (c *OrderController) FindOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	order, err := c.orderService.FindOrder(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Заказ найден", order)
}

func (c *OrderController) GetOrderLines(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	lines, err := c.orderService.GetOrderLines(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Позиции заказа получены", lines)
}

func (c *OrderController) AddOrderLine(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	var payload dto.CreateOrderLineDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	line, err := c.orderService.AddOrderLine(reqCtx, id, payload)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Позиция добавлена в заказ", line)
}

func (c *OrderController) Send(ctx echo.Context) error {
	return c.doTransition(ctx, c.orderService.Send, "КП отправлено клиенту")
}

// Confirm подтверждает заказ. Для оконных заказов запускает производство.
func (c *OrderController) Confirm(ctx echo.Context) error {
	return c.doTransition(ctx, c.orderService.Confirm, "Заказ подтвержден")
}

func (c *OrderController) Cancel(ctx echo.Context) error {
	return c.doTransition(ctx, c.orderService.Cancel, "Заказ отменен")
}

func (c *OrderController) doTransition(
	ctx echo.Context,
	fn func(context.Context, uint64) (*entities.Order, error),
	message string,
) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	order, err := fn(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, message, order)
}
