package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"window-crm/internal/services"
	"window-crm/pkg/api"
)

type ProductionController struct {
	productionService *services.ProductionService
	logger            *zap.Logger
}

func NewProductionController(productionService *services.ProductionService, logger *zap.Logger) *ProductionController {
	return &ProductionController{productionService: productionService, logger: logger}
}

func (c *ProductionController) GetProductions(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	page, limit, limitU, offsetU := parsePagination(ctx)

	productions, total, err := c.productionService.GetProductions(reqCtx, limitU, offsetU)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessList(ctx, "Список производственных заказов получен", productions, total, page, limit)
}

func (c *ProductionController) FindProduction(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	production, err := c.productionService.FindProduction(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Производственный заказ найден", production)
}

func (c *ProductionController) Start(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	production, err := c.productionService.Start(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Производство запущено", production)
}

// MarkDone отмечает готовность изделий и двигает лид к доставке.
func (c *ProductionController) MarkDone(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	production, err := c.productionService.MarkDone(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Производство завершено", production)
}
