package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"window-crm/internal/dto"
	"window-crm/internal/services"
	"window-crm/pkg/api"
	"window-crm/pkg/utils"
)

type LeadController struct {
	leadService *services.LeadService
	logger      *zap.Logger
}

func NewLeadController(leadService *services.LeadService, logger *zap.Logger) *LeadController {
	return &LeadController{leadService: leadService, logger: logger}
}

func (c *LeadController) CreateLead(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateLeadDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	lead, err := c.leadService.CreateLead(reqCtx, payload)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Лид успешно создан", lead)
}

func (c *LeadController) GetLeads(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	page, limit, limitU, offsetU := parsePagination(ctx)

	leads, total, err := c.leadService.GetLeads(reqCtx, limitU, offsetU)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessList(ctx, "Список лидов успешно получен", leads, total, page, limit)
}

func (c *LeadController) FindLead(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	lead, err := c.leadService.FindLead(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Лид найден", lead)
}

func (c *LeadController) UpdateStage(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	var payload dto.UpdateLeadStageDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	lead, err := c.leadService.UpdateStage(reqCtx, id, payload, utils.GetUserRoleFromCtx(reqCtx))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Стадия лида обновлена", lead)
}

func (c *LeadController) DeleteLead(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	if err := c.leadService.DeleteLead(reqCtx, id, utils.GetUserRoleFromCtx(reqCtx)); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne[any](ctx, http.StatusOK, "Лид удален", nil)
}

// CreateMeasurement создает замер по лиду.
func (c *LeadController) CreateMeasurement(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	measurement, err := c.leadService.CreateMeasurement(reqCtx, id, userID, utils.GetUserRoleFromCtx(reqCtx))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Замер создан", measurement)
}
