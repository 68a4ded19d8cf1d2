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
	"window-crm/pkg/utils"
)

type TicketController struct {
	ticketService *services.TicketService
	logger        *zap.Logger
}

func NewTicketController(ticketService *services.TicketService, logger *zap.Logger) *TicketController {
	return &TicketController{ticketService: ticketService, logger: logger}
}

func (c *TicketController) CreateTicket(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateTicketDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	ticket, err := c.ticketService.CreateTicket(reqCtx, payload)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Сервисное обращение создано", ticket)
}

func (c *TicketController) GetTickets(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	page, limit, limitU, offsetU := parsePagination(ctx)

	tickets, total, err := c.ticketService.GetTickets(reqCtx, limitU, offsetU)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessList(ctx, "Список обращений получен", tickets, total, page, limit)
}

func (c *TicketController) FindTicket(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	ticket, err := c.ticketService.FindTicket(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Обращение найдено", ticket)
}

// Assign назначает обращение на текущего пользователя.
func (c *TicketController) Assign(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	ticket, err := c.ticketService.Assign(reqCtx, id, userID)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Обращение назначено", ticket)
}

func (c *TicketController) Start(ctx echo.Context) error {
	return c.doTransition(ctx, c.ticketService.Start, "Обращение взято в работу")
}

func (c *TicketController) Resolve(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	var payload dto.ResolveTicketDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	ticket, err := c.ticketService.Resolve(reqCtx, id, payload)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Обращение решено", ticket)
}

func (c *TicketController) Close(ctx echo.Context) error {
	return c.doTransition(ctx, c.ticketService.Close, "Обращение закрыто")
}

// RecomputeWarranty пересчитывает статус гарантии по текущим привязкам.
func (c *TicketController) RecomputeWarranty(ctx echo.Context) error {
	return c.doTransition(ctx, c.ticketService.RecomputeWarranty, "Статус гарантии пересчитан")
}

func (c *TicketController) doTransition(
	ctx echo.Context,
	fn func(context.Context, uint64) (*entities.ServiceTicket, error),
	message string,
) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	ticket, err := fn(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, message, ticket)
}
