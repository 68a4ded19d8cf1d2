package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"window-crm/internal/dto"
	"window-crm/internal/services"
	"window-crm/pkg/api"
)

type DashboardController struct {
	dashboardService *services.DashboardService
	logger           *zap.Logger
}

func NewDashboardController(dashboardService *services.DashboardService, logger *zap.Logger) *DashboardController {
	return &DashboardController{dashboardService: dashboardService, logger: logger}
}

// GetFunnel отдает воронку продаж. При ?format=xlsx выгружает файл.
func (c *DashboardController) GetFunnel(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	funnel, err := c.dashboardService.GetFunnel(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	if strings.ToLower(ctx.QueryParam("format")) == "xlsx" {
		return c.respondWithXLSX(ctx, funnel)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Воронка продаж сформирована", funnel)
}

func (c *DashboardController) GetProductionPlan(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	plan, err := c.dashboardService.GetProductionPlan(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "План производства сформирован", plan)
}

func (c *DashboardController) GetMeasurerKpi(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	kpi, err := c.dashboardService.GetMeasurerKpi(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "KPI замерщиков сформирован", kpi)
}

var funnelHeaders = []string{"Стадия", "Код", "Порядок", "Лидов"}

func (c *DashboardController) respondWithXLSX(ctx echo.Context, funnel []dto.FunnelRowDTO) error {
	f := excelize.NewFile()
	sheet := "Воронка продаж"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &funnelHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "D1", style)

	for i, item := range funnel {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{item.Stage, item.Code, item.Sequence, item.Count}
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "B", 22)

	fileName := fmt.Sprintf("funnel_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
