package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"window-crm/internal/dto"
	"window-crm/internal/repositories"
)

// Окно отчетности KPI замерщиков.
const measurerKpiWindow = 30 * 24 * time.Hour

type DashboardService struct {
	dashboardRepo repositories.DashboardRepositoryInterface
	logger        *zap.Logger
}

func NewDashboardService(dashboardRepo repositories.DashboardRepositoryInterface, logger *zap.Logger) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo, logger: logger}
}

// GetFunnel возвращает воронку продаж: количество активных лидов по стадиям.
func (s *DashboardService) GetFunnel(ctx context.Context) ([]dto.FunnelRowDTO, error) {
	return s.dashboardRepo.GetFunnel(ctx)
}

// GetProductionPlan возвращает незакрытые производственные заказы.
func (s *DashboardService) GetProductionPlan(ctx context.Context) ([]dto.ProductionPlanRowDTO, error) {
	return s.dashboardRepo.GetProductionPlan(ctx)
}

// GetMeasurerKpi возвращает показатели замерщиков за последние 30 дней.
func (s *DashboardService) GetMeasurerKpi(ctx context.Context) ([]dto.MeasurerKpiDTO, error) {
	now := time.Now()
	return s.dashboardRepo.GetMeasurerKpi(ctx, now.Add(-measurerKpiWindow), now)
}
