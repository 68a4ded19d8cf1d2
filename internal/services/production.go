package services

import (
	"context"

	"go.uber.org/zap"

	"window-crm/internal/entities"
	"window-crm/internal/events"
	"window-crm/internal/repositories"
	"window-crm/pkg/eventbus"
	apperrors "window-crm/pkg/errors"
)

type ProductionService struct {
	productionRepo repositories.ProductionRepositoryInterface
	bus            *eventbus.Bus
	logger         *zap.Logger
}

func NewProductionService(
	productionRepo repositories.ProductionRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *ProductionService {
	return &ProductionService{
		productionRepo: productionRepo,
		bus:            bus,
		logger:         logger,
	}
}

func (s *ProductionService) FindProduction(ctx context.Context, id uint64) (*entities.Production, error) {
	return s.productionRepo.FindProduction(ctx, id)
}

func (s *ProductionService) GetProductions(ctx context.Context, limit, offset uint64) ([]entities.Production, uint64, error) {
	return s.productionRepo.GetProductions(ctx, limit, offset)
}

// Start переводит заказ в производство.
func (s *ProductionService) Start(ctx context.Context, id uint64) (*entities.Production, error) {
	p, err := s.productionRepo.FindProduction(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.State != entities.ProductionConfirmed {
		return nil, apperrors.NewValidationError(
			"производство %s нельзя запустить из статуса %q", p.Number, p.State)
	}
	if err := s.productionRepo.UpdateState(ctx, id, entities.ProductionProgress); err != nil {
		return nil, err
	}
	return s.productionRepo.FindProduction(ctx, id)
}

// MarkDone отмечает готовность изделий.
func (s *ProductionService) MarkDone(ctx context.Context, id uint64) (*entities.Production, error) {
	p, err := s.productionRepo.FindProduction(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.State == entities.ProductionDone {
		return p, nil
	}
	if p.State != entities.ProductionConfirmed && p.State != entities.ProductionProgress {
		return nil, apperrors.NewValidationError(
			"производство %s нельзя завершить из статуса %q", p.Number, p.State)
	}
	if err := s.productionRepo.UpdateState(ctx, id, entities.ProductionDone); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ProductionCompleted{ProductionID: id, OrderID: p.OrderID})
	s.logger.Info("Производство завершено", zap.String("number", p.Number))
	return s.productionRepo.FindProduction(ctx, id)
}
