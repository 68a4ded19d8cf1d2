package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"window-crm/internal/dto"
	"window-crm/internal/entities"
	"window-crm/internal/events"
	"window-crm/internal/repositories"
	"window-crm/pkg/eventbus"
	apperrors "window-crm/pkg/errors"
)

type MeasurementService struct {
	measurementRepo repositories.MeasurementRepositoryInterface
	orderRepository repositories.OrderRepositoryInterface
	leadRepository  repositories.LeadRepositoryInterface
	bus             *eventbus.Bus
	logger          *zap.Logger
}

func NewMeasurementService(
	measurementRepo repositories.MeasurementRepositoryInterface,
	orderRepository repositories.OrderRepositoryInterface,
	leadRepository repositories.LeadRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *MeasurementService {
	return &MeasurementService{
		measurementRepo: measurementRepo,
		orderRepository: orderRepository,
		leadRepository:  leadRepository,
		bus:             bus,
		logger:          logger,
	}
}

func (s *MeasurementService) FindMeasurement(ctx context.Context, id uint64) (*entities.Measurement, error) {
	return s.measurementRepo.FindMeasurement(ctx, id)
}

func (s *MeasurementService) GetMeasurements(ctx context.Context, limit, offset uint64) ([]entities.Measurement, uint64, error) {
	return s.measurementRepo.GetMeasurements(ctx, limit, offset)
}

func (s *MeasurementService) UpdateMeasurement(ctx context.Context, id uint64, payload dto.UpdateMeasurementDTO) (*entities.Measurement, error) {
	m, err := s.measurementRepo.FindMeasurement(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.State == entities.MeasureDone || m.State == entities.MeasureCancelled {
		return nil, apperrors.NewValidationError("замер %s уже закрыт, редактирование недоступно", m.Number)
	}
	if err := s.measurementRepo.UpdateMeasurement(ctx, id, payload); err != nil {
		return nil, err
	}
	return s.measurementRepo.FindMeasurement(ctx, id)
}

// Confirm переводит черновик в запланированный выезд.
func (s *MeasurementService) Confirm(ctx context.Context, id uint64) (*entities.Measurement, error) {
	return s.transition(ctx, id, entities.MeasureDraft, entities.MeasurePlanned)
}

// Start отмечает начало работ на объекте.
func (s *MeasurementService) Start(ctx context.Context, id uint64) (*entities.Measurement, error) {
	return s.transition(ctx, id, entities.MeasurePlanned, entities.MeasureInProgress)
}

// Complete завершает замер. Требует заполненных размеров.
func (s *MeasurementService) Complete(ctx context.Context, id uint64) (*entities.Measurement, error) {
	m, err := s.measurementRepo.FindMeasurement(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.State != entities.MeasureInProgress {
		return nil, apperrors.NewValidationError(
			"замер %s нельзя завершить из статуса %q", m.Number, m.State)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return nil, apperrors.NewValidationError(
			"для завершения замера %s заполните ширину и высоту", m.Number)
	}

	now := time.Now()
	if err := s.measurementRepo.UpdateState(ctx, id, entities.MeasureDone, &now); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.MeasurementCompleted{MeasurementID: id, LeadID: m.LeadID})
	s.logger.Info("Замер завершен", zap.String("number", m.Number), zap.Uint64("leadID", m.LeadID))
	return s.measurementRepo.FindMeasurement(ctx, id)
}

// Cancel отменяет замер из любого незакрытого статуса.
func (s *MeasurementService) Cancel(ctx context.Context, id uint64) (*entities.Measurement, error) {
	m, err := s.measurementRepo.FindMeasurement(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.State == entities.MeasureDone || m.State == entities.MeasureCancelled {
		return nil, apperrors.NewValidationError("замер %s уже закрыт", m.Number)
	}
	if err := s.measurementRepo.UpdateState(ctx, id, entities.MeasureCancelled, nil); err != nil {
		return nil, err
	}
	return s.measurementRepo.FindMeasurement(ctx, id)
}

func (s *MeasurementService) transition(ctx context.Context, id uint64, from, to string) (*entities.Measurement, error) {
	m, err := s.measurementRepo.FindMeasurement(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.State != from {
		return nil, apperrors.NewValidationError(
			"замер %s: переход %q → %q недопустим из статуса %q", m.Number, from, to, m.State)
	}
	if err := s.measurementRepo.UpdateState(ctx, id, to, nil); err != nil {
		return nil, err
	}
	return s.measurementRepo.FindMeasurement(ctx, id)
}

// CreateOffer создает коммерческое предложение по замеру. Повторный вызов
// возвращает уже привязанный заказ без изменений.
func (s *MeasurementService) CreateOffer(ctx context.Context, id uint64) (*entities.Order, error) {
	m, err := s.measurementRepo.FindMeasurement(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.OfferID != nil {
		return s.orderRepository.FindOrder(ctx, *m.OfferID)
	}
	if m.State != entities.MeasureDone {
		return nil, apperrors.NewValidationError(
			"КП создается только по завершенному замеру, текущий статус %q", m.State)
	}
	if m.PartnerID == nil {
		return nil, apperrors.NewHttpError(400, "у замера не указан клиент", apperrors.ErrBadRequest)
	}

	orderID, err := s.orderRepository.CreateOrder(ctx, entities.Order{
		PartnerID:              *m.PartnerID,
		LeadID:                 &m.LeadID,
		MeasurementID:          &m.ID,
		IsWindowOrder:          true,
		WindowProfileType:      m.ProfileType,
		WindowGlassUnitType:    m.GlassUnitType,
		WindowColor:            m.Color,
		WindowWidth:            m.Width,
		WindowHeight:           m.Height,
		InstallationComplexity: m.InstallationComplexity,
		State:                  entities.OrderDraft,
		DateOrder:              time.Now(),
	})
	if err != nil {
		s.logger.Error("ошибка при создании КП по замеру", zap.Error(err), zap.String("number", m.Number))
		return nil, err
	}

	if err := s.measurementRepo.SetOffer(ctx, id, orderID); err != nil {
		return nil, err
	}
	if err := s.leadRepository.SetLink(ctx, m.LeadID, repositories.LeadLinkContract, orderID); err != nil {
		return nil, err
	}

	s.logger.Info("КП создано по замеру",
		zap.String("measurement", m.Number), zap.Uint64("orderID", orderID))
	return s.orderRepository.FindOrder(ctx, orderID)
}
