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

type LeadService struct {
	leadRepository  repositories.LeadRepositoryInterface
	stageRepository repositories.StageRepositoryInterface
	partnerRepo     repositories.PartnerRepositoryInterface
	measurementRepo repositories.MeasurementRepositoryInterface
	taskRepository  repositories.TaskRepositoryInterface
	bus             *eventbus.Bus
	logger          *zap.Logger
}

func NewLeadService(
	leadRepository repositories.LeadRepositoryInterface,
	stageRepository repositories.StageRepositoryInterface,
	partnerRepo repositories.PartnerRepositoryInterface,
	measurementRepo repositories.MeasurementRepositoryInterface,
	taskRepository repositories.TaskRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepository:  leadRepository,
		stageRepository: stageRepository,
		partnerRepo:     partnerRepo,
		measurementRepo: measurementRepo,
		taskRepository:  taskRepository,
		bus:             bus,
		logger:          logger,
	}
}

func (s *LeadService) CreateLead(ctx context.Context, payload dto.CreateLeadDTO) (*entities.Lead, error) {
	stage, err := s.stageRepository.FindByCode(ctx, entities.StageNew)
	if err != nil {
		return nil, err
	}

	temperature := payload.LeadTemperature
	if temperature == "" {
		temperature = entities.LeadWarm
	}

	id, err := s.leadRepository.CreateLead(ctx, entities.Lead{
		Name:               payload.Name,
		PartnerID:          payload.PartnerID,
		StageID:            stage.ID,
		ObjectType:         payload.ObjectType,
		AreaType:           payload.AreaType,
		Budget:             payload.Budget,
		LeadTemperature:    temperature,
		DesiredDateMeasure: payload.DesiredDateMeasure,
		Address:            payload.Address,
	})
	if err != nil {
		s.logger.Error("ошибка при создании лида", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Лид создан", zap.Uint64("leadID", id), zap.String("name", payload.Name))
	return s.leadRepository.FindLead(ctx, id)
}

func (s *LeadService) FindLead(ctx context.Context, id uint64) (*entities.Lead, error) {
	return s.leadRepository.FindLead(ctx, id)
}

func (s *LeadService) GetLeads(ctx context.Context, limit, offset uint64) ([]entities.Lead, uint64, error) {
	return s.leadRepository.GetLeads(ctx, limit, offset)
}

// UpdateStage - ручное перемещение лида менеджером. Оператор колл-центра
// не может двигать лид после назначения замера.
func (s *LeadService) UpdateStage(ctx context.Context, id uint64, payload dto.UpdateLeadStageDTO, actorRole string) (*entities.Lead, error) {
	lead, err := s.leadRepository.FindLead(ctx, id)
	if err != nil {
		return nil, err
	}

	if actorRole == entities.RoleCallCenter {
		if err := s.checkCallCenterAccess(ctx, lead); err != nil {
			return nil, err
		}
	}

	stage, err := s.stageRepository.FindByCode(ctx, payload.StageCode)
	if err != nil {
		return nil, apperrors.NewHttpError(400, "неизвестная стадия: "+payload.StageCode, err)
	}
	if err := s.leadRepository.UpdateStage(ctx, id, stage.ID); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.LeadStageChanged{
		LeadID:    id,
		StageCode: stage.Code,
		StageName: stage.Name,
	})
	return s.leadRepository.FindLead(ctx, id)
}

func (s *LeadService) DeleteLead(ctx context.Context, id uint64, actorRole string) error {
	if actorRole == entities.RoleCallCenter {
		return apperrors.NewHttpError(403, "оператору колл-центра запрещено удалять лиды", apperrors.ErrForbidden)
	}
	return s.leadRepository.DeleteLead(ctx, id)
}

// CreateMeasurement создает замер по лиду: черновик замера плюс задача
// выезда замерщика. Без контакта замер не создается.
func (s *LeadService) CreateMeasurement(ctx context.Context, leadID, actorID uint64, actorRole string) (*entities.Measurement, error) {
	lead, err := s.leadRepository.FindLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.PartnerID == nil {
		return nil, apperrors.NewHttpError(400, "у лида не указан контакт, сначала заполните клиента", apperrors.ErrBadRequest)
	}
	if lead.MeasurementID != nil {
		return s.measurementRepo.FindMeasurement(ctx, *lead.MeasurementID)
	}
	if actorRole == entities.RoleCallCenter {
		if err := s.checkCallCenterAccess(ctx, lead); err != nil {
			return nil, err
		}
	}

	address := ""
	if lead.Address != nil {
		address = *lead.Address
	}
	datePlanned := time.Now()
	if lead.DesiredDateMeasure != nil {
		datePlanned = *lead.DesiredDateMeasure
	}

	measurementID, err := s.measurementRepo.CreateMeasurement(ctx, entities.Measurement{
		LeadID:      leadID,
		PartnerID:   lead.PartnerID,
		Address:     address,
		DatePlanned: datePlanned,
		MeasurerID:  actorID,
		State:       entities.MeasureDraft,
	})
	if err != nil {
		s.logger.Error("ошибка при создании замера", zap.Error(err), zap.Uint64("leadID", leadID))
		return nil, err
	}

	taskID, err := s.taskRepository.CreateTask(ctx, entities.Task{
		Name:          "Замер: " + lead.Name,
		Kind:          entities.TaskKindMeasurement,
		AssigneeID:    &actorID,
		Deadline:      &datePlanned,
		MeasurementID: &measurementID,
	})
	if err != nil {
		s.logger.Error("ошибка при создании задачи замера", zap.Error(err), zap.Uint64("measurementID", measurementID))
		return nil, err
	}
	if err := s.measurementRepo.SetTask(ctx, measurementID, taskID); err != nil {
		return nil, err
	}
	if err := s.leadRepository.SetLink(ctx, leadID, repositories.LeadLinkMeasurement, measurementID); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.MeasurementScheduled{MeasurementID: measurementID, LeadID: leadID})
	s.logger.Info("Замер создан по лиду",
		zap.Uint64("leadID", leadID), zap.Uint64("measurementID", measurementID))
	return s.measurementRepo.FindMeasurement(ctx, measurementID)
}

// checkCallCenterAccess запрещает оператору менять лид, уже переданный в работу.
func (s *LeadService) checkCallCenterAccess(ctx context.Context, lead *entities.Lead) error {
	current, err := s.stageRepository.FindByID(ctx, lead.StageID)
	if err != nil {
		return err
	}
	boundary, err := s.stageRepository.FindByCode(ctx, entities.StageMeasureAssigned)
	if err != nil {
		return err
	}
	if current.Sequence >= boundary.Sequence {
		return apperrors.NewHttpError(403,
			"оператору колл-центра доступны только лиды до назначения замера", apperrors.ErrForbidden)
	}
	return nil
}
