package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"window-crm/internal/entities"
	"window-crm/internal/events"
	"window-crm/internal/repositories"
	"window-crm/pkg/eventbus"
	apperrors "window-crm/pkg/errors"
)

// Порядок подстатусов монтажа. Переходы допустимы только на следующий шаг.
var installationOrder = map[string]int{
	entities.InstallAssigned:     0,
	entities.InstallDelivery:     1,
	entities.InstallInstallation: 2,
	entities.InstallCleaning:     3,
	entities.InstallAct:          4,
}

type InstallationService struct {
	taskRepository  repositories.TaskRepositoryInterface
	orderRepository repositories.OrderRepositoryInterface
	leadRepository  repositories.LeadRepositoryInterface
	bus             *eventbus.Bus
	logger          *zap.Logger
}

func NewInstallationService(
	taskRepository repositories.TaskRepositoryInterface,
	orderRepository repositories.OrderRepositoryInterface,
	leadRepository repositories.LeadRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *InstallationService {
	return &InstallationService{
		taskRepository:  taskRepository,
		orderRepository: orderRepository,
		leadRepository:  leadRepository,
		bus:             bus,
		logger:          logger,
	}
}

func (s *InstallationService) FindTask(ctx context.Context, id uint64) (*entities.Task, error) {
	return s.taskRepository.FindTask(ctx, id)
}

func (s *InstallationService) GetTasks(ctx context.Context, limit, offset uint64) ([]entities.Task, uint64, error) {
	return s.taskRepository.GetTasks(ctx, entities.TaskKindInstallation, limit, offset)
}

// CreateTask создает монтажную задачу по подтвержденному заказу.
func (s *InstallationService) CreateTask(ctx context.Context, orderID uint64, assigneeID *uint64, deadline *time.Time) (*entities.Task, error) {
	order, err := s.orderRepository.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.State != entities.OrderConfirmed && order.State != entities.OrderDone {
		return nil, apperrors.NewValidationError(
			"монтаж назначается только по подтвержденному заказу, статус %q", order.State)
	}
	if order.InstallationTaskID != nil {
		return s.taskRepository.FindTask(ctx, *order.InstallationTaskID)
	}

	assigned := entities.InstallAssigned
	taskID, err := s.taskRepository.CreateTask(ctx, entities.Task{
		Name:              "Монтаж: " + order.Number,
		Kind:              entities.TaskKindInstallation,
		AssigneeID:        assigneeID,
		Deadline:          deadline,
		OrderID:           &orderID,
		InstallationState: &assigned,
	})
	if err != nil {
		s.logger.Error("ошибка при создании монтажной задачи", zap.Error(err), zap.String("order", order.Number))
		return nil, err
	}
	if err := s.orderRepository.SetInstallationTask(ctx, orderID, taskID); err != nil {
		return nil, err
	}
	return s.taskRepository.FindTask(ctx, taskID)
}

// StartDelivery фиксирует выезд доставки.
func (s *InstallationService) StartDelivery(ctx context.Context, id uint64) (*entities.Task, error) {
	task, err := s.advance(ctx, id, entities.InstallDelivery)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepository.SetDeliveryDate(ctx, id, time.Now()); err != nil {
		return nil, err
	}
	return task, nil
}

// StartInstallation - бригада приступила к монтажу.
func (s *InstallationService) StartInstallation(ctx context.Context, id uint64) (*entities.Task, error) {
	return s.advance(ctx, id, entities.InstallInstallation)
}

// StartCleaning - уборка после монтажа.
func (s *InstallationService) StartCleaning(ctx context.Context, id uint64) (*entities.Task, error) {
	return s.advance(ctx, id, entities.InstallCleaning)
}

// SignAct закрывает монтаж подписанием акта. Без привязки к заказу акт
// подписать нельзя.
func (s *InstallationService) SignAct(ctx context.Context, id uint64) (*entities.Task, error) {
	task, err := s.taskRepository.FindTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.OrderID == nil {
		return nil, apperrors.NewHttpError(400,
			"монтажная задача не привязана к заказу, подписание акта невозможно", apperrors.ErrBadRequest)
	}
	if _, err := s.advance(ctx, id, entities.InstallAct); err != nil {
		return nil, err
	}
	if err := s.orderRepository.UpdateState(ctx, *task.OrderID, entities.OrderDone); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.InstallationActSigned{TaskID: id, OrderID: *task.OrderID})
	s.logger.Info("Акт монтажа подписан",
		zap.Uint64("taskID", id), zap.Uint64("orderID", *task.OrderID))
	return s.taskRepository.FindTask(ctx, id)
}

// advance двигает подстатус монтажа строго на следующий шаг цепочки.
func (s *InstallationService) advance(ctx context.Context, id uint64, to string) (*entities.Task, error) {
	task, err := s.taskRepository.FindTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Kind != entities.TaskKindInstallation || task.InstallationState == nil {
		return nil, apperrors.NewValidationError("задача %d не является монтажной", id)
	}
	current := *task.InstallationState
	if installationOrder[to] != installationOrder[current]+1 {
		return nil, apperrors.NewValidationError(
			"переход монтажа %q → %q недопустим", entities.InstallationStateNames[current],
			entities.InstallationStateNames[to])
	}
	if err := s.taskRepository.UpdateInstallationState(ctx, id, to); err != nil {
		return nil, err
	}
	return s.taskRepository.FindTask(ctx, id)
}
