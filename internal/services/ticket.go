package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"window-crm/internal/dto"
	"window-crm/internal/entities"
	"window-crm/internal/repositories"
	"window-crm/pkg/config"
	apperrors "window-crm/pkg/errors"
)

type TicketService struct {
	ticketRepository repositories.TicketRepositoryInterface
	orderRepository  repositories.OrderRepositoryInterface
	taskRepository   repositories.TaskRepositoryInterface
	warranty         config.WarrantyConfig
	logger           *zap.Logger
}

func NewTicketService(
	ticketRepository repositories.TicketRepositoryInterface,
	orderRepository repositories.OrderRepositoryInterface,
	taskRepository repositories.TaskRepositoryInterface,
	warranty config.WarrantyConfig,
	logger *zap.Logger,
) *TicketService {
	return &TicketService{
		ticketRepository: ticketRepository,
		orderRepository:  orderRepository,
		taskRepository:   taskRepository,
		warranty:         warranty,
		logger:           logger,
	}
}

// ResolveWarranty вычисляет дату установки и статус гарантии.
// Дата берется из явного значения, иначе из дедлайна монтажной задачи,
// иначе из даты заказа плюс срок исполнения. Если дату вывести не из чего,
// обращение считается гарантийным: сомнение трактуется в пользу клиента.
func ResolveWarranty(installationDate, taskDeadline, orderDate *time.Time, now time.Time, w config.WarrantyConfig) (*time.Time, string) {
	date := installationDate
	if date == nil {
		date = taskDeadline
	}
	if date == nil && orderDate != nil {
		inferred := orderDate.Add(w.FulfillmentLag)
		date = &inferred
	}
	if date == nil {
		return nil, entities.InWarranty
	}
	if now.After(date.Add(w.Period)) {
		return date, entities.OutOfWarranty
	}
	return date, entities.InWarranty
}

func (s *TicketService) CreateTicket(ctx context.Context, payload dto.CreateTicketDTO) (*entities.ServiceTicket, error) {
	var installationDate *time.Time
	if payload.InstallationDate != nil {
		parsed, err := time.Parse("2006-01-02", *payload.InstallationDate)
		if err != nil {
			return nil, apperrors.NewValidationError("дата установки должна быть в формате ГГГГ-ММ-ДД")
		}
		installationDate = &parsed
	}

	date, status, err := s.deriveWarranty(ctx, installationDate, payload.OrderID, payload.InstallationTaskID)
	if err != nil {
		return nil, err
	}

	id, err := s.ticketRepository.CreateTicket(ctx, entities.ServiceTicket{
		PartnerID:          payload.PartnerID,
		OrderID:            payload.OrderID,
		InstallationTaskID: payload.InstallationTaskID,
		InstallationDate:   date,
		WarrantyStatus:     status,
		TypeOfIssue:        payload.TypeOfIssue,
		Description:        payload.Description,
		State:              entities.TicketNew,
	})
	if err != nil {
		s.logger.Error("ошибка при создании сервисного обращения", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Сервисное обращение создано",
		zap.Uint64("ticketID", id), zap.String("warranty", status))
	return s.ticketRepository.FindTicket(ctx, id)
}

func (s *TicketService) FindTicket(ctx context.Context, id uint64) (*entities.ServiceTicket, error) {
	return s.ticketRepository.FindTicket(ctx, id)
}

func (s *TicketService) GetTickets(ctx context.Context, limit, offset uint64) ([]entities.ServiceTicket, uint64, error) {
	return s.ticketRepository.GetTickets(ctx, limit, offset)
}

// RecomputeWarranty пересчитывает статус гарантии по текущим привязкам.
func (s *TicketService) RecomputeWarranty(ctx context.Context, id uint64) (*entities.ServiceTicket, error) {
	t, err := s.ticketRepository.FindTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	date, status, err := s.deriveWarranty(ctx, t.InstallationDate, t.OrderID, t.InstallationTaskID)
	if err != nil {
		return nil, err
	}
	if err := s.ticketRepository.UpdateWarranty(ctx, id, date, status); err != nil {
		return nil, err
	}
	return s.ticketRepository.FindTicket(ctx, id)
}

// Assign назначает исполнителя обращения.
func (s *TicketService) Assign(ctx context.Context, id, userID uint64) (*entities.ServiceTicket, error) {
	t, err := s.ticketRepository.FindTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.State != entities.TicketNew && t.State != entities.TicketAssigned {
		return nil, apperrors.NewValidationError(
			"обращение %s нельзя назначить из статуса %q", t.Number, t.State)
	}
	if err := s.ticketRepository.Assign(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.ticketRepository.FindTicket(ctx, id)
}

// Start - исполнитель взял обращение в работу.
func (s *TicketService) Start(ctx context.Context, id uint64) (*entities.ServiceTicket, error) {
	t, err := s.ticketRepository.FindTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.State != entities.TicketAssigned {
		return nil, apperrors.NewValidationError(
			"обращение %s нельзя взять в работу из статуса %q", t.Number, t.State)
	}
	if err := s.ticketRepository.UpdateState(ctx, id, entities.TicketInProgress); err != nil {
		return nil, err
	}
	return s.ticketRepository.FindTicket(ctx, id)
}

// Resolve закрывает работу по обращению. Решение обязательно.
func (s *TicketService) Resolve(ctx context.Context, id uint64, payload dto.ResolveTicketDTO) (*entities.ServiceTicket, error) {
	if strings.TrimSpace(payload.Resolution) == "" {
		return nil, apperrors.NewValidationError("опишите решение перед закрытием обращения")
	}
	t, err := s.ticketRepository.FindTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.State != entities.TicketInProgress && t.State != entities.TicketAssigned {
		return nil, apperrors.NewValidationError(
			"обращение %s нельзя решить из статуса %q", t.Number, t.State)
	}
	if err := s.ticketRepository.Resolve(ctx, id, payload.Resolution, time.Now()); err != nil {
		return nil, err
	}
	return s.ticketRepository.FindTicket(ctx, id)
}

// Close окончательно закрывает решенное обращение.
func (s *TicketService) Close(ctx context.Context, id uint64) (*entities.ServiceTicket, error) {
	t, err := s.ticketRepository.FindTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.State != entities.TicketResolved {
		return nil, apperrors.NewValidationError(
			"обращение %s нельзя закрыть из статуса %q", t.Number, t.State)
	}
	if err := s.ticketRepository.UpdateState(ctx, id, entities.TicketClosed); err != nil {
		return nil, err
	}
	return s.ticketRepository.FindTicket(ctx, id)
}

func (s *TicketService) deriveWarranty(ctx context.Context, installationDate *time.Time, orderID, taskID *uint64) (*time.Time, string, error) {
	var taskDeadline, orderDate *time.Time

	if taskID != nil {
		task, err := s.taskRepository.FindTask(ctx, *taskID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", err
		}
		if task != nil {
			taskDeadline = task.Deadline
		}
	}
	if orderID != nil {
		order, err := s.orderRepository.FindOrder(ctx, *orderID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", err
		}
		if order != nil {
			orderDate = &order.DateOrder
		}
	}

	date, status := ResolveWarranty(installationDate, taskDeadline, orderDate, time.Now(), s.warranty)
	return date, status, nil
}
