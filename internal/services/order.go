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

type OrderService struct {
	orderRepository repositories.OrderRepositoryInterface
	productRepo     repositories.ProductRepositoryInterface
	productionRepo  repositories.ProductionRepositoryInterface
	leadRepository  repositories.LeadRepositoryInterface
	bus             *eventbus.Bus
	logger          *zap.Logger
}

func NewOrderService(
	orderRepository repositories.OrderRepositoryInterface,
	productRepo repositories.ProductRepositoryInterface,
	productionRepo repositories.ProductionRepositoryInterface,
	leadRepository repositories.LeadRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepository: orderRepository,
		productRepo:     productRepo,
		productionRepo:  productionRepo,
		leadRepository:  leadRepository,
		bus:             bus,
		logger:          logger,
	}
}

func (s *OrderService) FindOrder(ctx context.Context, id uint64) (*entities.Order, error) {
	return s.orderRepository.FindOrder(ctx, id)
}

func (s *OrderService) GetOrders(ctx context.Context, limit, offset uint64) ([]entities.Order, uint64, error) {
	return s.orderRepository.GetOrders(ctx, limit, offset)
}

func (s *OrderService) GetOrderLines(ctx context.Context, orderID uint64) ([]entities.OrderLine, error) {
	if _, err := s.orderRepository.FindOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.orderRepository.GetOrderLines(ctx, orderID)
}

func (s *OrderService) AddOrderLine(ctx context.Context, orderID uint64, payload dto.CreateOrderLineDTO) (*entities.OrderLine, error) {
	order, err := s.orderRepository.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.State != entities.OrderDraft && order.State != entities.OrderSent {
		return nil, apperrors.NewValidationError(
			"в заказ %s со статусом %q нельзя добавлять позиции", order.Number, order.State)
	}

	line := entities.OrderLine{
		OrderID:      orderID,
		ProductID:    payload.ProductID,
		Description:  payload.Description,
		Qty:          payload.Qty,
		PriceUnit:    payload.PriceUnit,
		WindowWidth:  payload.WindowWidth,
		WindowHeight: payload.WindowHeight,
	}
	id, err := s.orderRepository.CreateOrderLine(ctx, line)
	if err != nil {
		return nil, err
	}
	line.ID = id
	return &line, nil
}

// Send отправляет КП клиенту.
func (s *OrderService) Send(ctx context.Context, id uint64) (*entities.Order, error) {
	order, err := s.orderRepository.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.State != entities.OrderDraft {
		return nil, apperrors.NewValidationError(
			"заказ %s нельзя отправить из статуса %q", order.Number, order.State)
	}
	if err := s.setState(ctx, order, entities.OrderSent); err != nil {
		return nil, err
	}
	return s.orderRepository.FindOrder(ctx, id)
}

// Confirm подтверждает заказ и при необходимости запускает производство.
// Вызов идемпотентен: подтвержденный заказ с производством не трогается.
func (s *OrderService) Confirm(ctx context.Context, id uint64) (*entities.Order, error) {
	order, err := s.orderRepository.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	switch order.State {
	case entities.OrderDraft, entities.OrderSent:
		if err := s.setState(ctx, order, entities.OrderConfirmed); err != nil {
			return nil, err
		}
		order.State = entities.OrderConfirmed
	case entities.OrderConfirmed:
		// повторное подтверждение - не ошибка
	default:
		return nil, apperrors.NewValidationError(
			"заказ %s нельзя подтвердить из статуса %q", order.Number, order.State)
	}

	if order.IsWindowOrder && order.ProductionID == nil {
		if err := s.launchProduction(ctx, order); err != nil {
			return nil, err
		}
	}
	return s.orderRepository.FindOrder(ctx, id)
}

// Cancel отменяет заказ.
func (s *OrderService) Cancel(ctx context.Context, id uint64) (*entities.Order, error) {
	order, err := s.orderRepository.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.State == entities.OrderDone || order.State == entities.OrderCancelled {
		return nil, apperrors.NewValidationError("заказ %s уже закрыт", order.Number)
	}
	if err := s.setState(ctx, order, entities.OrderCancelled); err != nil {
		return nil, err
	}
	return s.orderRepository.FindOrder(ctx, id)
}

func (s *OrderService) setState(ctx context.Context, order *entities.Order, state string) error {
	if err := s.orderRepository.UpdateState(ctx, order.ID, state); err != nil {
		return err
	}
	s.bus.Publish(ctx, events.OrderStatusChanged{
		OrderID:   order.ID,
		PartnerID: order.PartnerID,
		Number:    order.Number,
		State:     state,
	})
	return nil
}

// launchProduction создает производственный заказ под оконный заказ.
// Продукт и спецификация берутся или создаются по натуральному ключу,
// поэтому конкурентное подтверждение не плодит дубликатов.
func (s *OrderService) launchProduction(ctx context.Context, order *entities.Order) error {
	if order.WindowProfileType == nil || order.WindowGlassUnitType == nil {
		s.logger.Warn("Оконный заказ без параметров профиля, производство не создано",
			zap.String("number", order.Number))
		return nil
	}

	profile := *order.WindowProfileType
	glass := *order.WindowGlassUnitType
	name := "Окно " + entities.ProfileTypeNames[profile] + " / " + entities.GlassUnitTypeNames[glass]

	product, err := s.productRepo.GetOrInsertProduct(ctx, name, profile, glass)
	if err != nil {
		return err
	}
	bom, err := s.productRepo.GetOrInsertBom(ctx, product.ID)
	if err != nil {
		return err
	}

	qty, err := s.orderRepository.SumLineQty(ctx, order.ID, product.ID)
	if err != nil {
		return err
	}
	if qty <= 0 {
		qty = 1.0
	}

	now := time.Now()
	productionID, err := s.productionRepo.CreateProduction(ctx, entities.Production{
		ProductID: product.ID,
		Qty:       qty,
		BomID:     &bom.ID,
		Origin:    order.Number,
		OrderID:   &order.ID,
		State:     entities.ProductionConfirmed,
		DateStart: &now,
	})
	if err != nil {
		s.logger.Error("ошибка при создании производственного заказа",
			zap.Error(err), zap.String("order", order.Number))
		return err
	}

	if err := s.orderRepository.SetProduction(ctx, order.ID, productionID); err != nil {
		return err
	}
	if order.LeadID != nil {
		if err := s.leadRepository.SetLink(ctx, *order.LeadID, repositories.LeadLinkProduction, productionID); err != nil {
			return err
		}
	}

	s.logger.Info("Производство запущено",
		zap.String("order", order.Number), zap.Uint64("productionID", productionID),
		zap.Float64("qty", qty))
	return nil
}
