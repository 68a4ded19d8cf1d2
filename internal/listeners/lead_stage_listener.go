package listeners

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"window-crm/internal/entities"
	"window-crm/internal/events"
	"window-crm/internal/repositories"
	"window-crm/pkg/eventbus"
)

const stageCacheTTL = 12 * time.Hour

// LeadStageListener - единственное место, двигающее стадию лида в ответ
// на события цепочки. Сервисы этапов стадию не трогают: они публикуют
// событие, а зеркалирование происходит здесь.
type LeadStageListener struct {
	leadRepository  repositories.LeadRepositoryInterface
	orderRepository repositories.OrderRepositoryInterface
	stageRepository repositories.StageRepositoryInterface
	cacheRepository repositories.CacheRepositoryInterface
	bus             *eventbus.Bus
	logger          *zap.Logger
}

func NewLeadStageListener(
	leadRepository repositories.LeadRepositoryInterface,
	orderRepository repositories.OrderRepositoryInterface,
	stageRepository repositories.StageRepositoryInterface,
	cacheRepository repositories.CacheRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *LeadStageListener {
	return &LeadStageListener{
		leadRepository:  leadRepository,
		orderRepository: orderRepository,
		stageRepository: stageRepository,
		cacheRepository: cacheRepository,
		bus:             bus,
		logger:          logger,
	}
}

// Register подписывает слушателя на события цепочки.
func (l *LeadStageListener) Register() {
	l.bus.Subscribe(events.MeasurementScheduledName, l.onMeasurementScheduled)
	l.bus.Subscribe(events.MeasurementCompletedName, l.onMeasurementCompleted)
	l.bus.Subscribe(events.ProductionCompletedName, l.onProductionCompleted)
	l.bus.Subscribe(events.InstallationActSignedName, l.onInstallationActSigned)
}

func (l *LeadStageListener) onMeasurementScheduled(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.MeasurementScheduled)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}
	return l.moveLead(ctx, e.LeadID, entities.StageMeasureAssigned)
}

func (l *LeadStageListener) onMeasurementCompleted(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.MeasurementCompleted)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}
	return l.moveLead(ctx, e.LeadID, entities.StageMeasureDone)
}

func (l *LeadStageListener) onProductionCompleted(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.ProductionCompleted)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}
	if e.OrderID == nil {
		return nil
	}
	leadID, err := l.leadIDForOrder(ctx, *e.OrderID)
	if err != nil || leadID == 0 {
		return err
	}
	return l.moveLead(ctx, leadID, entities.StageReadyDelivery)
}

func (l *LeadStageListener) onInstallationActSigned(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.InstallationActSigned)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}
	leadID, err := l.leadIDForOrder(ctx, e.OrderID)
	if err != nil || leadID == 0 {
		return err
	}
	if err := l.leadRepository.SetLink(ctx, leadID, repositories.LeadLinkInstallation, e.TaskID); err != nil {
		return err
	}
	return l.moveLead(ctx, leadID, entities.StageCompleted)
}

func (l *LeadStageListener) leadIDForOrder(ctx context.Context, orderID uint64) (uint64, error) {
	order, err := l.orderRepository.FindOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	if order.LeadID == nil {
		l.logger.Debug("Заказ без лида, стадия не двигается", zap.String("number", order.Number))
		return 0, nil
	}
	return *order.LeadID, nil
}

func (l *LeadStageListener) moveLead(ctx context.Context, leadID uint64, stageCode string) error {
	stage, err := l.resolveStage(ctx, stageCode)
	if err != nil {
		return err
	}
	if err := l.leadRepository.UpdateStage(ctx, leadID, stage.ID); err != nil {
		return err
	}

	l.logger.Info("Лид переведен на стадию",
		zap.Uint64("leadID", leadID), zap.String("stage", stage.Name))
	l.bus.Publish(ctx, events.LeadStageChanged{
		LeadID:    leadID,
		StageCode: stage.Code,
		StageName: stage.Name,
	})
	return nil
}

// resolveStage достает стадию из кеша, при промахе - из БД. Справочник
// стадий практически неизменяем, поэтому TTL длинный.
func (l *LeadStageListener) resolveStage(ctx context.Context, code string) (*entities.CrmStage, error) {
	key := "crm:stage:" + code

	if cached, err := l.cacheRepository.Get(ctx, key); err == nil && cached != "" {
		var stage entities.CrmStage
		if err := json.Unmarshal([]byte(cached), &stage); err == nil {
			return &stage, nil
		}
	}

	stage, err := l.stageRepository.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(stage); err == nil {
		if err := l.cacheRepository.Set(ctx, key, string(raw), stageCacheTTL); err != nil {
			l.logger.Warn("Не удалось закешировать стадию", zap.String("code", code), zap.Error(err))
		}
	}
	return stage, nil
}
