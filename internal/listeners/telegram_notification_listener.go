package listeners

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"window-crm/internal/entities"
	"window-crm/internal/events"
	"window-crm/internal/repositories"
	"window-crm/pkg/eventbus"
	apperrors "window-crm/pkg/errors"
	"window-crm/pkg/telegram"
)

// TelegramNotificationListener шлет клиентам уведомления о движении их
// сделок и заказов. Сбой отправки логируется и глотается: бизнес-запись,
// породившая событие, уже зафиксирована.
type TelegramNotificationListener struct {
	telegramRepo   repositories.TelegramRepositoryInterface
	leadRepository repositories.LeadRepositoryInterface
	client         telegram.ServiceInterface
	bus            *eventbus.Bus
	logger         *zap.Logger
}

func NewTelegramNotificationListener(
	telegramRepo repositories.TelegramRepositoryInterface,
	leadRepository repositories.LeadRepositoryInterface,
	client telegram.ServiceInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *TelegramNotificationListener {
	return &TelegramNotificationListener{
		telegramRepo:   telegramRepo,
		leadRepository: leadRepository,
		client:         client,
		bus:            bus,
		logger:         logger,
	}
}

func (l *TelegramNotificationListener) Register() {
	l.bus.Subscribe(events.LeadStageChangedName, l.onLeadStageChanged)
	l.bus.Subscribe(events.OrderStatusChangedName, l.onOrderStatusChanged)
}

func (l *TelegramNotificationListener) onLeadStageChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.LeadStageChanged)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	lead, err := l.leadRepository.FindLead(ctx, e.LeadID)
	if err != nil {
		return err
	}
	if lead.TelegramUserID == nil {
		return nil
	}
	user, err := l.telegramRepo.FindUserByID(ctx, *lead.TelegramUserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !user.IsVerified {
		return nil
	}

	text := fmt.Sprintf("Ваша заявка «%s» перешла на этап: %s", lead.Name, e.StageName)
	l.send(ctx, user, &e.LeadID, text)
	return nil
}

func (l *TelegramNotificationListener) onOrderStatusChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderStatusChanged)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	user, err := l.findVerifiedUserByPartner(ctx, e.PartnerID)
	if err != nil || user == nil {
		return err
	}

	state := entities.OrderStateNames[e.State]
	if state == "" {
		state = e.State
	}
	text := fmt.Sprintf("Статус вашего заказа %s изменился: %s", e.Number, state)
	l.send(ctx, user, nil, text)
	return nil
}

// findVerifiedUserByPartner идет от клиента к его Telegram-аккаунту через
// последний активный лид.
func (l *TelegramNotificationListener) findVerifiedUserByPartner(ctx context.Context, partnerID uint64) (*entities.TelegramUser, error) {
	lead, err := l.leadRepository.FindLatestActiveByPartner(ctx, partnerID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lead.TelegramUserID == nil {
		return nil, nil
	}
	user, err := l.telegramRepo.FindUserByID(ctx, *lead.TelegramUserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		return nil, nil
	}
	return user, nil
}

func (l *TelegramNotificationListener) send(ctx context.Context, user *entities.TelegramUser, leadID *uint64, text string) {
	if err := l.client.SendMessage(ctx, user.ChatID, telegram.EscapeMarkdown(text)); err != nil {
		l.logger.Error("Не удалось отправить уведомление в Telegram",
			zap.Int64("chatID", user.ChatID), zap.Error(err))
		return
	}
	if err := l.telegramRepo.LogMessage(ctx, entities.TelegramMessage{
		TelegramUserID: user.ID,
		LeadID:         leadID,
		MessageDate:    time.Now(),
		Text:           text,
		Direction:      entities.DirectionOutgoing,
	}); err != nil {
		l.logger.Error("Не удалось записать исходящее сообщение в историю", zap.Error(err))
	}
}
