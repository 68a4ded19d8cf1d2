package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"window-crm/internal/entities"
	"window-crm/internal/repositories"
	apperrors "window-crm/pkg/errors"
	"window-crm/pkg/telegram"
	"window-crm/pkg/utils"
)

var verificationCodePattern = regexp.MustCompile(`^\d{6}$`)

const (
	commandCooldownWindow = 10 * time.Second
	commandCooldownLimit  = 5
	ordersCommandLimit    = 10
)

// TelegramGatewayService - единый конвейер обработки входящих обновлений.
// Им пользуются оба пути подачи: webhook и long polling, поэтому побочные
// эффекты не зависят от способа доставки.
type TelegramGatewayService struct {
	telegramRepo    repositories.TelegramRepositoryInterface
	partnerRepo     repositories.PartnerRepositoryInterface
	leadRepository  repositories.LeadRepositoryInterface
	orderRepository repositories.OrderRepositoryInterface
	cacheRepository repositories.CacheRepositoryInterface
	client          telegram.ServiceInterface
	logger          *zap.Logger
}

func NewTelegramGatewayService(
	telegramRepo repositories.TelegramRepositoryInterface,
	partnerRepo repositories.PartnerRepositoryInterface,
	leadRepository repositories.LeadRepositoryInterface,
	orderRepository repositories.OrderRepositoryInterface,
	cacheRepository repositories.CacheRepositoryInterface,
	client telegram.ServiceInterface,
	logger *zap.Logger,
) *TelegramGatewayService {
	return &TelegramGatewayService{
		telegramRepo:    telegramRepo,
		partnerRepo:     partnerRepo,
		leadRepository:  leadRepository,
		orderRepository: orderRepository,
		cacheRepository: cacheRepository,
		client:          client,
		logger:          logger,
	}
}

// EnsureConfig приводит конфигурацию бота в БД к значениям из окружения.
// Если секрет webhook не задан, для новой конфигурации генерируется случайный.
func (s *TelegramGatewayService) EnsureConfig(ctx context.Context, botName, botToken, webhookSecret string, useWebhook bool) (*entities.TelegramBotConfig, error) {
	if webhookSecret == "" {
		webhookSecret = uuid.New().String()
	}
	cfg, err := s.telegramRepo.EnsureConfig(ctx, entities.TelegramBotConfig{
		BotName:       botName,
		BotToken:      botToken,
		WebhookSecret: webhookSecret,
		UseWebhook:    useWebhook,
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось сохранить конфигурацию бота: %w", err)
	}
	s.logger.Info("Конфигурация бота актуализирована",
		zap.String("bot_name", cfg.BotName),
		zap.Bool("use_webhook", cfg.UseWebhook))
	return cfg, nil
}

// ValidateSecret сверяет секрет из URL webhook с активной конфигурацией бота.
func (s *TelegramGatewayService) ValidateSecret(ctx context.Context, secret string) error {
	_, err := s.telegramRepo.FindConfigBySecret(ctx, secret)
	return err
}

// ProcessUpdate обрабатывает одно входящее обновление Bot API.
func (s *TelegramGatewayService) ProcessUpdate(ctx context.Context, upd telegram.Update) error {
	msg := upd.Message
	if msg == nil || msg.From == nil {
		s.logger.Debug("Обновление без сообщения, пропускаем", zap.Int64("updateID", upd.UpdateID))
		return nil
	}

	user, err := s.telegramRepo.FindUserByTelegramID(ctx, msg.From.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return s.registerUser(ctx, msg)
	}
	if err != nil {
		return err
	}

	if user.ChatID != msg.Chat.ID {
		if err := s.telegramRepo.UpdateChatID(ctx, user.ID, msg.Chat.ID); err != nil {
			return err
		}
		user.ChatID = msg.Chat.ID
	}

	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "/") {
		return s.dispatchCommand(ctx, user, text)
	}

	// Код подтверждения от уже подтвержденного пользователя - обычный текст.
	if !user.IsVerified {
		return s.handleVerification(ctx, user, text)
	}

	return s.handleFreeform(ctx, user, msg)
}

// registerUser заводит нового пользователя Telegram: контакт (если имени
// хватает на контакт), код подтверждения и приветствие.
func (s *TelegramGatewayService) registerUser(ctx context.Context, msg *telegram.Message) error {
	name := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	if name == "" {
		if msg.From.Username != "" {
			name = "@" + msg.From.Username
		} else {
			name = fmt.Sprintf("Telegram %d", msg.From.ID)
		}
	}

	partnerID, err := s.partnerRepo.CreatePartner(ctx, entities.Partner{Name: name})
	if err != nil {
		return err
	}

	code := utils.GenerateVerificationCode()
	user := entities.TelegramUser{
		TelegramID:       msg.From.ID,
		PartnerID:        partnerID,
		VerificationCode: code,
		ChatID:           msg.Chat.ID,
	}
	if msg.From.Username != "" {
		user.Username = &msg.From.Username
	}
	if msg.From.FirstName != "" {
		user.FirstName = &msg.From.FirstName
	}
	if msg.From.LastName != "" {
		user.LastName = &msg.From.LastName
	}
	if _, err := s.telegramRepo.CreateUser(ctx, user); err != nil {
		return err
	}

	s.logger.Info("Новый пользователь Telegram",
		zap.Int64("telegramID", msg.From.ID), zap.Uint64("partnerID", partnerID))
	s.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"Здравствуйте, %s!\nВаш код подтверждения: %s\nОтправьте его в ответ, чтобы привязать аккаунт.",
		name, code))
	return nil
}

func (s *TelegramGatewayService) handleVerification(ctx context.Context, user *entities.TelegramUser, text string) error {
	if !verificationCodePattern.MatchString(text) {
		s.reply(ctx, user.ChatID, "Для продолжения отправьте 6-значный код подтверждения из приветственного сообщения.")
		return nil
	}
	if text != user.VerificationCode {
		s.reply(ctx, user.ChatID, "Неверный код подтверждения. Проверьте код и попробуйте еще раз.")
		return nil
	}

	if err := s.telegramRepo.MarkVerified(ctx, user.ID, time.Now()); err != nil {
		return err
	}
	s.logger.Info("Пользователь Telegram подтвержден", zap.Int64("telegramID", user.TelegramID))
	s.reply(ctx, user.ChatID, "Аккаунт подтвержден! Теперь вам доступны команды /orders и /help.")
	return nil
}

// handleFreeform сохраняет сообщение в историю, привязывает пользователя к
// последнему активному лиду клиента и дергает хук уведомления оператора.
func (s *TelegramGatewayService) handleFreeform(ctx context.Context, user *entities.TelegramUser, msg *telegram.Message) error {
	now := time.Now()
	if err := s.telegramRepo.TouchLastMessage(ctx, user.ID, now); err != nil {
		return err
	}

	var leadID *uint64
	lead, err := s.leadRepository.FindLatestActiveByPartner(ctx, user.PartnerID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if lead != nil {
		leadID = &lead.ID
		if err := s.leadRepository.SetLink(ctx, lead.ID, repositories.LeadLinkTelegramUser, user.ID); err != nil {
			return err
		}
	}

	messageDate := now
	if msg.Date > 0 {
		messageDate = time.Unix(msg.Date, 0)
	}
	if err := s.telegramRepo.LogMessage(ctx, entities.TelegramMessage{
		TelegramUserID: user.ID,
		LeadID:         leadID,
		MessageID:      &msg.MessageID,
		MessageDate:    messageDate,
		Text:           msg.Text,
		Direction:      entities.DirectionIncoming,
	}); err != nil {
		return err
	}

	s.notifyOperator(user, msg.Text)
	return nil
}

// notifyOperator - точка расширения для передачи сообщения оператору.
// Пока только пишет в лог.
func (s *TelegramGatewayService) notifyOperator(user *entities.TelegramUser, text string) {
	s.logger.Info("Сообщение клиента для оператора",
		zap.Int64("telegramID", user.TelegramID),
		zap.String("from", user.DisplayName()),
		zap.String("text", text))
}

func (s *TelegramGatewayService) dispatchCommand(ctx context.Context, user *entities.TelegramUser, text string) error {
	if s.commandThrottled(ctx, user.ChatID) {
		s.logger.Warn("Слишком частые команды, пропускаем", zap.Int64("chatID", user.ChatID))
		return nil
	}

	command := strings.ToLower(strings.Fields(text)[0])
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}

	switch command {
	case "/start":
		return s.commandStart(ctx, user)
	case "/orders":
		return s.commandOrders(ctx, user)
	case "/help":
		s.reply(ctx, user.ChatID, "Доступные команды:\n"+
			"/start - статус аккаунта\n"+
			"/orders - ваши заказы\n"+
			"/help - эта справка")
		return nil
	default:
		s.reply(ctx, user.ChatID, "Неизвестная команда. Отправьте /help для списка команд.")
		return nil
	}
}

// commandThrottled ограничивает частоту команд на чат. Недоступность
// кеша не блокирует обработку.
func (s *TelegramGatewayService) commandThrottled(ctx context.Context, chatID int64) bool {
	key := fmt.Sprintf("telegram:cooldown:%d", chatID)
	count, err := s.cacheRepository.Incr(ctx, key)
	if err != nil {
		s.logger.Warn("Кеш недоступен, пропускаем ограничение частоты", zap.Error(err))
		return false
	}
	if count == 1 {
		if _, err := s.cacheRepository.Expire(ctx, key, commandCooldownWindow); err != nil {
			s.logger.Warn("Не удалось выставить TTL счетчика команд", zap.Error(err))
		}
	}
	return count > commandCooldownLimit
}

func (s *TelegramGatewayService) commandStart(ctx context.Context, user *entities.TelegramUser) error {
	if user.IsVerified {
		s.reply(ctx, user.ChatID, fmt.Sprintf(
			"Здравствуйте, %s! Ваш аккаунт подтвержден. Отправьте /orders, чтобы посмотреть заказы.",
			user.DisplayName()))
		return nil
	}
	s.reply(ctx, user.ChatID, fmt.Sprintf(
		"Ваш аккаунт еще не подтвержден.\nКод подтверждения: %s\nОтправьте его в ответ.",
		user.VerificationCode))
	return nil
}

func (s *TelegramGatewayService) commandOrders(ctx context.Context, user *entities.TelegramUser) error {
	if !user.IsVerified {
		s.reply(ctx, user.ChatID, "Сначала подтвердите аккаунт: отправьте 6-значный код из приветствия.")
		return nil
	}

	orders, err := s.orderRepository.ListByPartner(ctx, user.PartnerID, ordersCommandLimit)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		s.reply(ctx, user.ChatID, "У вас пока нет заказов.")
		return nil
	}

	var b strings.Builder
	b.WriteString("Ваши заказы:\n")
	for _, order := range orders {
		state := entities.OrderStateNames[order.State]
		if state == "" {
			state = order.State
		}
		fmt.Fprintf(&b, "%s — %s, сумма %.2f\n", order.Number, state, order.AmountTotal)
	}
	s.reply(ctx, user.ChatID, b.String())
	return nil
}

// reply отправляет ответ и пишет его в историю. Сбой отправки логируется
// и не прерывает обработку входящего сообщения.
func (s *TelegramGatewayService) reply(ctx context.Context, chatID int64, text string) {
	if err := s.client.SendMessage(ctx, chatID, telegram.EscapeMarkdown(text)); err != nil {
		s.logger.Error("Не удалось отправить ответ в Telegram",
			zap.Int64("chatID", chatID), zap.Error(err))
	}
}

// PollBatch забирает очередную пачку обновлений и прогоняет ее через
// конвейер. Курсор сохраняется только после обработки всей пачки:
// при падении часть обновлений придет повторно, обработка это терпит.
func (s *TelegramGatewayService) PollBatch(ctx context.Context, limit int) error {
	cfg, err := s.telegramRepo.FindActiveConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.UseWebhook {
		return nil
	}

	updates, err := s.client.GetUpdates(ctx, cfg.LastUpdateID+1, limit)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}

	maxID := cfg.LastUpdateID
	for _, upd := range updates {
		if err := s.ProcessUpdate(ctx, upd); err != nil {
			s.logger.Error("Ошибка обработки обновления",
				zap.Int64("updateID", upd.UpdateID), zap.Error(err))
		}
		if upd.UpdateID > maxID {
			maxID = upd.UpdateID
		}
	}
	return s.telegramRepo.UpdateLastUpdateID(ctx, cfg.ID, maxID)
}

// RegisterWebhook регистрирует webhook у Telegram. Ошибка провайдера
// возвращается вызывающему.
func (s *TelegramGatewayService) RegisterWebhook(ctx context.Context, baseURL string) error {
	cfg, err := s.telegramRepo.FindActiveConfig(ctx)
	if err != nil {
		return err
	}
	webhookURL := strings.TrimRight(baseURL, "/") + "/telegram/webhook/" + cfg.WebhookSecret
	if err := s.client.SetWebhook(ctx, webhookURL); err != nil {
		return err
	}
	s.logger.Info("Webhook зарегистрирован", zap.String("url", webhookURL))
	return nil
}

// DeleteWebhook снимает webhook. Ошибка провайдера возвращается вызывающему.
func (s *TelegramGatewayService) DeleteWebhook(ctx context.Context) error {
	if err := s.client.DeleteWebhook(ctx); err != nil {
		return err
	}
	s.logger.Info("Webhook удален")
	return nil
}
