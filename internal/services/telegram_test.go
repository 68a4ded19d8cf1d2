package services

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"window-crm/internal/entities"
	apperrors "window-crm/pkg/errors"
	"window-crm/pkg/telegram"
)

type gatewayFixture struct {
	svc          *TelegramGatewayService
	telegramRepo *fakeTelegramRepo
	partnerRepo  *fakePartnerRepo
	leadRepo     *fakeLeadRepo
	orderRepo    *fakeOrderRepo
	cache        *fakeCacheRepo
	client       *fakeTelegramClient
}

func newGatewayForTest() *gatewayFixture {
	f := &gatewayFixture{
		telegramRepo: newFakeTelegramRepo(),
		partnerRepo:  newFakePartnerRepo(),
		leadRepo:     newFakeLeadRepo(),
		orderRepo:    newFakeOrderRepo(),
		cache:        newFakeCacheRepo(),
		client:       &fakeTelegramClient{},
	}
	f.svc = NewTelegramGatewayService(
		f.telegramRepo, f.partnerRepo, f.leadRepo, f.orderRepo, f.cache, f.client, zap.NewNop())
	return f
}

func incomingText(telegramID, chatID int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			MessageID: 100,
			From:      &telegram.Peer{ID: telegramID, FirstName: "Иван", LastName: "Петров"},
			Chat:      telegram.Chat{ID: chatID},
			Text:      text,
		},
	}
}

func TestProcessUpdate_SkipsEmptyUpdate(t *testing.T) {
	f := newGatewayForTest()
	err := f.svc.ProcessUpdate(context.Background(), telegram.Update{UpdateID: 1})
	require.NoError(t, err)
	assert.Empty(t, f.client.sent)
}

func TestProcessUpdate_RegistersNewUser(t *testing.T) {
	f := newGatewayForTest()
	ctx := context.Background()

	err := f.svc.ProcessUpdate(ctx, incomingText(500, 500, "Здравствуйте"))
	require.NoError(t, err)

	user, err := f.telegramRepo.FindUserByTelegramID(ctx, 500)
	require.NoError(t, err)
	assert.False(t, user.IsVerified)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), user.VerificationCode)

	// контакт заведен по имени из Telegram
	partner, err := f.partnerRepo.FindPartner(ctx, user.PartnerID)
	require.NoError(t, err)
	assert.Equal(t, "Иван Петров", partner.Name)

	// приветствие содержит код подтверждения
	last := f.client.lastMessage()
	require.NotNil(t, last)
	assert.Contains(t, last.Text, user.VerificationCode)
}

func TestProcessUpdate_Verification(t *testing.T) {
	f := newGatewayForTest()
	ctx := context.Background()

	require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, "привет")))
	user, err := f.telegramRepo.FindUserByTelegramID(ctx, 500)
	require.NoError(t, err)

	// произвольный текст не считается кодом
	require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, "это не код")))
	user, _ = f.telegramRepo.FindUserByTelegramID(ctx, 500)
	assert.False(t, user.IsVerified)

	// неверный шестизначный код отклоняется
	wrong := "000000"
	if wrong == user.VerificationCode {
		wrong = "000001"
	}
	require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, wrong)))
	user, _ = f.telegramRepo.FindUserByTelegramID(ctx, 500)
	assert.False(t, user.IsVerified)

	// правильный код подтверждает аккаунт
	require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, user.VerificationCode)))
	user, _ = f.telegramRepo.FindUserByTelegramID(ctx, 500)
	assert.True(t, user.IsVerified)
	require.NotNil(t, user.VerifiedDate)
}

func TestProcessUpdate_FreeformLinksLead(t *testing.T) {
	f := newGatewayForTest()
	ctx := context.Background()

	require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, "привет")))
	user, err := f.telegramRepo.FindUserByTelegramID(ctx, 500)
	require.NoError(t, err)
	require.NoError(t, f.telegramRepo.MarkVerified(ctx, user.ID, user.CreatedAt))

	leadID := f.leadRepo.add(entities.Lead{Name: "Окна на кухню", PartnerID: &user.PartnerID, StageID: 1})

	require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, "Когда приедет замерщик?")))

	// сообщение в истории с привязкой к лиду
	messages, _, err := f.telegramRepo.GetMessages(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, entities.DirectionIncoming, messages[0].Direction)
	require.NotNil(t, messages[0].LeadID)
	assert.Equal(t, leadID, *messages[0].LeadID)

	// лид получил обратную ссылку на пользователя Telegram
	lead, err := f.leadRepo.FindLead(ctx, leadID)
	require.NoError(t, err)
	require.NotNil(t, lead.TelegramUserID)
	assert.Equal(t, user.ID, *lead.TelegramUserID)
}

func TestCommands(t *testing.T) {
	f := newGatewayForTest()
	ctx := context.Background()

	require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, "привет")))
	user, err := f.telegramRepo.FindUserByTelegramID(ctx, 500)
	require.NoError(t, err)

	// /orders до подтверждения просит код
	require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, "/orders")))
	last := f.client.lastMessage()
	require.NotNil(t, last)
	assert.Contains(t, last.Text, "подтвердите")

	require.NoError(t, f.telegramRepo.MarkVerified(ctx, user.ID, user.CreatedAt))

	// /orders без заказов
	require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, "/orders")))
	assert.Contains(t, f.client.lastMessage().Text, "нет заказов")

	f.orderRepo.add(entities.Order{
		Number:      "SO-00042",
		PartnerID:   user.PartnerID,
		State:       entities.OrderConfirmed,
		AmountTotal: 85000,
	})

	require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, "/orders")))
	assert.Contains(t, f.client.lastMessage().Text, "SO-00042")

	// суффикс @botname отбрасывается
	require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, "/help@window_crm_bot")))
	assert.Contains(t, f.client.lastMessage().Text, "/orders")

	// неизвестная команда подсказывает /help
	require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, "/unknown")))
	assert.Contains(t, f.client.lastMessage().Text, "/help")
}

func TestCommandThrottling(t *testing.T) {
	f := newGatewayForTest()
	ctx := context.Background()

	require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, "привет")))
	sentBefore := len(f.client.sent)

	for i := 0; i < commandCooldownLimit+2; i++ {
		require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, "/help")))
	}
	// ответы только на команды в пределах лимита
	assert.Equal(t, sentBefore+commandCooldownLimit, len(f.client.sent))
}

func TestCommandThrottling_CacheFailureIsOpen(t *testing.T) {
	f := newGatewayForTest()
	ctx := context.Background()

	require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, "привет")))
	f.cache.failing = true
	sentBefore := len(f.client.sent)

	for i := 0; i < commandCooldownLimit+2; i++ {
		require.NoError(t, f.svc.ProcessUpdate(ctx, incomingText(500, 500, "/help")))
	}
	// недоступный кеш не блокирует команды
	assert.Equal(t, sentBefore+commandCooldownLimit+2, len(f.client.sent))
}

func TestValidateSecret(t *testing.T) {
	f := newGatewayForTest()
	ctx := context.Background()

	require.NoError(t, f.svc.ValidateSecret(ctx, "secret"))
	err := f.svc.ValidateSecret(ctx, "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPollBatch_AdvancesCursor(t *testing.T) {
	f := newGatewayForTest()
	ctx := context.Background()

	f.client.updates = []telegram.Update{
		{UpdateID: 5, Message: &telegram.Message{From: &telegram.Peer{ID: 500, FirstName: "Иван"}, Chat: telegram.Chat{ID: 500}, Text: "привет"}},
		{UpdateID: 6, Message: &telegram.Message{From: &telegram.Peer{ID: 501, FirstName: "Олег"}, Chat: telegram.Chat{ID: 501}, Text: "добрый день"}},
		{UpdateID: 7},
	}

	require.NoError(t, f.svc.PollBatch(ctx, 100))

	cfg, err := f.telegramRepo.FindActiveConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.LastUpdateID, "курсор двигается после обработки всей пачки")

	// оба отправителя зарегистрированы одним и тем же конвейером
	_, err = f.telegramRepo.FindUserByTelegramID(ctx, 500)
	require.NoError(t, err)
	_, err = f.telegramRepo.FindUserByTelegramID(ctx, 501)
	require.NoError(t, err)

	// повторный опрос не находит новых обновлений и не трогает курсор
	require.NoError(t, f.svc.PollBatch(ctx, 100))
	cfg, _ = f.telegramRepo.FindActiveConfig(ctx)
	assert.Equal(t, int64(7), cfg.LastUpdateID)
}

func TestPollBatch_SkipsInWebhookMode(t *testing.T) {
	f := newGatewayForTest()
	ctx := context.Background()

	f.telegramRepo.config.UseWebhook = true
	f.client.updates = []telegram.Update{
		{UpdateID: 5, Message: &telegram.Message{From: &telegram.Peer{ID: 500}, Chat: telegram.Chat{ID: 500}, Text: "привет"}},
	}

	require.NoError(t, f.svc.PollBatch(ctx, 100))
	cfg, _ := f.telegramRepo.FindActiveConfig(ctx)
	assert.Equal(t, int64(0), cfg.LastUpdateID)
	assert.Empty(t, f.client.sent)
}

func TestRegisterWebhook_BuildsURLFromSecret(t *testing.T) {
	f := newGatewayForTest()
	ctx := context.Background()

	require.NoError(t, f.svc.RegisterWebhook(ctx, "https://crm.example.com/"))
	assert.Equal(t, "https://crm.example.com/telegram/webhook/secret", f.client.webhook)

	require.NoError(t, f.svc.DeleteWebhook(ctx))
	assert.Equal(t, "", f.client.webhook)
}

func TestVerificationCodePattern(t *testing.T) {
	assert.True(t, verificationCodePattern.MatchString("123456"))
	assert.False(t, verificationCodePattern.MatchString("12345"))
	assert.False(t, verificationCodePattern.MatchString("1234567"))
	assert.False(t, verificationCodePattern.MatchString("12a456"))
	assert.False(t, verificationCodePattern.MatchString(strings.Repeat("1", 100)))
}

func TestEnsureConfig_GeneratesSecretWhenUnset(t *testing.T) {
	f := newGatewayForTest()

	cfg, err := f.svc.EnsureConfig(context.Background(), "window_bot", "TOKEN", "", false)
	require.NoError(t, err)
	assert.Equal(t, "window_bot", cfg.BotName)
	assert.NotEmpty(t, cfg.WebhookSecret, "пустой секрет должен замениться сгенерированным")
}

func TestEnsureConfig_KeepsExistingSecret(t *testing.T) {
	f := newGatewayForTest()
	// фикстура уже содержит конфигурацию test_bot с секретом "secret"

	cfg, err := f.svc.EnsureConfig(context.Background(), "test_bot", "NEWTOKEN", "other", true)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.WebhookSecret)
	assert.Equal(t, "NEWTOKEN", cfg.BotToken)
	assert.True(t, cfg.UseWebhook)
}
