package entities

import "time"

// Направления сообщений
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// TelegramUser - внешняя идентичность клиента в Telegram.
// telegram_id уникален на уровне БД.
type TelegramUser struct {
	ID               uint64     `json:"id"`
	TelegramID       int64      `json:"telegram_id"`
	Username         *string    `json:"username"`
	FirstName        *string    `json:"first_name"`
	LastName         *string    `json:"last_name"`
	PartnerID        uint64     `json:"partner_id"`
	VerificationCode string     `json:"verification_code"`
	IsVerified       bool       `json:"is_verified"`
	VerifiedDate     *time.Time `json:"verified_date"`
	ChatID           int64      `json:"chat_id"`
	LastMessageDate  *time.Time `json:"last_message_date"`
	CreatedAt        time.Time  `json:"created_at"`
}

// DisplayName собирает отображаемое имя из доступных полей.
func (u TelegramUser) DisplayName() string {
	name := ""
	if u.FirstName != nil {
		name = *u.FirstName
	}
	if u.LastName != nil {
		if name != "" {
			name += " "
		}
		name += *u.LastName
	}
	if name == "" && u.Username != nil {
		name = "@" + *u.Username
	}
	return name
}

// TelegramMessage - неизменяемая строка истории переписки.
type TelegramMessage struct {
	ID             uint64    `json:"id"`
	TelegramUserID uint64    `json:"telegram_user_id"`
	LeadID         *uint64   `json:"lead_id"`
	MessageID      *int64    `json:"message_id"`
	MessageDate    time.Time `json:"message_date"`
	Text           string    `json:"text"`
	Direction      string    `json:"direction"`
	CreatedAt      time.Time `json:"created_at"`
}

// TelegramBotConfig - конфигурация бота: токен, секрет webhook и курсор
// для long polling. Курсор сохраняется после полной обработки пачки.
type TelegramBotConfig struct {
	ID            uint64    `json:"id"`
	BotName       string    `json:"bot_name"`
	BotToken      string    `json:"bot_token"`
	WebhookSecret string    `json:"webhook_secret"`
	UseWebhook    bool      `json:"use_webhook"`
	LastUpdateID  int64     `json:"last_update_id"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}
