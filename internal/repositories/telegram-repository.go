package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"window-crm/internal/entities"
	apperrors "window-crm/pkg/errors"
	"window-crm/pkg/utils"
)

const (
	telegramUserTable  = "telegram_users"
	telegramUserFields = `id, telegram_id, username, first_name, last_name, partner_id,
		verification_code, is_verified, verified_date, chat_id, last_message_date, created_at`

	telegramMessageTable  = "telegram_messages"
	telegramMessageFields = "id, telegram_user_id, lead_id, message_id, message_date, text, direction, created_at"

	botConfigTable  = "telegram_bot_configs"
	botConfigFields = "id, bot_name, bot_token, webhook_secret, use_webhook, last_update_id, active, created_at"
)

type dbTelegramUser struct {
	ID               uint64
	TelegramID       int64
	Username         sql.NullString
	FirstName        sql.NullString
	LastName         sql.NullString
	PartnerID        uint64
	VerificationCode string
	IsVerified       bool
	VerifiedDate     sql.NullTime
	ChatID           int64
	LastMessageDate  sql.NullTime
	CreatedAt        time.Time
}

func (db *dbTelegramUser) toEntity() *entities.TelegramUser {
	return &entities.TelegramUser{
		ID:               db.ID,
		TelegramID:       db.TelegramID,
		Username:         utils.NullStringToPtr(db.Username),
		FirstName:        utils.NullStringToPtr(db.FirstName),
		LastName:         utils.NullStringToPtr(db.LastName),
		PartnerID:        db.PartnerID,
		VerificationCode: db.VerificationCode,
		IsVerified:       db.IsVerified,
		VerifiedDate:     utils.NullTimeToPtr(db.VerifiedDate),
		ChatID:           db.ChatID,
		LastMessageDate:  utils.NullTimeToPtr(db.LastMessageDate),
		CreatedAt:        db.CreatedAt,
	}
}

func scanTelegramUser(row pgx.Row) (*entities.TelegramUser, error) {
	var db dbTelegramUser
	err := row.Scan(&db.ID, &db.TelegramID, &db.Username, &db.FirstName, &db.LastName,
		&db.PartnerID, &db.VerificationCode, &db.IsVerified, &db.VerifiedDate,
		&db.ChatID, &db.LastMessageDate, &db.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return db.toEntity(), nil
}

type TelegramRepositoryInterface interface {
	FindUserByTelegramID(ctx context.Context, telegramID int64) (*entities.TelegramUser, error)
	FindUserByID(ctx context.Context, id uint64) (*entities.TelegramUser, error)
	CreateUser(ctx context.Context, u entities.TelegramUser) (uint64, error)
	UpdateChatID(ctx context.Context, id uint64, chatID int64) error
	MarkVerified(ctx context.Context, id uint64, verifiedDate time.Time) error
	TouchLastMessage(ctx context.Context, id uint64, at time.Time) error
	LogMessage(ctx context.Context, m entities.TelegramMessage) error
	GetMessages(ctx context.Context, telegramUserID uint64, limit, offset uint64) ([]entities.TelegramMessage, uint64, error)

	FindActiveConfig(ctx context.Context) (*entities.TelegramBotConfig, error)
	FindConfigBySecret(ctx context.Context, secret string) (*entities.TelegramBotConfig, error)
	EnsureConfig(ctx context.Context, c entities.TelegramBotConfig) (*entities.TelegramBotConfig, error)
	UpdateLastUpdateID(ctx context.Context, id uint64, lastUpdateID int64) error
}

type telegramRepository struct{ storage *pgxpool.Pool }

func NewTelegramRepository(storage *pgxpool.Pool) TelegramRepositoryInterface {
	return &telegramRepository{storage: storage}
}

func (r *telegramRepository) FindUserByTelegramID(ctx context.Context, telegramID int64) (*entities.TelegramUser, error) {
	return scanTelegramUser(r.storage.QueryRow(ctx,
		"SELECT "+telegramUserFields+" FROM "+telegramUserTable+" WHERE telegram_id = $1", telegramID))
}

func (r *telegramRepository) FindUserByID(ctx context.Context, id uint64) (*entities.TelegramUser, error) {
	return scanTelegramUser(r.storage.QueryRow(ctx,
		"SELECT "+telegramUserFields+" FROM "+telegramUserTable+" WHERE id = $1", id))
}

func (r *telegramRepository) CreateUser(ctx context.Context, u entities.TelegramUser) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO `+telegramUserTable+`
			(telegram_id, username, first_name, last_name, partner_id, verification_code, chat_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			chat_id = EXCLUDED.chat_id
		RETURNING id`,
		u.TelegramID, utils.PtrToNullString(u.Username), utils.PtrToNullString(u.FirstName),
		utils.PtrToNullString(u.LastName), u.PartnerID, u.VerificationCode, u.ChatID,
	).Scan(&id)
	return id, err
}

func (r *telegramRepository) UpdateChatID(ctx context.Context, id uint64, chatID int64) error {
	_, err := r.storage.Exec(ctx,
		"UPDATE "+telegramUserTable+" SET chat_id = $2 WHERE id = $1", id, chatID)
	return err
}

func (r *telegramRepository) MarkVerified(ctx context.Context, id uint64, verifiedDate time.Time) error {
	tag, err := r.storage.Exec(ctx,
		"UPDATE "+telegramUserTable+" SET is_verified = true, verified_date = $2 WHERE id = $1",
		id, verifiedDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *telegramRepository) TouchLastMessage(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.storage.Exec(ctx,
		"UPDATE "+telegramUserTable+" SET last_message_date = $2 WHERE id = $1", id, at)
	return err
}

func (r *telegramRepository) LogMessage(ctx context.Context, m entities.TelegramMessage) error {
	_, err := r.storage.Exec(ctx, `
		INSERT INTO `+telegramMessageTable+`
			(telegram_user_id, lead_id, message_id, message_date, text, direction)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.TelegramUserID, utils.PtrToNullInt64(m.LeadID), m.MessageID,
		m.MessageDate, m.Text, m.Direction)
	return err
}

func (r *telegramRepository) GetMessages(ctx context.Context, telegramUserID uint64, limit, offset uint64) ([]entities.TelegramMessage, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx,
		"SELECT COUNT(*) FROM "+telegramMessageTable+" WHERE telegram_user_id = $1",
		telegramUserID).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.TelegramMessage{}, 0, nil
	}

	rows, err := r.storage.Query(ctx, `
		SELECT `+telegramMessageFields+` FROM `+telegramMessageTable+`
		WHERE telegram_user_id = $1
		ORDER BY message_date DESC, id DESC
		LIMIT $2 OFFSET $3`,
		telegramUserID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	messages := make([]entities.TelegramMessage, 0)
	for rows.Next() {
		var m entities.TelegramMessage
		var leadID, messageID sql.NullInt64
		if err := rows.Scan(&m.ID, &m.TelegramUserID, &leadID, &messageID, &m.MessageDate,
			&m.Text, &m.Direction, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		m.LeadID = utils.NullInt64ToPtr(leadID)
		if messageID.Valid {
			m.MessageID = &messageID.Int64
		}
		messages = append(messages, m)
	}
	return messages, total, rows.Err()
}

func scanBotConfig(row pgx.Row) (*entities.TelegramBotConfig, error) {
	var c entities.TelegramBotConfig
	err := row.Scan(&c.ID, &c.BotName, &c.BotToken, &c.WebhookSecret, &c.UseWebhook,
		&c.LastUpdateID, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *telegramRepository) FindActiveConfig(ctx context.Context) (*entities.TelegramBotConfig, error) {
	return scanBotConfig(r.storage.QueryRow(ctx,
		"SELECT "+botConfigFields+" FROM "+botConfigTable+" WHERE active = true ORDER BY id LIMIT 1"))
}

// FindConfigBySecret проверяет секрет из URL webhook.
func (r *telegramRepository) FindConfigBySecret(ctx context.Context, secret string) (*entities.TelegramBotConfig, error) {
	return scanBotConfig(r.storage.QueryRow(ctx,
		"SELECT "+botConfigFields+" FROM "+botConfigTable+" WHERE webhook_secret = $1 AND active = true", secret))
}

// EnsureConfig заводит конфигурацию бота по имени или обновляет токен и режим
// доставки существующей. Секрет webhook и курсор обновлений при повторном
// запуске не трогаются: URL webhook остается стабильным, обработка
// продолжается с места остановки.
func (r *telegramRepository) EnsureConfig(ctx context.Context, c entities.TelegramBotConfig) (*entities.TelegramBotConfig, error) {
	return scanBotConfig(r.storage.QueryRow(ctx,
		`INSERT INTO `+botConfigTable+` (bot_name, bot_token, webhook_secret, use_webhook, active)
		 VALUES ($1, $2, $3, $4, true)
		 ON CONFLICT (bot_name) DO UPDATE SET
		     bot_token = EXCLUDED.bot_token,
		     use_webhook = EXCLUDED.use_webhook,
		     active = true
		 RETURNING `+botConfigFields,
		c.BotName, c.BotToken, c.WebhookSecret, c.UseWebhook))
}

// UpdateLastUpdateID двигает курсор long polling только вперед.
func (r *telegramRepository) UpdateLastUpdateID(ctx context.Context, id uint64, lastUpdateID int64) error {
	_, err := r.storage.Exec(ctx,
		"UPDATE "+botConfigTable+" SET last_update_id = $2 WHERE id = $1 AND last_update_id < $2",
		id, lastUpdateID)
	return err
}
