// Файл: pkg/telegram/service.go
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ServiceInterface - клиент Telegram Bot API. Все вызовы идут с ограниченным
// таймаутом и без автоматических повторов.
type ServiceInterface interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMessageEx(ctx context.Context, chatID int64, text string, options ...MessageOption) error
	GetUpdates(ctx context.Context, offset int64, limit int) ([]Update, error)
	SetWebhook(ctx context.Context, webhookURL string) error
	DeleteWebhook(ctx context.Context) error
}

type Service struct {
	botToken   string
	apiBaseURL string
	httpClient *http.Client
}

func NewService(botToken string) ServiceInterface {
	return &Service{
		botToken:   botToken,
		apiBaseURL: "https://api.telegram.org",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewServiceWithBaseURL нужен для тестов: позволяет направить клиента на заглушку.
func NewServiceWithBaseURL(botToken, baseURL string) ServiceInterface {
	return &Service{
		botToken:   botToken,
		apiBaseURL: baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// --- ТИПЫ ОБНОВЛЕНИЙ (входящий формат Bot API) ---
// Один и тот же тип Update используется и webhook-контроллером, и поллером,
// поэтому оба пути подачи дают идентичные побочные эффекты.

type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	From      *Peer  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
}

type Peer struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *Peer    `json:"from,omitempty"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// --- СТРУКТУРЫ ЗАПРОСОВ ---

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type setWebhookRequest struct {
	URL string `json:"url"`
}

type MessageOption func(*sendMessageRequest)

func WithMarkdown() MessageOption {
	return func(req *sendMessageRequest) {
		req.ParseMode = "Markdown"
	}
}

func WithHTML() MessageOption {
	return func(req *sendMessageRequest) {
		req.ParseMode = "HTML"
	}
}

// SendMessage отправляет сообщение в режиме Markdown.
func (s *Service) SendMessage(ctx context.Context, chatID int64, text string) error {
	return s.SendMessageEx(ctx, chatID, text, WithMarkdown())
}

func (s *Service) SendMessageEx(ctx context.Context, chatID int64, text string, options ...MessageOption) error {
	reqPayload := &sendMessageRequest{
		ChatID: chatID,
		Text:   text,
	}
	for _, opt := range options {
		opt(reqPayload)
	}

	_, err := s.sendRequest(ctx, "sendMessage", reqPayload)
	return err
}

// GetUpdates забирает обновления начиная с offset (long polling).
func (s *Service) GetUpdates(ctx context.Context, offset int64, limit int) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	params.Set("allowed_updates", `["message","callback_query"]`)

	apiURL := fmt.Sprintf("%s/bot%s/getUpdates?%s", s.apiBaseURL, s.botToken, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса getUpdates: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	raw, err := decodeResponse(body, "getUpdates")
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("ошибка декодирования списка обновлений: %w", err)
	}
	return updates, nil
}

func (s *Service) SetWebhook(ctx context.Context, webhookURL string) error {
	_, err := s.sendRequest(ctx, "setWebhook", setWebhookRequest{URL: webhookURL})
	return err
}

func (s *Service) DeleteWebhook(ctx context.Context) error {
	_, err := s.sendRequest(ctx, "deleteWebhook", struct{}{})
	return err
}

// --- ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ ---

func (s *Service) sendRequest(ctx context.Context, methodName string, payload interface{}) (json.RawMessage, error) {
	if s.botToken == "" {
		return nil, fmt.Errorf("токен Telegram-бота не установлен")
	}

	apiURL := fmt.Sprintf("%s/bot%s/%s", s.apiBaseURL, s.botToken, methodName)

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка отправки запроса в Telegram: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return decodeResponse(body, methodName)
}

func decodeResponse(body []byte, methodName string) (json.RawMessage, error) {
	// Telegram возвращает 200 OK даже при ошибках, смотрим поле ok
	var telegramResp struct {
		OK          bool            `json:"ok"`
		Description string          `json:"description,omitempty"`
		ErrorCode   int             `json:"error_code,omitempty"`
		Result      json.RawMessage `json:"result,omitempty"`
	}

	if err := json.Unmarshal(body, &telegramResp); err != nil {
		return nil, fmt.Errorf("ошибка декодирования ответа Telegram API: %w", err)
	}

	if !telegramResp.OK {
		return nil, fmt.Errorf("telegram API ошибка (%s): код %d, описание: %s",
			methodName, telegramResp.ErrorCode, telegramResp.Description)
	}

	return telegramResp.Result, nil
}

// EscapeMarkdown экранирует спецсимволы Markdown в пользовательском тексте.
func EscapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "`", "\\`",
	)
	return replacer.Replace(text)
}
