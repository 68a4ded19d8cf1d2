package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer server.Close()

	svc := NewServiceWithBaseURL("TOKEN", server.URL)
	err := svc.SendMessage(context.Background(), 42, "Привет")
	require.NoError(t, err)

	assert.Equal(t, "/botTOKEN/sendMessage", gotPath)
	assert.Equal(t, int64(42), gotBody.ChatID)
	assert.Equal(t, "Привет", gotBody.Text)
	assert.Equal(t, "Markdown", gotBody.ParseMode)
}

func TestSendMessage_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Telegram отвечает 200 даже при ошибке, смотрим поле ok
		w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer server.Close()

	svc := NewServiceWithBaseURL("TOKEN", server.URL)
	err := svc.SendMessage(context.Background(), 42, "Привет")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSendMessage_EmptyToken(t *testing.T) {
	svc := NewServiceWithBaseURL("", "http://127.0.0.1:1")
	err := svc.SendMessage(context.Background(), 42, "Привет")
	require.Error(t, err)
}

func TestGetUpdates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/getUpdates", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("offset"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":7,"message":{"message_id":1,"from":{"id":500,"first_name":"Иван"},"chat":{"id":500},"date":1756720000,"text":"привет"}},
			{"update_id":8}
		]}`))
	}))
	defer server.Close()

	svc := NewServiceWithBaseURL("TOKEN", server.URL)
	updates, err := svc.GetUpdates(context.Background(), 7, 100)
	require.NoError(t, err)
	require.Len(t, updates, 2)

	assert.Equal(t, int64(7), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, "привет", updates[0].Message.Text)
	assert.Equal(t, int64(500), updates[0].Message.From.ID)
	assert.Nil(t, updates[1].Message)
}

func TestSetWebhook(t *testing.T) {
	var gotURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload setWebhookRequest
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
		gotURL = payload.URL
		w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	defer server.Close()

	svc := NewServiceWithBaseURL("TOKEN", server.URL)
	err := svc.SetWebhook(context.Background(), "https://crm.example.com/telegram/webhook/secret")
	require.NoError(t, err)
	assert.Equal(t, "https://crm.example.com/telegram/webhook/secret", gotURL)
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "до\\_свидания \\*жирный\\* \\[ссылка \\`код",
		EscapeMarkdown("до_свидания *жирный* [ссылка `код"))
	assert.Equal(t, "обычный текст - без изменений", EscapeMarkdown("обычный текст - без изменений"))
}
