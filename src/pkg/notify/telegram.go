package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/retry"

	log "github.com/sirupsen/logrus"
)

var logger *log.Entry = log.New().WithFields(log.Fields{
	"package": "notify",
})

const (
	TELEGRAM_API_BASE_URL = "https://api.telegram.org"

	sendTimeout = 10 * time.Second
)

// Sender delivers a notification to a resolved target.
type Sender interface {
	Send(ctx context.Context, target models.NotificationTarget, text string, silent bool) error
}

// TelegramSender posts messages through the Telegram Bot HTTP API with the
// standard bounded-retry policy for external calls.
type TelegramSender struct {
	httpClient *http.Client
	baseURL    string
}

var _ Sender = (*TelegramSender)(nil)

func NewTelegramSender() *TelegramSender {
	return &TelegramSender{
		httpClient: &http.Client{Timeout: sendTimeout},
		baseURL:    TELEGRAM_API_BASE_URL,
	}
}

type sendMessageRequest struct {
	ChatID              string `json:"chat_id"`
	MessageThreadID     string `json:"message_thread_id,omitempty"`
	Text                string `json:"text"`
	ParseMode           string `json:"parse_mode,omitempty"`
	DisableNotification bool   `json:"disable_notification,omitempty"`
}

// Send posts text to the target chat. An unusable target (missing token or
// chat id) is skipped with a warning, not attempted with empty credentials
// and not treated as an error.
func (s *TelegramSender) Send(ctx context.Context, target models.NotificationTarget, text string, silent bool) error {
	if !target.Usable() {
		logger.Warn("Notification target incomplete (missing bot token or chat id), skipping delivery")
		return nil
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:              target.ChatID,
		MessageThreadID:     target.ThreadID,
		Text:                text,
		DisableNotification: silent,
	})
	if err != nil {
		return fmt.Errorf("failed to encode telegram request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, target.BotToken)
	return retry.Do(ctx, retry.DEFAULT_MAX_ATTEMPTS, retry.DEFAULT_INITIAL_DELAY, func() error {
		return s.post(ctx, url, body)
	})
}

func (s *TelegramSender) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("telegram API returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
