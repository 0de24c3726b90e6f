package analyticsservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// asyncSendTimeout ограничивает время фоновой отправки события
const asyncSendTimeout = 5 * time.Second

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с AnalyticsService
// Все отправки best-effort: отказ аналитики не влияет на операции движка
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента AnalyticsService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// RecordTransaction отправляет событие синхронно
func (c *Client) RecordTransaction(ctx context.Context, event Transaction) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("analyticsservice client: failed to marshal event: %w", err)
	}

	url := fmt.Sprintf("%s/internal/transactions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("analyticsservice client: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("analyticsservice client: failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("analyticsservice client: unexpected status code %d", resp.StatusCode)
	}

	return nil
}

// RecordTransactionAsync отправляет событие в фоне (fire-and-forget)
// Ошибки только логируются и никогда не блокируют вызывающего
func (c *Client) RecordTransactionAsync(event Transaction) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncSendTimeout)
		defer cancel()

		if err := c.RecordTransaction(ctx, event); err != nil {
			c.log.Warn("RecordTransactionAsync: failed to record %s event for account=%d: %v",
				event.MetricType, event.AccountID, err)
		}
	}()
}
