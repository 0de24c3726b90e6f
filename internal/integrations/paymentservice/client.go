package paymentservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с PaymentService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента PaymentService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// EstablishEscrow создает эскроу под бронирование и возвращает ссылку на него
// Источник оставляет эскроу нереализованным, поэтому недоступность сервиса
// не фатальна: вызывающий оставляет paymentReference пустым
func (c *Client) EstablishEscrow(ctx context.Context, bookingID int64, priceMin, priceMax uint64) (string, error) {
	reqBody := EstablishEscrowRequest{
		BookingID: bookingID,
		PriceMin:  priceMin,
		PriceMax:  priceMax,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/escrows", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: EstablishEscrow booking_id=%d: %v", ErrServiceUnavailable, bookingID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}

	var escrow EscrowResponse
	if err := json.NewDecoder(resp.Body).Decode(&escrow); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	c.log.Info("EstablishEscrow: escrow created for booking_id=%d, reference=%s", bookingID, escrow.PaymentReference)
	return escrow.PaymentReference, nil
}

// ReleaseFunds выпускает средства эскроу провайдеру при завершении бронирования
func (c *Client) ReleaseFunds(ctx context.Context, paymentReference string) error {
	url := fmt.Sprintf("%s/internal/escrows/%s/release", c.baseURL, paymentReference)
	return c.post(ctx, url, "ReleaseFunds", paymentReference)
}

// Refund возвращает средства эскроу клиенту при отмене бронирования
func (c *Client) Refund(ctx context.Context, paymentReference string) error {
	url := fmt.Sprintf("%s/internal/escrows/%s/refund", c.baseURL, paymentReference)
	return c.post(ctx, url, "Refund", paymentReference)
}

func (c *Client) post(ctx context.Context, url, op, paymentReference string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("%s: payment service unavailable, reference=%s: %v", op, paymentReference, err)
		return fmt.Errorf("%w: %s reference=%s: %v", ErrServiceUnavailable, op, paymentReference, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		c.log.Info("%s: acknowledged, reference=%s", op, paymentReference)
		return nil
	case http.StatusNotFound:
		return ErrEscrowNotFound
	default:
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}
}
