package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	domainErrors "github.com/polkiloo/orders/internal/domain/errors"
	"github.com/polkiloo/orders/internal/domain/model"
)

const defaultCreateFailure = "An error has occurred while creating payment"

// HTTPClient issues charges through the payments service.
type HTTPClient struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

type createRequest struct {
	OrderID string  `json:"orderId"`
	Price   float64 `json:"price"`
}

// response mirrors JSON payload from payments service.
type response struct {
	ID          int64   `json:"id"`
	OrderID     string  `json:"orderId"`
	Price       float64 `json:"price"`
	PixQRCode   string  `json:"pixQrCode"`
	PixQRCode64 string  `json:"pixQrCode64"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// NewHTTPClient creates payments client bound to an absolute base URL.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse payments url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("payments url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// CreatePayment requests a charge of price for the order.
func (c *HTTPClient) CreatePayment(ctx context.Context, orderID string, price float64) (*model.Payment, error) {
	payload, err := json.Marshal(createRequest{OrderID: orderID, Price: price})
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.ErrCreatePayment, defaultCreateFailure, err)
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/private/payment")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.ErrCreatePayment, defaultCreateFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "payments request failed", slog.String("order_id", orderID), slog.String("error", err.Error()))
		return nil, domainErrors.Wrap(domainErrors.ErrCreatePayment, defaultCreateFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.ErrCreatePayment, defaultCreateFailure, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.ErrorContext(ctx, "payment creation rejected",
			slog.String("order_id", orderID),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return nil, domainErrors.New(domainErrors.ErrCreatePayment, upstreamMessage(body))
	}

	var data response
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, domainErrors.Wrap(domainErrors.ErrCreatePayment, defaultCreateFailure, err)
	}
	return &model.Payment{
		ID:              data.ID,
		OrderID:         data.OrderID,
		Price:           data.Price,
		PixQRCode:       data.PixQRCode,
		PixQRCodeBase64: data.PixQRCode64,
	}, nil
}

func upstreamMessage(body []byte) string {
	var data errorResponse
	if err := json.Unmarshal(body, &data); err != nil || data.Message == "" {
		return defaultCreateFailure
	}
	return data.Message
}
