package catalog

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

const defaultReserveFailure = "An error has occurred while reserving products"

// HTTPClient reserves stock in the products catalog service.
type HTTPClient struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

type reserveRequest struct {
	ProductsWithQuantity []model.ProductQuantity `json:"productsWithQuantity"`
}

type productResponse struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Pictures    []string  `json:"pictures"`
	Category    struct {
		Type string `json:"type"`
	} `json:"category"`
	Quantity int `json:"quantity"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// NewHTTPClient creates catalog client bound to an absolute base URL.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("catalog url must be absolute")
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

// Reserve holds the requested quantities and returns the priced snapshots.
func (c *HTTPClient) Reserve(ctx context.Context, items []model.ProductQuantity) ([]model.Product, error) {
	payload, err := json.Marshal(reserveRequest{ProductsWithQuantity: items})
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.ErrReserveProducts, defaultReserveFailure, err)
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/private/stock/reserve")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.ErrReserveProducts, defaultReserveFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "catalog request failed", slog.String("error", err.Error()))
		return nil, domainErrors.Wrap(domainErrors.ErrReserveProducts, defaultReserveFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.ErrReserveProducts, defaultReserveFailure, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.ErrorContext(ctx, "catalog reservation rejected", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, domainErrors.New(domainErrors.ErrReserveProducts, upstreamMessage(body))
	}

	var data []productResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, domainErrors.Wrap(domainErrors.ErrReserveProducts, defaultReserveFailure, err)
	}

	products := make([]model.Product, 0, len(data))
	for _, item := range data {
		product := model.Product{
			ID:          item.ID,
			CreatedAt:   item.CreatedAt,
			UpdatedAt:   item.UpdatedAt,
			Name:        item.Name,
			Price:       item.Price,
			Description: item.Description,
			Pictures:    item.Pictures,
			Category:    model.Category(item.Category.Type),
			Quantity:    item.Quantity,
		}
		if err := product.Validate(); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

func upstreamMessage(body []byte) string {
	var data errorResponse
	if err := json.Unmarshal(body, &data); err != nil || data.Message == "" {
		return defaultReserveFailure
	}
	return data.Message
}
