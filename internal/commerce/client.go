// Package commerce is a client for the hosted commerce API that owns the
// product catalog, customers, invoices and checkout sessions.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/BradenHooton/shopflow/internal/config"
	"github.com/BradenHooton/shopflow/internal/models"
	"golang.org/x/time/rate"
)

const maxErrorBody = 2048

// APIError is a non-2xx response from the commerce API
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("commerce api %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Is matches models.ErrUpstream, and models.ErrNotFound for 404 responses
func (e *APIError) Is(target error) bool {
	switch target {
	case models.ErrUpstream:
		return true
	case models.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewClient(cfg *config.CommerceConfig, logger *slog.Logger) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    fmt.Sprintf("%s/shops/%s", cfg.BaseURL, cfg.ShopID),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		logger:     logger,
	}
}

func (c *Client) ListProducts(ctx context.Context) ([]models.CommerceProduct, error) {
	return getList[models.CommerceProduct](ctx, c, "/products")
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*models.CommerceProduct, error) {
	var product models.CommerceProduct
	if err := c.do(ctx, http.MethodGet, "/products/"+strconv.FormatInt(id, 10), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return getList[models.Customer](ctx, c, "/customers")
}

// GetCustomer finds a customer by id in the customer listing.
// The commerce API has no single-customer endpoint.
func (c *Client) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	customers, err := c.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range customers {
		if customers[i].ID == id {
			return &customers[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (c *Client) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	return getList[models.Invoice](ctx, c, "/invoices")
}

func (c *Client) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := c.do(ctx, http.MethodGet, "/invoices/"+strconv.FormatInt(id, 10), nil, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (c *Client) CreateCheckout(ctx context.Context, req *models.CommerceCheckoutRequest) (*models.CommerceCheckout, error) {
	var checkout models.CommerceCheckout
	if err := c.do(ctx, http.MethodPost, "/checkout", req, &checkout); err != nil {
		return nil, err
	}
	return &checkout, nil
}

// getList fetches endpoint and accepts either a bare array or a {"data": [...]} envelope
func getList[T any](ctx context.Context, c *Client, endpoint string) ([]T, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}

func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}

	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		return items, nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode list envelope: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil, fmt.Errorf("%w: list response has no data field", models.ErrUpstream)
	}
	return decodeList[T](envelope.Data)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("commerce api rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("commerce api request failed",
			slog.String("method", method),
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %s %s: %v", models.ErrUpstream, method, endpoint, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("commerce api request",
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Body: string(respBody)}
		c.logger.Warn("commerce api returned error status",
			slog.String("method", method),
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
		)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: failed to decode %s response: %v", models.ErrUpstream, endpoint, err)
	}
	return nil
}
