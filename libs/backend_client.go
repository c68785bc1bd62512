package libs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pcb-shop/models"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrUpstream     = errors.New("upstream error")
)

// APIError is a non-2xx answer from the storefront API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storefront api: status %d", e.Status)
	}
	return fmt.Sprintf("storefront api: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status >= http.StatusInternalServerError:
		return ErrUpstream
	}
	return nil
}

type tokenKey struct{}

// WithBearerToken attaches the caller's access token; the client forwards it on every call.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func bearerToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// BackendClient talks to the storefront REST API.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	return &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *BackendClient) CalculateFee(ctx context.Context, req models.ShippingFeeRequest) (*models.ShippingFeeResponse, error) {
	var resp models.ShippingFeeResponse
	if err := c.do(ctx, http.MethodPost, "/ghtk/calculate-fee", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *BackendClient) ListShippingAddresses(ctx context.Context, userID string) ([]models.ShippingAddress, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/shipping-addresses/user/"+url.PathEscape(userID), nil, &raw); err != nil {
		return nil, err
	}
	addresses := []models.ShippingAddress{}
	if err := decodeList(raw, &addresses); err != nil {
		return nil, fmt.Errorf("decode shipping addresses: %w", err)
	}
	return addresses, nil
}

func (c *BackendClient) SetDefaultShippingAddress(ctx context.Context, userID, addressID string) error {
	path := fmt.Sprintf("/shipping-addresses/set-default/%s/%s", url.PathEscape(userID), url.PathEscape(addressID))
	return c.do(ctx, http.MethodPut, path, nil, nil)
}

func (c *BackendClient) ListPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/payment-methods", nil, &raw); err != nil {
		return nil, err
	}
	methods := []models.PaymentMethod{}
	if err := decodeList(raw, &methods); err != nil {
		return nil, fmt.Errorf("decode payment methods: %w", err)
	}
	return methods, nil
}

func (c *BackendClient) CreateOrder(ctx context.Context, order models.OrderRequest) (*models.OrderResult, error) {
	var env dataEnvelope
	if err := c.do(ctx, http.MethodPost, "/orders", order, &env); err != nil {
		return nil, err
	}
	var result models.OrderResult
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("create order: empty response")
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &result, nil
}

func (c *BackendClient) AddCartItem(ctx context.Context, item models.CartItem) error {
	body := map[string]interface{}{
		"productId":  item.ProductID,
		"variantId":  item.VariantID,
		"quantity":   item.Quantity,
		"priceAtAdd": item.PriceAtAdd,
	}
	return c.do(ctx, http.MethodPost, "/cart/items", body, nil)
}

func (c *BackendClient) UpdateCartItem(ctx context.Context, itemID string, quantity int) error {
	body := map[string]int{"quantity": quantity}
	return c.do(ctx, http.MethodPut, "/cart/items/"+url.PathEscape(itemID), body, nil)
}

func (c *BackendClient) RemoveCartItem(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/cart/items/"+url.PathEscape(itemID), nil, nil)
}

func (c *BackendClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := bearerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeList accepts either a bare JSON array or a {"data": [...]} envelope.
func decodeList(raw json.RawMessage, out interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '{' {
		var env dataEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return err
		}
		trimmed = bytes.TrimSpace(env.Data)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			return nil
		}
	}
	return json.Unmarshal(trimmed, out)
}

func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		return body.Error
	}
	return strings.TrimSpace(string(data))
}
