package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/akylbek/payment-system/paydock-notification/internal/config"
	"github.com/akylbek/payment-system/paydock-notification/internal/interfaces"
	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

const apiVersionPrefix = "/v1"

// TransportError wraps a failure to reach the gateway or read its answer.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client calls the Paydock REST API.
type Client struct {
	baseURL    string
	authHeader string
	credential string
	httpClient *http.Client
}

var _ interfaces.GatewayCaller = (*Client)(nil)

func NewClient(cfg config.GatewayConfig) *Client {
	return NewClientWithHTTP(cfg.Connection(), &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.Timeout,
	})
}

func NewClientWithHTTP(conn config.GatewayConnection, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(conn.BaseURL, "/"),
		authHeader: conn.AuthHeader,
		credential: conn.Credential,
		httpClient: httpClient,
	}
}

// Call sends body to path under the versioned API root. Any HTTP answer,
// including errors, is returned as a GatewayResponse whose Status is the
// HTTP status code.
func (c *Client) Call(ctx context.Context, path string, body any, method string) (*models.GatewayResponse, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode gateway request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiVersionPrefix+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.authHeader, c.credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}

	result := &models.GatewayResponse{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			result.Error = &models.GatewayError{Message: fmt.Sprintf("unreadable gateway response: %v", err)}
		}
	}
	result.Status = resp.StatusCode
	return result, nil
}
