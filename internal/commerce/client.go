package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/akylbek/payment-system/paydock-notification/internal/config"
	"github.com/akylbek/payment-system/paydock-notification/internal/interfaces"
	"github.com/akylbek/payment-system/paydock-notification/internal/metrics"
	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

// Client talks to the commercetools HTTP API.
type Client struct {
	baseURL    string
	projectKey string
	httpClient *http.Client
}

var _ interfaces.CommerceClient = (*Client)(nil)

// NewClient creates a client authenticated with the client credentials flow.
func NewClient(ctx context.Context, cfg config.CommerceConfig) *Client {
	credentials := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     strings.TrimRight(cfg.AuthURL, "/") + "/oauth/token",
		Scopes:       []string{"manage_project:" + cfg.ProjectKey},
	}

	base := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.Timeout,
	}
	httpClient := credentials.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
	httpClient.Timeout = cfg.Timeout

	return NewClientWithHTTP(cfg.APIURL, cfg.ProjectKey, httpClient)
}

// NewClientWithHTTP creates a client that sends requests through httpClient.
func NewClientWithHTTP(apiURL, projectKey string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(apiURL, "/"),
		projectKey: projectKey,
		httpClient: httpClient,
	}
}

func (c *Client) FetchByID(ctx context.Context, collection interfaces.Collection, id string) (*interfaces.CommerceResponse, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.resourcePath(collection, url.PathEscape(id)), nil)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusOK:
		return &interfaces.CommerceResponse{Body: body}, nil
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", collection, id, ErrNotFound)
	default:
		return nil, fmt.Errorf("fetch %s %s: unexpected status %d", collection, id, status)
	}
}

func (c *Client) FetchOrderByReference(ctx context.Context, collection interfaces.Collection, reference string) (*interfaces.CommerceResponse, error) {
	path := c.resourcePath(collection, "order-number="+url.PathEscape(reference))
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		return &interfaces.CommerceResponse{Body: body}, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("fetch %s by order number %s: unexpected status %d", collection, reference, status)
	}
}

func (c *Client) Update(ctx context.Context, collection interfaces.Collection, id string, version int64, actions []models.UpdateAction) (*interfaces.CommerceResponse, error) {
	payload := struct {
		Version int64                 `json:"version"`
		Actions []models.UpdateAction `json:"actions"`
	}{Version: version, Actions: actions}

	status, body, err := c.do(ctx, http.MethodPost, c.resourcePath(collection, url.PathEscape(id)), payload)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		return &interfaces.CommerceResponse{Body: body}, nil
	case http.StatusConflict:
		metrics.CommerceConflictsTotal.WithLabelValues(string(collection)).Inc()
		return nil, fmt.Errorf("update %s %s at version %d: %w", collection, id, version, ErrConcurrentModification)
	case http.StatusNotFound:
		return nil, fmt.Errorf("update %s %s: %w", collection, id, ErrNotFound)
	default:
		return nil, fmt.Errorf("update %s %s: unexpected status %d: %s", collection, id, status, truncate(body))
	}
}

func (c *Client) resourcePath(collection interfaces.Collection, suffix string) string {
	return fmt.Sprintf("%s/%s/%s/%s", c.baseURL, c.projectKey, collection, suffix)
}

// do sends the request. Network failures and 5xx answers come back as
// *TransportError; every other status is returned to the caller.
func (c *Client) do(ctx context.Context, method, endpoint string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	op := method + " " + endpoint
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return 0, nil, &TransportError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body))}
	}
	return resp.StatusCode, body, nil
}

func truncate(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
