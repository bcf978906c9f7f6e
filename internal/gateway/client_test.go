package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akylbek/payment-system/paydock-notification/internal/config"
	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

func TestClient_Call_Created(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/charges" || r.URL.RawQuery != "capture=false" {
			t.Errorf("unexpected url %s", r.URL.String())
		}
		if r.Header.Get("x-user-secret-key") != "sk" {
			t.Errorf("missing secret key header")
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"reference":"R-1"`) {
			t.Errorf("unexpected body %s", body)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status":201,"resource":{"type":"charge","data":{"_id":"ch-1","status":"complete","authorization":0}}}`))
	}))
	defer srv.Close()

	client := NewClientWithHTTP(config.GatewayConnection{
		BaseURL:    srv.URL,
		AuthHeader: "x-user-secret-key",
		Credential: "sk",
	}, srv.Client())

	resp, err := client.Call(context.Background(), "/charges?capture=false", models.ChargeRequest{Reference: "R-1"}, http.MethodPost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusCreated {
		t.Errorf("expected 201, got %d", resp.Status)
	}
	charge := resp.Charge()
	if charge == nil || charge.ID != "ch-1" || bool(charge.Authorization) {
		t.Errorf("unexpected charge %+v", charge)
	}
}

func TestClient_Call_ErrorStatusIsData(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":400,"error":{"message":"Validation error","details":{"messages":["amount is required"]}}}`))
	}))
	defer srv.Close()

	client := NewClientWithHTTP(config.GatewayConnection{BaseURL: srv.URL, AuthHeader: "x-access-token", Credential: "ak"}, srv.Client())

	resp, err := client.Call(context.Background(), "/charges", nil, http.MethodPost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusBadRequest || resp.Error == nil || resp.Error.Message != "Validation error" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestClient_Call_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClientWithHTTP(config.GatewayConnection{BaseURL: url, AuthHeader: "x-user-secret-key"}, &http.Client{})

	_, err := client.Call(context.Background(), "/charges", nil, http.MethodPost)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}
