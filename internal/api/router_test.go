package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akylbek/payment-system/paydock-notification/internal/models"
	"github.com/akylbek/payment-system/paydock-notification/internal/service"
)

type countingProcessor struct {
	calls int
}

func (p *countingProcessor) Process(ctx context.Context, event *models.NotificationEvent) service.Result {
	p.calls++
	return service.Result{Outcome: service.OutcomeOK, Status: service.StatusSuccess}
}

type emptyJournal struct{}

func (emptyJournal) Record(context.Context, *models.NotificationRecord) error { return nil }

func (emptyJournal) ListByPayment(context.Context, string) ([]models.NotificationRecord, error) {
	return nil, nil
}

func TestRouter_Routes(t *testing.T) {
	processor := &countingProcessor{}
	router := NewRouter(RouterDeps{Processor: processor, Journal: emptyJournal{}})

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{method: http.MethodGet, path: "/health", want: http.StatusOK},
		{method: http.MethodGet, path: "/metrics", want: http.StatusOK},
		{method: http.MethodGet, path: "/notification", want: http.StatusOK},
		{method: http.MethodPost, path: "/notification", body: `{"event":"transaction_success","data":{"reference":"pay-1"}}`, want: http.StatusOK},
		{method: http.MethodGet, path: "/payments/pay-1/notifications", want: http.StatusOK},
		{method: http.MethodGet, path: "/unknown", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		router.ServeHTTP(w, req)

		if w.Code != tt.want {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, tt.want, w.Code)
		}
	}

	if processor.calls != 1 {
		t.Errorf("expected 1 processed notification, got %d", processor.calls)
	}
}
