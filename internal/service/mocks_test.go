package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/paydock-notification/internal/commerce"
	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

type paymentUpdate struct {
	id      string
	version int64
	actions []models.UpdateAction
}

type orderTransition struct {
	paymentState models.CommercePaymentState
	orderState   models.CommerceOrderState
}

// MockAggregates is an in-memory aggregate gateway with version checks.
type MockAggregates struct {
	mu           sync.Mutex
	payments     map[string]*models.PaymentAggregate
	order        *models.Order
	updates      []paymentUpdate
	transitions  []orderTransition
	interactions []models.AuditLogEntry

	FetchErr     error
	UpdateErrs   []error
	TransitionFn func() error
	AppendErr    error
}

func NewMockAggregates(payments ...*models.PaymentAggregate) *MockAggregates {
	m := &MockAggregates{
		payments: make(map[string]*models.PaymentAggregate),
		order:    &models.Order{ID: "order-1", Version: 1},
	}
	for _, p := range payments {
		m.payments[p.ID] = p
	}
	return m
}

func (m *MockAggregates) FetchPayment(ctx context.Context, id string) (*models.PaymentAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	p, ok := m.payments[id]
	if !ok {
		return nil, fmt.Errorf("payments %s: %w", id, commerce.ErrNotFound)
	}
	snapshot := *p
	return &snapshot, nil
}

func (m *MockAggregates) FetchOrder(ctx context.Context, paymentID string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order, nil
}

func (m *MockAggregates) UpdatePayment(ctx context.Context, id string, version int64, actions []models.UpdateAction) (*models.PaymentAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updates = append(m.updates, paymentUpdate{id: id, version: version, actions: actions})
	if len(m.UpdateErrs) > 0 {
		err := m.UpdateErrs[0]
		m.UpdateErrs = m.UpdateErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	p, ok := m.payments[id]
	if !ok {
		return nil, fmt.Errorf("payments %s: %w", id, commerce.ErrNotFound)
	}
	if p.Version != version {
		return nil, fmt.Errorf("payments %s: %w", id, commerce.ErrConcurrentModification)
	}

	for _, a := range actions {
		if a.Action != "setCustomField" {
			continue
		}
		switch a.Name {
		case models.FieldPaydockPaymentStatus:
			p.CurrentStatus = models.PaydockStatus(a.Value.(string))
		case models.FieldCapturedAmount:
			p.CapturedAmount = decimal.NewFromFloat(a.Value.(float64))
		case models.FieldRefundedAmount:
			p.RefundedAmount = decimal.NewFromFloat(a.Value.(float64))
		case models.FieldPaydockTransactionID:
			p.TransactionID = a.Value.(string)
		case models.FieldPaymentExtensionResponse:
			if a.Value == nil {
				p.LastExtensionResponse = nil
			}
		}
	}
	p.Version++

	snapshot := *p
	return &snapshot, nil
}

func (m *MockAggregates) TransitionOrder(ctx context.Context, paymentID string, paymentState models.CommercePaymentState, orderState models.CommerceOrderState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.TransitionFn != nil {
		if err := m.TransitionFn(); err != nil {
			return err
		}
	}
	if m.order == nil {
		return nil
	}
	m.transitions = append(m.transitions, orderTransition{paymentState, orderState})
	return nil
}

func (m *MockAggregates) AppendInteractions(ctx context.Context, paymentID string, entries []models.AuditLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.interactions = append(m.interactions, entries...)
	if p, ok := m.payments[paymentID]; ok {
		p.Version++
	}
	return nil
}

func (m *MockAggregates) Payment(id string) models.PaymentAggregate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.payments[id]
}

// MockContinuations is an in-memory fraud continuation store.
type MockContinuations struct {
	mu          sync.Mutex
	records     map[string]*models.FraudContinuation
	TakeCalls   int
	DeleteCalls int
	Err         error
}

func NewMockContinuations() *MockContinuations {
	return &MockContinuations{records: make(map[string]*models.FraudContinuation)}
}

func (m *MockContinuations) Put(ctx context.Context, reference string, record *models.FraudContinuation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.records[reference] = record
	return nil
}

func (m *MockContinuations) Get(ctx context.Context, reference string) (*models.FraudContinuation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.records[reference], nil
}

func (m *MockContinuations) Delete(ctx context.Context, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.Err != nil {
		return m.Err
	}
	delete(m.records, reference)
	return nil
}

func (m *MockContinuations) Take(ctx context.Context, reference string) (*models.FraudContinuation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TakeCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	record := m.records[reference]
	delete(m.records, reference)
	return record, nil
}

type gatewayCall struct {
	path   string
	body   any
	method string
}

// MockGateway answers gateway calls from RespondFunc.
type MockGateway struct {
	mu          sync.Mutex
	calls       []gatewayCall
	RespondFunc func(path string) (*models.GatewayResponse, error)
}

func (m *MockGateway) Call(ctx context.Context, path string, body any, method string) (*models.GatewayResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, gatewayCall{path: path, body: body, method: method})
	m.mu.Unlock()

	if m.RespondFunc == nil {
		return nil, errors.New("no gateway response configured")
	}
	return m.RespondFunc(path)
}

func (m *MockGateway) Calls() []gatewayCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]gatewayCall(nil), m.calls...)
}

// MockPublisher records published outcomes.
type MockPublisher struct {
	mu       sync.Mutex
	outcomes []*models.NotificationOutcome
	Err      error
}

func (m *MockPublisher) PublishOutcome(ctx context.Context, outcome *models.NotificationOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
	return m.Err
}

// MockJournal records journal entries.
type MockJournal struct {
	mu      sync.Mutex
	records []*models.NotificationRecord
	Err     error
}

func (m *MockJournal) Record(ctx context.Context, record *models.NotificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return m.Err
}

func (m *MockJournal) ListByPayment(ctx context.Context, paymentID string) ([]models.NotificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.NotificationRecord
	for _, r := range m.records {
		if r.PaymentID == paymentID {
			out = append(out, *r)
		}
	}
	return out, m.Err
}

type testEnv struct {
	reconciler    *Reconciler
	aggregates    *MockAggregates
	continuations *MockContinuations
	gateway       *MockGateway
	publisher     *MockPublisher
	journal       *MockJournal
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T, payments ...*models.PaymentAggregate) *testEnv {
	t.Helper()

	env := &testEnv{
		aggregates:    NewMockAggregates(payments...),
		continuations: NewMockContinuations(),
		gateway:       &MockGateway{},
		publisher:     &MockPublisher{},
		journal:       &MockJournal{},
	}
	env.reconciler = NewReconciler(Dependencies{
		Aggregates:    env.aggregates,
		Continuations: env.continuations,
		Gateway:       env.gateway,
		Publisher:     env.publisher,
		Journal:       env.journal,
		Logger:        zap.NewNop(),
	})
	env.reconciler.now = func() time.Time { return fixedNow }
	env.reconciler.newRequestID = func() string { return "req-1" }
	return env
}

func createdCharge(id, status string, authorization bool) *models.GatewayResponse {
	return &models.GatewayResponse{
		Status: 201,
		Resource: &models.GatewayResource{
			Type: "charge",
			Data: &models.ChargeData{
				ID:            id,
				Status:        status,
				Type:          "CARD",
				Authorization: models.Flag(authorization),
			},
		},
	}
}
