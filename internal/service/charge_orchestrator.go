package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/paydock-notification/internal/interfaces"
	"github.com/akylbek/payment-system/paydock-notification/internal/metrics"
	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

// ChargeAction selects the charge sub-resource to call.
type ChargeAction string

const (
	ChargeActionCreate          ChargeAction = ""
	ChargeActionStandaloneFraud ChargeAction = "standalone-fraud"
	ChargeActionFraudAttach     ChargeAction = "standalone-fraud-attach"
)

// ChargeOptions tune a CreateCharge call. A nil DirectCharge leaves the
// gateway's capture default in place.
type ChargeOptions struct {
	DirectCharge *bool
	Action       ChargeAction
	ChargeID     string
}

// ChargeResult is the normalized answer of a charge call. Gateway rejections
// and transport failures are both reported with Success false.
type ChargeResult struct {
	Success  bool
	ChargeID string
	Message  string
	Response *models.GatewayResponse
}

// ChargeOrchestrator issues charge calls and never returns an error.
type ChargeOrchestrator struct {
	caller interfaces.GatewayCaller
	logger *zap.Logger
}

func NewChargeOrchestrator(caller interfaces.GatewayCaller, logger *zap.Logger) *ChargeOrchestrator {
	return &ChargeOrchestrator{caller: caller, logger: logger}
}

func chargePath(opts ChargeOptions) string {
	path := "/charges"
	switch opts.Action {
	case ChargeActionStandaloneFraud:
		path += "/fraud"
	case ChargeActionFraudAttach:
		path += "/" + opts.ChargeID + "/fraud/attach"
	}
	if opts.DirectCharge != nil && !*opts.DirectCharge {
		path += "?capture=false"
	}
	return path
}

func (o *ChargeOrchestrator) CreateCharge(ctx context.Context, body any, opts ChargeOptions) *ChargeResult {
	path := chargePath(opts)
	action := string(opts.Action)
	if action == "" {
		action = "charge"
	}

	resp, err := o.caller.Call(ctx, path, body, http.MethodPost)
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(action, "transport_error").Inc()
		o.logger.Error("Gateway call failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return &ChargeResult{ChargeID: "0", Message: err.Error()}
	}

	chargeID := extractChargeID(resp)
	if resp.Status == http.StatusCreated {
		metrics.GatewayRequestsTotal.WithLabelValues(action, "success").Inc()
		return &ChargeResult{Success: true, ChargeID: chargeID, Response: resp}
	}

	metrics.GatewayRequestsTotal.WithLabelValues(action, "rejected").Inc()
	message := gatewayErrorMessage(resp.Error)
	o.logger.Warn("Gateway rejected charge call",
		zap.String("path", path),
		zap.Int("status", resp.Status),
		zap.String("message", message),
	)
	return &ChargeResult{ChargeID: chargeID, Message: message, Response: resp}
}

func extractChargeID(resp *models.GatewayResponse) string {
	charge := resp.Charge()
	switch {
	case charge == nil:
		return "0"
	case charge.ID != "":
		return charge.ID
	case charge.AltID != "":
		return charge.AltID
	default:
		return "0"
	}
}

// gatewayErrorMessage flattens a gateway error block. A non-empty
// details.messages list wins outright; otherwise detail values are appended
// to the top-level message.
func gatewayErrorMessage(gwErr *models.GatewayError) string {
	if gwErr == nil {
		return ""
	}

	result := " " + gwErr.Message
	details, err := orderedDetails(gwErr.Details)
	if err != nil || len(details) == 0 {
		return strings.TrimSpace(result)
	}

	for _, d := range details {
		if d.key != "messages" {
			continue
		}
		var messages []json.RawMessage
		if json.Unmarshal(d.value, &messages) == nil && len(messages) > 0 {
			return detailString(messages[0])
		}
	}

	var first []json.RawMessage
	if json.Unmarshal(details[0].value, &first) == nil {
		result += " " + detailString(details[0].value)
	} else {
		values := make([]string, 0, len(details))
		for _, d := range details {
			values = append(values, detailString(d.value))
		}
		result += " " + strings.Join(values, ",")
	}
	return strings.TrimSpace(result)
}

type detail struct {
	key   string
	value json.RawMessage
}

var errDetailsNotObject = errors.New("error details are not an object")

// orderedDetails decodes a JSON object keeping its key order.
func orderedDetails(raw json.RawMessage) ([]detail, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errDetailsNotObject
	}

	var details []detail
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		details = append(details, detail{key: key, value: value})
	}
	return details, nil
}

// detailString renders a detail value: strings unquoted, arrays joined with
// commas, anything else as its JSON text.
func detailString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	var items []json.RawMessage
	if json.Unmarshal(raw, &items) == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, detailString(item))
		}
		return strings.Join(parts, ",")
	}

	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}
