package service

import "github.com/akylbek/payment-system/paydock-notification/internal/models"

// Outcome tags how a flow ended.
type Outcome int

const (
	// OutcomeOK means the notification was applied or safely ignored.
	OutcomeOK Outcome = iota
	// OutcomeBusinessFailure is terminal: redelivery would not change it.
	OutcomeBusinessFailure
	// OutcomeTransportFault means a collaborator could not be reached or
	// rejected a stale write; the notification should be redelivered.
	OutcomeTransportFault
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeBusinessFailure:
		return "business_failure"
	case OutcomeTransportFault:
		return "transport_fault"
	default:
		return "unknown"
	}
}

// FlowStatus is the status recorded on audit entries.
type FlowStatus string

const (
	StatusSuccess              FlowStatus = "Success"
	StatusFailure              FlowStatus = "Failure"
	StatusUnfulfilledCondition FlowStatus = "UnfulfilledCondition"
)

// Result is what the reconciler reports for one notification.
type Result struct {
	Outcome       Outcome
	Status        FlowStatus
	Message       string
	Cause         error
	PaymentID     string
	ChargeID      string
	PaydockStatus models.PaydockStatus
}

// Recoverable reports whether the gateway should redeliver the notification.
func (r Result) Recoverable() bool {
	return r.Outcome == OutcomeTransportFault
}

func success(message string) Result {
	return Result{Outcome: OutcomeOK, Status: StatusSuccess, Message: message}
}

func businessFailure(status FlowStatus, message string) Result {
	return Result{Outcome: OutcomeBusinessFailure, Status: status, Message: message}
}

// failureFrom classifies err. Recoverable errors become transport faults,
// everything else a terminal Failure.
func failureFrom(err error) Result {
	outcome := OutcomeBusinessFailure
	if IsRecoverable(err) {
		outcome = OutcomeTransportFault
	}
	return Result{Outcome: outcome, Status: StatusFailure, Message: err.Error(), Cause: err}
}

// orderFailure reports an order transition that failed after the payment
// write committed. It is never redelivered.
func orderFailure(err error) Result {
	return Result{Outcome: OutcomeBusinessFailure, Status: StatusFailure, Message: err.Error(), Cause: err}
}
