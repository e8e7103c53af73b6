package mail

import "fmt"

// FailureKind separates failures worth retrying later from ones that will not heal.
type FailureKind string

const (
	FailureTransient FailureKind = "TRANSIENT" // Network errors, SMTP 4xx
	FailurePermanent FailureKind = "PERMANENT" // Rejected address or message, SMTP 5xx
)

// DeliveryError describes a message that could not be delivered to one recipient.
type DeliveryError struct {
	Recipient string
	Ride      string
	Kind      FailureKind
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failure to %s for %q: %v", e.Kind, e.Recipient, e.Ride, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Classifier maps a transport error to a FailureKind. Transports that can tell
// permanent rejections apart implement it next to their Session.
type Classifier interface {
	Classify(err error) FailureKind
}
