package enums

import "fmt"

// OrderEventKind labels an order history row with the transition that produced it.
type OrderEventKind string

const (
	OrderEventCreated          OrderEventKind = "created"
	OrderEventConfirmed        OrderEventKind = "confirmed"
	OrderEventPaymentCompleted OrderEventKind = "payment_completed"
	OrderEventRejected         OrderEventKind = "rejected"
	OrderEventCancelled        OrderEventKind = "cancelled"
)

var validOrderEventKinds = []OrderEventKind{
	OrderEventCreated,
	OrderEventConfirmed,
	OrderEventPaymentCompleted,
	OrderEventRejected,
	OrderEventCancelled,
}

// String implements fmt.Stringer.
func (o OrderEventKind) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderEventKind.
func (o OrderEventKind) IsValid() bool {
	for _, candidate := range validOrderEventKinds {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderEventKind converts raw input into an OrderEventKind.
func ParseOrderEventKind(value string) (OrderEventKind, error) {
	for _, candidate := range validOrderEventKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order event kind %q", value)
}
