package enums

import "fmt"

// CheckoutStep names the stages of the linear checkout wizard, in order.
type CheckoutStep string

const (
	CheckoutStepShippingAddress CheckoutStep = "shipping_address"
	CheckoutStepPickupSelection CheckoutStep = "pickup_selection"
	CheckoutStepPaymentReview   CheckoutStep = "payment_review"
)

var orderedCheckoutSteps = []CheckoutStep{
	CheckoutStepShippingAddress,
	CheckoutStepPickupSelection,
	CheckoutStepPaymentReview,
}

// String implements fmt.Stringer.
func (c CheckoutStep) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutStep.
func (c CheckoutStep) IsValid() bool {
	for _, candidate := range orderedCheckoutSteps {
		if candidate == c {
			return true
		}
	}
	return false
}

// Next returns the step after the receiver, or the receiver when terminal.
func (c CheckoutStep) Next() CheckoutStep {
	for i, candidate := range orderedCheckoutSteps {
		if candidate == c && i+1 < len(orderedCheckoutSteps) {
			return orderedCheckoutSteps[i+1]
		}
	}
	return c
}

// Prev returns the step before the receiver, or the receiver when initial.
func (c CheckoutStep) Prev() CheckoutStep {
	for i, candidate := range orderedCheckoutSteps {
		if candidate == c && i > 0 {
			return orderedCheckoutSteps[i-1]
		}
	}
	return c
}

// ParseCheckoutStep converts raw input into a CheckoutStep.
func ParseCheckoutStep(value string) (CheckoutStep, error) {
	for _, candidate := range orderedCheckoutSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout step %q", value)
}
