package enums

import "fmt"

// PaymentMethod selects how the buyer settles an order at checkout.
type PaymentMethod string

const (
	// PaymentMethodPayNow redirects the buyer to the gateway immediately.
	PaymentMethodPayNow PaymentMethod = "pay_now"
	// PaymentMethodPayForMe produces a shareable link a third party pays through.
	PaymentMethodPayForMe PaymentMethod = "pay_for_me"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodPayNow,
	PaymentMethodPayForMe,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
