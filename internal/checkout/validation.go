package checkout

import (
	"regexp"
	"strings"

	"go.uber.org/multierr"

	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/types"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e fieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidateContact checks every shipping contact field and reports all
// failures at once so the caller can surface them together.
func ValidateContact(contact types.ShippingContact) error {
	var errs error

	if strings.TrimSpace(contact.FirstName) == "" {
		errs = multierr.Append(errs, fieldError{"first_name", "first name is required"})
	}
	if strings.TrimSpace(contact.LastName) == "" {
		errs = multierr.Append(errs, fieldError{"last_name", "last name is required"})
	}
	if !emailPattern.MatchString(strings.TrimSpace(contact.Email)) {
		errs = multierr.Append(errs, fieldError{"email", "a valid email address is required"})
	}
	if !validPhone(contact.Phone) {
		errs = multierr.Append(errs, fieldError{"phone", "phone number must be exactly 11 digits"})
	}
	if strings.TrimSpace(contact.Address) == "" {
		errs = multierr.Append(errs, fieldError{"address", "address is required"})
	}
	if strings.TrimSpace(contact.State) == "" {
		errs = multierr.Append(errs, fieldError{"state", "state is required"})
	}
	if strings.TrimSpace(contact.City) == "" {
		errs = multierr.Append(errs, fieldError{"city", "city is required"})
	}

	if errs == nil {
		return nil
	}

	fields := make([]fieldError, 0)
	for _, err := range multierr.Errors(errs) {
		if fe, ok := err.(fieldError); ok {
			fields = append(fields, fe)
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "shipping details are incomplete").WithDetails(fields)
}

// validPhone accepts exactly 11 digits, ignoring spaces and dashes.
func validPhone(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	if len(cleaned) != 11 {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
