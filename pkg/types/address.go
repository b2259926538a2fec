package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ShippingContact is the contact and address block captured during checkout
// and snapshotted onto each order. Stored as JSONB.
type ShippingContact struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	State     string `json:"state"`
	City      string `json:"city"`
}

// Value marshals the contact block for storage.
func (c ShippingContact) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan decodes the stored JSON payload.
func (c *ShippingContact) Scan(value interface{}) error {
	if value == nil {
		*c = ShippingContact{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("shipping contact: unsupported scan type %T", value)
	}
}

// FullName joins the first and last name for display.
func (c ShippingContact) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
