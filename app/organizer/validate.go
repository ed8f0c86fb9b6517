package organizer

import (
	"fmt"
	"time"

	"github.com/umputun/organizer/app/store"
)

// ValidationError reports input rejected before reaching the store
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateContact checks the contact has a name
func ValidateContact(c store.Contact) error {
	if c.Name == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	return nil
}

// ValidateMeeting checks meeting date and time are set and well-formed
func ValidateMeeting(m store.Meeting) error {
	if err := ValidateDate("date", m.Date); err != nil {
		return err
	}
	return ValidateTime("time", m.Time)
}

// ValidateDate checks value is a real calendar date in store.DateLayout, zero-padded
func ValidateDate(field, value string) error {
	return validateLayout(field, value, store.DateLayout, "YYYY-MM-DD")
}

// ValidateTime checks value is a time of day in store.TimeLayout, zero-padded
func ValidateTime(field, value string) error {
	return validateLayout(field, value, store.TimeLayout, "HH:MM")
}

func validateLayout(field, value, layout, format string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "required"}
	}
	// stored values are compared as strings, so only the canonical form is accepted
	t, err := time.Parse(layout, value)
	if err != nil || t.Format(layout) != value {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not in %s format", value, format)}
	}
	return nil
}
