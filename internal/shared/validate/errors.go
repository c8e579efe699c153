package validate

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Kind classifies a field-level failure.
type Kind string

const (
	KindEmptyField        Kind = "empty_field"
	KindInvalidFormat     Kind = "invalid_format"
	KindTooShort          Kind = "too_short"
	KindTooLong           Kind = "too_long"
	KindFutureDate        Kind = "future_date"
	KindInvalidLength     Kind = "invalid_length"
	KindMissingValue      Kind = "missing_value"
	KindOutOfRange        Kind = "out_of_range"
	KindInconsistentDates Kind = "inconsistent_dates"

	// Raised by repositories, never by the validators in this package.
	KindDuplicateKey Kind = "duplicate_key"
	KindNotFound     Kind = "not_found"
)

// FieldError is one (field, kind, message) triple.
type FieldError struct {
	Field   string `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// FieldErrors is an ordered, non-empty list of field failures.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether any error is recorded for field.
func (fe FieldErrors) Has(field string) bool {
	for _, e := range fe {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Kinds returns the kinds recorded for field, in order.
func (fe FieldErrors) Kinds(field string) []Kind {
	var kinds []Kind
	for _, e := range fe {
		if e.Field == field {
			kinds = append(kinds, e.Kind)
		}
	}
	return kinds
}

// ByField groups messages per field for form re-display.
func (fe FieldErrors) ByField() map[string][]string {
	out := make(map[string][]string, len(fe))
	for _, e := range fe {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

// Merge appends the errors of other whose field is not already present in fe.
// Decoding errors go first so they win over the rule that would fire on the
// zero value left behind.
func (fe FieldErrors) Merge(other FieldErrors) FieldErrors {
	out := append(FieldErrors{}, fe...)
	for _, e := range other {
		if !fe.Has(e.Field) {
			out = append(out, e)
		}
	}
	return out
}

// OrNil returns nil for an empty list so callers can return it as an error.
func (fe FieldErrors) OrNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// newError builds an ozzo error whose code is the Kind.
func newError(kind Kind, message string) validation.Error {
	return validation.NewError(string(kind), message)
}

// collect flattens ozzo's per-field map into FieldErrors following order.
func collect(errs validation.Errors, order []string) FieldErrors {
	var out FieldErrors
	for _, field := range order {
		err, ok := errs[field]
		if !ok || err == nil {
			continue
		}
		fieldErr := FieldError{Field: field, Kind: KindInvalidFormat, Message: err.Error()}
		if ve, ok := err.(validation.Error); ok {
			fieldErr.Kind = Kind(ve.Code())
		}
		out = append(out, fieldErr)
	}
	return out
}
