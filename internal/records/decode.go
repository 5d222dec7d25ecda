// Package records defines the JSON shapes exchanged at the HTTP boundary and
// the strict decoding rules that turn them into core values.
package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"

	"pankti/internal/core"
)

// DefaultRegion is used to interpret phone numbers without a country prefix.
const DefaultRegion = "IN"

var (
	// ErrMalformed reports a body that is not valid JSON for the target shape.
	ErrMalformed = errors.New("malformed request body")
	// ErrInvalid is wrapped by every ValidationError.
	ErrInvalid = errors.New("invalid request")
)

// FieldError names a request field and the rule it broke.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Rule
	}
	return "invalid request: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Amounts are validated on their paise value.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if a, ok := field.Interface().(Amount); ok {
			return a.Cents
		}
		return nil
	}, Amount{})
	return v
}

// Decode reads one JSON object from r into dst, rejecting unknown fields and
// trailing data, then applies the struct's validation tags.
func Decode(r io.Reader, dst interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after object", ErrMalformed)
	}
	return Validate(dst)
}

// Validate runs the struct tags of v and converts failures into a ValidationError.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fieldPath(fe.Namespace()), Rule: fe.Tag()})
	}
	return out
}

// fieldPath drops the top-level struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Amount is a money value in paise read from a JSON number or numeric string.
// Null, missing and non-finite inputs decode to zero. The only decimal
// separator is a dot; a string holding a comma is rejected rather than read as
// either a decimal comma or rupee digit grouping ("10,000", "1,00,000").
type Amount struct {
	Cents int64
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		a.Cents = 0
		return nil
	}

	var num json.Number
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" || isNonFinite(s) {
			a.Cents = 0
			return nil
		}
		if strings.Contains(s, ",") {
			return fmt.Errorf("amount %q must not contain commas", s)
		}
		num = json.Number(s)
	} else {
		num = json.Number(b)
	}

	d, err := decimal.NewFromString(num.String())
	if err != nil {
		return fmt.Errorf("amount %q is not a number", num.String())
	}
	cents, ok := core.DecimalToCents(d)
	if !ok {
		return fmt.Errorf("amount %q is out of range", num.String())
	}
	a.Cents = cents
	return nil
}

// MarshalJSON writes the amount as a plain JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(core.Money{Cents: a.Cents}.String()), nil
}

func (a Amount) Money() core.Money { return core.Money{Cents: a.Cents} }

func AmountOf(m core.Money) Amount { return Amount{Cents: m.Cents} }

func isNonFinite(s string) bool {
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "nan", "inf", "infinity":
		return true
	}
	return false
}

// NormalizePhone returns the E.164 form of a valid number, or the trimmed
// input when it cannot be parsed as one.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	num, err := libphonenumber.Parse(raw, DefaultRegion)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return raw
	}
	return libphonenumber.Format(num, libphonenumber.E164)
}

func parseDay(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}
