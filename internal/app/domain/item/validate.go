package item

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rule kinds reported in Violation.Type.
const (
	KindMissing          = "missing"
	KindStringTooShort   = "string_too_short"
	KindStringTooLong    = "string_too_long"
	KindLessThanEqual    = "less_than_equal"
	KindGreaterThanEqual = "greater_than_equal"
	KindValueError       = "value_error"
	KindJSONInvalid      = "json_invalid"
	KindObjectType       = "model_attributes_type"
	KindStringType       = "string_type"
	KindFloatType        = "float_type"
	KindIntParsing       = "int_parsing"
)

const (
	nameRules  = "min=1,max=128"
	priceRules = "lte=10000000"
)

var validate = validator.New()

// Violation describes one rejected field.
type Violation struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// ValidationError is returned when client input is rejected.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, fmt.Sprintf("%s: %s", formatLoc(v.Loc), v.Msg))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewValidationError builds a single-violation error.
func NewValidationError(loc []any, msg, kind string) *ValidationError {
	return &ValidationError{Violations: []Violation{{Loc: loc, Msg: msg, Type: kind}}}
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks in and returns the normalized item with its price rounded
// to two decimals. Name rules run first, then the pre-rounding price bound,
// then the post-rounding positivity check.
func Validate(in Input) (Item, error) {
	var violations []Violation

	if in.Name == nil {
		violations = append(violations, missing("name"))
	} else if err := validate.Var(*in.Name, nameRules); err != nil {
		violations = append(violations, fieldViolations("name", err)...)
	}

	var rounded float64
	switch {
	case in.Price == nil:
		violations = append(violations, missing("price"))
	default:
		if err := validate.Var(*in.Price, priceRules); err != nil {
			violations = append(violations, fieldViolations("price", err)...)
			break
		}
		rounded = RoundPrice(*in.Price)
		if rounded <= 0 {
			violations = append(violations, Violation{
				Loc:  bodyLoc("price"),
				Msg:  "Value error, Price must be greater than 0 after rounding",
				Type: KindValueError,
			})
		}
	}

	if len(violations) > 0 {
		return Item{}, &ValidationError{Violations: violations}
	}
	return Item{Name: *in.Name, Price: rounded}, nil
}

func fieldViolations(field string, err error) []Violation {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Violation{{Loc: bodyLoc(field), Msg: err.Error(), Type: KindValueError}}
	}

	out := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, translate(field, fe))
	}
	return out
}

func translate(field string, fe validator.FieldError) Violation {
	v := Violation{Loc: bodyLoc(field)}
	switch fe.Tag() {
	case "min":
		v.Type = KindStringTooShort
		v.Msg = fmt.Sprintf("String should have at least %s %s", fe.Param(), plural(fe.Param(), "character"))
	case "max":
		v.Type = KindStringTooLong
		v.Msg = fmt.Sprintf("String should have at most %s %s", fe.Param(), plural(fe.Param(), "character"))
	case "lte":
		v.Type = KindLessThanEqual
		v.Msg = "Input should be less than or equal to " + fe.Param()
	default:
		v.Type = KindValueError
		v.Msg = fmt.Sprintf("failed %q rule", fe.Tag())
	}
	return v
}

func missing(field string) Violation {
	return Violation{Loc: bodyLoc(field), Msg: "Field required", Type: KindMissing}
}

func bodyLoc(field string) []any {
	return []any{"body", field}
}

func plural(n, word string) string {
	if n == "1" {
		return word
	}
	return word + "s"
}

func formatLoc(loc []any) string {
	parts := make([]string, 0, len(loc))
	for _, p := range loc {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ".")
}
