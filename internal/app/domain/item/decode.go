package item

import (
	"bytes"
	"encoding/json"
	"io"
)

// MaxBodyBytes bounds the add payload.
const MaxBodyBytes = 1 << 20

// DecodeInput reads an add payload. Bodies that are not a JSON object, or
// whose fields have the wrong JSON type, are rejected here so field rules in
// Validate only ever see well-shaped input.
func DecodeInput(r io.Reader) (Input, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxBodyBytes+1))
	if err != nil {
		return Input{}, NewValidationError([]any{"body"}, "Unable to read request body", KindJSONInvalid)
	}
	if len(body) > MaxBodyBytes {
		return Input{}, NewValidationError([]any{"body"}, "Request body too large", KindJSONInvalid)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Input{}, NewValidationError([]any{"body"}, "Field required", KindMissing)
	}
	if !json.Valid(body) {
		return Input{}, NewValidationError([]any{"body"}, "JSON decode error", KindJSONInvalid)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return Input{}, NewValidationError([]any{"body"}, "Input should be a valid dictionary or object to extract fields from", KindObjectType)
	}

	var (
		in         Input
		violations []Violation
	)

	if raw, ok := fields["name"]; ok {
		var name string
		if isNull(raw) || json.Unmarshal(raw, &name) != nil {
			violations = append(violations, Violation{Loc: bodyLoc("name"), Msg: "Input should be a valid string", Type: KindStringType})
		} else {
			in.Name = &name
		}
	}

	if raw, ok := fields["price"]; ok {
		var price float64
		if isNull(raw) || json.Unmarshal(raw, &price) != nil {
			violations = append(violations, Violation{Loc: bodyLoc("price"), Msg: "Input should be a valid number", Type: KindFloatType})
		} else {
			in.Price = &price
		}
	}

	if len(violations) > 0 {
		return Input{}, &ValidationError{Violations: violations}
	}
	return in, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
