package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// validate reports field names by their JSON tags.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateRouteRequest checks that all routing inputs are present.
// Blank-only values count as missing.
func ValidateRouteRequest(r *RouteRequest) error {
	trimmed := RouteRequest{
		SourceCode:      strings.TrimSpace(r.SourceCode),
		DestinationCode: strings.TrimSpace(r.DestinationCode),
		AnalyticTag:     strings.TrimSpace(r.AnalyticTag),
	}
	return structErrors(validate.Struct(&trimmed))
}

// DecodeRouteRequest parses a JSON route request body. A field present with
// a non-string value is reported as a field error; malformed JSON is
// returned as the decoder's error.
func DecodeRouteRequest(data []byte) (RouteRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return RouteRequest{}, err
	}

	var req RouteRequest
	var ve ValidationError
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"sourceCode", &req.SourceCode},
		{"destinationCode", &req.DestinationCode},
		{"analyticTag", &req.AnalyticTag},
	} {
		v, ok := raw[f.name]
		if !ok || string(v) == "null" {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			ve.Errors = append(ve.Errors, FieldError{Field: f.name, Message: "must be a string"})
		}
	}
	if ve.HasErrors() {
		return RouteRequest{}, &ve
	}
	return req, nil
}

// linkRules carries the constraints a catalog link must satisfy before it
// is written.
type linkRules struct {
	Parent   string  `json:"parent" validate:"required"`
	Child    string  `json:"child" validate:"required,nefield=Parent"`
	Distance float64 `json:"distance" validate:"gte=0"`
}

// ValidateLink checks a Link for constraint violations.
func ValidateLink(l *Link) error {
	return structErrors(validate.Struct(&linkRules{
		Parent:   strings.TrimSpace(l.Parent),
		Child:    strings.TrimSpace(l.Child),
		Distance: l.Distance,
	}))
}

// structErrors converts validator output into a *ValidationError.
func structErrors(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var ve ValidationError
	for _, fe := range verrs {
		ve.Errors = append(ve.Errors, FieldError{Field: fe.Field(), Message: ruleMessage(fe)})
	}
	return &ve
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "nefield":
		return "must differ from " + strings.ToLower(fe.Param())
	default:
		return "failed " + fe.Tag() + " check"
	}
}
