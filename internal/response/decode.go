package response

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// validate is shared across all handlers; Struct is safe for concurrent use.
var validate = newValidator()

// newValidator builds a validator that reports fields by their json tag
// name, so clients see "mac_address" rather than "MACAddress".
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	return v
}

// RequestError is a client fault caught before any service was called.
// The message is already phrased for the API consumer.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Decode reads the request body into dst and validates it against the
// struct's validate tags. All failures come back as *RequestError so the
// caller can map them to a 400.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return &RequestError{Message: "request body is required"}
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &RequestError{Message: "request body is required"}
		}

		return &RequestError{Message: "invalid request body: " + err.Error()}
	}

	if err := validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// Raw map payloads carry no tags to check.
			return nil
		}

		return &RequestError{Message: formatValidationErrors(err)}
	}

	return nil
}

// formatValidationErrors turns validator failures into one client-facing
// message, one clause per field.
func formatValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		switch fieldError.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fieldError.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email address", fieldError.Field()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", fieldError.Field(), fieldError.Param()))
		case "min":
			messages = append(messages, minMaxMessage(fieldError, "at least"))
		case "max":
			messages = append(messages, minMaxMessage(fieldError, "at most"))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", fieldError.Field()))
		}
	}

	return strings.Join(messages, "; ")
}

// minMaxMessage phrases length bounds for collections and value bounds
// for numbers.
func minMaxMessage(fieldError validator.FieldError, bound string) string {
	switch fieldError.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return fmt.Sprintf("%s must have %s %s entries", fieldError.Field(), bound, fieldError.Param())
	case reflect.String:
		return fmt.Sprintf("%s must have %s %s characters", fieldError.Field(), bound, fieldError.Param())
	default:
		return fmt.Sprintf("%s must be %s %s", fieldError.Field(), bound, fieldError.Param())
	}
}
