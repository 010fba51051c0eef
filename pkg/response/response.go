// Package response defines the JSON envelope returned by the HTTP API.
package response

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	EmptyRequestBodyResponse   = ErrorResponse("Request body is empty. Please provide necessary data.")
	InvalidRequestBodyResponse = ErrorResponse("Request body is not valid JSON.")
	RequestTooLargeResponse    = ErrorResponse("Request body is too large.")
	InvalidShortCodeResponse   = ErrorResponse("Short code is not valid.")
	URLNotFoundResponse        = ErrorResponse("The requested short code is not registered.")
	UnavailableResponse        = ErrorResponse("URL registry is temporarily unavailable. Please try again later.")
	ServerErrorResponse        = ErrorResponse("An internal server error occurred. Please try again later.")
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details []any  `json:"details,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// SuccessResponse builds a success envelope. Only the first data value is
// used.
func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	return resp
}

func ErrorResponse(msg string, details ...any) Response {
	return Response{
		Status:  StatusError,
		Message: msg,
		Details: details,
	}
}

type validationError struct {
	Field string `json:"field"`
	Value any    `json:"value"`
	Issue string `json:"issue"`
}

func issueForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "url", "http_url":
		return "Invalid url."
	case "max":
		return fmt.Sprintf("Value must be at most %s characters long.", fe.Param())
	default:
		return "Invalid value."
	}
}

func getValidationErrors(err error) []validationError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}

	validationErrs := make([]validationError, 0, len(errs))
	for _, fe := range errs {
		validationErrs = append(validationErrs, validationError{
			Field: fe.Field(),
			Value: fe.Value(),
			Issue: issueForTag(fe),
		})
	}

	return validationErrs
}

// ValidationErrorResponse reports every failed field of a validator error.
func ValidationErrorResponse(err error) Response {
	resp := Response{
		Status:  StatusError,
		Message: "Request body failed validation.",
	}

	for _, ve := range getValidationErrors(err) {
		resp.Details = append(resp.Details, ve)
	}

	return resp
}
