package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/smartwardrobe/wardrobe-server/internal/errors"
	"github.com/smartwardrobe/wardrobe-server/internal/http/response"
	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

// APIError implements huma.StatusError with the service's error vocabulary.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler makes huma build APIErrors, carrying store and domain
// error statuses through. Call it after creating the huma.API and before
// serving requests.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			if apiErr := fromError(err); apiErr != nil {
				return apiErr
			}
		}

		var details any
		if len(errs) > 0 {
			msgs := make([]string, 0, len(errs))
			for _, err := range errs {
				if err != nil {
					msgs = append(msgs, err.Error())
				}
			}
			details = msgs
		}
		return &APIError{
			status:  status,
			Code:    response.StatusCode(status),
			Message: message,
			Details: details,
		}
	}
}

// fromError maps a known error type, or returns nil.
func fromError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return &APIError{
			status:  domainErr.HTTPStatus(),
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		return &APIError{
			status:  storeErr.HTTPCode(),
			Code:    response.StatusCode(storeErr.HTTPCode()),
			Message: storeErr.Message,
		}
	}
	return nil
}

// storeError converts a backend error for a handler return. Unknown errors
// are logged and hidden behind a generic 500.
func (s *Server) storeError(err error) error {
	if apiErr := fromError(err); apiErr != nil {
		return apiErr
	}
	s.logger.Error("Record backend failed", "error", err)
	return &APIError{
		status:  http.StatusInternalServerError,
		Code:    string(domainerrors.CodeInternal),
		Message: "internal server error",
	}
}

// EnvelopeTransformer wraps every huma response body in response.Envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, _ := strconv.Atoi(status) //nolint:errcheck // huma always passes a numeric status
	if apiErr, ok := v.(*APIError); ok {
		return response.Fail(apiErr.Code, apiErr.Message, apiErr.Details), nil
	}
	if code >= http.StatusBadRequest {
		if model, ok := v.(*huma.ErrorModel); ok {
			return response.Fail(response.StatusCode(code), model.Detail, model.Errors), nil
		}
	}
	env := response.Ok(v)
	env.Success = code < http.StatusBadRequest
	return env, nil
}
