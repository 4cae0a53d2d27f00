package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/kjstillabower/weather-edge-proxy/internal/client"
)

// Error kinds. Every *ClientError unwraps to exactly one of these.
var (
	ErrMalformedPayload    = errors.New("malformed upstream payload")
	ErrUpstreamAuth        = errors.New("upstream rejected credentials")
	ErrUpstreamStatus      = errors.New("upstream returned unexpected status")
	ErrLocationUnavailable = errors.New("location unavailable")
)

// ErrRequestCanceled marks an upstream call cut short because the inbound request ended
// first. It is wrapped together with client.ErrUpstreamUnreachable.
var ErrRequestCanceled = errors.New("inbound request ended before upstream answered")

const badRequest = "Bad Request"

var validate = validator.New(validator.WithRequiredStructEnabled())

// ClientError is a failure rendered to the caller with a fixed status and message.
type ClientError struct {
	Code    int
	Message string
	Kind    error
	// Detail is the internal cause, for logs only.
	Detail error
}

func (e *ClientError) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("%d %s: %v: %v", e.Code, e.Message, e.Kind, e.Detail)
	}
	return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Kind)
}

func (e *ClientError) Unwrap() error {
	return e.Kind
}

// NewLocationError is returned when the request carries no usable coordinates and the
// service is configured to reject such requests.
func NewLocationError() *ClientError {
	return &ClientError{Code: http.StatusBadRequest, Message: badRequest, Kind: ErrLocationUnavailable}
}

// Normalize classifies an upstream response. A 200 whose body decodes into the variant's
// payload and carries every required field is returned as that payload; unknown fields are
// dropped. Everything else becomes a *ClientError.
func Normalize(status int, body []byte, v Variant) (any, error) {
	switch status {
	case http.StatusOK:
		payload := v.newPayload()
		if err := json.Unmarshal(body, payload); err != nil {
			return nil, malformed(fmt.Errorf("decode: %w", err))
		}
		if err := validate.Struct(payload); err != nil {
			return nil, malformed(fmt.Errorf("validate: %w", err))
		}
		return payload, nil
	case http.StatusUnauthorized:
		return nil, &ClientError{Code: http.StatusUnauthorized, Message: badRequest, Kind: ErrUpstreamAuth}
	default:
		return nil, &ClientError{
			Code:    http.StatusBadRequest,
			Message: badRequest,
			Kind:    ErrUpstreamStatus,
			Detail:  fmt.Errorf("HTTP %d", status),
		}
	}
}

func malformed(detail error) *ClientError {
	return &ClientError{Code: http.StatusBadRequest, Message: badRequest, Kind: ErrMalformedPayload, Detail: detail}
}

// OutcomeLabel maps a pipeline result to a stable metric label.
func OutcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrRequestCanceled):
		return "canceled"
	case errors.Is(err, client.ErrUpstreamUnreachable):
		return "upstream_unreachable"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, ErrUpstreamAuth):
		return "upstream_auth"
	case errors.Is(err, ErrUpstreamStatus):
		return "upstream_status"
	case errors.Is(err, ErrLocationUnavailable):
		return "location_unavailable"
	default:
		return "error"
	}
}
