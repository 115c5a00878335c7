package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
)

// ErrorKind classifies why an inference call produced no usable text.
type ErrorKind string

const (
	ErrorKindTransport      ErrorKind = "transport"
	ErrorKindRejected       ErrorKind = "rejected"
	ErrorKindThrottled      ErrorKind = "throttled"
	ErrorKindTimeout        ErrorKind = "timeout"
	ErrorKindMalformedReply ErrorKind = "malformed_reply"
	ErrorKindBusy           ErrorKind = "busy"
	ErrorKindInvalidOutput  ErrorKind = "invalid_output"
)

// ServiceError is the failure half of an inference result.
type ServiceError struct {
	Kind ErrorKind
	// Code is the service error code when Bedrock answered with one.
	Code string
	Err  error
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// NewServiceError wraps err with the given kind.
func NewServiceError(kind ErrorKind, err error) *ServiceError {
	return &ServiceError{Kind: kind, Err: err}
}

// classify maps an error returned by the SDK to a ServiceError.
func classify(err error) *ServiceError {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewServiceError(ErrorKindTimeout, err)
	}

	var modelTimeout *types.ModelTimeoutException
	if errors.As(err, &modelTimeout) {
		return &ServiceError{Kind: ErrorKindTimeout, Code: modelTimeout.ErrorCode(), Err: err}
	}

	var throttled *types.ThrottlingException
	if errors.As(err, &throttled) {
		return &ServiceError{Kind: ErrorKindThrottled, Code: throttled.ErrorCode(), Err: err}
	}

	var unavailable *types.ServiceUnavailableException
	if errors.As(err, &unavailable) {
		return &ServiceError{Kind: ErrorKindThrottled, Code: unavailable.ErrorCode(), Err: err}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &ServiceError{Kind: ErrorKindRejected, Code: apiErr.ErrorCode(), Err: err}
	}

	return NewServiceError(ErrorKindTransport, err)
}
