package handler

import (
	"net/http"

	"meshassist/backend"
)

func statusForInputError(_ *InputError) int {
	return http.StatusBadRequest
}

// statusForServiceError reports downstream failures as 200 in legacy mode,
// which is what deployed clients expect.
func statusForServiceError(err *backend.ServiceError, legacy bool) int {
	if legacy {
		return http.StatusOK
	}
	switch err.Kind {
	case backend.ErrorKindBusy, backend.ErrorKindThrottled:
		return http.StatusServiceUnavailable
	case backend.ErrorKindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
