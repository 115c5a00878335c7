package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

// maxBodyBytes matches the API Gateway payload limit.
const maxBodyBytes = 10 << 20

// EventHandler is the Lambda-shaped entry point the HTTP host adapts to.
type EventHandler interface {
	Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
}

// HTTPHandler serves the assistant over plain HTTP by converting each request
// into an API Gateway proxy event.
type HTTPHandler struct {
	Events EventHandler
}

// NewHTTPHandler creates a new instance of HTTPHandler
func NewHTTPHandler(h EventHandler) *HTTPHandler {
	return &HTTPHandler{
		Events: h,
	}
}

// ServeHTTP implements the http.Handler interface for HTTPHandler.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", reqID)
	entry := log.WithField("request_id", reqID)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		logAndReturnError(w, r, entry, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		entry.WithError(err).Warn("Unable to read body")
		writeEvent(w, r, respond(http.StatusBadRequest, nil, ErrorBody{Error: InvalidInputMessage}))
		return
	}
	r.Body.Close()

	event := events.APIGatewayProxyRequest{
		Resource:   r.URL.Path,
		Path:       r.URL.Path,
		HTTPMethod: r.Method,
		Headers:    flattenHeaders(r.Header),
		Body:       string(body),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  reqID,
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
			Identity: events.APIGatewayRequestIdentity{
				SourceIP:  r.RemoteAddr,
				UserAgent: r.UserAgent(),
			},
		},
	}

	resp, err := h.Events.Handle(r.Context(), event)
	if err != nil {
		logAndReturnError(w, r, entry, "Internal Server Error", http.StatusInternalServerError, err.Error())
		return
	}
	writeEvent(w, r, resp)
}

func writeEvent(w http.ResponseWriter, r *http.Request, resp events.APIGatewayProxyResponse) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	for key, values := range resp.MultiValueHeaders {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(resp.StatusCode)
	io.WriteString(w, resp.Body)
	logRequest(r, resp.StatusCode)
}

func flattenHeaders(header http.Header) map[string]string {
	out := make(map[string]string, len(header))
	for key, values := range header {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out
}
