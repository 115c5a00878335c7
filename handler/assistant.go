package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"meshassist/backend"
	"meshassist/metrics"
	"meshassist/prompt"
	"meshassist/schema"
)

// Completer sends one system instruction and one user message to a model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, *backend.ServiceError)
	ModelID() string
}

// Limiter bounds concurrent calls to the model.
type Limiter interface {
	Acquire(ctx context.Context, model string) (func(), bool)
}

// Options tune the Handler beyond its required client.
type Options struct {
	// Legacy keeps the deployed quirks: the "/n" separator, the open
	// "</config" tag and status 200 for downstream failures.
	Legacy bool
	// ValidateOutput rejects replies that are not mesh-config JSON.
	ValidateOutput bool
	// Limiter is optional; nil means unbounded.
	Limiter Limiter
}

// Handler turns an invocation event into one model call and one response.
type Handler struct {
	client  Completer
	options Options
}

// New creates a Handler that owns client for the lifetime of the process.
func New(client Completer, options Options) *Handler {
	return &Handler{
		client:  client,
		options: options,
	}
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

// Handle processes one API Gateway proxy event. Every failure is mapped to a
// response, so the returned error is always nil.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	entry := log.WithFields(logrus.Fields{
		"request_id": requestID(ctx, req),
		"model":      h.client.ModelID(),
	})

	input, inErr := ParseInput(req.Body, req.IsBase64Encoded)
	if inErr != nil {
		return h.rejectInput(entry, inErr), nil
	}

	user := prompt.UserMessage(input.Prompt, input.MeshConfig, h.options.Legacy)
	entry.WithField("prompt_bytes", len(input.Prompt)).Debug("Invoking model")

	text, svcErr := h.invoke(ctx, user)
	if svcErr != nil {
		return h.serviceFailure(entry, svcErr), nil
	}

	entry.WithField("response_bytes", len(text)).Info("Model replied")
	entry.Debug(text)
	metrics.InvocationsTotal.WithLabelValues(strconv.Itoa(http.StatusOK), "success").Inc()
	return respond(http.StatusOK, jsonHeaders, SuccessBody{Response: text}), nil
}

func (h *Handler) invoke(ctx context.Context, user string) (string, *backend.ServiceError) {
	if h.options.Limiter != nil {
		release, ok := h.options.Limiter.Acquire(ctx, h.client.ModelID())
		if !ok {
			return "", backend.NewServiceError(backend.ErrorKindBusy, errors.New("no free inference slot"))
		}
		defer release()
	}

	text, svcErr := h.client.Complete(ctx, prompt.SystemInstruction, user)
	if svcErr != nil {
		return "", svcErr
	}

	if h.options.ValidateOutput {
		if err := schema.ValidateMeshConfig(text); err != nil {
			return "", backend.NewServiceError(backend.ErrorKindInvalidOutput, err)
		}
	}
	return text, nil
}

func (h *Handler) rejectInput(entry *logrus.Entry, inErr *InputError) events.APIGatewayProxyResponse {
	entry.WithError(inErr).Warn("Rejected invocation")

	outcome := "invalid_input"
	if inErr.Kind == InputErrorPromptRequired {
		outcome = "prompt_required"
	}
	status := statusForInputError(inErr)
	metrics.InvocationsTotal.WithLabelValues(strconv.Itoa(status), outcome).Inc()
	return respond(status, h.errorHeaders(), ErrorBody{Error: inErr.Message()})
}

func (h *Handler) serviceFailure(entry *logrus.Entry, svcErr *backend.ServiceError) events.APIGatewayProxyResponse {
	entry.WithFields(logrus.Fields{
		"kind": svcErr.Kind,
		"code": svcErr.Code,
	}).WithError(svcErr.Err).Error("Error calling Bedrock")

	status := statusForServiceError(svcErr, h.options.Legacy)
	metrics.InvocationsTotal.WithLabelValues(strconv.Itoa(status), string(svcErr.Kind)).Inc()
	return respond(status, h.errorHeaders(), ErrorBody{Error: ProcessingMessage})
}

// errorHeaders returns nil in legacy mode, where only successes were typed.
func (h *Handler) errorHeaders() map[string]string {
	if h.options.Legacy {
		return nil
	}
	return jsonHeaders
}

func respond(status int, headers map[string]string, body any) events.APIGatewayProxyResponse {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		// Both body types are plain string structs.
		panic(err)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(bytes.TrimRight(buf.Bytes(), "\n")),
	}
}

// requestID prefers the Lambda request id, then the gateway's, then mints one.
func requestID(ctx context.Context, req events.APIGatewayProxyRequest) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	if req.RequestContext.RequestID != "" {
		return req.RequestContext.RequestID
	}
	return uuid.NewString()
}
