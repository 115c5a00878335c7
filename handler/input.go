package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// InputErrorKind separates the two client-error gates.
type InputErrorKind int

const (
	// InputErrorMalformed covers anything that stops the body from being read:
	// bad encoding, bad JSON, wrong field types or a missing meshConfig.
	InputErrorMalformed InputErrorKind = iota
	// InputErrorPromptRequired means the prompt is absent or falsy: null,
	// false, zero, or an empty string, array or object.
	InputErrorPromptRequired
)

// InputError is the failure half of ParseInput.
type InputError struct {
	Kind InputErrorKind
	Err  error
}

func (e *InputError) Error() string {
	return e.Err.Error()
}

func (e *InputError) Unwrap() error { return e.Err }

// Message is the caller-facing text for the error.
func (e *InputError) Message() string {
	if e.Kind == InputErrorPromptRequired {
		return PromptRequiredMessage
	}
	return InvalidInputMessage
}

// ParsedInput is a request that passed both validation gates.
type ParsedInput struct {
	Prompt     string
	MeshConfig string
}

var (
	errNoBody         = errors.New("body is empty")
	errNotObject      = errors.New("body is not a JSON object")
	errNoPrompt       = errors.New("prompt is missing or empty")
	errNoMeshConfig   = errors.New("meshConfig is missing")
	errPromptType     = errors.New("prompt is not a string")
	errMeshConfigType = errors.New("meshConfig is not a string")
)

func malformed(err error) *InputError {
	return &InputError{Kind: InputErrorMalformed, Err: err}
}

// ParseInput decodes an event body into a ParsedInput. The prompt gate is
// checked before meshConfig so a body without a prompt is always reported as
// such, whatever else is missing.
func ParseInput(body string, isBase64 bool) (ParsedInput, *InputError) {
	raw := []byte(body)
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return ParsedInput{}, malformed(fmt.Errorf("decode base64 body: %w", err))
		}
		raw = decoded
	}
	if len(raw) == 0 {
		return ParsedInput{}, malformed(errNoBody)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ParsedInput{}, malformed(fmt.Errorf("decode body: %w", err))
	}
	if fields == nil {
		return ParsedInput{}, malformed(errNotObject)
	}

	var payload RequestPayload

	promptRaw, ok := fields["prompt"]
	if !ok || isFalsy(promptRaw) {
		return ParsedInput{}, &InputError{Kind: InputErrorPromptRequired, Err: errNoPrompt}
	}
	if err := json.Unmarshal(promptRaw, &payload.Prompt); err != nil {
		return ParsedInput{}, malformed(fmt.Errorf("%w: %v", errPromptType, err))
	}

	configRaw, ok := fields["meshConfig"]
	if !ok || isNull(configRaw) {
		return ParsedInput{}, malformed(errNoMeshConfig)
	}
	if err := json.Unmarshal(configRaw, &payload.MeshConfig); err != nil {
		return ParsedInput{}, malformed(fmt.Errorf("%w: %v", errMeshConfigType, err))
	}

	return ParsedInput{Prompt: payload.Prompt, MeshConfig: payload.MeshConfig}, nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

// isFalsy reports whether raw is null, false, a numeric zero, or an empty
// string, array or object.
func isFalsy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case float64:
		return val == 0
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	return false
}
