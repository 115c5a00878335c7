package handler

// RequestPayload represents the expected JSON structure in the request body.
type RequestPayload struct {
	Prompt     string `json:"prompt"`
	MeshConfig string `json:"meshConfig"`
}

// SuccessBody carries the model's raw reply.
type SuccessBody struct {
	Response string `json:"response"`
}

// ErrorBody carries a fixed, caller-facing error message.
type ErrorBody struct {
	Error string `json:"error"`
}

// Caller-facing messages. They are part of the API contract.
const (
	InvalidInputMessage   = `Invalid input. Please provide a "prompt" field in the request body.`
	PromptRequiredMessage = "Prompt is required."
	ProcessingMessage     = "An error occurred while processing your request."
)
