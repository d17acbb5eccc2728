package riskanalyzer

import (
	"context"
)

// ---------------------------------------------------------------------------
// Generative backend abstraction
// ---------------------------------------------------------------------------

// Part is one piece of multimodal request content.  Exactly one of Text or
// Data is set; MediaType accompanies Data.
type Part struct {
	Text      string
	Data      []byte
	MediaType string
}

// TextPart builds an inline text part.
func TextPart(text string) Part { return Part{Text: text} }

// BlobPart builds a binary media part.
func BlobPart(data []byte, mediaType string) Part {
	return Part{Data: data, MediaType: mediaType}
}

// GenerateRequest is a single structured-output generation call.  The
// backend must constrain the response to Schema and return raw JSON bytes.
type GenerateRequest struct {
	Parts  []Part
	Schema map[string]interface{}
}

// GenerativeBackend is the capability the risk analyzer needs from a
// generative provider.  Implementations map transport, timeout, and refusal
// conditions to the error taxonomy in pkg/errors.
type GenerativeBackend interface {
	// GenerateJSON performs one generation call and returns the provider's
	// raw JSON response body.  It must honor ctx cancellation and deadlines.
	GenerateJSON(ctx context.Context, req *GenerateRequest) ([]byte, error)

	// Model identifies the underlying model, for logging.
	Model() string
}
