// Package analysis holds the input-side domain model of the risk pipeline:
// modalities, analysis requests, and the normalization rules applied before
// any provider call.
package analysis

import (
	"strings"

	"github.com/turtacn/safespeak/pkg/errors"
)

// Modality identifies the kind of content a request carries.
type Modality string

const (
	ModalityText   Modality = "text"
	ModalityImage  Modality = "image"
	ModalityAudio  Modality = "audio"
	ModalitySpeech Modality = "speech"
)

func (m Modality) String() string { return string(m) }

func (m Modality) IsValid() bool {
	switch m {
	case ModalityText, ModalityImage, ModalityAudio, ModalitySpeech:
		return true
	}
	return false
}

// IsBinary reports whether the modality carries a media payload rather than
// inline text.
func (m Modality) IsBinary() bool {
	return m == ModalityImage || m == ModalityAudio || m == ModalitySpeech
}

// DefaultMediaType is the media type assumed when a caller omits one.
// Image uploads default to PNG, non-speech audio to MP3 and speech to WAV.
func (m Modality) DefaultMediaType() string {
	switch m {
	case ModalityImage:
		return "image/png"
	case ModalityAudio:
		return "audio/mp3"
	case ModalitySpeech:
		return "audio/wav"
	default:
		return ""
	}
}

// Request is a normalized unit of work for the moderation service.  Exactly
// one of Text or Media is populated, depending on the modality.
type Request struct {
	Modality  Modality
	Text      string
	Media     []byte
	MediaType string
}

// NewTextRequest validates and normalizes a text analysis request.
// Whitespace-only input counts as empty.
func NewTextRequest(text string) (*Request, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.EmptyInput(ModalityText.String())
	}
	return &Request{Modality: ModalityText, Text: text}, nil
}

// NewMediaRequest validates and normalizes a binary analysis request for the
// given modality, filling in the modality's default media type when mediaType
// is blank.
func NewMediaRequest(modality Modality, payload []byte, mediaType string) (*Request, error) {
	if !modality.IsValid() || !modality.IsBinary() {
		return nil, errors.New(errors.CodeUnsupportedModality, "unsupported modality").
			WithDetail(modality.String())
	}
	if len(payload) == 0 {
		return nil, errors.EmptyInput(modality.String())
	}
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		mediaType = modality.DefaultMediaType()
	}
	return &Request{Modality: modality, Media: payload, MediaType: mediaType}, nil
}
