package riskanalyzer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	stdliberrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/turtacn/safespeak/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/safespeak/pkg/errors"
)

// ---------------------------------------------------------------------------
// Gemini backend
// ---------------------------------------------------------------------------

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultGeminiTimeout = 60 * time.Second
)

// GeminiConfig configures the Gemini generateContent backend.
type GeminiConfig struct {
	APIKey  string        `json:"-" yaml:"api_key" mapstructure:"api_key"`
	Model   string        `json:"model" yaml:"model" mapstructure:"model"`
	BaseURL string        `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// GeminiBackend calls the Gemini generateContent REST endpoint with a
// response schema, returning the raw structured JSON the model produced.
type GeminiBackend struct {
	config     *GeminiConfig
	httpClient *http.Client
	logger     logging.Logger
}

var _ GenerativeBackend = (*GeminiBackend)(nil)

// NewGeminiBackend validates the configuration and builds a backend.
func NewGeminiBackend(config *GeminiConfig, logger logging.Logger) (*GeminiBackend, error) {
	if config == nil {
		return nil, errors.New(errors.CodeInvalidParam, "gemini config is required")
	}
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, errors.New(errors.CodeConfig, "gemini api key is required")
	}
	if config.Model == "" {
		config.Model = defaultGeminiModel
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultGeminiBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultGeminiTimeout
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GeminiBackend{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.Named("gemini"),
	}, nil
}

// Model returns the configured model identifier.
func (b *GeminiBackend) Model() string { return b.config.Model }

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string                 `json:"response_mime_type"`
	ResponseSchema   map[string]interface{} `json:"response_schema,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiPromptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback"`
	Error          *geminiAPIError       `json:"error"`
}

type geminiAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ---------------------------------------------------------------------------
// GenerateJSON
// ---------------------------------------------------------------------------

// GenerateJSON performs one generateContent call.  The returned bytes are
// the model's structured JSON output, not the full API envelope.
func (b *GeminiBackend) GenerateJSON(ctx context.Context, req *GenerateRequest) ([]byte, error) {
	if req == nil || len(req.Parts) == 0 {
		return nil, errors.New(errors.CodeInvalidParam, "generate request has no content")
	}

	wireParts := make([]geminiPart, 0, len(req.Parts))
	for _, p := range req.Parts {
		if len(p.Data) > 0 {
			wireParts = append(wireParts, geminiPart{InlineData: &geminiInlineData{
				MimeType: p.MediaType,
				Data:     base64.StdEncoding.EncodeToString(p.Data),
			}})
			continue
		}
		wireParts = append(wireParts, geminiPart{Text: p.Text})
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: wireParts}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   req.Schema,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "marshaling generate request")
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(b.config.BaseURL, "/"), b.config.Model)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "building provider request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", b.config.APIKey)

	started := time.Now()
	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, b.classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeProviderTransport, "reading provider response")
	}

	b.logger.Debug("provider call completed",
		logging.String("model", b.config.Model),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, b.classifyStatusError(resp.StatusCode, raw)
	}

	var envelope geminiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Wrap(err, errors.CodeProviderRejected, "decoding provider envelope")
	}
	if envelope.PromptFeedback != nil && envelope.PromptFeedback.BlockReason != "" {
		return nil, errors.New(errors.CodeProviderRejected, "provider blocked the request").
			WithDetail(envelope.PromptFeedback.BlockReason)
	}
	if len(envelope.Candidates) == 0 {
		return nil, errors.New(errors.CodeProviderRejected, "provider returned no candidates")
	}

	cand := envelope.Candidates[0]
	if cand.FinishReason != "" && cand.FinishReason != "STOP" {
		return nil, errors.New(errors.CodeProviderRejected, "provider stopped generation").
			WithDetail(cand.FinishReason)
	}

	var text strings.Builder
	for _, p := range cand.Content.Parts {
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, errors.New(errors.CodeProviderRejected, "provider returned empty content")
	}
	return []byte(text.String()), nil
}

// classifyTransportError separates deadline expiry from other transport
// failures so callers can distinguish timeouts.
func (b *GeminiBackend) classifyTransportError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.Wrap(err, errors.CodeProviderTimeout, "provider call timed out")
	}
	if ctx.Err() == context.Canceled {
		return errors.Wrap(err, errors.CodeProviderTransport, "provider call canceled")
	}
	type timeouter interface{ Timeout() bool }
	var te timeouter
	if stdliberrors.As(err, &te) && te.Timeout() {
		return errors.Wrap(err, errors.CodeProviderTimeout, "provider call timed out")
	}
	return errors.Wrap(err, errors.CodeProviderTransport, "provider call failed")
}

func (b *GeminiBackend) classifyStatusError(status int, raw []byte) error {
	detail := fmt.Sprintf("http %d", status)
	var envelope geminiResponse
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil && envelope.Error.Message != "" {
		detail = fmt.Sprintf("http %d: %s", status, envelope.Error.Message)
	}
	if status == http.StatusGatewayTimeout {
		return errors.New(errors.CodeProviderTimeout, "provider timed out").WithDetail(detail)
	}
	if status >= 500 || status == http.StatusBadGateway || status == http.StatusServiceUnavailable {
		return errors.New(errors.CodeProviderTransport, "provider unavailable").WithDetail(detail)
	}
	return errors.New(errors.CodeProviderRejected, "provider rejected the request").WithDetail(detail)
}
