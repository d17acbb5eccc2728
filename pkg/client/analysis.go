package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/turtacn/safespeak/pkg/types/risk"
)

// AnalysisResult is the API's analysis response: the validated report plus
// the server-computed display level.
type AnalysisResult struct {
	risk.Report
	DisplayRiskLevel risk.Level `json:"display_risk_level"`
}

// AnalyzeText submits text for risk analysis.
func (c *Client) AnalyzeText(ctx context.Context, text string) (*AnalysisResult, error) {
	body, err := json.Marshal(risk.AnalyzeTextRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("safespeak: marshaling request: %w", err)
	}

	var result AnalysisResult
	if err := c.post(ctx, "/api/v1/analyze/text", "application/json", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeImage submits image bytes for risk analysis.  mediaType may be
// empty; the server then assumes image/png.
func (c *Client) AnalyzeImage(ctx context.Context, payload []byte, mediaType string) (*AnalysisResult, error) {
	return c.analyzeMedia(ctx, "/api/v1/analyze/image", payload, mediaType)
}

// AnalyzeAudio submits pre-recorded audio for risk analysis.  mediaType may
// be empty; the server then assumes audio/mp3.
func (c *Client) AnalyzeAudio(ctx context.Context, payload []byte, mediaType string) (*AnalysisResult, error) {
	return c.analyzeMedia(ctx, "/api/v1/analyze/audio", payload, mediaType)
}

// AnalyzeSpeech submits a speech recording for the extended transcription,
// tone, and legal analysis.  mediaType may be empty; the server then assumes
// audio/wav.
func (c *Client) AnalyzeSpeech(ctx context.Context, payload []byte, mediaType string) (*AnalysisResult, error) {
	return c.analyzeMedia(ctx, "/api/v1/analyze/speech", payload, mediaType)
}

func (c *Client) analyzeMedia(ctx context.Context, path string, payload []byte, mediaType string) (*AnalysisResult, error) {
	var result AnalysisResult
	if err := c.post(ctx, path, mediaType, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
