// Package risk defines the canonical risk-report model shared by the
// analysis pipeline, the HTTP API, the CLI renderer, and the SDK client.
package risk

import "time"

// Level is the qualitative risk bucket a report falls into.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// IsValid reports whether l is one of the defined buckets.
func (l Level) IsValid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh, LevelCritical:
		return true
	}
	return false
}

// ParseLevel returns the Level for s and whether s was a recognized bucket.
func ParseLevel(s string) (Level, bool) {
	l := Level(s)
	return l, l.IsValid()
}

// ScoreMin and ScoreMax bound the overall risk score.
const (
	ScoreMin = 0
	ScoreMax = 100
)

// ClampScore forces a provider-reported score into [ScoreMin, ScoreMax].
// Out-of-range values are corrected, not rejected.
func ClampScore(score float64) float64 {
	if score < ScoreMin {
		return ScoreMin
	}
	if score > ScoreMax {
		return ScoreMax
	}
	return score
}

// Report is the validated analysis result.  It is constructed exclusively by
// the response validator from a successful provider call and treated as
// immutable afterwards: it is passed and stored by value, never shared
// across requests.
type Report struct {
	// RiskScore is the overall risk in [0,100], already clamped.
	RiskScore float64 `json:"risk_score"`

	// RiskLevel is the value the provider returned, preserved verbatim even
	// when it falls outside the defined buckets so that logging and
	// decision-making see what the provider actually said.  Display
	// consumers use DisplayLevel instead.
	RiskLevel Level `json:"risk_level"`

	// LevelOutOfEnum is set when RiskLevel is not one of the defined
	// buckets; the condition is observable rather than silently corrected.
	LevelOutOfEnum bool `json:"risk_level_out_of_enum,omitempty"`

	Categories             []string `json:"categories"`
	Explanations           []string `json:"explanations"`
	ProblematicText        []string `json:"problematic_text"`
	LegalSectionsTriggered []string `json:"legal_sections_triggered"`
	LegalRiskSummary       string   `json:"legal_risk_summary"`
	SuggestedRewrites      []string `json:"suggested_rewrites"`
	ToneAnalysis           string   `json:"tone_analysis"`
	DetectedEmotions       []string `json:"detected_emotions"`

	// Modality tags which input kind produced this report.
	Modality string `json:"modality,omitempty"`

	// RequestID correlates the report with log entries and API responses.
	RequestID string `json:"request_id,omitempty"`

	// AnalyzedAt is the completion time of the provider call.
	AnalyzedAt time.Time `json:"analyzed_at,omitempty"`
}

// DisplayLevel returns the level a rendering surface should show: the
// provider's value when it is a defined bucket, otherwise the configured
// fallback.  The underlying RiskLevel field is never mutated.
func (r Report) DisplayLevel(fallback Level) Level {
	if r.RiskLevel.IsValid() {
		return r.RiskLevel
	}
	if fallback.IsValid() {
		return fallback
	}
	return LevelLow
}

// AnalyzeTextRequest is the JSON body accepted by the text analysis
// endpoint.
type AnalyzeTextRequest struct {
	Text string `json:"text"`
}

// ErrorResponse is the standard API error body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Retryable bool   `json:"retryable"`
}
