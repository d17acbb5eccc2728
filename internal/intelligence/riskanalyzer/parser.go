package riskanalyzer

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/turtacn/safespeak/pkg/errors"
	"github.com/turtacn/safespeak/pkg/types/risk"
)

// ---------------------------------------------------------------------------
// Response parsing and validation
// ---------------------------------------------------------------------------

// reportPayload mirrors the ten-field response contract for decoding.
type reportPayload struct {
	RiskScore              float64  `json:"risk_score"`
	RiskLevel              string   `json:"risk_level"`
	Categories             []string `json:"categories"`
	Explanations           []string `json:"explanations"`
	ProblematicText        []string `json:"problematic_text"`
	LegalSectionsTriggered []string `json:"legal_sections_triggered"`
	LegalRiskSummary       string   `json:"legal_risk_summary"`
	SuggestedRewrites      []string `json:"suggested_rewrites"`
	ToneAnalysis           string   `json:"tone_analysis"`
	DetectedEmotions       []string `json:"detected_emotions"`
}

// ParseReport validates raw provider output against the response contract
// and converts it into a risk.Report.  It is a pure function: the same input
// always yields the same result, and a contract violation yields an error
// with no partial report.
//
// Repairs applied to structurally valid responses:
//   - risk_score is clamped into [0,100]
//   - risk_level is case-normalized; a value outside the defined buckets is
//     kept on the report and flagged via LevelOutOfEnum (display fallback is
//     the caller's policy)
//   - nil arrays become empty slices
func ParseReport(raw []byte) (risk.Report, error) {
	if len(raw) == 0 {
		return risk.Report{}, errors.SchemaViolation("", "empty response body")
	}

	doc := gojsonschema.NewBytesLoader(raw)
	schema := gojsonschema.NewGoLoader(ValidationSchema())
	result, err := gojsonschema.Validate(schema, doc)
	if err != nil {
		return risk.Report{}, errors.Wrap(err, errors.CodeSchemaViolation, "response is not valid JSON")
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return risk.Report{}, errors.SchemaViolation(first.Field(), first.Description())
	}

	var payload reportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return risk.Report{}, errors.Wrap(err, errors.CodeSchemaViolation, "decoding response payload")
	}

	level := risk.Level(strings.ToLower(strings.TrimSpace(payload.RiskLevel)))
	report := risk.Report{
		RiskScore:              risk.ClampScore(payload.RiskScore),
		RiskLevel:              level,
		LevelOutOfEnum:         !level.IsValid(),
		Categories:             nonNil(payload.Categories),
		Explanations:           nonNil(payload.Explanations),
		ProblematicText:        nonNil(payload.ProblematicText),
		LegalSectionsTriggered: nonNil(payload.LegalSectionsTriggered),
		LegalRiskSummary:       payload.LegalRiskSummary,
		SuggestedRewrites:      nonNil(payload.SuggestedRewrites),
		ToneAnalysis:           payload.ToneAnalysis,
		DetectedEmotions:       nonNil(payload.DetectedEmotions),
	}
	return report, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
