package riskanalyzer

// ---------------------------------------------------------------------------
// Response schema
// ---------------------------------------------------------------------------

// schemaField describes one field of the structured risk report the provider
// is constrained to return.
type schemaField struct {
	Name        string
	Type        string // NUMBER, STRING, ARRAY
	Items       string // element type when Type is ARRAY
	Enum        []string
	Description string
}

// reportFields is the single source of truth for the response contract.
// Both the provider-side generation schema and the local validation schema
// are derived from it.
var reportFields = []schemaField{
	{
		Name:        "risk_score",
		Type:        "NUMBER",
		Description: "Overall risk between 0 and 100. 0 = totally safe, 100 = extremely risky.",
	},
	{
		Name:        "risk_level",
		Type:        "STRING",
		Enum:        []string{"low", "medium", "high", "critical"},
		Description: "Qualitative risk bucket.",
	},
	{
		Name:        "categories",
		Type:        "ARRAY",
		Items:       "STRING",
		Description: "List of categories such as religion, caste, hate_speech, bullying, harassment, explicit_language, threat, misinformation, legal_violation.",
	},
	{
		Name:        "explanations",
		Type:        "ARRAY",
		Items:       "STRING",
		Description: "Short bullet points explaining what triggered the risk.",
	},
	{
		Name:        "problematic_text",
		Type:        "ARRAY",
		Items:       "STRING",
		Description: "List with exact underlined portions of the text that are risky.",
	},
	{
		Name:        "legal_sections_triggered",
		Type:        "ARRAY",
		Items:       "STRING",
		Description: "List of specific laws or policies violated (e.g., 'IT Act Section 66A', 'IPC 153A').",
	},
	{
		Name:        "legal_risk_summary",
		Type:        "STRING",
		Description: "Short explanation of what could realistically happen (e.g., account suspension, legal complaints).",
	},
	{
		Name:        "suggested_rewrites",
		Type:        "ARRAY",
		Items:       "STRING",
		Description: "Respectful alternative messages.",
	},
	{
		Name:        "tone_analysis",
		Type:        "STRING",
		Description: "Analysis of the speaker's tone (e.g., sarcastic, aggressive, calm).",
	},
	{
		Name:        "detected_emotions",
		Type:        "ARRAY",
		Items:       "STRING",
		Description: "List of detected emotions (e.g., Anger, Frustration, Joy).",
	},
}

// ProviderSchema renders the report contract in the provider's schema
// dialect (uppercase type names), suitable for the response_schema field of a
// generateContent request.  All ten fields are required.
func ProviderSchema() map[string]interface{} {
	props := make(map[string]interface{}, len(reportFields))
	required := make([]string, 0, len(reportFields))
	for _, f := range reportFields {
		prop := map[string]interface{}{
			"type":        f.Type,
			"description": f.Description,
		}
		if f.Type == "ARRAY" {
			prop["items"] = map[string]interface{}{"type": f.Items}
		}
		if len(f.Enum) > 0 {
			prop["enum"] = f.Enum
		}
		props[f.Name] = prop
		required = append(required, f.Name)
	}
	return map[string]interface{}{
		"type":       "OBJECT",
		"properties": props,
		"required":   required,
	}
}

// ValidationSchema renders the report contract as a standard JSON Schema
// document for local response validation.  It enforces presence and types of
// all ten fields but deliberately omits the risk_level enum: an out-of-enum
// bucket is a display concern handled by fallback policy, not a schema
// violation.
func ValidationSchema() map[string]interface{} {
	props := make(map[string]interface{}, len(reportFields))
	required := make([]string, 0, len(reportFields))
	for _, f := range reportFields {
		var prop map[string]interface{}
		switch f.Type {
		case "NUMBER":
			prop = map[string]interface{}{"type": "number"}
		case "STRING":
			prop = map[string]interface{}{"type": "string"}
		case "ARRAY":
			prop = map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			}
		}
		props[f.Name] = prop
		required = append(required, f.Name)
	}
	return map[string]interface{}{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}
