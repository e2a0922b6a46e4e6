package scoretrends

import (
	"encoding/json"

	"github.com/xeipuuv/gojsonschema"
)

// analysisSchema constrains what the model may hand back before it is
// trusted as a TrendAnalysis.
const analysisSchema = `{
  "type": "object",
  "required": ["opportunity_score", "risk_score", "trend_analysis", "recommendation", "key_insights", "reasoning"],
  "properties": {
    "opportunity_score": {"type": "integer", "minimum": 1, "maximum": 10},
    "risk_score": {"type": "integer", "minimum": 1, "maximum": 10},
    "trend_analysis": {"type": "string"},
    "recommendation": {"type": "string", "enum": ["BUILD", "DON'T BUILD", "ANALYZE FURTHER"]},
    "key_insights": {"type": "array", "items": {"type": "string"}},
    "reasoning": {"type": "string"}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(analysisSchema)

// parseAnalysis decodes and validates a model response. A response that is
// not JSON, or that is JSON violating the schema, returns an error so the
// caller can degrade to a neutral verdict.
func parseAnalysis(raw string) (*TrendAnalysis, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, err
	}
	if !result.Valid() {
		return nil, &schemaError{errors: result.Errors()}
	}

	var analysis TrendAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

type schemaError struct {
	errors []gojsonschema.ResultError
}

func (e *schemaError) Error() string {
	if len(e.errors) == 0 {
		return "analysis failed schema validation"
	}
	return "analysis failed schema validation: " + e.errors[0].String()
}
