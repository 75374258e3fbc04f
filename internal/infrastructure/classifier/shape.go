package classifier

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/posmatch/backend/internal/domain"
)

// acceptedShape is one tolerated layout of the classifier content
type acceptedShape struct {
	name    string
	schema  *gojsonschema.Schema
	extract func(doc interface{}) []string
}

// acceptedShapes are tried in priority order; the first valid one wins
var acceptedShapes = []acceptedShape{
	{
		name:    "array",
		schema:  mustSchema(`{"type":"array","items":{"type":"string"}}`),
		extract: func(doc interface{}) []string { return toStrings(doc) },
	},
	{
		name:    "identifier-array",
		schema:  mustSchema(`{"type":"object","required":["identifier"],"properties":{"identifier":{"type":"array","items":{"type":"string"}}}}`),
		extract: func(doc interface{}) []string { return toStrings(doc.(map[string]interface{})["identifier"]) },
	},
	{
		name:    "recommendations",
		schema:  mustSchema(`{"type":"object","required":["recommendations"],"properties":{"recommendations":{"type":"array","items":{"type":"string"}}}}`),
		extract: func(doc interface{}) []string { return toStrings(doc.(map[string]interface{})["recommendations"]) },
	},
	{
		name:   "identifier-string",
		schema: mustSchema(`{"type":"object","required":["identifier"],"properties":{"identifier":{"type":"string"}}}`),
		extract: func(doc interface{}) []string {
			return []string{doc.(map[string]interface{})["identifier"].(string)}
		},
	},
}

func mustSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("classifier: invalid shape schema: %v", err))
	}
	return s
}

// ParseIdentifiers decodes classifier content and extracts identifiers from
// the first accepted shape. Anything else is rejected with ErrClassifierShape.
func ParseIdentifiers(content string) ([]string, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("%w: content is not JSON: %v", domain.ErrClassifierDecode, err)
	}

	for _, shape := range acceptedShapes {
		result, err := shape.schema.Validate(gojsonschema.NewGoLoader(doc))
		if err != nil {
			return nil, fmt.Errorf("%w: validate %s: %v", domain.ErrClassifierShape, shape.name, err)
		}
		if result.Valid() {
			return shape.extract(doc), nil
		}
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrClassifierShape, abbreviate(content))
}

func toStrings(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func abbreviate(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
