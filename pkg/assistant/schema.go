package assistant

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema reflects T into a strict structured-output schema: no additional
// properties and every property required, at every depth.
func GenerateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	delete(m, "$schema")
	delete(m, "$id")
	strict(m)
	return m
}

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
)

func strict(schema map[string]interface{}) {
	if t, ok := schema[typeKey].(string); ok && t == "object" {
		schema[additionalPropertiesKey] = false
		if props, ok := schema[propertiesKey].(map[string]interface{}); ok && len(props) > 0 {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			schema[requiredKey] = required
		}
	}
	if props, ok := schema[propertiesKey].(map[string]interface{}); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]interface{}); ok {
				strict(pm)
			}
		}
	}
	if items, ok := schema[itemsKey].(map[string]interface{}); ok {
		strict(items)
	}
}
