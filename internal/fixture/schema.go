package fixture

import (
	"fmt"
	"net/http"

	"github.com/xeipuuv/gojsonschema"
)

// Request-body contracts enforced in WithContracts mode. The shapes follow
// what the pizza front-end actually submits; anything else is a front-end
// regression worth failing loudly on.
const (
	loginSchemaJSON = `{
		"type": "object",
		"required": ["email", "password"],
		"properties": {
			"email":    {"type": "string", "minLength": 1},
			"password": {"type": "string"}
		},
		"additionalProperties": false
	}`

	orderSchemaJSON = `{
		"type": "object",
		"required": ["items"],
		"properties": {
			"items": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["menuId", "description", "price"],
					"properties": {
						"menuId":      {"type": "integer"},
						"description": {"type": "string"},
						"price":       {"type": "number"}
					},
					"additionalProperties": false
				}
			},
			"storeId":     {"type": "string"},
			"franchiseId": {"type": "integer"}
		},
		"additionalProperties": false
	}`
)

var (
	loginSchema = mustSchema(loginSchemaJSON)
	orderSchema = mustSchema(orderSchemaJSON)
)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("fixture: bad embedded schema: %v", err))
	}
	return schema
}

// validate checks body against schema. On violation it returns the 400
// response to send and ok=false; the response names the first failing field so
// a front-end developer sees what broke without digging through the mock.
func validate(schema *gojsonschema.Schema, body []byte) (Response, bool) {
	if len(body) == 0 {
		return errorResponse(http.StatusBadRequest, "invalid request body"), false
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errorResponse(http.StatusBadRequest, "invalid request body"), false
	}
	if !result.Valid() {
		first := result.Errors()[0]
		msg := fmt.Sprintf("contract violation: %s: %s", first.Field(), first.Description())
		return errorResponse(http.StatusBadRequest, msg), false
	}
	return Response{}, true
}
