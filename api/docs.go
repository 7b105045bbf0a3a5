package api

import (
	_ "embed"
)

// SwaggerJSON is the OpenAPI document for the HTTP API.
//
//go:embed swagger/studio.swagger.json
var SwaggerJSON []byte
