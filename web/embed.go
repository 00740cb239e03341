// Package web bundles the dashboard page and the API description into the binary.
package web

import _ "embed"

//go:embed index.html
var IndexHTML []byte

//go:embed openapi.yaml
var OpenAPI []byte
