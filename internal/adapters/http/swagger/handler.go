// Package swagger serves the OpenAPI document, as YAML and JSON, and a ReDoc
// page for it.
package swagger

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPI []byte

// Register attaches the documentation routes to r. It panics on a nil router
// or a document that is not valid YAML, both programming errors.
//
//	GET /api-docs      -> ReDoc HTML
//	GET /openapi.yaml  -> embedded document
//	GET /openapi.json  -> the same document as JSON
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	asJSON, err := documentJSON(openAPI)
	if err != nil {
		panic(err)
	}

	r.Get("/api-docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(openAPI)
	})
	r.Get("/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(asJSON)
	})
}

func documentJSON(doc []byte) ([]byte, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(doc, &tree); err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	out, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("convert openapi document: %w", err)
	}
	return out, nil
}

const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Relief API Docs</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
    <script>Redoc.init('/openapi.json', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
