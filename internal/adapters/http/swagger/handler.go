// Package swagger serves the OpenAPI document and a ReDoc page for it.
package swagger

import (
	"context"
	"fmt"
	"net/http"
)

// redocScript is loaded by the docs page; no script is vendored into the binary.
const redocScript = "https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"

// Register attaches the docs routes to mux.
// Routes:
//
//	GET /docs                    -> ReDoc HTML
//	GET {prefix}/openapi.yaml    -> Embedded OpenAPI document
func Register(_ context.Context, mux *http.ServeMux, prefix string) {
	if mux == nil {
		panic("mux is nil")
	}
	specPath := prefix + "/openapi.yaml"
	page := fmt.Sprintf(indexHTML, redocScript, specPath)

	mux.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})

	mux.HandleFunc(specPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}

const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Bank Marketing Prediction API - ReDoc</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="%s"></script>
    <script>Redoc.init('%s', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
