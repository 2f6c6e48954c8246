package api

import "net/http"

// ModelInfoHandler reports the loaded classifier's metadata.
type ModelInfoHandler struct {
	deps Dependencies
}

// NewModelInfoHandler creates a new model info handler.
func NewModelInfoHandler(deps Dependencies) *ModelInfoHandler {
	return &ModelInfoHandler{deps: deps}
}

// HandleModelInfo handles GET {prefix}/model-info requests.
func (h *ModelInfoHandler) HandleModelInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ModelInfo(r.Context()))
}
