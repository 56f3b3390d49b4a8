package handler

import (
	"log/slog"
	"net/http"

	"familytree/internal/domain/services"
	"familytree/internal/httputil"
)

// TreeHandler handles HTTP requests for tree operations
type TreeHandler struct {
	treeService services.TreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService services.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree returns the nested member tree, optionally rooted at ?root=<id>.
// The tree is null when there are no members.
// GET /api/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.treeService.GetTree(r.Context(), r.URL.Query().Get("root"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"tree": tree})
}
