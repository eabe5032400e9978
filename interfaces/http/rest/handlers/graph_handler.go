package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"sitecanvas-backend/application/services"
	"sitecanvas-backend/interfaces/http/rest/dto"
	"sitecanvas-backend/pkg/api"
)

// GraphHandler serves the full project snapshot.
type GraphHandler struct {
	canvas *services.CanvasService
	logger *zap.Logger
}

// NewGraphHandler creates a graph handler.
func NewGraphHandler(canvas *services.CanvasService, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{canvas: canvas, logger: logger}
}

// GetGraph handles GET /projects/{projectID}/graph. Nodes and edges come
// back in creation order, matching what a reload of the canvas expects.
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	nodes, edges, err := h.canvas.GetGraph(r.Context(), projectID)
	if err != nil {
		api.RespondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, dto.FromGraph(projectID.String(), nodes, edges))
}
