package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"sitecanvas-backend/application/services"
	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/core/valueobjects"
	"sitecanvas-backend/interfaces/http/rest/dto"
	"sitecanvas-backend/pkg/api"
	"sitecanvas-backend/pkg/observability"
	"sitecanvas-backend/pkg/utils"
)

// EdgeHandler handles edge creation and deletion.
type EdgeHandler struct {
	canvas  *services.CanvasService
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewEdgeHandler creates an edge handler.
func NewEdgeHandler(canvas *services.CanvasService, metrics *observability.Collector, logger *zap.Logger) *EdgeHandler {
	return &EdgeHandler{canvas: canvas, metrics: metrics, logger: logger}
}

// CreateEdgeRequest is the request body for connecting two nodes. Direction
// matters: the source provides context to the target.
type CreateEdgeRequest struct {
	SourceID string `json:"sourceId" validate:"required,uuid"`
	TargetID string `json:"targetId" validate:"required,uuid"`
	Variant  string `json:"variant,omitempty" validate:"omitempty,oneof=context reference"`
}

// CreateEdge handles POST /projects/{projectID}/edges.
func (h *EdgeHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	var req CreateEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	sourceID, err := valueobjects.ParseNodeID(req.SourceID)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	targetID, err := valueobjects.ParseNodeID(req.TargetID)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	variant := entities.EdgeVariantContext
	if req.Variant != "" {
		variant, err = entities.ParseEdgeVariant(req.Variant)
		if err != nil {
			api.RespondError(w, h.logger, err)
			return
		}
	}

	edge, err := h.canvas.ConnectNodes(r.Context(), projectID, sourceID, targetID, variant)
	if err != nil {
		api.RespondError(w, h.logger, err)
		return
	}

	h.metrics.EdgesCreated.Inc()
	api.Success(w, http.StatusCreated, dto.FromEdge(edge))
}

// DeleteEdge handles DELETE /projects/{projectID}/edges/{edgeID}. Deleting
// an already-absent edge succeeds.
func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	edgeID, ok := edgeIDParam(w, r)
	if !ok {
		return
	}

	if err := h.canvas.RemoveEdge(r.Context(), projectID, edgeID); err != nil {
		api.RespondError(w, h.logger, err)
		return
	}

	h.metrics.EdgesDeleted.Inc()
	api.Success(w, http.StatusNoContent, nil)
}
