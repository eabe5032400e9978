// Package handlers contains the REST request handlers.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sitecanvas-backend/application/services"
	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/core/valueobjects"
	"sitecanvas-backend/interfaces/http/rest/dto"
	"sitecanvas-backend/pkg/api"
	"sitecanvas-backend/pkg/observability"
	"sitecanvas-backend/pkg/utils"
)

// NodeHandler handles node CRUD and the context preview endpoint.
type NodeHandler struct {
	canvas  *services.CanvasService
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewNodeHandler creates a node handler.
func NewNodeHandler(canvas *services.CanvasService, metrics *observability.Collector, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{canvas: canvas, metrics: metrics, logger: logger}
}

// CreateNodeRequest is the request body for creating a node. The payload's
// shape is selected by the variant discriminator.
type CreateNodeRequest struct {
	Variant string          `json:"variant" validate:"required"`
	Payload json.RawMessage `json:"payload" validate:"required"`
	X       float64         `json:"x"`
	Y       float64         `json:"y"`
}

// UpdateNodeRequest is the request body for patching a node's payload.
// Only the fields present in the patch are changed.
type UpdateNodeRequest struct {
	Variant string          `json:"variant" validate:"required"`
	Patch   json.RawMessage `json:"patch" validate:"required"`
}

// MoveNodeRequest is the request body for repositioning a node.
type MoveNodeRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CreateNode handles POST /projects/{projectID}/nodes.
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	var req CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	variant, err := entities.ParseNodeVariant(req.Variant)
	if err != nil {
		api.RespondError(w, h.logger, err)
		return
	}
	payload, err := dto.DecodePayload(variant, req.Payload)
	if err != nil {
		api.RespondError(w, h.logger, err)
		return
	}
	position, err := valueobjects.NewPosition(req.X, req.Y)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	node, err := h.canvas.CreateNode(r.Context(), projectID, payload, position)
	if err != nil {
		api.RespondError(w, h.logger, err)
		return
	}

	h.metrics.NodesCreated.Inc()
	api.Success(w, http.StatusCreated, dto.FromNode(node))
}

// GetNode handles GET /projects/{projectID}/nodes/{nodeID}.
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	nodeID, ok := nodeIDParam(w, r)
	if !ok {
		return
	}

	node, err := h.canvas.GetNode(r.Context(), projectID, nodeID)
	if err != nil {
		api.RespondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, dto.FromNode(node))
}

// UpdateNode handles PATCH /projects/{projectID}/nodes/{nodeID}.
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	nodeID, ok := nodeIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	variant, err := entities.ParseNodeVariant(req.Variant)
	if err != nil {
		api.RespondError(w, h.logger, err)
		return
	}
	patch, err := dto.DecodePatch(variant, req.Patch)
	if err != nil {
		api.RespondError(w, h.logger, err)
		return
	}

	node, err := h.canvas.UpdateNodePayload(r.Context(), projectID, nodeID, patch)
	if err != nil {
		api.RespondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, dto.FromNode(node))
}

// MoveNode handles PUT /projects/{projectID}/nodes/{nodeID}/position.
func (h *NodeHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	nodeID, ok := nodeIDParam(w, r)
	if !ok {
		return
	}

	var req MoveNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	position, err := valueobjects.NewPosition(req.X, req.Y)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.canvas.MoveNode(r.Context(), projectID, nodeID, position); err != nil {
		api.RespondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

// DeleteNode handles DELETE /projects/{projectID}/nodes/{nodeID}. Deleting
// a node cascades to every edge touching it; the response lists what went
// away with it.
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	nodeID, ok := nodeIDParam(w, r)
	if !ok {
		return
	}

	removed, err := h.canvas.RemoveNode(r.Context(), projectID, nodeID)
	if err != nil {
		api.RespondError(w, h.logger, err)
		return
	}

	h.metrics.NodesDeleted.Inc()
	resp := dto.RemoveNodeResponse{RemovedEdgeIDs: make([]string, 0, len(removed))}
	for _, edgeID := range removed {
		resp.RemovedEdgeIDs = append(resp.RemovedEdgeIDs, edgeID.String())
	}
	api.Success(w, http.StatusOK, resp)
}

// GetContext handles GET /projects/{projectID}/nodes/{nodeID}/context. It
// returns the projected ancestor context a generation run for this node
// would consume, nearest provider first.
func (h *NodeHandler) GetContext(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	nodeID, ok := nodeIDParam(w, r)
	if !ok {
		return
	}

	summaries, err := h.canvas.ResolveContext(r.Context(), projectID, nodeID)
	if err != nil {
		api.RespondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, summaries)
}

// --- URL parameter helpers shared by the handlers ---

func projectIDParam(w http.ResponseWriter, r *http.Request) (valueobjects.ProjectID, bool) {
	id, err := valueobjects.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return valueobjects.ProjectID{}, false
	}
	return id, true
}

func nodeIDParam(w http.ResponseWriter, r *http.Request) (valueobjects.NodeID, bool) {
	id, err := valueobjects.ParseNodeID(chi.URLParam(r, "nodeID"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return valueobjects.NodeID{}, false
	}
	return id, true
}

func edgeIDParam(w http.ResponseWriter, r *http.Request) (valueobjects.EdgeID, bool) {
	id, err := valueobjects.ParseEdgeID(chi.URLParam(r, "edgeID"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return valueobjects.EdgeID{}, false
	}
	return id, true
}
