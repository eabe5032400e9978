package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"sitecanvas-backend/application/services"
	"sitecanvas-backend/interfaces/http/rest/dto"
	"sitecanvas-backend/pkg/api"
	"sitecanvas-backend/pkg/observability"
)

// GenerationHandler triggers generation runs and serves their history.
type GenerationHandler struct {
	generation *services.GenerationService
	metrics    *observability.Collector
	logger     *zap.Logger
}

// NewGenerationHandler creates a generation handler.
func NewGenerationHandler(generation *services.GenerationService, metrics *observability.Collector, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{generation: generation, metrics: metrics, logger: logger}
}

// Generate handles POST /projects/{projectID}/nodes/{nodeID}/generate. The
// run is synchronous: the response carries the updated node and the record
// appended to its history.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	nodeID, ok := nodeIDParam(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result, err := h.generation.Generate(r.Context(), projectID, nodeID)
	if err != nil {
		h.metrics.ObserveGeneration(kindLabel(result), "error", time.Since(start))
		api.RespondError(w, h.logger, err)
		return
	}

	h.metrics.ObserveGeneration(string(result.Record.Kind()), "success", time.Since(start))
	api.Success(w, http.StatusOK, dto.GenerateResponse{
		Node:   dto.FromNode(result.Node),
		Record: dto.FromRecord(result.Record),
	})
}

// ListRecords handles GET /projects/{projectID}/nodes/{nodeID}/records. The
// history comes back oldest first; the newest entry is what the node's live
// payload points at.
func (h *GenerationHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	nodeID, ok := nodeIDParam(w, r)
	if !ok {
		return
	}

	records, err := h.generation.ListRecords(r.Context(), projectID, nodeID)
	if err != nil {
		api.RespondError(w, h.logger, err)
		return
	}

	resp := make([]dto.RecordResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, dto.FromRecord(record))
	}
	api.Success(w, http.StatusOK, resp)
}

func kindLabel(result *services.GenerationResult) string {
	if result != nil && result.Record != nil {
		return string(result.Record.Kind())
	}
	return "unknown"
}
