package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"bably/internal/metrics"
	"bably/internal/models"
	"bably/internal/service"
)

// DiaperHandler handles diaper changes
type DiaperHandler struct {
	responder
	diaperService *service.DiaperService
	metrics       *metrics.Metrics
}

// NewDiaperHandler creates a new diaper handler
func NewDiaperHandler(diaperService *service.DiaperService, m *metrics.Metrics, log *zap.SugaredLogger) *DiaperHandler {
	return &DiaperHandler{
		responder:     responder{log: log},
		diaperService: diaperService,
		metrics:       m,
	}
}

func (h *DiaperHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.NewDiaper
	if !h.decodeJSON(w, r, &req) {
		return
	}

	diaper, err := h.diaperService.Add(r.Context(), identityFrom(r), req)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	h.metrics.EventLogged("diaper")
	respondJSON(w, http.StatusCreated, map[string]*models.Diaper{"diaper": diaper})
}

func (h *DiaperHandler) Get(w http.ResponseWriter, r *http.Request) {
	infantID, diaperID, ok := h.diaperVars(w, r)
	if !ok {
		return
	}

	diaper, err := h.diaperService.Get(r.Context(), identityFrom(r), infantID, diaperID)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*models.Diaper{"diaper": diaper})
}

func (h *DiaperHandler) Update(w http.ResponseWriter, r *http.Request) {
	infantID, diaperID, ok := h.diaperVars(w, r)
	if !ok {
		return
	}
	var patch models.DiaperPatch
	if !h.decodeJSON(w, r, &patch) {
		return
	}

	diaper, err := h.diaperService.Update(r.Context(), identityFrom(r), infantID, diaperID, patch)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*models.Diaper{"diaper": diaper})
}

func (h *DiaperHandler) Delete(w http.ResponseWriter, r *http.Request) {
	infantID, diaperID, ok := h.diaperVars(w, r)
	if !ok {
		return
	}

	if err := h.diaperService.Delete(r.Context(), identityFrom(r), infantID, diaperID); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *DiaperHandler) diaperVars(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	infantID, ok := h.pathInt(w, r, varInfantID)
	if !ok {
		return 0, 0, false
	}
	diaperID, ok := h.pathInt(w, r, varDiaperID)
	if !ok {
		return 0, 0, false
	}
	return infantID, diaperID, true
}
