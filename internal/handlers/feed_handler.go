package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"bably/internal/metrics"
	"bably/internal/models"
	"bably/internal/service"
)

// FeedHandler handles feed events
type FeedHandler struct {
	responder
	feedService *service.FeedService
	metrics     *metrics.Metrics
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feedService *service.FeedService, m *metrics.Metrics, log *zap.SugaredLogger) *FeedHandler {
	return &FeedHandler{
		responder:   responder{log: log},
		feedService: feedService,
		metrics:     m,
	}
}

// Add logs a feed
func (h *FeedHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.NewFeed
	if !h.decodeJSON(w, r, &req) {
		return
	}

	feed, err := h.feedService.Add(r.Context(), identityFrom(r), req)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	h.metrics.EventLogged("feed")
	respondJSON(w, http.StatusCreated, map[string]*models.Feed{"feed": feed})
}

// Get returns one feed
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	infantID, feedID, ok := h.feedVars(w, r)
	if !ok {
		return
	}

	feed, err := h.feedService.Get(r.Context(), identityFrom(r), infantID, feedID)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*models.Feed{"feed": feed})
}

// Update applies the fields present in the body
func (h *FeedHandler) Update(w http.ResponseWriter, r *http.Request) {
	infantID, feedID, ok := h.feedVars(w, r)
	if !ok {
		return
	}
	var patch models.FeedPatch
	if !h.decodeJSON(w, r, &patch) {
		return
	}

	feed, err := h.feedService.Update(r.Context(), identityFrom(r), infantID, feedID, patch)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*models.Feed{"feed": feed})
}

// Delete removes a feed
func (h *FeedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	infantID, feedID, ok := h.feedVars(w, r)
	if !ok {
		return
	}

	if err := h.feedService.Delete(r.Context(), identityFrom(r), infantID, feedID); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *FeedHandler) feedVars(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	infantID, ok := h.pathInt(w, r, varInfantID)
	if !ok {
		return 0, 0, false
	}
	feedID, ok := h.pathInt(w, r, varFeedID)
	if !ok {
		return 0, 0, false
	}
	return infantID, feedID, true
}
