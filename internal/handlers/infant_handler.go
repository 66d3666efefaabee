package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"bably/internal/models"
	"bably/internal/service"
)

// InfantHandler handles infant profiles, their reports and who can see them
type InfantHandler struct {
	responder
	infantService     *service.InfantService
	reportService     *service.ReportService
	accessService     *service.AccessService
	invitationService *service.InvitationService
}

// NewInfantHandler creates a new infant handler
func NewInfantHandler(
	infantService *service.InfantService,
	reportService *service.ReportService,
	accessService *service.AccessService,
	invitationService *service.InvitationService,
	log *zap.SugaredLogger,
) *InfantHandler {
	return &InfantHandler{
		responder:         responder{log: log},
		infantService:     infantService,
		reportService:     reportService,
		accessService:     accessService,
		invitationService: invitationService,
	}
}

// Register creates an infant with the caller as admin
func (h *InfantHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathInt(w, r, varUserID)
	if !ok {
		return
	}
	var req service.InfantRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	infant, err := h.infantService.Register(r.Context(), identityFrom(r), userID, req)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]*models.Infant{"infant": infant})
}

// Get returns the infant along with the caller's role on it
func (h *InfantHandler) Get(w http.ResponseWriter, r *http.Request) {
	infantID, ok := h.pathInt(w, r, varInfantID)
	if !ok {
		return
	}

	infant, err := h.infantService.Get(r.Context(), identityFrom(r), infantID)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*models.InfantProfile{"infant": infant})
}

// Update replaces the profile. Admin only.
func (h *InfantHandler) Update(w http.ResponseWriter, r *http.Request) {
	infantID, ok := h.pathInt(w, r, varInfantID)
	if !ok {
		return
	}
	var req service.InfantRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	infant, err := h.infantService.Update(r.Context(), identityFrom(r), infantID, req)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*models.Infant{"infant": infant})
}

// Events returns calendar-formatted feeds and diapers in the window
func (h *InfantHandler) Events(w http.ResponseWriter, r *http.Request) {
	infantID, ok := h.pathInt(w, r, varInfantID)
	if !ok {
		return
	}
	start, end, ok := h.window(w, r)
	if !ok {
		return
	}

	events, err := h.reportService.CalendarEvents(r.Context(), identityFrom(r), infantID, start, end)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*models.EventSet{"events": events})
}

// Today returns the raw records of one day with totals
func (h *InfantHandler) Today(w http.ResponseWriter, r *http.Request) {
	infantID, ok := h.pathInt(w, r, varInfantID)
	if !ok {
		return
	}
	start, end, ok := h.window(w, r)
	if !ok {
		return
	}

	today, err := h.reportService.DailyActivity(r.Context(), identityFrom(r), infantID, start, end)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*models.DailyActivity{"today": today})
}

// Report returns the merged event list, as JSON or as a CSV download with
// format=csv. hideFeeds and hideDiapers drop whole categories.
func (h *InfantHandler) Report(w http.ResponseWriter, r *http.Request) {
	infantID, ok := h.pathInt(w, r, varInfantID)
	if !ok {
		return
	}
	start, end, ok := h.window(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := models.EventFilter{
		HideFeeds:   queryBool(query.Get("hideFeeds")),
		HideDiapers: queryBool(query.Get("hideDiapers")),
	}

	events, err := h.reportService.RangeEvents(r.Context(), identityFrom(r), infantID, start, end, filter)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	if query.Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bably-report-%d.csv"`, infantID))
		if err := service.WriteCSV(w, events); err != nil {
			h.log.Errorw("failed to write report", "infant_id", infantID, "error", err)
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string][]models.CalendarEvent{"events": events})
}

// AuthUsers lists everyone else with access to the infant
func (h *InfantHandler) AuthUsers(w http.ResponseWriter, r *http.Request) {
	infantID, ok := h.pathInt(w, r, varInfantID)
	if !ok {
		return
	}

	caller := identityFrom(r)
	if _, err := h.accessService.Authorize(r.Context(), caller, infantID, models.PermRead); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	users, err := h.accessService.AuthorizedUsers(r.Context(), infantID, caller.UserID)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string][]models.InfantUser{"users": users})
}

// AddUser shares the infant with an email address
func (h *InfantHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	infantID, ok := h.pathInt(w, r, varInfantID)
	if !ok {
		return
	}
	var req service.InviteRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	details, err := h.invitationService.InviteOrAttach(r.Context(), identityFrom(r), infantID, req)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*models.InviteDetails{"details": details})
}

func queryBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
