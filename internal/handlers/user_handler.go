package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"bably/internal/models"
	"bably/internal/service"
)

// UserHandler handles accounts, settings and access to infants
type UserHandler struct {
	responder
	authService   *service.AuthService
	accessService *service.AccessService
	pushService   *service.PushService
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	authService *service.AuthService,
	accessService *service.AccessService,
	pushService *service.PushService,
	log *zap.SugaredLogger,
) *UserHandler {
	return &UserHandler{
		responder:     responder{log: log},
		authService:   authService,
		accessService: accessService,
		pushService:   pushService,
	}
}

// Register creates an account and returns its bearer token
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	token, err := h.authService.Register(r.Context(), req)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"token": token})
}

// Token exchanges credentials for a bearer token
func (h *UserHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req service.CredentialsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	token, err := h.authService.Login(r.Context(), req)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Reset emails a password reset link. The answer is the same whether or
// not the account exists.
func (h *UserHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"emailSent": true})
}

// NewPassword sets a new password using a reset token
func (h *UserHandler) NewPassword(w http.ResponseWriter, r *http.Request) {
	var req service.CredentialsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.ResetPassword(r.Context(), r.URL.Query().Get("token"), req); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"passwordUpdated": true})
}

// Get returns the caller's profile with reminders and infants
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.authService.Profile(r.Context(), mux.Vars(r)[varEmail])
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*models.UserProfile{"user": profile})
}

// UpdateReminders replaces the caller's reminder settings
func (h *UserHandler) UpdateReminders(w http.ResponseWriter, r *http.Request) {
	var req service.RemindersRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.UpdateReminders(r.Context(), mux.Vars(r)[varEmail], req); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// BeamsAuth signs a push token for the caller's own device
func (h *UserHandler) BeamsAuth(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if !strings.EqualFold(userID, identityFrom(r).Email) {
		h.respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	token, err := h.pushService.GenerateToken(userID)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, token)
}

// UpdateNotifyAdmin toggles whether a user's events notify the infant's admins
func (h *UserHandler) UpdateNotifyAdmin(w http.ResponseWriter, r *http.Request) {
	userID, infantID, ok := h.linkVars(w, r)
	if !ok {
		return
	}
	var req struct {
		NotifyAdmin bool `json:"notifyAdmin"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}

	actor, err := h.accessService.CheckAuthorized(r.Context(), identityFrom(r).Email, infantID)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	notify, err := h.accessService.UpdateNotifyAdmin(r.Context(), actor, userID, infantID, req.NotifyAdmin)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"notify": notify})
}

// UpdateAccess switches a user between guardian and babysitter
func (h *UserHandler) UpdateAccess(w http.ResponseWriter, r *http.Request) {
	userID, infantID, ok := h.linkVars(w, r)
	if !ok {
		return
	}
	var req struct {
		Crud bool `json:"crud"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}

	actor, err := h.accessService.Authorize(r.Context(), identityFrom(r), infantID, models.PermAdmin)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	crud, err := h.accessService.UpdateAccess(r.Context(), actor, userID, infantID, req.Crud)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"access": crud})
}

// RemoveAccess revokes a user's link to the infant. Their events stay.
func (h *UserHandler) RemoveAccess(w http.ResponseWriter, r *http.Request) {
	userID, infantID, ok := h.linkVars(w, r)
	if !ok {
		return
	}

	actor, err := h.accessService.Authorize(r.Context(), identityFrom(r), infantID, models.PermAdmin)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	removed, err := h.accessService.RemoveAccess(r.Context(), actor, userID, infantID)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"removedAccess": removed})
}

func (h *UserHandler) linkVars(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, ok := h.pathInt(w, r, varUserID)
	if !ok {
		return 0, 0, false
	}
	infantID, ok := h.pathInt(w, r, varInfantID)
	if !ok {
		return 0, 0, false
	}
	return userID, infantID, true
}
