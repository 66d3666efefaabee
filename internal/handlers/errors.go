package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"bably/internal/service"
	"bably/internal/validation"
)

type errorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// responder writes JSON bodies and the error envelope.
type responder struct {
	log *zap.SugaredLogger
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (rs responder) respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		if status >= http.StatusInternalServerError {
			rs.log.Errorw(logMsg, "status", status, "error", err)
		} else {
			rs.log.Debugw(logMsg, "status", status, "error", err)
		}
	}

	respondJSON(w, status, errorEnvelope{Error: errorBody{Message: userMsg, Status: status}})
}

// respondWithServiceError maps a service error to its status. Anything
// unrecognised is a 500 whose detail stays in the log.
func (rs responder) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		rs.respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
	case errors.Is(err, service.ErrBadRequest):
		rs.respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
	case errors.Is(err, service.ErrUnauthorized):
		rs.respondWithError(w, http.StatusUnauthorized, err.Error(), "", nil)
	case errors.Is(err, service.ErrNotFound):
		rs.respondWithError(w, http.StatusNotFound, err.Error(), "", nil)
	default:
		rs.respondWithError(w, http.StatusInternalServerError, ErrInternalServerErrorUC,
			r.Method+" "+r.URL.Path, err)
	}
}

func (rs responder) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		rs.respondWithError(w, http.StatusBadRequest, ErrInvalidBody, "", err)
		return false
	}
	return true
}

// pathInt reads a numeric path variable, answering 400 when it is not one.
func (rs responder) pathInt(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := mux.Vars(r)[name]
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		rs.respondWithError(w, http.StatusBadRequest, name+" must be a number", "", nil)
		return 0, false
	}
	return n, true
}

// window reads the {start}/{end} epoch-second pair.
func (rs responder) window(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	start, ok := rs.pathInt(w, r, varStart)
	if !ok {
		return 0, 0, false
	}
	end, ok := rs.pathInt(w, r, varEnd)
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}
