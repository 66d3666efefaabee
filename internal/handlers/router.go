package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Handlers groups the route handlers the router serves
type Handlers struct {
	Users   *UserHandler
	Infants *InfantHandler
	Feeds   *FeedHandler
	Diapers *DiaperHandler
	Health  *HealthHandler
	Metrics http.Handler
}

// NewRouter wires every route behind CORS for allowedOrigin
func NewRouter(m *Middleware, h Handlers, allowedOrigin string) http.Handler {
	r := mux.NewRouter()
	r.Use(m.Logging, m.DecodeToken)

	r.NotFoundHandler = m.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
	}))
	r.MethodNotAllowedHandler = m.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.respondWithError(w, http.StatusMethodNotAllowed, ErrMethodNotAllowed, "", nil)
	}))

	r.HandleFunc("/health", h.Health.Check).Methods(http.MethodGet)
	r.Handle("/metrics", h.Metrics).Methods(http.MethodGet)

	// Users
	users := r.PathPrefix("/users").Subrouter()
	users.HandleFunc("/register", m.RateLimit(h.Users.Register)).Methods(http.MethodPost)
	users.HandleFunc("/token", m.RateLimit(h.Users.Token)).Methods(http.MethodPost)
	users.HandleFunc("/reset", m.RateLimit(h.Users.Reset)).Methods(http.MethodPost)
	users.HandleFunc("/new-password", m.RateLimit(h.Users.NewPassword)).Methods(http.MethodPost)
	users.HandleFunc("/pusher/beams-auth", m.RequireAuth(h.Users.BeamsAuth)).Methods(http.MethodGet)
	users.HandleFunc("/reminders/{email}", m.RequireAccount(m.RequireSelf(h.Users.UpdateReminders))).Methods(http.MethodPatch)
	users.HandleFunc("/notify-admin/{userId}/{infantId}", m.RequireAccount(h.Users.UpdateNotifyAdmin)).Methods(http.MethodPatch)
	users.HandleFunc("/access/{userId}/{infantId}", m.RequireAccount(h.Users.UpdateAccess)).Methods(http.MethodPatch)
	users.HandleFunc("/access/{userId}/{infantId}", m.RequireAccount(h.Users.RemoveAccess)).Methods(http.MethodDelete)
	users.HandleFunc("/{email}", m.RequireSelf(h.Users.Get)).Methods(http.MethodGet)

	// Infants
	infants := r.PathPrefix("/infants").Subrouter()
	infants.HandleFunc("/register/{userId}", m.RequireAccount(h.Infants.Register)).Methods(http.MethodPost)
	infants.HandleFunc("/events/{infantId}/{start}/{end}", m.RequireAuth(h.Infants.Events)).Methods(http.MethodGet)
	infants.HandleFunc("/today/{infantId}/{start}/{end}", m.RequireAuth(h.Infants.Today)).Methods(http.MethodGet)
	infants.HandleFunc("/report/{infantId}/{start}/{end}", m.RequireAuth(h.Infants.Report)).Methods(http.MethodGet)
	infants.HandleFunc("/auth-users/{infantId}", m.RequireAccount(h.Infants.AuthUsers)).Methods(http.MethodGet)
	infants.HandleFunc("/add-user/{infantId}", m.RequireAccount(h.Infants.AddUser)).Methods(http.MethodPost)
	infants.HandleFunc("/{infantId}", m.RequireAuth(h.Infants.Get)).Methods(http.MethodGet)
	infants.HandleFunc("/{infantId}", m.RequireAccount(h.Infants.Update)).Methods(http.MethodPatch)

	// Feeds
	r.HandleFunc("/feeds", m.RequireAccount(h.Feeds.Add)).Methods(http.MethodPost)
	r.HandleFunc("/feeds/{infantId}/{feedId}", m.RequireAuth(h.Feeds.Get)).Methods(http.MethodGet)
	r.HandleFunc("/feeds/{infantId}/{feedId}", m.RequireAccount(h.Feeds.Update)).Methods(http.MethodPatch)
	r.HandleFunc("/feeds/{infantId}/{feedId}", m.RequireAccount(h.Feeds.Delete)).Methods(http.MethodDelete)

	// Diapers
	r.HandleFunc("/diapers", m.RequireAccount(h.Diapers.Add)).Methods(http.MethodPost)
	r.HandleFunc("/diapers/{infantId}/{diaperId}", m.RequireAuth(h.Diapers.Get)).Methods(http.MethodGet)
	r.HandleFunc("/diapers/{infantId}/{diaperId}", m.RequireAccount(h.Diapers.Update)).Methods(http.MethodPatch)
	r.HandleFunc("/diapers/{infantId}/{diaperId}", m.RequireAccount(h.Diapers.Delete)).Methods(http.MethodDelete)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(SecurityHeaders(r))
}
