package ui

import (
	"encoding/json"
	"net/http"

	"focusgate/app"
	"focusgate/internal"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// AuthCheckServer is the small forward-auth listener a reverse proxy points
// at to gate unrelated traffic while a break is in progress. It runs on its
// own port so proxy traffic never mixes with the session API.
type AuthCheckServer struct {
	router  *chi.Mux
	service *app.FocusService
	logger  *internal.Logger
}

// NewAuthCheckServer creates the forward-auth listener
func NewAuthCheckServer(service *app.FocusService, logger *internal.Logger) *AuthCheckServer {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	s := &AuthCheckServer{
		router:  router,
		service: service,
		logger:  logger,
	}
	router.Get("/check", s.handleCheck)
	router.Get("/auth-check", s.handleAuthCheck)
	return s
}

// Router exposes the handler for tests and for mounting
func (s *AuthCheckServer) Router() http.Handler {
	return s.router
}

// Run starts the listener on the given address
func (s *AuthCheckServer) Run(addr string) error {
	s.logger.Info("auth-check server listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// handleCheck reports break state as JSON
func (s *AuthCheckServer) handleCheck(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.BreakState(r.Context())
	if err != nil {
		s.logger.Error("check failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"on_break":      state.BreakUntil != nil,
		"break_until":   state.BreakUntil,
		"check_in_mode": state.CheckInMode,
	})
}

// handleAuthCheck answers in forward-auth style: 2xx passes the request
// through, 403 holds it while a break is in progress. On a store failure it
// fails open so a database hiccup never locks the user out of everything.
func (s *AuthCheckServer) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.BreakState(r.Context())
	if err != nil {
		s.logger.Error("auth-check failed open: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	if state.BreakUntil != nil {
		http.Error(w, "on break", http.StatusForbidden)
		return
	}
	w.WriteHeader(http.StatusOK)
}
