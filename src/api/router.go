package api

import (
	"github.com/gorilla/mux"

	"github.com/perplext/cipherhoneypot/src/events"
)

// RouterConfig controls the auth and rate-limiting behavior of the router.
type RouterConfig struct {
	APIKeyHash     string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter wires the full HTTP surface: health, the synchronous engage
// endpoint, read-only profile/session introspection, and a WebSocket relay
// onto the event bus.
func NewRouter(s *Server, bus events.Bus, cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.Use(requestIDMiddleware)
	v1.Use(loggingMiddleware)

	v1.HandleFunc("/health", s.handleHealth).Methods("GET")

	protected := v1.PathPrefix("").Subrouter()
	protected.Use(authMiddleware(cfg.APIKeyHash))
	protected.Use(rateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	protected.HandleFunc("/engage", s.handleEngage).Methods("POST")
	protected.HandleFunc("/session/{id}", s.handleGetSession).Methods("GET")
	protected.HandleFunc("/profile/{sender}", s.handleGetProfile).Methods("GET")
	protected.HandleFunc("/profiles", s.handleListProfiles).Methods("GET")

	hub := NewHub(bus)
	protected.HandleFunc("/events", hub.ServeWS)

	return r
}
