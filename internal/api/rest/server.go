package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, handler *Handler) *Server {
	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", port),
			Handler:           NewRouter(handler),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter wires every route onto a fresh router. CORS wraps the router so
// preflight requests are answered before route matching.
func NewRouter(handler *Handler) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Route not found", nil)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	const api = "/api/v1"

	// Games
	router.HandleFunc(api+"/games", handler.ListGames).Methods("GET")
	router.HandleFunc(api+"/games/live", handler.LiveGames).Methods("GET")
	router.HandleFunc(api+"/games/{gameID}", handler.GetGame).Methods("GET")
	router.HandleFunc(api+"/games/{gameID}/summary", handler.GetGameSummary).Methods("GET")

	// Live scoring
	router.HandleFunc(api+"/games/{gameID}/goals", handler.RecordGoal).Methods("POST")
	router.HandleFunc(api+"/games/{gameID}/shots", handler.RecordShot).Methods("POST")
	router.HandleFunc(api+"/games/{gameID}/clock/tick", handler.TickClock).Methods("POST")

	// League
	router.HandleFunc(api+"/leaders", handler.GetLeaders).Methods("GET")
	router.HandleFunc(api+"/standings", handler.GetStandings).Methods("GET")

	// Teams
	router.HandleFunc(api+"/teams", handler.GetTeams).Methods("GET")
	router.HandleFunc(api+"/teams/{teamID}/roster", handler.GetTeamRoster).Methods("GET")

	return CORSMiddleware(router)
}

// Start serves until Shutdown
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
