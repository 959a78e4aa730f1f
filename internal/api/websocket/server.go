package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fortuna/faceoff/internal/logger"
	"github.com/fortuna/faceoff/internal/publisher"
	"github.com/fortuna/faceoff/internal/scoring"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SummaryProvider rebuilds a game summary after a change
type SummaryProvider interface {
	GetSummary(ctx context.Context, gameID string) (*scoring.GameSummary, error)
}

// Update is the message pushed to subscribers when a game changes
type Update struct {
	Type    string               `json:"type"`
	GameID  string               `json:"game_id"`
	Kind    string               `json:"kind,omitempty"`
	PlayID  string               `json:"play_id,omitempty"`
	Summary *scoring.GameSummary `json:"summary"`
}

// Server represents the WebSocket server
type Server struct {
	port      string
	server    *http.Server
	hub       *Hub
	summaries SummaryProvider
	redis     *redis.Client
	log       zerolog.Logger
}

// NewServer creates a new WebSocket server. rdb may be nil, in which case no
// stream is consumed and clients receive no updates.
func NewServer(summaries SummaryProvider, rdb *redis.Client) *Server {
	return &Server{
		hub:       NewHub(),
		summaries: summaries,
		redis:     rdb,
		log:       logger.Component("websocket"),
	}
}

// Start runs the hub and stream consumer and serves until Shutdown
func (s *Server) Start(ctx context.Context, port string) error {
	s.port = port

	go s.hub.Run(ctx)
	if s.redis != nil {
		go s.consume(ctx)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().Str("port", port).Msg("WebSocket server listening")
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/games/live", s.handleLiveGames)
	mux.HandleFunc("/ws/health", s.handleHealth)
	return mux
}

// handleLiveGames subscribes a connection to one game, or every game when
// the game parameter is empty
func (s *Server) handleLiveGames(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to upgrade connection")
		return
	}

	client := &Client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		gameID: r.URL.Query().Get("game"),
	}

	if !s.hub.Register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"clients": s.hub.ClientCount(),
	})
}

// consume follows the events stream from its tail and pushes a fresh summary
// for every notice
func (s *Server) consume(ctx context.Context) {
	lastID := "$"
	s.log.Info().Str("stream", publisher.EventsStream).Msg("→ Following event stream")

	for {
		streams, err := s.redis.XRead(ctx, &redis.XReadArgs{
			Streams: []string{publisher.EventsStream, lastID},
			Count:   100,
			Block:   5 * time.Second,
		}).Result()

		if ctx.Err() != nil {
			s.log.Info().Msg("→ Event stream consumer stopped")
			return
		}
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("reading event stream")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				s.handleNotice(ctx, msg.Values)
			}
		}
	}
}

func (s *Server) handleNotice(ctx context.Context, values map[string]interface{}) {
	n, err := publisher.ParseNotice(values)
	if err != nil {
		s.log.Warn().Err(err).Msg("skipping malformed stream entry")
		return
	}

	summary, err := s.summaries.GetSummary(ctx, n.GameID)
	if err != nil {
		s.log.Warn().Err(err).Str("game_id", n.GameID).Msg("rebuilding summary")
		return
	}

	data, err := json.Marshal(Update{
		Type:    "game.summary",
		GameID:  n.GameID,
		Kind:    n.Kind,
		PlayID:  n.PlayID,
		Summary: summary,
	})
	if err != nil {
		s.log.Error().Err(err).Str("game_id", n.GameID).Msg("encoding update")
		return
	}

	s.hub.Publish(n.GameID, data)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
