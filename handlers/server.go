package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/charbxl/nine999/nine999-backend/game"
	"github.com/charbxl/nine999/nine999-backend/models"
	"github.com/charbxl/nine999/nine999-backend/pkg/config"
)

// Server wires the hub, the matchmaking queue and the per-user game registry
// behind the WebSocket endpoint.
type Server struct {
	hub        *Hub
	matchmaker *game.Matchmaker
	upgrader   websocket.Upgrader

	mu      sync.Mutex
	members map[string]*Connection // userID -> connection
	games   map[string]*game.Game  // userID -> the game that user is in
}

func New(cfg *config.Config) *Server {
	s := &Server{
		hub:        newHub(),
		matchmaker: game.NewMatchmaker(game.TurnPolicy(cfg.TurnPolicy)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		members: make(map[string]*Connection),
		games:   make(map[string]*game.Game),
	}
	go s.hub.run()
	return s
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.healthHandler).Methods("GET")
	r.HandleFunc("/ws", s.wsHandler)
	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// gameOf looks up the game a user belongs to, nil if none.
func (s *Server) gameOf(userID string) *game.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games[userID]
}

// retire drops a finished game from the registry. Connections stay alive so
// both clients can read the terminal event before closing on their own.
func (s *Server) retire(g *game.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range g.PlayerIDs() {
		delete(s.games, id)
	}
}

// sendTo frames an event and hands it to the hub for delivery. A connection
// that cannot keep up is dropped by the hub rather than blocking the game.
func (s *Server) sendTo(c *Connection, event string, data any) {
	message, err := models.Marshal(event, data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal event")
		return
	}
	s.hub.deliver <- directMessage{target: c, data: message}
}

// broadcastGame delivers an event to the game's still-connected players.
func (s *Server) broadcastGame(g *game.Game, event string, data any) {
	for _, id := range g.PlayerIDs() {
		s.mu.Lock()
		c := s.members[id]
		connected := c != nil && c.session != nil && c.session.Connected
		s.mu.Unlock()
		if connected {
			s.sendTo(c, event, data)
		}
	}
}

func (s *Server) sendError(c *Connection, msg string) {
	s.sendTo(c, models.EventError, msg)
}
