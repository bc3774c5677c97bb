package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/charbxl/nine999/nine999-backend/game"
	"github.com/charbxl/nine999/nine999-backend/models"
)

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("upgrade error")
		return
	}

	c := &Connection{ws: conn, send: make(chan []byte, sendBufferSize)}
	s.hub.register <- c

	go c.writePump()
	s.readPump(c)
}

// readPump consumes inbound frames for one connection until it drops. The
// deferred teardown is the disconnect handler: a player vanishing mid-game
// forfeits that game to the survivor.
func (s *Server) readPump(c *Connection) {
	defer func() {
		s.hub.unregister <- c
		c.ws.Close()
		s.dropSession(c)
	}()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("read loop closed")
			break
		}
		s.processMessage(c, message)
	}
}

func (c *Connection) writePump() {
	defer func() {
		c.ws.Close()
	}()

	for message := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Debug().Err(err).Msg("error writing message")
			break
		}
	}
}

// dropSession cleans up after a closed connection: a queued session leaves
// the queue, an active game ends with the disconnect sentinel as winner and
// the surviving player is told. Safe to call for never-joined connections.
func (s *Server) dropSession(c *Connection) {
	if c.session == nil {
		return
	}
	userID := c.session.ID

	// Connected is read under the same lock by broadcastGame.
	s.mu.Lock()
	c.session.Connected = false
	delete(s.members, userID)
	s.mu.Unlock()

	s.matchmaker.Withdraw(userID)

	g := s.gameOf(userID)
	if g == nil {
		log.Info().Str("user_id", userID).Msg("user disconnected")
		return
	}
	if g.Forfeit(userID) {
		s.broadcastGame(g, models.EventGameOver, models.GameOverPayload{
			Winner: game.DisconnectedWinner,
		})
	}
	s.retire(g)
	log.Info().Str("user_id", userID).Str("game_id", g.ID).Msg("user disconnected mid-game")
}
