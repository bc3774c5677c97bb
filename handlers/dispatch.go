package handlers

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/charbxl/nine999/nine999-backend/game"
	"github.com/charbxl/nine999/nine999-backend/models"
)

// processMessage decodes one inbound frame and dispatches on its event kind.
func (s *Server) processMessage(c *Connection, rawMessage []byte) {
	var env models.Envelope
	if err := json.Unmarshal(rawMessage, &env); err != nil {
		log.Warn().Err(err).Msg("malformed message")
		s.sendError(c, "malformed message")
		return
	}

	switch env.Event {
	case models.EventJoinGame:
		var p models.JoinGamePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			s.sendError(c, "malformed payload")
			return
		}
		s.handleJoinGame(c, p)
	case models.EventAttempt:
		var p models.AttemptPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			s.sendError(c, "malformed payload")
			return
		}
		s.handleAttempt(c, p)
	default:
		log.Warn().Str("event", env.Event).Msg("unhandled event")
	}
}

// handleJoinGame registers a session for the connection and queues it for
// pairing. The joined reply always carries a game id: the first player of a
// pair opens the waiting game, the second activates it.
func (s *Server) handleJoinGame(c *Connection, p models.JoinGamePayload) {
	if c.session != nil {
		s.sendError(c, "already joined")
		return
	}
	if !game.IsValidCode(p.Secret) {
		s.sendError(c, game.ErrInvalidSecret.Error())
		return
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		Secret:    p.Secret,
		Connected: true,
	}
	c.session = session

	// Enqueue and register under one lock: a session visible to the
	// matchmaker must already be a deliverable member, otherwise the other
	// player's game_start broadcast could run before this registration and
	// drop the event.
	s.mu.Lock()
	g, started := s.matchmaker.Enqueue(session)
	s.members[session.ID] = c
	s.games[session.ID] = g
	s.mu.Unlock()

	s.sendTo(c, models.EventJoined, models.JoinedPayload{
		UserID: session.ID,
		GameID: g.ID,
	})
	log.Info().Str("user_id", session.ID).Str("game_id", g.ID).Msg("user joined")

	if started {
		turn := g.CurrentTurn()
		s.broadcastGame(g, models.EventGameStart, models.GameStartPayload{Turn: turn})
		log.Info().Str("game_id", g.ID).Str("turn", turn).Msg("game started")
	}
}

// handleAttempt feeds one guess into the sender's game. The connection's own
// session decides who is guessing; the ids in the payload are advisory. A
// rejection goes back to the sender alone and changes nothing.
func (s *Server) handleAttempt(c *Connection, p models.AttemptPayload) {
	if c.session == nil {
		s.sendError(c, game.ErrGameNotActive.Error())
		return
	}
	g := s.gameOf(c.session.ID)
	if g == nil {
		s.sendError(c, game.ErrGameNotActive.Error())
		return
	}

	res, err := g.SubmitAttempt(c.session.ID, p.Guess)
	if err != nil {
		s.sendError(c, err.Error())
		return
	}

	if res.Finished {
		// A winning guess terminates the game; game_over is the combined
		// terminal result, so the winning attempt never appears in the
		// attempt_result stream.
		s.broadcastGame(g, models.EventGameOver, models.GameOverPayload{Winner: res.Winner})
		s.retire(g)
		log.Info().Str("game_id", g.ID).Str("winner", res.Winner).Msg("game over")
		return
	}

	s.broadcastGame(g, models.EventAttemptResult, models.AttemptResultPayload{
		UserID:   res.Attempt.UserID,
		Guess:    res.Attempt.Guess,
		Match:    res.Attempt.Match,
		NextTurn: res.NextTurn,
	})
}
