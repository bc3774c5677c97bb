// Package client mirrors the slice of server game state one player sees. The
// State here is purely reactive: it is rebuilt from received events and holds
// no authority of its own, the server enforces turns and scoring.
package client

import (
	"encoding/json"
	"fmt"

	"github.com/charbxl/nine999/nine999-backend/game"
	"github.com/charbxl/nine999/nine999-backend/models"
)

// State is the local view of a game. Both players receive every
// attempt_result, so after the same event sequence two States hold identical
// guess logs, which is what makes the share text reproducible on either side.
type State struct {
	UserID      string
	GameID      string
	Turn        string
	GameStarted bool
	Winner      string
	Guesses     []models.Attempt
}

func NewState() *State {
	return &State{Guesses: []models.Attempt{}}
}

// Apply folds one server event into the state. notice carries a user-facing
// message for error events, which are informational: the server rejected a
// request without changing anything, so there is no local state to undo. A
// decode failure leaves the state untouched.
func (s *State) Apply(env models.Envelope) (notice string, err error) {
	switch env.Event {
	case models.EventJoined:
		var p models.JoinedPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return "", fmt.Errorf("decode joined: %w", err)
		}
		s.UserID = p.UserID
		s.GameID = p.GameID
	case models.EventGameStart:
		var p models.GameStartPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return "", fmt.Errorf("decode game_start: %w", err)
		}
		s.Turn = p.Turn
		s.GameStarted = true
	case models.EventAttemptResult:
		var p models.AttemptResultPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return "", fmt.Errorf("decode attempt_result: %w", err)
		}
		s.Guesses = append(s.Guesses, models.Attempt{
			UserID: p.UserID,
			Guess:  p.Guess,
			Match:  p.Match,
		})
		s.Turn = p.NextTurn
	case models.EventGameOver:
		var p models.GameOverPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return "", fmt.Errorf("decode game_over: %w", err)
		}
		s.Winner = p.Winner
	case models.EventError:
		var msg string
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return "", fmt.Errorf("decode error event: %w", err)
		}
		return msg, nil
	default:
		return "", fmt.Errorf("unknown event %q", env.Event)
	}
	return "", nil
}

// MyTurn is derived from the authoritative snapshot, never stored, so it
// cannot drift from what the server broadcast.
func (s *State) MyTurn() bool {
	return s.GameStarted && s.Winner == "" && s.Turn == s.UserID
}

// Done reports whether the game reached a terminal state.
func (s *State) Done() bool {
	return s.Winner != ""
}

func (s *State) DidWin() bool {
	return s.Winner != "" && s.Winner == s.UserID
}

func (s *State) OpponentDisconnected() bool {
	return s.Winner == game.DisconnectedWinner
}

// CanGuess checks the local submission gate: the game is running, it is this
// player's turn and the guess is four digits. This mirrors the server checks
// as a UX affordance only; the server re-validates every attempt.
func (s *State) CanGuess(guess string) error {
	if !s.GameStarted || s.Done() {
		return game.ErrGameNotActive
	}
	if !s.MyTurn() {
		return game.ErrNotYourTurn
	}
	if !game.IsValidCode(guess) {
		return game.ErrInvalidGuess
	}
	return nil
}
