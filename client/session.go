package client

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/charbxl/nine999/nine999-backend/game"
	"github.com/charbxl/nine999/nine999-backend/models"
)

// Session owns one connection to the server and pumps inbound events into an
// explicit queue. The consumer drains Inbound from a single goroutine and
// feeds each envelope to a State, so client state never sees concurrent
// mutation. Submissions are fire-and-forget; the result or error arrives
// later on the queue.
type Session struct {
	conn    *websocket.Conn
	inbound chan models.Envelope
}

// Dial connects to the server's ws endpoint and starts the read loop. Close
// the session to release the connection; Inbound closes when the server side
// goes away.
func Dial(url string) (*Session, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	s := &Session{
		conn:    conn,
		inbound: make(chan models.Envelope, 16),
	}
	go s.readLoop()
	return s, nil
}

func (s *Session) readLoop() {
	defer close(s.inbound)
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var env models.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			continue
		}
		s.inbound <- env
	}
}

// Inbound is the queue of server events in arrival order.
func (s *Session) Inbound() <-chan models.Envelope {
	return s.inbound
}

// Join registers a secret with the server. Format violations never reach the
// network; the server re-validates as the source of truth.
func (s *Session) Join(username, secret string) error {
	if !game.IsValidCode(secret) {
		return game.ErrInvalidSecret
	}
	return s.emit(models.EventJoinGame, models.JoinGamePayload{
		Username: username,
		Secret:   secret,
	})
}

// SubmitGuess sends one attempt. Callers gate on State.CanGuess first; this
// only writes the frame.
func (s *Session) SubmitGuess(gameID, userID, guess string) error {
	return s.emit(models.EventAttempt, models.AttemptPayload{
		GameID: gameID,
		UserID: userID,
		Guess:  guess,
	})
}

func (s *Session) emit(event string, data any) error {
	message, err := models.Marshal(event, data)
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, message)
}

func (s *Session) Close() error {
	_ = s.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	return s.conn.Close()
}
