package models

import "encoding/json"

// Event names carried in the wire envelope, client to server.
const (
	EventJoinGame = "join_game"
	EventAttempt  = "attempt"
)

// Event names carried in the wire envelope, server to client.
const (
	EventJoined        = "joined"
	EventGameStart     = "game_start"
	EventAttemptResult = "attempt_result"
	EventGameOver      = "game_over"
	EventError         = "error"
)

// Envelope is the frame for every message in either direction. Data holds
// the event-specific payload, decoded once the event name is known.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type JoinGamePayload struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

type AttemptPayload struct {
	GameID string `json:"gameId"`
	UserID string `json:"userId"`
	Guess  string `json:"guess"`
}

type JoinedPayload struct {
	UserID string `json:"userId"`
	GameID string `json:"gameId"`
}

type GameStartPayload struct {
	Turn string `json:"turn"`
}

type AttemptResultPayload struct {
	UserID   string `json:"userId"`
	Guess    string `json:"guess"`
	Match    int    `json:"match"`
	NextTurn string `json:"nextTurn"`
}

type GameOverPayload struct {
	Winner string `json:"winner"`
}

// Marshal frames an event payload into an envelope ready for the wire.
func Marshal(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
