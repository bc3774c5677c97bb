package game

import "errors"

// Rejection reasons surfaced to clients through the error event. The message
// text is the wire format, so it stays lowercase and stable.
var (
	ErrInvalidSecret = errors.New("invalid secret")
	ErrInvalidGuess  = errors.New("invalid guess")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrGameNotActive = errors.New("game not active")
)
