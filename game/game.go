package game

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/charbxl/nine999/nine999-backend/models"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// DisconnectedWinner is the reserved winner value for a game ended by the
// opponent dropping the connection rather than by a correct guess.
const DisconnectedWinner = "disconnected"

// TurnPolicy decides which player acts first when a game activates.
type TurnPolicy string

const (
	TurnPolicyFirst  TurnPolicy = "first"
	TurnPolicyRandom TurnPolicy = "random"
)

// Game is one paired match. All mutation goes through its mutex, so at most
// one attempt is in flight per game while independent games run in parallel.
type Game struct {
	ID      string
	Players [2]*models.Session
	Turn    string
	Guesses []models.Attempt
	Winner  string
	Status  Status

	policy TurnPolicy
	mu     sync.Mutex
}

// AttemptResult is the state snapshot taken under the game lock when an
// attempt is accepted, so broadcasts never re-read mutable fields.
type AttemptResult struct {
	Attempt  models.Attempt
	NextTurn string
	Finished bool
	Winner   string
}

// New creates a waiting game holding its first player. The game id exists
// from this point so the joined event can carry it before pairing.
func New(host *models.Session, policy TurnPolicy) *Game {
	return &Game{
		ID:      uuid.New().String(),
		Players: [2]*models.Session{host, nil},
		Guesses: []models.Attempt{},
		Status:  StatusWaiting,
		policy:  policy,
	}
}

// Activate pairs the second player in and moves the game to active,
// assigning the initial turn per policy. Returns the starting user id.
func (g *Game) Activate(opponent *models.Session) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Players[1] = opponent
	g.Status = StatusActive
	switch g.policy {
	case TurnPolicyRandom:
		g.Turn = g.Players[rand.Intn(2)].ID
	default:
		g.Turn = g.Players[0].ID
	}
	return g.Turn
}

// SubmitAttempt validates and applies one guess from userID. Either the game
// state mutates and a result snapshot is returned, or nothing changes and the
// rejection reason comes back. Late and duplicate submissions against a
// finished game land on ErrGameNotActive with no effect.
func (g *Game) SubmitAttempt(userID, guess string) (AttemptResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status != StatusActive {
		return AttemptResult{}, ErrGameNotActive
	}
	if userID != g.Turn {
		return AttemptResult{}, ErrNotYourTurn
	}
	if !IsValidCode(guess) {
		return AttemptResult{}, ErrInvalidGuess
	}

	opp := g.opponentLocked(userID)
	attempt := models.Attempt{
		UserID: userID,
		Guess:  guess,
		Match:  Score(opp.Secret, guess),
	}
	g.Guesses = append(g.Guesses, attempt)
	g.Turn = opp.ID

	if attempt.Match == 4 {
		g.Status = StatusFinished
		g.Winner = userID
	}

	return AttemptResult{
		Attempt:  attempt,
		NextTurn: g.Turn,
		Finished: g.Status == StatusFinished,
		Winner:   g.Winner,
	}, nil
}

// Forfeit ends an active game because userID dropped. Reports whether the
// game transitioned now; a second forfeit or a forfeit after a win is a
// no-op, which keeps disconnect handling idempotent.
func (g *Game) Forfeit(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status != StatusActive || g.opponentLocked(userID) == nil {
		return false
	}
	g.Status = StatusFinished
	g.Winner = DisconnectedWinner
	return true
}

// Opponent returns the other player's session, or nil if userID is not a
// player of this game.
func (g *Game) Opponent(userID string) *models.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.opponentLocked(userID)
}

func (g *Game) opponentLocked(userID string) *models.Session {
	for i, p := range g.Players {
		if p != nil && p.ID == userID {
			return g.Players[1-i]
		}
	}
	return nil
}

// HasPlayer reports whether userID is one of the two players.
func (g *Game) HasPlayer(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.Players {
		if p != nil && p.ID == userID {
			return true
		}
	}
	return false
}

// CurrentTurn returns the id of the player to act next.
func (g *Game) CurrentTurn() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Turn
}

// PlayerIDs returns the ids of the joined players, one entry while the game
// is still waiting for an opponent.
func (g *Game) PlayerIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, 2)
	for _, p := range g.Players {
		if p != nil {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Attempts returns a copy of the accepted guess log in order.
func (g *Game) Attempts() []models.Attempt {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.Attempt, len(g.Guesses))
	copy(out, g.Guesses)
	return out
}
