package game

import (
	"sync"

	"github.com/charbxl/nine999/nine999-backend/models"
)

// Matchmaker pairs sessions strictly first-come-first-served. The first
// unmatched session opens a waiting game; the next one completes it. No
// guess processing happens before a game activates.
type Matchmaker struct {
	mu      sync.Mutex
	pending *Game
	policy  TurnPolicy
}

func NewMatchmaker(policy TurnPolicy) *Matchmaker {
	return &Matchmaker{policy: policy}
}

// Enqueue places a session into the queue. The returned game is waiting for
// the first player of a pair and active for the second; started reports
// whether this call completed the pairing.
func (m *Matchmaker) Enqueue(s *models.Session) (g *Game, started bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil {
		m.pending = New(s, m.policy)
		return m.pending, false
	}
	g = m.pending
	m.pending = nil
	g.Activate(s)
	return g, true
}

// Withdraw removes a still-waiting session, used when a player disconnects
// before being paired. Reports whether anything was removed.
func (m *Matchmaker) Withdraw(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil || !m.pending.HasPlayer(userID) {
		return false
	}
	m.pending = nil
	return true
}
