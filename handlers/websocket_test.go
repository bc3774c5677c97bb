package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charbxl/nine999/nine999-backend/models"
	"github.com/charbxl/nine999/nine999-backend/pkg/config"
)

const readTimeout = 2 * time.Second

func startTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()
	cfg := &config.Config{Addr: ":0", LogLevel: "warn", TurnPolicy: "first"}
	s := New(cfg)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv, s
}

func wsDial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "dial failed")
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	message, err := models.Marshal(event, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, message))
}

func readEvent(t *testing.T, conn *websocket.Conn) models.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err, "read failed")
	var env models.Envelope
	require.NoError(t, json.Unmarshal(data, &env), "invalid JSON from server: %s", data)
	return env
}

func decodePayload[T any](t *testing.T, env models.Envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// join submits a secret and returns the joined payload.
func join(t *testing.T, conn *websocket.Conn, secret string) models.JoinedPayload {
	t.Helper()
	sendEvent(t, conn, models.EventJoinGame, models.JoinGamePayload{Secret: secret})
	env := readEvent(t, conn)
	require.Equal(t, models.EventJoined, env.Event)
	return decodePayload[models.JoinedPayload](t, env)
}

// pair joins two connections and consumes both game_start events.
func pair(t *testing.T, a, b *websocket.Conn) (models.JoinedPayload, models.JoinedPayload) {
	t.Helper()
	ja := join(t, a, "1234")
	jb := join(t, b, "5678")

	for _, conn := range []*websocket.Conn{a, b} {
		env := readEvent(t, conn)
		require.Equal(t, models.EventGameStart, env.Event)
		start := decodePayload[models.GameStartPayload](t, env)
		require.Equal(t, ja.UserID, start.Turn, "first joiner starts")
	}
	return ja, jb
}

func TestHealth(t *testing.T) {
	srv, _ := startTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJoinAssignsIdentity(t *testing.T) {
	srv, _ := startTestServer(t)
	conn := wsDial(t, srv)

	joined := join(t, conn, "1234")
	assert.NotEmpty(t, joined.UserID)
	assert.NotEmpty(t, joined.GameID)
}

func TestJoinRejectsBadSecret(t *testing.T) {
	srv, _ := startTestServer(t)
	conn := wsDial(t, srv)

	sendEvent(t, conn, models.EventJoinGame, models.JoinGamePayload{Secret: "123"})
	env := readEvent(t, conn)
	assert.Equal(t, models.EventError, env.Event)
	assert.Equal(t, "invalid secret", decodePayload[string](t, env))

	// The connection is still usable for a valid join.
	joined := join(t, conn, "0000")
	assert.NotEmpty(t, joined.UserID)
}

func TestPairingSharesOneGame(t *testing.T) {
	srv, _ := startTestServer(t)
	a := wsDial(t, srv)
	b := wsDial(t, srv)

	ja, jb := pair(t, a, b)
	assert.Equal(t, ja.GameID, jb.GameID)
	assert.NotEqual(t, ja.UserID, jb.UserID)
}

func TestTurnProtocol(t *testing.T) {
	srv, _ := startTestServer(t)
	a := wsDial(t, srv)
	b := wsDial(t, srv)
	ja, jb := pair(t, a, b)

	// Out of turn: rejected, delivered to the offender only.
	sendEvent(t, b, models.EventAttempt, models.AttemptPayload{GameID: jb.GameID, UserID: jb.UserID, Guess: "1111"})
	env := readEvent(t, b)
	require.Equal(t, models.EventError, env.Event)
	assert.Equal(t, "not your turn", decodePayload[string](t, env))

	// A guesses against b's secret "5678"; both clients see the result.
	sendEvent(t, a, models.EventAttempt, models.AttemptPayload{GameID: ja.GameID, UserID: ja.UserID, Guess: "1111"})
	for _, conn := range []*websocket.Conn{a, b} {
		env := readEvent(t, conn)
		require.Equal(t, models.EventAttemptResult, env.Event)
		res := decodePayload[models.AttemptResultPayload](t, env)
		assert.Equal(t, ja.UserID, res.UserID)
		assert.Equal(t, "1111", res.Guess)
		assert.Equal(t, 0, res.Match)
		assert.Equal(t, jb.UserID, res.NextTurn)
	}

	// B wins by matching a's secret exactly; the terminal event carries it.
	sendEvent(t, b, models.EventAttempt, models.AttemptPayload{GameID: jb.GameID, UserID: jb.UserID, Guess: "1234"})
	for _, conn := range []*websocket.Conn{a, b} {
		env := readEvent(t, conn)
		require.Equal(t, models.EventGameOver, env.Event)
		assert.Equal(t, jb.UserID, decodePayload[models.GameOverPayload](t, env).Winner)
	}

	// Retried attempt against the finished game is a rejected no-op.
	sendEvent(t, a, models.EventAttempt, models.AttemptPayload{GameID: ja.GameID, UserID: ja.UserID, Guess: "5678"})
	env = readEvent(t, a)
	require.Equal(t, models.EventError, env.Event)
	assert.Equal(t, "game not active", decodePayload[string](t, env))
}

func TestAttemptBeforeJoin(t *testing.T) {
	srv, _ := startTestServer(t)
	conn := wsDial(t, srv)

	sendEvent(t, conn, models.EventAttempt, models.AttemptPayload{Guess: "1234"})
	env := readEvent(t, conn)
	assert.Equal(t, models.EventError, env.Event)
	assert.Equal(t, "game not active", decodePayload[string](t, env))
}

func TestAttemptWhileWaitingForOpponent(t *testing.T) {
	srv, _ := startTestServer(t)
	conn := wsDial(t, srv)
	joined := join(t, conn, "1234")

	sendEvent(t, conn, models.EventAttempt, models.AttemptPayload{GameID: joined.GameID, UserID: joined.UserID, Guess: "1111"})
	env := readEvent(t, conn)
	assert.Equal(t, models.EventError, env.Event)
	assert.Equal(t, "game not active", decodePayload[string](t, env))
}

func TestDisconnectForfeitsGame(t *testing.T) {
	srv, _ := startTestServer(t)
	a := wsDial(t, srv)
	b := wsDial(t, srv)
	pair(t, a, b)

	require.NoError(t, b.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	b.Close()

	env := readEvent(t, a)
	require.Equal(t, models.EventGameOver, env.Event)
	assert.Equal(t, "disconnected", decodePayload[models.GameOverPayload](t, env).Winner)
}

func TestDisconnectWhileWaitingLeavesQueue(t *testing.T) {
	srv, _ := startTestServer(t)
	a := wsDial(t, srv)
	join(t, a, "1234")
	a.Close()

	// Give the server a moment to process the drop, then make sure the next
	// two joiners pair with each other, not with the ghost.
	time.Sleep(100 * time.Millisecond)

	b := wsDial(t, srv)
	c := wsDial(t, srv)
	jb, jc := pair(t, b, c)
	assert.Equal(t, jb.GameID, jc.GameID)
}

// joinUntilStart drives one player through join and the wait for game_start,
// returning an error instead of failing so it can run off the test goroutine.
func joinUntilStart(wsURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	message, err := models.Marshal(models.EventJoinGame, models.JoinGamePayload{Secret: "1234"})
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
		return err
	}

	for _, want := range []string{models.EventJoined, models.EventGameStart} {
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return err
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("waiting for %s: %w", want, err)
		}
		var env models.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return err
		}
		if env.Event != want {
			return fmt.Errorf("got %s, want %s", env.Event, want)
		}
	}
	return nil
}

func TestConcurrentJoinersAllReceiveGameStart(t *testing.T) {
	srv, _ := startTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	// Joins race each other through the matchmaker; every player of every
	// pair must still see game_start, including a first joiner whose
	// opponent pairs immediately after their enqueue.
	const players = 20
	errs := make(chan error, players)
	var wg sync.WaitGroup
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- joinUntilStart(wsURL)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestSessionLifecycleTracksConnection(t *testing.T) {
	srv, s := startTestServer(t)
	conn := wsDial(t, srv)
	joined := join(t, conn, "1234")

	s.mu.Lock()
	c := s.members[joined.UserID]
	s.mu.Unlock()
	require.NotNil(t, c)
	session := c.session
	require.NotNil(t, session)
	assert.True(t, session.Connected)

	conn.Close()

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, member := s.members[joined.UserID]
		return !member && !session.Connected
	}, readTimeout, 10*time.Millisecond, "drop must clear membership and the connected flag")
}

func TestMalformedFrame(t *testing.T) {
	srv, _ := startTestServer(t)
	conn := wsDial(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	env := readEvent(t, conn)
	assert.Equal(t, models.EventError, env.Event)
}
