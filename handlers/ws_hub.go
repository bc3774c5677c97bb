package handlers

import (
	"github.com/gorilla/websocket"

	"github.com/charbxl/nine999/nine999-backend/models"
)

const sendBufferSize = 256

// Connection is one WebSocket connection. session stays nil until the first
// valid join_game and is only ever written by the connection's own read loop.
type Connection struct {
	ws      *websocket.Conn
	send    chan []byte
	session *models.Session
}

type directMessage struct {
	target *Connection
	data   []byte
}

// Hub maintains the set of active connections and owns every delivery to
// them. All sends funnel through the run loop, so a send can never race the
// close of a connection's channel. Game events are targeted at the two
// players of a game rather than broadcast hub-wide.
type Hub struct {
	connections map[*Connection]bool

	register   chan *Connection
	unregister chan *Connection
	deliver    chan directMessage
}

func newHub() *Hub {
	return &Hub{
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		deliver:     make(chan directMessage),
	}
}

func (h *Hub) run() {
	for {
		select {
		case connection := <-h.register:
			h.connections[connection] = true
		case connection := <-h.unregister:
			if _, ok := h.connections[connection]; ok {
				delete(h.connections, connection)
				close(connection.send)
			}
		case message := <-h.deliver:
			if _, ok := h.connections[message.target]; !ok {
				continue
			}
			select {
			case message.target.send <- message.data:
			default:
				close(message.target.send)
				delete(h.connections, message.target)
			}
		}
	}
}
