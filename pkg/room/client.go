package room

import (
	"fmt"

	"github.com/gorilla/websocket"
)

// Client is a client connected to the server via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close receives the reason when the server closes the connection
	Close chan string

	matchID  string
	remoteID string
}

// NewClient returns a new client watching a single match
func NewClient(conn *websocket.Conn, matchID, remoteID string) *Client {
	return &Client{
		send:     make(chan interface{}, 256),
		Close:    make(chan string, 1),
		Conn:     conn,
		matchID:  matchID,
		remoteID: remoteID,
	}
}

// Send queues a message for the web client
// It returns false if the client's buffer is full and the message was dropped
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// SendChan returns a read-only channel
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// CloseWithReason asks the client's write loop to send a close frame
// Only the first reason is kept.
func (c *Client) CloseWithReason(reason string) {
	select {
	case c.Close <- reason:
	default:
	}
}

// MatchID returns the match the client is watching
func (c *Client) MatchID() string {
	return c.matchID
}

// String returns a traceable identifier for the client and match
func (c *Client) String() string {
	return fmt.Sprintf("%s:%s", c.remoteID, c.matchID)
}
