package room

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"trickmatch-server/pkg/match"
)

// ErrHubBusy is returned by Notify when the broadcast queue is full
var ErrHubBusy = errors.New("broadcast queue is full")

// CloseReasonShutdown is sent to every client when the hub stops
const CloseReasonShutdown = "server shutting down"

type broadcast struct {
	matchID string
	summary *match.Summary
}

type connect struct {
	client  *Client
	initial *match.Summary
}

// Hub fans match changes out to the clients watching each match
// All bookkeeping happens in the run loop, the exported methods only queue work.
// Changes can be handed to the hub out of commit order, so it remembers the newest
// summary of every open match and drops anything older.
type Hub struct {
	matches    map[string]map[*Client]bool
	latest     map[string]*match.Summary
	connect    chan connect
	disconnect chan *Client
	broadcast  chan broadcast
	count      chan chan int
	logger     logrus.FieldLogger
}

// NewHub returns a hub, call Run to start delivering
func NewHub(logger logrus.FieldLogger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Hub{
		matches:    make(map[string]map[*Client]bool),
		latest:     make(map[string]*match.Summary),
		connect:    make(chan connect, 256),
		disconnect: make(chan *Client, 256),
		broadcast:  make(chan broadcast, 256),
		count:      make(chan chan int),
		logger:     logger,
	}
}

// Run delivers messages until ctx is done
// On the way out every client is asked to close its connection.
func (h *Hub) Run(ctx context.Context) error {
	h.logger.Debug("starting hub run loop")
	for {
		select {
		case c := <-h.connect:
			h.clientConnected(c.client, c.initial)
		case client := <-h.disconnect:
			h.clientDisconnected(client)
		case b := <-h.broadcast:
			h.deliver(b.matchID, b.summary)
		case reply := <-h.count:
			n := 0
			for _, clients := range h.matches {
				n += len(clients)
			}
			reply <- n
		case <-ctx.Done():
			h.logger.Debug("terminating hub run loop")
			for _, clients := range h.matches {
				for client := range clients {
					client.CloseWithReason(CloseReasonShutdown)
				}
			}
			return nil
		}
	}
}

func (h *Hub) clientConnected(client *Client, initial *match.Summary) {
	matchID := client.MatchID()
	h.logger.WithField("client", client.String()).Debug("client connected")

	clients, found := h.matches[matchID]
	if !found {
		clients = make(map[*Client]bool)
		h.matches[matchID] = clients
	}
	clients[client] = true

	summary := h.remember(matchID, initial)
	if summary != nil && !client.Send(NewMatchStateResponse(summary)) {
		h.logger.WithField("client", client.String()).Warn("client buffer is full, dropping message")
	}
}

func (h *Hub) clientDisconnected(client *Client) {
	matchID := client.MatchID()
	h.logger.WithField("client", client.String()).Debug("client disconnected")

	clients, found := h.matches[matchID]
	if !found {
		return
	}

	delete(clients, client)
	if len(clients) == 0 {
		delete(h.matches, matchID)
		if latest, ok := h.latest[matchID]; ok && latest.IsComplete {
			delete(h.latest, matchID)
		}
	}
}

func (h *Hub) deliver(matchID string, summary *match.Summary) {
	if latest, ok := h.latest[matchID]; ok && summary.Version <= latest.Version {
		h.logger.WithFields(logrus.Fields{
			"matchID": matchID,
			"version": summary.Version,
			"latest":  latest.Version,
		}).Debug("dropping stale change")
		return
	}

	h.remember(matchID, summary)

	clients := h.matches[matchID]
	if len(clients) == 0 && summary.IsComplete {
		// nobody will ask about it again
		delete(h.latest, matchID)
	}

	msg := NewMatchStateResponse(summary)
	for client := range clients {
		if !client.Send(msg) {
			h.logger.WithField("client", client.String()).Warn("client buffer is full, dropping message")
		}
	}
}

// remember keeps the newer of summary and what is already known and returns it
func (h *Hub) remember(matchID string, summary *match.Summary) *match.Summary {
	latest, ok := h.latest[matchID]
	if summary == nil {
		return latest
	}

	if !ok || summary.Version > latest.Version {
		h.latest[matchID] = summary
		return summary
	}

	return latest
}

// ClientConnected is called when a client starts watching a match
// The client first receives the newer of initial and the last change the hub saw.
func (h *Hub) ClientConnected(client *Client, initial *match.Summary) {
	h.connect <- connect{client: client, initial: initial}
}

// ClientDisconnected is called when a client's connection is gone
func (h *Hub) ClientDisconnected(client *Client) {
	h.disconnect <- client
}

// Notify queues the summary for every client watching the match
func (h *Hub) Notify(ctx context.Context, matchID string, summary *match.Summary) error {
	select {
	case h.broadcast <- broadcast{matchID: matchID, summary: summary}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrHubBusy
	}
}

// ClientCount returns the number of connected clients
// It blocks until the run loop answers or ctx is done
func (h *Hub) ClientCount(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	select {
	case n := <-reply:
		return n, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
