package mux

import (
	"net/http"

	gmux "github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"trickmatch-server/pkg/referee"
	"trickmatch-server/pkg/room"
)

const uuidPattern = "(?i)[a-f0-9]{8}(?:-[a-f0-9]{4}){3}-[a-f0-9]{12}"

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version string
	referee *referee.Referee
	hub     *room.Hub
	logger  logrus.FieldLogger
}

// NewMux returns a new HTTP mux
// hub may be nil, in which case the websocket endpoint is not registered
func NewMux(version string, ref *referee.Referee, hub *room.Hub, logger logrus.FieldLogger) *Mux {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		referee: ref,
		hub:     hub,
		logger:  logger,
	}

	r := this.Router
	r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	r.Methods(http.MethodPost).Path("/match").Handler(this.postMatch())
	r.Methods(http.MethodGet).Path("/match").Handler(this.getMatch())

	mr := r.PathPrefix("/match/{id:" + uuidPattern + "}").Subrouter()
	mr.Methods(http.MethodGet).Path("").Handler(this.getMatchID())
	mr.Methods(http.MethodGet).Path("/plays").Handler(this.getMatchIDPlays())
	mr.Methods(http.MethodPost).Path("/play").Handler(this.postMatchIDPlay())

	if hub != nil {
		mr.Methods(http.MethodGet).Path("/ws").Handler(this.getMatchIDWS())
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, nil)
	})

	return this
}
