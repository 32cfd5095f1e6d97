package mux

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	gmux "github.com/gorilla/mux"
	"trickmatch-server/pkg/deck"
	"trickmatch-server/pkg/match"
)

// matchIDVar returns the match id of the route in its canonical lowercase form
func matchIDVar(r *http.Request) string {
	return strings.ToLower(gmux.Vars(r)["id"])
}

type postMatchPayload struct {
	Team1 match.Team `json:"team1"`
	Team2 match.Team `json:"team2"`
}

func (m *Mux) postMatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload postMatchPayload
		if !decodeRequest(w, r, &payload) {
			return
		}

		created, err := m.referee.CreateMatch(r.Context(), payload.Team1, payload.Team2)
		if err != nil {
			writeMatchError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, created.Summary())
	}
}

func (m *Mux) getMatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, rows, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		summaries, err := m.referee.ListActiveMatches(r.Context())
		if err != nil {
			writeMatchError(w, err)
			return
		}

		if start > int64(len(summaries)) {
			start = int64(len(summaries))
		}

		summaries = summaries[start:]
		if len(summaries) > rows {
			summaries = summaries[:rows]
		}

		writeJSON(w, http.StatusOK, summaries)
	}
}

func (m *Mux) getMatchID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := m.referee.GetMatch(r.Context(), matchIDVar(r))
		if err != nil {
			writeMatchError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

func (m *Mux) getMatchIDPlays() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rounds, err := m.referee.GetPlays(r.Context(), matchIDVar(r))
		if err != nil {
			writeMatchError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, rounds)
	}
}

// cardPayload accepts either {"value":10,"suit":"spades"} or the short form "10s"
type cardPayload struct {
	deck.Card
}

func (c *cardPayload) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(b), []byte(`"`)) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		card, err := deck.CardFromString(s)
		if err != nil {
			return err
		}

		c.Card = card
		return nil
	}

	return json.Unmarshal(b, &c.Card)
}

type postPlayPayload struct {
	PlayerID string      `json:"playerId"`
	Card     cardPayload `json:"card"`
}

func (m *Mux) postMatchIDPlay() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload postPlayPayload
		if !decodeRequest(w, r, &payload) {
			return
		}

		summary, err := m.referee.SubmitPlay(r.Context(), matchIDVar(r), payload.PlayerID, payload.Card.Card)
		if err != nil {
			writeMatchError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}
