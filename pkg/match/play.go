package match

import (
	"time"

	"trickmatch-server/pkg/deck"
)

// Play is a single card played by a player
// A play is immutable once recorded
type Play struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"matchId"`
	PlayerID  string    `json:"playerId"`
	Round     Round     `json:"round"`
	Timestamp time.Time `json:"timestamp"`
	Card      deck.Card `json:"card"`
}
