package match

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"trickmatch-server/pkg/deck"
)

// Apply validates a play and, if it is accepted, records it and advances the match
// Preconditions are checked in order: the match is open, the card is valid, it is the player's turn.
// A rejected play leaves m untouched. The returned play is the one appended to m.Plays.
func (m *Match) Apply(playerID string, card deck.Card, now time.Time) (*Play, error) {
	if m.IsComplete {
		return nil, ErrMatchComplete
	}

	if err := card.Validate(); err != nil {
		return nil, ValidationError(err.Error())
	}

	if playerID != m.CurrentTurn {
		return nil, &TurnError{PlayerID: playerID, CurrentTurn: m.CurrentTurn}
	}

	// everything that can fail is computed before m is touched
	nextPlayer, err := m.NextPlayer(playerID)
	if err != nil {
		return nil, err
	}

	play := &Play{
		ID:        uuid.New().String(),
		MatchID:   m.ID,
		PlayerID:  playerID,
		Round:     m.CurrentRound,
		Timestamp: now,
		Card:      card,
	}

	roundPlays := m.PlaysForRound(m.CurrentRound)
	if len(roundPlays) >= PlaysPerRound {
		return nil, InvariantError(fmt.Sprintf("%s already has %d plays", m.CurrentRound, len(roundPlays)))
	}

	if _, resolved := m.RoundWinners[m.CurrentRound]; resolved {
		return nil, InvariantError(fmt.Sprintf("%s is already resolved", m.CurrentRound))
	}

	for _, p := range roundPlays {
		if p.PlayerID == playerID {
			return nil, InvariantError(fmt.Sprintf("player %q already played in %s", playerID, m.CurrentRound))
		}
	}

	roundPlays = append(roundPlays, play)

	var gameWinner TeamID
	winners := m.RoundWinners
	closesRound := len(roundPlays) == PlaysPerRound
	if closesRound {
		roundWinner, err := ResolveRound(m.Team1, m.Team2, roundPlays)
		if err != nil {
			return nil, err
		}

		winners = make(map[Round]TeamID, len(m.RoundWinners)+1)
		for round, winner := range m.RoundWinners {
			winners[round] = winner
		}
		winners[m.CurrentRound] = roundWinner

		var decided bool
		gameWinner, decided = ResolveSeries(winners)
		if !decided && len(winners) == len(Rounds()) {
			// three rounds always produce a second win for someone
			return nil, InvariantError("three rounds resolved without a series winner")
		}
	}

	m.Plays = append(m.Plays, play)
	m.CurrentTurn = nextPlayer
	m.RoundWinners = winners
	m.Updated = now

	if closesRound {
		if next, ok := m.CurrentRound.Next(); ok {
			m.CurrentRound = next
		}

		if gameWinner != "" {
			m.GameWinner = gameWinner
			m.IsComplete = true
		}
	}

	return play, nil
}
