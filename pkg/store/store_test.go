package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trickmatch-server/pkg/deck"
	"trickmatch-server/pkg/match"
)

var cbg = context.Background()

func newMatch(t *testing.T) *match.Match {
	t.Helper()

	m, err := match.New(uuid.New().String(),
		match.Team{Player1: "A", Player2: "B"},
		match.Team{Player1: "C", Player2: "D"},
		time.Now().UTC().Truncate(time.Millisecond),
	)
	require.NoError(t, err)
	return m
}

// submit mirrors what the referee does inside a transaction
func submit(s Store, id, playerID string, card deck.Card) error {
	return s.Transact(cbg, func(tx Tx) error {
		m, err := tx.LoadMatch(cbg, id)
		if err != nil {
			return err
		}

		play, err := m.Apply(playerID, card, time.Now().UTC())
		if err != nil {
			return err
		}

		if err := tx.AppendPlay(cbg, play); err != nil {
			return err
		}

		return tx.SaveMatch(cbg, m)
	})
}

func idsOf(matches []*match.Match) map[string]bool {
	ids := make(map[string]bool)
	for _, m := range matches {
		ids[m.ID] = true
	}

	return ids
}

// testStore checks the behavior every Store implementation must have
func testStore(t *testing.T, s Store) {
	t.Run("create and load", func(t *testing.T) {
		m := newMatch(t)
		require.NoError(t, s.CreateMatch(cbg, m))

		loaded, err := s.LoadMatch(cbg, m.ID)
		require.NoError(t, err)
		assert.Equal(t, m.ID, loaded.ID)
		assert.Equal(t, m.Team1, loaded.Team1)
		assert.Equal(t, m.Team2, loaded.Team2)
		assert.Equal(t, "A", loaded.CurrentTurn)
		assert.Equal(t, match.Round1, loaded.CurrentRound)
		assert.Empty(t, loaded.RoundWinners)
		assert.Empty(t, loaded.Plays)
		assert.False(t, loaded.IsComplete)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.LoadMatch(cbg, uuid.New().String())
		assert.Equal(t, match.ErrNotFound, err)

		_, err = s.LoadMatch(cbg, "not-a-uuid")
		assert.Equal(t, match.ErrNotFound, err)
	})

	t.Run("commit", func(t *testing.T) {
		m := newMatch(t)
		require.NoError(t, s.CreateMatch(cbg, m))

		plays := []struct {
			playerID string
			card     deck.Card
		}{
			{"A", deck.Card{Value: 10, Suit: deck.Spades}},
			{"C", deck.Card{Value: 3, Suit: deck.Hearts}},
			{"B", deck.Card{Value: 7, Suit: deck.Diamonds}},
			{"D", deck.Card{Value: 2, Suit: deck.Clubs}},
			{"A", deck.Card{Value: 5, Suit: deck.Clubs}},
		}

		for _, p := range plays {
			require.NoError(t, submit(s, m.ID, p.playerID, p.card))
		}

		loaded, err := s.LoadMatch(cbg, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "C", loaded.CurrentTurn)
		assert.Equal(t, match.Round2, loaded.CurrentRound)
		assert.Equal(t, map[match.Round]match.TeamID{match.Round1: match.Team1}, loaded.RoundWinners)

		if assert.Equal(t, 5, len(loaded.Plays)) {
			for i, p := range plays {
				assert.Equal(t, p.playerID, loaded.Plays[i].PlayerID)
				assert.Equal(t, p.card, loaded.Plays[i].Card)
				assert.Equal(t, m.ID, loaded.Plays[i].MatchID)
			}

			assert.Equal(t, match.Round1, loaded.Plays[3].Round)
			assert.Equal(t, match.Round2, loaded.Plays[4].Round)
		}
	})

	t.Run("rejected transactions write nothing", func(t *testing.T) {
		m := newMatch(t)
		require.NoError(t, s.CreateMatch(cbg, m))

		err := submit(s, m.ID, "D", deck.Card{Value: 10, Suit: deck.Spades})
		var te *match.TurnError
		assert.ErrorAs(t, err, &te)

		errBoom := errors.New("boom")
		err = s.Transact(cbg, func(tx Tx) error {
			loaded, err := tx.LoadMatch(cbg, m.ID)
			if err != nil {
				return err
			}

			play, err := loaded.Apply("A", deck.Card{Value: 10, Suit: deck.Spades}, time.Now())
			if err != nil {
				return err
			}

			if err := tx.AppendPlay(cbg, play); err != nil {
				return err
			}

			if err := tx.SaveMatch(cbg, loaded); err != nil {
				return err
			}

			return errBoom
		})
		assert.Equal(t, errBoom, err)

		loaded, err := s.LoadMatch(cbg, m.ID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Plays)
		assert.Equal(t, "A", loaded.CurrentTurn)
	})

	t.Run("panicking transactions write nothing and release the match", func(t *testing.T) {
		m := newMatch(t)
		require.NoError(t, s.CreateMatch(cbg, m))

		assert.Panics(t, func() {
			_ = s.Transact(cbg, func(tx Tx) error {
				loaded, err := tx.LoadMatch(cbg, m.ID)
				if err != nil {
					return err
				}

				play, err := loaded.Apply("A", deck.Card{Value: 10, Suit: deck.Spades}, time.Now())
				if err != nil {
					return err
				}

				if err := tx.AppendPlay(cbg, play); err != nil {
					return err
				}

				panic("boom")
			})
		})

		// a transaction left open would still hold the match
		ctx, cancel := context.WithTimeout(cbg, time.Second*5)
		defer cancel()
		err := s.Transact(ctx, func(tx Tx) error {
			loaded, err := tx.LoadMatch(ctx, m.ID)
			if err != nil {
				return err
			}

			assert.Empty(t, loaded.Plays)
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("duplicate play", func(t *testing.T) {
		m := newMatch(t)
		require.NoError(t, s.CreateMatch(cbg, m))
		require.NoError(t, submit(s, m.ID, "A", deck.Card{Value: 10, Suit: deck.Spades}))

		err := s.Transact(cbg, func(tx Tx) error {
			return tx.AppendPlay(cbg, &match.Play{
				ID:        uuid.New().String(),
				MatchID:   m.ID,
				PlayerID:  "A",
				Round:     match.Round1,
				Timestamp: time.Now().UTC(),
				Card:      deck.Card{Value: 11, Suit: deck.Spades},
			})
		})
		assert.True(t, errors.Is(err, match.ErrDuplicatePlay), "got %v", err)

		loaded, err := s.LoadMatch(cbg, m.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, len(loaded.Plays))
	})

	t.Run("active matches", func(t *testing.T) {
		open := newMatch(t)
		require.NoError(t, s.CreateMatch(cbg, open))
		require.NoError(t, submit(s, open.ID, "A", deck.Card{Value: 4, Suit: deck.Hearts}))

		done := newMatch(t)
		require.NoError(t, s.CreateMatch(cbg, done))
		for _, p := range []string{"A", "C", "B", "D", "A", "C", "B", "D"} {
			value := 2
			if p == "A" {
				value = 13
			}
			require.NoError(t, submit(s, done.ID, p, deck.Card{Value: value, Suit: deck.Clubs}))
		}

		completed, err := s.LoadMatch(cbg, done.ID)
		require.NoError(t, err)
		assert.True(t, completed.IsComplete)
		assert.Equal(t, match.Team1, completed.GameWinner)

		active, err := s.ListActiveMatches(cbg)
		require.NoError(t, err)

		ids := idsOf(active)
		assert.True(t, ids[open.ID])
		assert.False(t, ids[done.ID])

		for _, m := range active {
			if m.ID == open.ID {
				assert.Equal(t, 1, len(m.Plays))
			}
		}
	})
}
