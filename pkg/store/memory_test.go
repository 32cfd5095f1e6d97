package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trickmatch-server/pkg/deck"
)

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestMemory_CreateMatch_duplicate(t *testing.T) {
	s := NewMemory()
	m := newMatch(t)
	require.NoError(t, s.CreateMatch(cbg, m))
	assert.Error(t, s.CreateMatch(cbg, m))
}

func TestMemory_LoadMatch_isACopy(t *testing.T) {
	s := NewMemory()
	m := newMatch(t)
	require.NoError(t, s.CreateMatch(cbg, m))

	loaded, err := s.LoadMatch(cbg, m.ID)
	require.NoError(t, err)
	_, err = loaded.Apply("A", deck.Card{Value: 9, Suit: deck.Spades}, m.Created)
	require.NoError(t, err)

	again, err := s.LoadMatch(cbg, m.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Plays)
	assert.Equal(t, "A", again.CurrentTurn)
}

func TestMemory_Transact_cancelled(t *testing.T) {
	s := NewMemory()
	m := newMatch(t)
	require.NoError(t, s.CreateMatch(cbg, m))

	ctx, cancel := context.WithCancel(cbg)
	err := s.Transact(ctx, func(tx Tx) error {
		loaded, err := tx.LoadMatch(ctx, m.ID)
		if err != nil {
			return err
		}

		play, err := loaded.Apply("A", deck.Card{Value: 9, Suit: deck.Spades}, m.Created)
		if err != nil {
			return err
		}

		cancel()
		if err := tx.AppendPlay(ctx, play); err != nil {
			return err
		}

		return tx.SaveMatch(ctx, loaded)
	})
	assert.Equal(t, context.Canceled, err)

	loaded, err := s.LoadMatch(cbg, m.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Plays)
}
