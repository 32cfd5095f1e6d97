// Package store persists matches and their plays
package store

import (
	"context"

	"trickmatch-server/pkg/match"
)

// Store is the persistence collaborator of the referee
type Store interface {
	// CreateMatch stores a new match
	CreateMatch(ctx context.Context, m *match.Match) error

	// LoadMatch returns the last committed state of the match, including its plays
	// match.ErrNotFound is returned if there is no match with that ID
	LoadMatch(ctx context.Context, id string) (*match.Match, error)

	// ListActiveMatches returns all matches that are not complete, oldest first
	ListActiveMatches(ctx context.Context) ([]*match.Match, error)

	// Transact runs fn in a transaction
	// The writes made through tx are committed if fn returns nil and discarded otherwise.
	// An error returned by fn is returned unchanged.
	Transact(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the view of the store inside a transaction
type Tx interface {
	// LoadMatch returns the match as of the start of the transaction
	LoadMatch(ctx context.Context, id string) (*match.Match, error)

	// AppendPlay records a play
	// match.ErrDuplicatePlay is returned if the player already has a play in that round
	AppendPlay(ctx context.Context, play *match.Play) error

	// SaveMatch writes every gameplay field of the match
	// The plays are not written, use AppendPlay
	SaveMatch(ctx context.Context, m *match.Match) error
}
