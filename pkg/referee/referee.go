// Package referee applies plays to matches
// Submissions for the same match are serialized, different matches proceed in parallel.
package referee

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"trickmatch-server/pkg/deck"
	"trickmatch-server/pkg/match"
	"trickmatch-server/pkg/store"
)

// notifyTimeout bounds how long a notifier may take after a commit
const notifyTimeout = time.Second * 5

// Notifier is told about every committed change to a match
type Notifier interface {
	Notify(ctx context.Context, matchID string, summary *match.Summary) error
}

// Options configures a Referee
type Options struct {
	// Notifier is optional
	Notifier Notifier

	// Logger defaults to the logrus standard logger
	Logger logrus.FieldLogger

	// Now defaults to time.Now
	Now func() time.Time
}

// Referee is the only way to change the gameplay state of a match
type Referee struct {
	store    store.Store
	notifier Notifier
	logger   logrus.FieldLogger
	now      func() time.Time
	locks    *lockTable
}

// New returns a referee for the matches in s
func New(s store.Store, opts Options) *Referee {
	r := &Referee{
		store:    s,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		now:      opts.Now,
		locks:    newLockTable(),
	}

	if r.logger == nil {
		r.logger = logrus.StandardLogger()
	}

	if r.now == nil {
		r.now = func() time.Time {
			return time.Now().UTC()
		}
	}

	return r
}

// CreateMatch starts a new match between the two teams
func (r *Referee) CreateMatch(ctx context.Context, team1, team2 match.Team) (*match.Match, error) {
	m, err := match.New(uuid.New().String(), team1, team2, r.now())
	if err != nil {
		return nil, err
	}

	if err := r.store.CreateMatch(ctx, m); err != nil {
		return nil, r.classify(r.logger.WithField("matchID", m.ID), "create match", err)
	}

	r.logger.WithFields(logrus.Fields{
		"matchID": m.ID,
		"team1":   m.Team1,
		"team2":   m.Team2,
	}).Info("match created")

	return m, nil
}

// SubmitPlay plays the card for the player and returns the new state of the match
// The load, the validation and the write happen while holding the match's lock, so two
// submissions can never be accepted for the same turn. A rejected play changes nothing.
// Callers must not retry a successful submission.
func (r *Referee) SubmitPlay(ctx context.Context, matchID, playerID string, card deck.Card) (*match.Summary, error) {
	log := r.logger.WithFields(logrus.Fields{
		"matchID":  matchID,
		"playerID": playerID,
	})

	release, err := r.locks.acquire(ctx, matchID)
	if err != nil {
		return nil, err
	}

	var summary *match.Summary
	var play *match.Play
	err = r.store.Transact(ctx, func(tx store.Tx) error {
		m, err := tx.LoadMatch(ctx, matchID)
		if err != nil {
			return err
		}

		play, err = m.Apply(playerID, card, r.now())
		if err != nil {
			return err
		}

		if err := tx.AppendPlay(ctx, play); err != nil {
			return err
		}

		if err := tx.SaveMatch(ctx, m); err != nil {
			return err
		}

		summary = m.Summary()
		return nil
	})
	release()

	if err != nil {
		return nil, r.classify(log, "submit play", err)
	}

	log.WithFields(logrus.Fields{
		"round": play.Round,
		"card":  deck.CardToString(play.Card),
	}).Debug("play accepted")

	if winner, closed := summary.RoundWinners[play.Round]; closed {
		log.WithFields(logrus.Fields{
			"round":  play.Round,
			"winner": winner,
		}).Info("round resolved")
	}

	if summary.IsComplete {
		log.WithField("winner", summary.GameWinner).Info("match complete")
	}

	r.notify(matchID, summary)
	return summary, nil
}

// GetMatch returns the committed state of the match
func (r *Referee) GetMatch(ctx context.Context, matchID string) (*match.Summary, error) {
	m, err := r.store.LoadMatch(ctx, matchID)
	if err != nil {
		return nil, r.classify(r.logger.WithField("matchID", matchID), "load match", err)
	}

	return m.Summary(), nil
}

// ListActiveMatches returns the matches that are not complete
func (r *Referee) ListActiveMatches(ctx context.Context) ([]*match.Summary, error) {
	matches, err := r.store.ListActiveMatches(ctx)
	if err != nil {
		return nil, r.classify(r.logger, "list active matches", err)
	}

	summaries := make([]*match.Summary, len(matches))
	for i, m := range matches {
		summaries[i] = m.Summary()
	}

	return summaries, nil
}

// GetPlays returns the plays of the match grouped by round
func (r *Referee) GetPlays(ctx context.Context, matchID string) ([]*match.RoundPlays, error) {
	m, err := r.store.LoadMatch(ctx, matchID)
	if err != nil {
		return nil, r.classify(r.logger.WithField("matchID", matchID), "load plays", err)
	}

	return m.RoundPlays(), nil
}

// notify runs after the commit, so a failure is logged and never undoes the play
// It runs outside the match's lock, so listeners can see changes out of order and must
// order them by Summary.Version.
func (r *Referee) notify(matchID string, summary *match.Summary) {
	if r.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := r.notifier.Notify(ctx, matchID, summary); err != nil {
		r.logger.WithError(err).WithField("matchID", matchID).Warn("could not notify listeners")
	}
}

// classify logs err and decides how it is surfaced
// Caller errors pass through, invariant violations are reported as exceptions,
// anything else is a store failure.
func (r *Referee) classify(log logrus.FieldLogger, op string, err error) error {
	var ie match.InvariantError
	switch {
	case match.IsCallerError(err):
		log.WithError(err).Debug("rejected")
		return err
	case errors.As(err, &ie):
		log.WithError(err).WithField("type", "exception").Error(op)
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}

	log.WithError(err).Error(op)
	return &match.StoreError{Op: op, Err: err}
}
