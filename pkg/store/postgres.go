package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"trickmatch-server/pkg/db"
	"trickmatch-server/pkg/deck"
	"trickmatch-server/pkg/match"
)

const pqDuplicateKeyErrorCode pq.ErrorCode = "23505"

const matchColumns = `
matches.id,
matches.team1_player1,
matches.team1_player2,
matches.team2_player1,
matches.team2_player2,
matches.current_turn,
matches.current_round,
matches.round1_winner,
matches.round2_winner,
matches.round3_winner,
matches.game_winner,
matches.is_complete,
matches.created,
matches.updated`

const playColumns = `
plays.id,
plays.match_id,
plays.player_id,
plays.round,
plays.card_value,
plays.card_suit,
plays.created`

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Postgres is a Store backed by the matches and plays tables
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a store using the database handle
func NewPostgres(dbh *sql.DB) *Postgres {
	return &Postgres{db: dbh}
}

// CreateMatch inserts the match
func (p *Postgres) CreateMatch(ctx context.Context, m *match.Match) error {
	const query = `
INSERT INTO matches (id, team1_player1, team1_player2, team2_player1, team2_player2, current_turn, current_round,
                     is_complete, created, updated)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := p.db.ExecContext(ctx, query,
		m.ID,
		m.Team1.Player1,
		m.Team1.Player2,
		m.Team2.Player1,
		m.Team2.Player2,
		m.CurrentTurn,
		m.CurrentRound.Number(),
		m.IsComplete,
		m.Created,
		m.Updated,
	)
	return err
}

// LoadMatch returns the committed match and its plays
func (p *Postgres) LoadMatch(ctx context.Context, id string) (*match.Match, error) {
	return loadMatch(ctx, p.db, id, false)
}

// ListActiveMatches returns the incomplete matches, oldest first
func (p *Postgres) ListActiveMatches(ctx context.Context) ([]*match.Match, error) {
	const query = `
SELECT ` + matchColumns + `
FROM matches
WHERE NOT is_complete
ORDER BY created, id`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*match.Match, 0)
	byID := make(map[string]*match.Match)
	ids := make([]string, 0)
	for rows.Next() {
		m, err := getMatchByRow(rows)
		if err != nil {
			return nil, err
		}

		matches = append(matches, m)
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return matches, nil
	}

	const playsQuery = `
SELECT ` + playColumns + `
FROM plays
WHERE match_id = ANY($1)
ORDER BY seq`

	playRows, err := p.db.QueryContext(ctx, playsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer playRows.Close()

	for playRows.Next() {
		play, err := getPlayByRow(playRows)
		if err != nil {
			return nil, err
		}

		if m, ok := byID[play.MatchID]; ok {
			m.Plays = append(m.Plays, play)
		}
	}

	return matches, playRows.Err()
}

// Transact runs fn inside a database transaction
// The match row is locked by tx.LoadMatch, which serializes writers across processes.
func (p *Postgres) Transact(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		// also runs when fn panics
		if !committed {
			rollback(tx)
		}
	}()

	if err := fn(&postgresTx{tx: tx}); err != nil {
		return err
	}

	committed = true
	return tx.Commit()
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) LoadMatch(ctx context.Context, id string) (*match.Match, error) {
	return loadMatch(ctx, t.tx, id, true)
}

func (t *postgresTx) AppendPlay(ctx context.Context, play *match.Play) error {
	const query = `
INSERT INTO plays (id, match_id, player_id, round, card_value, card_suit, created)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := t.tx.ExecContext(ctx, query,
		play.ID,
		play.MatchID,
		play.PlayerID,
		play.Round.Number(),
		play.Card.Value,
		string(play.Card.Suit),
		play.Timestamp,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqDuplicateKeyErrorCode {
			return match.ErrDuplicatePlay
		}

		return err
	}

	return nil
}

func (t *postgresTx) SaveMatch(ctx context.Context, m *match.Match) error {
	const query = `
UPDATE matches
SET current_turn  = $1,
    current_round = $2,
    round1_winner = $3,
    round2_winner = $4,
    round3_winner = $5,
    game_winner   = $6,
    is_complete   = $7,
    updated       = $8
WHERE id = $9`

	res, err := t.tx.ExecContext(ctx, query,
		m.CurrentTurn,
		m.CurrentRound.Number(),
		nullTeam(m.RoundWinners[match.Round1]),
		nullTeam(m.RoundWinners[match.Round2]),
		nullTeam(m.RoundWinners[match.Round3]),
		nullTeam(m.GameWinner),
		m.IsComplete,
		m.Updated,
		m.ID,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return match.ErrNotFound
	}

	return nil
}

func loadMatch(ctx context.Context, q querier, id string, forUpdate bool) (*match.Match, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, match.ErrNotFound
	}

	query := `
SELECT ` + matchColumns + `
FROM matches
WHERE id = $1`
	if forUpdate {
		query += `
FOR UPDATE`
	}

	m, err := getMatchByRow(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, match.ErrNotFound
		}

		return nil, err
	}

	const playsQuery = `
SELECT ` + playColumns + `
FROM plays
WHERE match_id = $1
ORDER BY seq`

	rows, err := q.QueryContext(ctx, playsQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		play, err := getPlayByRow(rows)
		if err != nil {
			return nil, err
		}

		m.Plays = append(m.Plays, play)
	}

	return m, rows.Err()
}

func getMatchByRow(row db.Scanner) (*match.Match, error) {
	var m match.Match
	var currentRound int
	var winners [3]sql.NullString
	var gameWinner sql.NullString

	if err := row.Scan(
		&m.ID,
		&m.Team1.Player1,
		&m.Team1.Player2,
		&m.Team2.Player1,
		&m.Team2.Player2,
		&m.CurrentTurn,
		&currentRound,
		&winners[0],
		&winners[1],
		&winners[2],
		&gameWinner,
		&m.IsComplete,
		&m.Created,
		&m.Updated,
	); err != nil {
		return nil, err
	}

	round, err := match.RoundFromNumber(currentRound)
	if err != nil {
		return nil, err
	}

	m.CurrentRound = round
	m.GameWinner = match.TeamID(gameWinner.String)
	m.RoundWinners = make(map[match.Round]match.TeamID)
	for i, winner := range winners {
		if winner.Valid {
			m.RoundWinners[match.Rounds()[i]] = match.TeamID(winner.String)
		}
	}

	m.Plays = make([]*match.Play, 0, 12)
	return &m, nil
}

func getPlayByRow(row db.Scanner) (*match.Play, error) {
	var play match.Play
	var round int
	var suit string
	var created time.Time

	if err := row.Scan(&play.ID, &play.MatchID, &play.PlayerID, &round, &play.Card.Value, &suit, &created); err != nil {
		return nil, err
	}

	r, err := match.RoundFromNumber(round)
	if err != nil {
		return nil, err
	}

	play.Round = r
	play.Card.Suit = deck.Suit(suit)
	play.Timestamp = created.UTC()
	return &play, nil
}

func nullTeam(team match.TeamID) sql.NullString {
	return sql.NullString{String: string(team), Valid: team != ""}
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		logrus.WithError(err).Error("could not rollback transaction")
	}
}
