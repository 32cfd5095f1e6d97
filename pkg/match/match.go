package match

import (
	"fmt"
	"time"
)

// Round identifies one of the three rounds of a match
type Round string

// round constants
const (
	Round1 Round = "round1"
	Round2 Round = "round2"
	Round3 Round = "round3"
)

// Rounds returns the rounds in the order they are played
func Rounds() []Round {
	return []Round{Round1, Round2, Round3}
}

// Number returns 1, 2, or 3 (0 if the round is unknown)
func (r Round) Number() int {
	switch r {
	case Round1:
		return 1
	case Round2:
		return 2
	case Round3:
		return 3
	}

	return 0
}

// Next returns the following round
// The second return value is false for round3, which has no successor
func (r Round) Next() (Round, bool) {
	switch r {
	case Round1:
		return Round2, true
	case Round2:
		return Round3, true
	}

	return r, false
}

// RoundFromNumber is the inverse of Round.Number
func RoundFromNumber(n int) (Round, error) {
	switch n {
	case 1:
		return Round1, nil
	case 2:
		return Round2, nil
	case 3:
		return Round3, nil
	}

	return "", fmt.Errorf("unknown round number: %d", n)
}

// TeamID identifies team1 or team2
type TeamID string

// team constants
const (
	Team1 TeamID = "team1"
	Team2 TeamID = "team2"
)

// Team is a pair of players
// Team mates never sit next to each other in the turn ring
type Team struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

// Has returns true if the player is on the team
// Identities are compared exactly, no normalization is performed
func (t Team) Has(playerID string) bool {
	return t.Player1 == playerID || t.Player2 == playerID
}

// Match is the aggregate root of a two-team, best-of-three match
type Match struct {
	ID           string           `json:"id"`
	Team1        Team             `json:"team1"`
	Team2        Team             `json:"team2"`
	CurrentTurn  string           `json:"currentTurn"`
	CurrentRound Round            `json:"currentRound"`
	RoundWinners map[Round]TeamID `json:"roundWinners"`
	GameWinner   TeamID           `json:"gameWinner,omitempty"`
	IsComplete   bool             `json:"isComplete"`
	Plays        []*Play          `json:"plays"`
	Created      time.Time        `json:"created"`
	Updated      time.Time        `json:"updated"`
}

// New returns a match in its initial state
// team1.player1 leads round1
func New(id string, team1, team2 Team, now time.Time) (*Match, error) {
	if err := validateTeams(team1, team2); err != nil {
		return nil, err
	}

	return &Match{
		ID:           id,
		Team1:        team1,
		Team2:        team2,
		CurrentTurn:  team1.Player1,
		CurrentRound: Round1,
		RoundWinners: make(map[Round]TeamID),
		Plays:        make([]*Play, 0, 12),
		Created:      now,
		Updated:      now,
	}, nil
}

func validateTeams(team1, team2 Team) error {
	seats := []string{team1.Player1, team2.Player1, team1.Player2, team2.Player2}
	seen := make(map[string]bool, len(seats))
	for _, playerID := range seats {
		if playerID == "" {
			return ValidationError("all four players are required")
		}

		if seen[playerID] {
			return ValidationError(fmt.Sprintf("player %q cannot occupy two seats", playerID))
		}

		seen[playerID] = true
	}

	return nil
}

// Clone returns a copy that can be modified without affecting m
// Plays are immutable, so the pointers are shared
func (m *Match) Clone() *Match {
	cp := *m
	cp.RoundWinners = make(map[Round]TeamID, len(m.RoundWinners))
	for round, winner := range m.RoundWinners {
		cp.RoundWinners[round] = winner
	}

	cp.Plays = append(make([]*Play, 0, len(m.Plays)+1), m.Plays...)
	return &cp
}

// Version increases by one with every accepted play
// It is derived from the stored plays, so every load of the same commit agrees on it.
func (m *Match) Version() int {
	return len(m.Plays)
}

// PlaysForRound returns the plays of the round in the order they were made
func (m *Match) PlaysForRound(round Round) []*Play {
	plays := make([]*Play, 0, 4)
	for _, play := range m.Plays {
		if play.Round == round {
			plays = append(plays, play)
		}
	}

	return plays
}
