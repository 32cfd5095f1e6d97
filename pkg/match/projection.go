package match

// Summary is the public view of a match
type Summary struct {
	ID           string           `json:"id"`
	Team1        Team             `json:"team1"`
	Team2        Team             `json:"team2"`
	CurrentRound Round            `json:"currentRound"`
	CurrentTurn  string           `json:"currentTurn,omitempty"`
	RoundWinners map[Round]TeamID `json:"roundWinners"`
	GameWinner   TeamID           `json:"gameWinner,omitempty"`
	IsComplete   bool             `json:"isComplete"`
	Version      int              `json:"version"`
}

// RoundPlays lists the plays of a single round
// Winner is empty until the round's fourth play
type RoundPlays struct {
	Round  Round   `json:"round"`
	Winner TeamID  `json:"winner,omitempty"`
	Plays  []*Play `json:"plays"`
}

// Summary returns the public view of the match
// CurrentTurn is omitted once the match is complete
func (m *Match) Summary() *Summary {
	winners := make(map[Round]TeamID, len(m.RoundWinners))
	for round, winner := range m.RoundWinners {
		winners[round] = winner
	}

	s := &Summary{
		ID:           m.ID,
		Team1:        m.Team1,
		Team2:        m.Team2,
		CurrentRound: m.CurrentRound,
		CurrentTurn:  m.CurrentTurn,
		RoundWinners: winners,
		GameWinner:   m.GameWinner,
		IsComplete:   m.IsComplete,
		Version:      m.Version(),
	}

	if s.IsComplete {
		s.CurrentTurn = ""
	}

	return s
}

// RoundPlays groups the plays by round
// Rounds without plays are skipped, except the round currently accepting plays
func (m *Match) RoundPlays() []*RoundPlays {
	rounds := make([]*RoundPlays, 0, len(Rounds()))
	for _, round := range Rounds() {
		plays := m.PlaysForRound(round)
		isOpen := !m.IsComplete && round == m.CurrentRound
		if len(plays) == 0 && !isOpen {
			continue
		}

		rounds = append(rounds, &RoundPlays{
			Round:  round,
			Winner: m.RoundWinners[round],
			Plays:  plays,
		})
	}

	return rounds
}
