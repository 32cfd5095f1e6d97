package match

import "fmt"

// Seats returns the fixed turn ring: team1.player1, team2.player1, team1.player2, team2.player2
func Seats(team1, team2 Team) [4]string {
	return [4]string{team1.Player1, team2.Player1, team1.Player2, team2.Player2}
}

// NextPlayer returns the player that acts after playerID
// The ring is positional and never depends on who won a round
func NextPlayer(team1, team2 Team, playerID string) (string, error) {
	seats := Seats(team1, team2)
	for i, seat := range seats {
		if seat == playerID {
			return seats[(i+1)%len(seats)], nil
		}
	}

	return "", InvariantError(fmt.Sprintf("player %q does not occupy a seat", playerID))
}

// TeamOf returns the team the player belongs to
func TeamOf(team1, team2 Team, playerID string) (TeamID, error) {
	switch {
	case team1.Has(playerID):
		return Team1, nil
	case team2.Has(playerID):
		return Team2, nil
	}

	return "", InvariantError(fmt.Sprintf("player %q is not on either team", playerID))
}

// NextPlayer returns the player after playerID in this match's ring
func (m *Match) NextPlayer(playerID string) (string, error) {
	return NextPlayer(m.Team1, m.Team2, playerID)
}
