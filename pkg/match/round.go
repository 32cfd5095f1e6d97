package match

import "fmt"

// PlaysPerRound is the number of plays that closes a round
const PlaysPerRound = 4

// ResolveRound returns the team that won the round
// The highest card value wins. On a tie the play made first wins.
func ResolveRound(team1, team2 Team, plays []*Play) (TeamID, error) {
	if len(plays) != PlaysPerRound {
		return "", InvariantError(fmt.Sprintf("a round is resolved with %d plays, got %d", PlaysPerRound, len(plays)))
	}

	var winning *Play
	for _, play := range plays {
		if play.Round != plays[0].Round {
			return "", InvariantError(fmt.Sprintf("plays from %s and %s resolved together", plays[0].Round, play.Round))
		}

		if winning == nil || play.Card.Value > winning.Card.Value {
			winning = play
		}
	}

	return TeamOf(team1, team2, winning.PlayerID)
}
