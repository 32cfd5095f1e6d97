package match

// RoundsToWin is how many round wins decide the series
const RoundsToWin = 2

// ResolveSeries returns the series winner
// The second return value is false while the series is undecided
func ResolveSeries(winners map[Round]TeamID) (TeamID, bool) {
	wins := make(map[TeamID]int, 2)
	for _, round := range Rounds() {
		winner, ok := winners[round]
		if !ok {
			continue
		}

		wins[winner]++
		if wins[winner] >= RoundsToWin {
			return winner, true
		}
	}

	return "", false
}
