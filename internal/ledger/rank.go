package ledger

import "strconv"

var medals = [...]string{"🥇", "🥈", "🥉"}

// Medal returns the medal for 1-based ranks 1..3 and "" otherwise.
func Medal(rank int) string {
	if rank >= 1 && rank <= len(medals) {
		return medals[rank-1]
	}
	return ""
}

// RankLabel renders a 1-based rank, prefixed with a medal for the podium.
func RankLabel(rank int) string {
	if m := Medal(rank); m != "" {
		return m + " " + strconv.Itoa(rank)
	}
	return strconv.Itoa(rank)
}
