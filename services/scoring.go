package services

import (
	"math"
	"sort"

	"nfl-pickem-go/models"
)

// AllFinal reports whether every game in the list has reached its terminal
// state. An empty list is never final: a week with no games cannot be scored.
func AllFinal(events []models.Event) bool {
	if len(events) == 0 {
		return false
	}
	for i := range events {
		if !events[i].IsFinal() {
			return false
		}
	}
	return true
}

// LastGameTotal returns the combined final score of the week's last game,
// where "last" means the latest kickoff time. Events sharing a kickoff time
// keep their original relative order (stable sort), so the later one in the
// input wins. Returns nil when there are no events or the last event carries
// no competition data; missing scores count as zero.
func LastGameTotal(events []models.Event) *float64 {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]models.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	last := sorted[len(sorted)-1]
	if !last.HasCompetition() {
		return nil
	}

	total := last.CombinedScore()
	return &total
}

// WinnersByEvent builds the event id -> winning team name map from final
// events. An event contributes only when it has a declared winner with a
// resolvable display name; malformed events are skipped, never fatal.
func WinnersByEvent(events []models.Event) map[string]string {
	winners := make(map[string]string)
	for i := range events {
		if !events[i].IsFinal() {
			continue
		}
		if name := events[i].WinningTeamName(); name != "" {
			winners[events[i].ID] = name
		}
	}
	return winners
}

// TallyPicks counts how many of a user's picks match the recorded winner.
// Matching is exact string equality on team display name; events with no
// recorded winner never count toward the tally.
func TallyPicks(winnersByEvent map[string]string, picks map[string]string) int {
	wins := 0
	for eventID, pick := range picks {
		if winner, ok := winnersByEvent[eventID]; ok && winner == pick {
			wins++
		}
	}
	return wins
}

// ResolveWinners determines the weekly winners from the standings and the
// tiebreak total using the "Price Is Right" rule: among the users tied on
// most correct picks, the closest tiebreaker guess that does not exceed the
// actual total wins; if every guess exceeded it, the smallest overage wins.
// Ties on distance produce multiple winners.
//
// A missing or unparseable tiebreaker (and every candidate when the total
// itself is unavailable) is treated as over with unknown distance, so it can
// only win when no candidate stayed under.
//
// Returns the winners and the candidate set enriched with tbDiff/tbOver for
// the persisted standings.
func ResolveWinners(standings []models.StandingEntry, lastGameTotal *float64) (winners, enriched []models.StandingEntry) {
	if len(standings) == 0 {
		return nil, nil
	}

	maxWins := standings[0].Wins
	for _, entry := range standings[1:] {
		if entry.Wins > maxWins {
			maxWins = entry.Wins
		}
	}

	var top []models.StandingEntry
	for _, entry := range standings {
		if entry.Wins == maxWins {
			top = append(top, entry)
		}
	}

	for i := range top {
		entry := &top[i]
		if lastGameTotal == nil || entry.TieBreaker == nil {
			entry.TBDiff = nil
			entry.TBOver = true
			continue
		}
		diff := *lastGameTotal - *entry.TieBreaker
		dist := math.Abs(diff)
		entry.TBDiff = &dist
		entry.TBOver = diff < 0
	}

	pool := make([]models.StandingEntry, 0, len(top))
	for _, entry := range top {
		if !entry.TBOver {
			pool = append(pool, entry)
		}
	}
	if len(pool) == 0 {
		// Everyone went over: smallest overage wins
		pool = top
	}

	minDist := math.Inf(1)
	for _, entry := range pool {
		if tbDistance(entry) < minDist {
			minDist = tbDistance(entry)
		}
	}
	for _, entry := range pool {
		if tbDistance(entry) == minDist {
			winners = append(winners, entry)
		}
	}

	return winners, top
}

// tbDistance treats an unknown tiebreak distance as infinitely far
func tbDistance(entry models.StandingEntry) float64 {
	if entry.TBDiff == nil {
		return math.Inf(1)
	}
	return *entry.TBDiff
}
