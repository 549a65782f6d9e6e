package services

import (
	"testing"
	"time"

	"nfl-pickem-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finalEvent(id string, kickoff time.Time, home, homeScore, away, awayScore, winner string) models.Event {
	return models.Event{
		ID:    id,
		Date:  kickoff,
		State: models.EventStatePost,
		Competitors: []models.Competitor{
			{HomeAway: "home", TeamName: home, Score: homeScore, Winner: winner == home},
			{HomeAway: "away", TeamName: away, Score: awayScore, Winner: winner == away},
		},
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestAllFinal(t *testing.T) {
	kickoff := time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)

	assert.False(t, AllFinal(nil), "empty list is never final")
	assert.False(t, AllFinal([]models.Event{}))

	events := []models.Event{
		finalEvent("1", kickoff, "Chiefs", "24", "Ravens", "20", "Chiefs"),
		finalEvent("2", kickoff, "Eagles", "31", "Packers", "28", "Eagles"),
	}
	assert.True(t, AllFinal(events))

	events[1].State = models.EventStateIn
	assert.False(t, AllFinal(events), "one in-progress game blocks finality")

	events[1].State = models.EventStatePre
	assert.False(t, AllFinal(events))
}

func TestLastGameTotal(t *testing.T) {
	assert.Nil(t, LastGameTotal(nil))

	kickoff := time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)
	single := []models.Event{finalEvent("1", kickoff, "Lions", "17", "Rams", "20", "Rams")}
	total := LastGameTotal(single)
	require.NotNil(t, total)
	assert.Equal(t, 37.0, *total)
}

func TestLastGameTotalUsesLatestKickoff(t *testing.T) {
	early := time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)
	late := time.Date(2025, 9, 8, 0, 20, 0, 0, time.UTC)

	events := []models.Event{
		finalEvent("late", late, "49ers", "30", "Jets", "13", "49ers"),
		finalEvent("early", early, "Bills", "21", "Dolphins", "14", "Bills"),
	}

	total := LastGameTotal(events)
	require.NotNil(t, total)
	assert.Equal(t, 43.0, *total, "latest kickoff wins regardless of input order")

	// Input is not mutated
	assert.Equal(t, "late", events[0].ID)
}

func TestLastGameTotalStableOnEqualKickoffs(t *testing.T) {
	kickoff := time.Date(2025, 9, 8, 0, 20, 0, 0, time.UTC)

	events := []models.Event{
		finalEvent("first", kickoff, "Bears", "10", "Vikings", "10", ""),
		finalEvent("second", kickoff, "Saints", "27", "Falcons", "24", "Saints"),
	}

	total := LastGameTotal(events)
	require.NotNil(t, total)
	assert.Equal(t, 51.0, *total, "equal timestamps keep original relative order")
}

func TestLastGameTotalEdgeCases(t *testing.T) {
	kickoff := time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)

	noCompetition := []models.Event{{ID: "1", Date: kickoff, State: models.EventStatePost}}
	assert.Nil(t, LastGameTotal(noCompetition))

	missingScores := []models.Event{finalEvent("1", kickoff, "Texans", "", "Colts", "14", "Colts")}
	total := LastGameTotal(missingScores)
	require.NotNil(t, total)
	assert.Equal(t, 14.0, *total, "missing score counts as zero")
}

func TestWinnersByEvent(t *testing.T) {
	kickoff := time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)

	events := []models.Event{
		finalEvent("1", kickoff, "Chiefs", "24", "Ravens", "20", "Chiefs"),
		finalEvent("2", kickoff, "Bears", "10", "Vikings", "10", ""), // tie, no winner flag
		{
			ID:    "3",
			Date:  kickoff,
			State: models.EventStateIn,
			Competitors: []models.Competitor{
				{HomeAway: "home", TeamName: "Eagles", Score: "14", Winner: true},
				{HomeAway: "away", TeamName: "Packers", Score: "7"},
			},
		},
	}

	winners := WinnersByEvent(events)
	assert.Equal(t, map[string]string{"1": "Chiefs"}, winners,
		"only final events with a declared winner contribute")
}

func TestWinnersByEventSkipsUnnamedWinner(t *testing.T) {
	kickoff := time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)
	event := models.Event{
		ID:    "1",
		Date:  kickoff,
		State: models.EventStatePost,
		Competitors: []models.Competitor{
			{HomeAway: "home", TeamName: "", Score: "24", Winner: true},
			{HomeAway: "away", TeamName: "Ravens", Score: "20"},
		},
	}

	assert.Empty(t, WinnersByEvent([]models.Event{event}))
}

func TestTallyPicks(t *testing.T) {
	winners := map[string]string{
		"1": "Chiefs",
		"2": "Eagles",
		"3": "Bills",
	}

	picks := map[string]string{
		"1": "Chiefs",  // correct
		"2": "Packers", // wrong
		"3": "Bills",   // correct
		"4": "Lions",   // no recorded winner
	}

	assert.Equal(t, 2, TallyPicks(winners, picks))
	assert.Equal(t, 0, TallyPicks(map[string]string{}, picks),
		"no recorded winners means no credit")
	assert.Equal(t, 0, TallyPicks(winners, map[string]string{}))
}

func TestTallyPicksExactMatchOnly(t *testing.T) {
	winners := map[string]string{"1": "Chiefs"}

	assert.Equal(t, 0, TallyPicks(winners, map[string]string{"1": "chiefs"}))
	assert.Equal(t, 0, TallyPicks(winners, map[string]string{"1": "Chiefs "}))
}

func TestResolveWinnersEmptyStandings(t *testing.T) {
	winners, enriched := ResolveWinners(nil, floatPtr(44))
	assert.Empty(t, winners)
	assert.Empty(t, enriched)
}

func TestResolveWinnersClosestWithoutGoingOver(t *testing.T) {
	// u1 guessed 41 (under by 3), u2 guessed 45 (over by 1): u1 wins
	standings := []models.StandingEntry{
		{UID: "u1", Wins: 7, TieBreaker: floatPtr(41)},
		{UID: "u2", Wins: 7, TieBreaker: floatPtr(45)},
	}

	winners, enriched := ResolveWinners(standings, floatPtr(44))
	require.Len(t, winners, 1)
	assert.Equal(t, "u1", winners[0].UID)

	require.Len(t, enriched, 2)
	require.NotNil(t, enriched[0].TBDiff)
	assert.Equal(t, 3.0, *enriched[0].TBDiff)
	assert.False(t, enriched[0].TBOver)
	require.NotNil(t, enriched[1].TBDiff)
	assert.Equal(t, 1.0, *enriched[1].TBDiff)
	assert.True(t, enriched[1].TBOver)
}

func TestResolveWinnersAllOverSmallestExcessWins(t *testing.T) {
	standings := []models.StandingEntry{
		{UID: "u1", Wins: 5, TieBreaker: floatPtr(50)}, // over by 6
		{UID: "u2", Wins: 5, TieBreaker: floatPtr(48)}, // over by 4
	}

	winners, _ := ResolveWinners(standings, floatPtr(44))
	require.Len(t, winners, 1)
	assert.Equal(t, "u2", winners[0].UID)
}

func TestResolveWinnersOnlyTopWinsCandidatesConsidered(t *testing.T) {
	// u3 has a perfect tiebreaker but fewer wins
	standings := []models.StandingEntry{
		{UID: "u1", Wins: 7, TieBreaker: floatPtr(30)},
		{UID: "u2", Wins: 7, TieBreaker: floatPtr(40)},
		{UID: "u3", Wins: 5, TieBreaker: floatPtr(44)},
	}

	winners, enriched := ResolveWinners(standings, floatPtr(44))
	require.Len(t, winners, 1)
	assert.Equal(t, "u2", winners[0].UID)
	assert.Len(t, enriched, 2, "enriched covers only the top-wins candidates")
}

func TestResolveWinnersTiedDistancesAllWin(t *testing.T) {
	standings := []models.StandingEntry{
		{UID: "u1", Wins: 6, TieBreaker: floatPtr(42)}, // under by 2
		{UID: "u2", Wins: 6, TieBreaker: floatPtr(42)}, // under by 2
		{UID: "u3", Wins: 6, TieBreaker: floatPtr(40)}, // under by 4
	}

	winners, _ := ResolveWinners(standings, floatPtr(44))
	require.Len(t, winners, 2)
	uids := []string{winners[0].UID, winners[1].UID}
	assert.Contains(t, uids, "u1")
	assert.Contains(t, uids, "u2")
}

func TestResolveWinnersMissingTiebreakerTreatedAsOver(t *testing.T) {
	standings := []models.StandingEntry{
		{UID: "u1", Wins: 6, TieBreaker: nil},
		{UID: "u2", Wins: 6, TieBreaker: floatPtr(20)}, // far under, but not over
	}

	winners, enriched := ResolveWinners(standings, floatPtr(44))
	require.Len(t, winners, 1)
	assert.Equal(t, "u2", winners[0].UID, "a missing tiebreaker cannot beat a non-over guess")

	for _, entry := range enriched {
		if entry.UID == "u1" {
			assert.True(t, entry.TBOver)
			assert.Nil(t, entry.TBDiff)
		}
	}
}

func TestResolveWinnersAllMissingTiebreakers(t *testing.T) {
	standings := []models.StandingEntry{
		{UID: "u1", Wins: 6},
		{UID: "u2", Wins: 6},
	}

	winners, _ := ResolveWinners(standings, floatPtr(44))
	assert.Len(t, winners, 2, "with no usable tiebreakers every top candidate wins")
}

func TestResolveWinnersNilTotal(t *testing.T) {
	standings := []models.StandingEntry{
		{UID: "u1", Wins: 6, TieBreaker: floatPtr(44)},
		{UID: "u2", Wins: 4, TieBreaker: floatPtr(44)},
	}

	winners, _ := ResolveWinners(standings, nil)
	require.Len(t, winners, 1)
	assert.Equal(t, "u1", winners[0].UID, "without a total the wins leader still wins")
}

func TestResolveWinnersIdempotent(t *testing.T) {
	standings := []models.StandingEntry{
		{UID: "u1", Wins: 7, TieBreaker: floatPtr(41)},
		{UID: "u2", Wins: 7, TieBreaker: floatPtr(45)},
		{UID: "u3", Wins: 3, TieBreaker: nil},
	}

	winners1, enriched1 := ResolveWinners(standings, floatPtr(44))
	winners2, enriched2 := ResolveWinners(standings, floatPtr(44))

	assert.Equal(t, winners1, winners2)
	assert.Equal(t, enriched1, enriched2)
}
