package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nfl-pickem-go/models"

	"github.com/itbasis/go-clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoreboardFixture = `{
	"events": [
		{
			"id": "401772936",
			"date": "2025-09-07T17:00Z",
			"competitions": [
				{
					"status": {"type": {"state": "post", "completed": true}},
					"competitors": [
						{"homeAway": "home", "score": "24", "winner": true, "team": {"shortDisplayName": "Chiefs"}},
						{"homeAway": "away", "score": "20", "winner": false, "team": {"shortDisplayName": "Ravens"}}
					]
				}
			]
		},
		{
			"id": "401772937",
			"date": "2025-09-08T00:20Z",
			"competitions": [
				{
					"status": {"type": {"state": "in", "completed": false}},
					"competitors": [
						{"homeAway": "home", "score": "14", "team": {"shortDisplayName": "Eagles"}},
						{"homeAway": "away", "score": "7", "team": {"shortDisplayName": "Packers"}}
					]
				}
			]
		},
		{
			"id": "401772938",
			"date": "2025-09-08T20:15Z",
			"status": {"type": {"state": "pre", "completed": false}},
			"competitions": [
				{
					"competitors": [
						{"homeAway": "home", "team": {"shortDisplayName": "Bills"}},
						{"homeAway": "away", "team": {"shortDisplayName": "Dolphins"}}
					]
				}
			]
		}
	]
}`

func TestGetScoreboardParsesEvents(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(scoreboardFixture))
	}))
	defer server.Close()

	svc := NewScoreboardService(server.URL, 5*time.Second, nil)
	events, err := svc.GetScoreboard(context.Background(), 2025, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "year=2025&week=1&seasontype=2", gotQuery)
	require.Len(t, events, 3)

	final := events[0]
	assert.Equal(t, "401772936", final.ID)
	assert.Equal(t, models.EventStatePost, final.State)
	assert.True(t, final.IsFinal())
	assert.Equal(t, time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC), final.Date)
	assert.Equal(t, "Chiefs", final.WinningTeamName())
	assert.Equal(t, 44.0, final.CombinedScore())

	live := events[1]
	assert.Equal(t, models.EventStateIn, live.State)
	assert.Equal(t, "", live.WinningTeamName())

	// Event-level status used when the competition carries none
	pre := events[2]
	assert.Equal(t, models.EventStatePre, pre.State)
	assert.Equal(t, 0.0, pre.CombinedScore(), "missing scores count as zero")
}

func TestGetScoreboardBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewScoreboardService(server.URL, 5*time.Second, nil)
	events, err := svc.GetScoreboard(context.Background(), 2025, 1, 2)
	assert.Nil(t, events)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusBadGateway, fetchErr.StatusCode)
}

func TestGetScoreboardNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	svc := NewScoreboardService(server.URL, time.Second, nil)
	_, err := svc.GetScoreboard(context.Background(), 2025, 1, 2)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.StatusCode)
	assert.Error(t, fetchErr.Unwrap())
}

func TestGetScoreboardMalformedEventDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events": [{"id": "1", "date": "2025-09-07T17:00Z"}]}`))
	}))
	defer server.Close()

	svc := NewScoreboardService(server.URL, 5*time.Second, nil)
	events, err := svc.GetScoreboard(context.Background(), 2025, 1, 2)
	require.NoError(t, err)
	require.Len(t, events, 1, "an event without competition data is kept, not dropped")
	assert.False(t, events[0].HasCompetition())
	assert.False(t, events[0].IsFinal())
}

func TestGetScoreboardUsesCache(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(scoreboardFixture))
	}))
	defer server.Close()

	mockClock := clock.NewMock()
	cache := NewScoreboardCache(mockClock, 30*time.Second, 10*time.Minute)
	svc := NewScoreboardService(server.URL, 5*time.Second, cache)

	_, err := svc.GetScoreboard(context.Background(), 2025, 1, 2)
	require.NoError(t, err)
	_, err = svc.GetScoreboard(context.Background(), 2025, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second call within TTL served from cache")

	// A different slate misses the cache
	_, err = svc.GetScoreboard(context.Background(), 2025, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestScoreboardCacheTTLPolicy(t *testing.T) {
	mockClock := clock.NewMock()
	cache := NewScoreboardCache(mockClock, 30*time.Second, 10*time.Minute)

	liveKey := ScoreboardKey{Year: 2025, Week: 1, SeasonType: 2}
	idleKey := ScoreboardKey{Year: 2025, Week: 2, SeasonType: 2}

	liveEvents := []models.Event{{ID: "1", State: models.EventStateIn}}
	idleEvents := []models.Event{{ID: "2", State: models.EventStatePost}}

	cache.Put(liveKey, liveEvents)
	cache.Put(idleKey, idleEvents)

	_, ok := cache.Get(liveKey)
	assert.True(t, ok)

	// Past the live TTL the live slate expires, the idle slate survives
	mockClock.Add(time.Minute)
	_, ok = cache.Get(liveKey)
	assert.False(t, ok, "live slate expires after the short TTL")
	_, ok = cache.Get(idleKey)
	assert.True(t, ok, "idle slate still cached")

	// Past the idle TTL everything is gone
	mockClock.Add(10 * time.Minute)
	_, ok = cache.Get(idleKey)
	assert.False(t, ok)
}
