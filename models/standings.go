package models

import (
	"time"
)

// StandingEntry is one user's computed result for one week
type StandingEntry struct {
	UID         string   `json:"uid" bson:"uid"`
	DisplayName string   `json:"displayName" bson:"displayName"`
	Wins        int      `json:"wins" bson:"wins"`
	TieBreaker  *float64 `json:"tieBreaker" bson:"tieBreaker"`
	TBDiff      *float64 `json:"tbDiff" bson:"tbDiff"`
	TBOver      bool     `json:"tbOver" bson:"tbOver"`
}

// WinnerRef identifies one weekly winner
type WinnerRef struct {
	UID         string `json:"uid" bson:"uid"`
	DisplayName string `json:"displayName" bson:"displayName"`
}

// WeeklyResult is the persisted outcome of one week's computation,
// keyed by WeekKey(year, season, week)
type WeeklyResult struct {
	ID            string          `json:"id" bson:"_id"`
	Year          int             `json:"year" bson:"year"`
	Season        string          `json:"season" bson:"season"`
	Week          int             `json:"week" bson:"week"`
	LastGameTotal *float64        `json:"lastGameTotal" bson:"lastGameTotal"`
	ComputedAt    time.Time       `json:"computedAt" bson:"computedAt"`
	Standings     []StandingEntry `json:"standings" bson:"standings"`
	Winners       []WinnerRef     `json:"winners" bson:"winners"`
}

// PlayerRecord is one user's cumulative stats for a season
type PlayerRecord struct {
	WeeksPlayed  int            `json:"weeksPlayed" bson:"weeksPlayed"`
	TotalWins    int            `json:"totalWins" bson:"totalWins"`
	BestWeekWins int            `json:"bestWeekWins" bson:"bestWeekWins"`
	WeeklyWins   map[string]int `json:"weeklyWins" bson:"weeklyWins"`
	DisplayName  string         `json:"displayName" bson:"displayName"`
}

// RecordWeek folds one scored week into the record. A week already present
// in the history map only refreshes its entry and the display name; the
// cumulative counters are never incremented twice for the same week.
func (r *PlayerRecord) RecordWeek(weekLabel string, wins int, displayName string) {
	if r.WeeklyWins == nil {
		r.WeeklyWins = make(map[string]int)
	}

	if _, applied := r.WeeklyWins[weekLabel]; !applied {
		r.WeeksPlayed++
		r.TotalWins += wins
		if wins > r.BestWeekWins {
			r.BestWeekWins = wins
		}
	}

	r.WeeklyWins[weekLabel] = wins
	if displayName != "" {
		r.DisplayName = displayName
	}
}

// SeasonLedger is the persisted per-season leaderboard document,
// keyed by SeasonKey(year, season)
type SeasonLedger struct {
	ID        string                  `json:"id" bson:"_id"`
	Year      int                     `json:"year" bson:"year"`
	Season    string                  `json:"season" bson:"season"`
	UpdatedAt time.Time               `json:"updatedAt" bson:"updatedAt"`
	Players   map[string]PlayerRecord `json:"players" bson:"players"`
}
