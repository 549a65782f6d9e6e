package models

import (
	"strconv"
	"time"
)

// EventState represents the status of a scoreboard event
type EventState string

const (
	EventStatePre  EventState = "pre"
	EventStateIn   EventState = "in"
	EventStatePost EventState = "post"
)

// Season type strings as used in pick and result document keys
const (
	SeasonPre  = "pre"
	SeasonReg  = "reg"
	SeasonPost = "post"
)

// SeasonTypeCode maps a season string to the scoreboard API season type code.
// Unknown values fall back to the regular season.
func SeasonTypeCode(season string) int {
	switch season {
	case SeasonPre:
		return 1
	case SeasonReg:
		return 2
	case SeasonPost:
		return 3
	default:
		return 2
	}
}

// Competitor is one side of a game
type Competitor struct {
	HomeAway string `json:"homeAway" bson:"homeAway"`
	TeamName string `json:"teamName" bson:"teamName"`
	Score    string `json:"score" bson:"score"` // empty until the game starts
	Winner   bool   `json:"winner" bson:"winner"`
}

// ScoreValue parses the competitor's score, treating a missing or
// unparseable score as zero
func (c *Competitor) ScoreValue() float64 {
	if c.Score == "" {
		return 0
	}
	v, err := strconv.ParseFloat(c.Score, 64)
	if err != nil {
		return 0
	}
	return v
}

// Event represents one game on the scoreboard. Competitors is empty when
// the upstream event carried no competition data.
type Event struct {
	ID          string       `json:"id" bson:"id"`
	Date        time.Time    `json:"date" bson:"date"`
	State       EventState   `json:"state" bson:"state"`
	Competitors []Competitor `json:"competitors" bson:"competitors"`
}

// IsFinal returns true if the event has reached its terminal state
func (e *Event) IsFinal() bool {
	return e.State == EventStatePost
}

// HasCompetition returns true if the event carries competitor data
func (e *Event) HasCompetition() bool {
	return len(e.Competitors) > 0
}

// Competitor returns the competitor tagged with the given side ("home" or
// "away"), or nil if absent
func (e *Event) Competitor(homeAway string) *Competitor {
	for i := range e.Competitors {
		if e.Competitors[i].HomeAway == homeAway {
			return &e.Competitors[i]
		}
	}
	return nil
}

// CombinedScore returns the sum of the home and away scores, with missing
// competitors or scores counting as zero
func (e *Event) CombinedScore() float64 {
	var total float64
	if home := e.Competitor("home"); home != nil {
		total += home.ScoreValue()
	}
	if away := e.Competitor("away"); away != nil {
		total += away.ScoreValue()
	}
	return total
}

// WinningTeamName returns the display name of the declared winner, or an
// empty string if no competitor carries the winner flag or the winner has
// no resolvable name
func (e *Event) WinningTeamName() string {
	for i := range e.Competitors {
		if e.Competitors[i].Winner {
			return e.Competitors[i].TeamName
		}
	}
	return ""
}
