package models

import (
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reserved keys in a week's pick entry that are not event picks
const (
	PickKeyTieBreaker   = "tieBreaker"
	PickKeyDisplayName  = "displayName"
	PickKeyLocked       = "locked"
	PickKeySubmittedAt  = "submittedAt"
	PickKeyLastEditedAt = "lastEditedAt"
)

// WeekKey builds the composite key for one week's entry in a pick document,
// e.g. "2025-reg-W3"
func WeekKey(year int, season string, week int) string {
	return fmt.Sprintf("%d-%s-W%d", year, season, week)
}

// LegacyWeekKey builds the seasonless key older pick documents were written
// with, e.g. "2025-W3"
func LegacyWeekKey(year, week int) string {
	return fmt.Sprintf("%d-W%d", year, week)
}

// SeasonKey builds the ledger document key for one season, e.g. "2025-reg"
func SeasonKey(year int, season string) string {
	return fmt.Sprintf("%d-%s", year, season)
}

// WeekLabel builds the per-week label used in ledger history maps, e.g. "W3"
func WeekLabel(week int) string {
	return fmt.Sprintf("W%d", week)
}

// PickDocument is one user's pick document: one entry per week, keyed by
// WeekKey (or LegacyWeekKey for pre-migration data)
type PickDocument struct {
	UID   string
	Weeks map[string]map[string]interface{}
}

// ResolveWeekEntry looks up the week's entry under the composite key,
// falling back to the legacy seasonless key. The legacy form is a read-only
// migration shim; nothing writes it anymore.
func (d *PickDocument) ResolveWeekEntry(year int, season string, week int) (map[string]interface{}, bool) {
	if entry, ok := d.Weeks[WeekKey(year, season, week)]; ok {
		return entry, true
	}
	if entry, ok := d.Weeks[LegacyWeekKey(year, week)]; ok {
		return entry, true
	}
	return nil, false
}

// WeekPicks is one user's parsed picks for one week
type WeekPicks struct {
	Picks        map[string]string // event id -> picked team name
	TieBreaker   *float64          // nil when missing or unparseable
	DisplayName  string
	Locked       bool
	SubmittedAt  time.Time
	LastEditedAt time.Time
}

// ParseWeekPicks separates event picks from the reserved keys of a raw week
// entry. Non-string pick values are dropped.
func ParseWeekPicks(entry map[string]interface{}) WeekPicks {
	wp := WeekPicks{Picks: make(map[string]string)}

	for key, value := range entry {
		switch key {
		case PickKeyTieBreaker:
			wp.TieBreaker = toFloat(value)
		case PickKeyDisplayName:
			if name, ok := value.(string); ok {
				wp.DisplayName = name
			}
		case PickKeyLocked:
			if locked, ok := value.(bool); ok {
				wp.Locked = locked
			}
		case PickKeySubmittedAt:
			if ts, ok := toTime(value); ok {
				wp.SubmittedAt = ts
			}
		case PickKeyLastEditedAt:
			if ts, ok := toTime(value); ok {
				wp.LastEditedAt = ts
			}
		default:
			if team, ok := value.(string); ok {
				wp.Picks[key] = team
			}
		}
	}

	return wp
}

// toFloat normalizes the numeric types the driver may hand back for a
// tiebreaker, plus numeric strings from older clients
func toFloat(value interface{}) *float64 {
	switch v := value.(type) {
	case float64:
		return &v
	case float32:
		f := float64(v)
		return &f
	case int:
		f := float64(v)
		return &f
	case int32:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
	}
	return nil
}

func toTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case primitive.DateTime:
		return v.Time(), true
	case string:
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
