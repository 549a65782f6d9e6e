package services

import (
	"context"
	"fmt"
	"time"

	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"

	"github.com/itbasis/go-clock"
	"golang.org/x/sync/errgroup"
)

// Reason value for a week that cannot be scored yet
const ReasonNotFinal = "not_final"

// ScoreboardClient fetches the events for one week's slate
type ScoreboardClient interface {
	GetScoreboard(ctx context.Context, year, week, seasonType int) ([]models.Event, error)
}

// WeeklyResultsRepository persists computed weekly results
type WeeklyResultsRepository interface {
	Upsert(ctx context.Context, result *models.WeeklyResult) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SeasonLedgerRepository accumulates per-user season stats
type SeasonLedgerRepository interface {
	ApplyWeek(ctx context.Context, year int, season string, weekLabel string, standings []models.StandingEntry, now time.Time) error
}

// UserRepository reads user display names
type UserRepository interface {
	GetDisplayNames(ctx context.Context) (map[string]string, error)
}

// PickRepository reads user pick documents
type PickRepository interface {
	GetAll(ctx context.Context) ([]models.PickDocument, error)
}

// ComputeOutcome is the result of one week's computation. A week whose games
// are not all final is a recognized outcome, not an error.
type ComputeOutcome struct {
	Computed bool               `json:"computed"`
	Reason   string             `json:"reason,omitempty"`
	Week     int                `json:"week,omitempty"`
	Winners  []models.WinnerRef `json:"winners,omitempty"`
}

// WeekOutcome is one computed week in a bulk season run
type WeekOutcome struct {
	Week    int                `json:"week"`
	Winners []models.WinnerRef `json:"winners"`
}

// WeeklyWinnersService computes weekly winners end to end: fetch the week's
// scoreboard, gate on finality, tally every user's picks, resolve the
// tiebreak, and persist the result and season ledger.
type WeeklyWinnersService struct {
	scoreboard  ScoreboardClient
	resultsRepo WeeklyResultsRepository
	ledgerRepo  SeasonLedgerRepository
	userRepo    UserRepository
	pickRepo    PickRepository
	clock       clock.Clock
	maxWeeks    int
	logger      *logging.Logger
}

// NewWeeklyWinnersService creates a new weekly winners service
func NewWeeklyWinnersService(
	scoreboard ScoreboardClient,
	resultsRepo WeeklyResultsRepository,
	ledgerRepo SeasonLedgerRepository,
	userRepo UserRepository,
	pickRepo PickRepository,
	clk clock.Clock,
	maxWeeks int,
) *WeeklyWinnersService {
	return &WeeklyWinnersService{
		scoreboard:  scoreboard,
		resultsRepo: resultsRepo,
		ledgerRepo:  ledgerRepo,
		userRepo:    userRepo,
		pickRepo:    pickRepo,
		clock:       clk,
		maxWeeks:    maxWeeks,
		logger:      logging.WithPrefix("WeeklyWinners"),
	}
}

// ComputeWeek scores one (year, season, week). While any game is still
// pending it returns a not_final outcome and performs no writes; that state
// is safely retriable. Fetch and persistence failures are returned as
// errors.
//
// Note: calling this directly for an already-computed week overwrites the
// stored result via merge. The season ledger guards per (user, week), so a
// recompute refreshes history without double-counting cumulative totals.
func (s *WeeklyWinnersService) ComputeWeek(ctx context.Context, year int, season string, week int) (*ComputeOutcome, error) {
	events, err := s.scoreboard.GetScoreboard(ctx, year, week, models.SeasonTypeCode(season))
	if err != nil {
		return nil, err
	}

	if !AllFinal(events) {
		s.logger.Infof("Week %d-%s-W%d not final yet (%d events)", year, season, week, len(events))
		return &ComputeOutcome{Computed: false, Reason: ReasonNotFinal}, nil
	}

	winnersByEvent := WinnersByEvent(events)

	// Users and picks are independent bulk reads
	var names map[string]string
	var pickDocs []models.PickDocument
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		names, err = s.userRepo.GetDisplayNames(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		pickDocs, err = s.pickRepo.GetAll(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("loading users and picks: %w", err)
	}

	var standings []models.StandingEntry
	for _, doc := range pickDocs {
		entry, ok := doc.ResolveWeekEntry(year, season, week)
		if !ok {
			continue
		}
		weekPicks := models.ParseWeekPicks(entry)

		displayName := names[doc.UID]
		if displayName == "" {
			displayName = weekPicks.DisplayName
		}
		if displayName == "" {
			displayName = "Unknown"
		}

		standings = append(standings, models.StandingEntry{
			UID:         doc.UID,
			DisplayName: displayName,
			Wins:        TallyPicks(winnersByEvent, weekPicks.Picks),
			TieBreaker:  weekPicks.TieBreaker,
		})
	}

	lastGameTotal := LastGameTotal(events)
	winners, enriched := ResolveWinners(standings, lastGameTotal)

	winnersOut := make([]models.WinnerRef, 0, len(winners))
	for _, winner := range winners {
		winnersOut = append(winnersOut, models.WinnerRef{UID: winner.UID, DisplayName: winner.DisplayName})
	}

	persisted := enriched
	if len(persisted) == 0 {
		persisted = standings
	}

	now := s.clock.Now().UTC()
	result := &models.WeeklyResult{
		ID:            models.WeekKey(year, season, week),
		Year:          year,
		Season:        season,
		Week:          week,
		LastGameTotal: lastGameTotal,
		ComputedAt:    now,
		Standings:     persisted,
		Winners:       winnersOut,
	}

	if err := s.resultsRepo.Upsert(ctx, result); err != nil {
		return nil, fmt.Errorf("persisting weekly result: %w", err)
	}

	if err := s.ledgerRepo.ApplyWeek(ctx, year, season, models.WeekLabel(week), standings, now); err != nil {
		return nil, fmt.Errorf("applying season ledger: %w", err)
	}

	s.logger.Infof("Computed %s: %d standings, %d winners", result.ID, len(standings), len(winnersOut))
	return &ComputeOutcome{Computed: true, Week: week, Winners: winnersOut}, nil
}

// ComputeSeason runs the bulk driver: weeks 1..maxWeeks in ascending order,
// skipping any week whose result is already persisted. A failed week is
// logged and does not abort the rest of the run; the next scheduled run
// retries it because only persisted weeks are skipped.
func (s *WeeklyWinnersService) ComputeSeason(ctx context.Context, year int, season string) ([]WeekOutcome, error) {
	var outcomes []WeekOutcome

	for week := 1; week <= s.maxWeeks; week++ {
		key := models.WeekKey(year, season, week)

		exists, err := s.resultsRepo.Exists(ctx, key)
		if err != nil {
			s.logger.Errorf("Week %d existence check failed: %v", week, err)
			continue
		}
		if exists {
			continue
		}

		outcome, err := s.ComputeWeek(ctx, year, season, week)
		if err != nil {
			s.logger.Errorf("Week %d compute failed: %v", week, err)
			continue
		}
		if outcome.Computed {
			outcomes = append(outcomes, WeekOutcome{Week: week, Winners: outcome.Winners})
		}
	}

	return outcomes, nil
}
