package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"
)

// FetchError indicates the scoreboard query itself failed: a non-2xx status
// or a network failure. StatusCode is zero for network failures.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("scoreboard fetch failed: status %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("scoreboard fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ScoreboardService fetches week scoreboards from the ESPN API
type ScoreboardService struct {
	client  *http.Client
	baseURL string
	cache   *ScoreboardCache
	logger  *logging.Logger
}

// NewScoreboardService creates a new scoreboard service. The cache is
// optional; pass nil to fetch fresh on every call.
func NewScoreboardService(baseURL string, timeout time.Duration, cache *ScoreboardCache) *ScoreboardService {
	return &ScoreboardService{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		cache:   cache,
		logger:  logging.WithPrefix("Scoreboard"),
	}
}

// Scoreboard API response structures

type scoreboardResponse struct {
	Events []scoreboardEvent `json:"events"`
}

type scoreboardEvent struct {
	ID           string                  `json:"id"`
	Date         string                  `json:"date"`
	Status       *scoreboardStatus       `json:"status,omitempty"`
	Competitions []scoreboardCompetition `json:"competitions"`
}

type scoreboardCompetition struct {
	Competitors []scoreboardCompetitor `json:"competitors"`
	Status      *scoreboardStatus      `json:"status,omitempty"`
}

type scoreboardCompetitor struct {
	HomeAway string         `json:"homeAway"`
	Score    json.Number    `json:"score"`
	Winner   bool           `json:"winner"`
	Team     scoreboardTeam `json:"team"`
}

type scoreboardTeam struct {
	ShortDisplayName string `json:"shortDisplayName"`
	DisplayName      string `json:"displayName"`
	Abbreviation     string `json:"abbreviation"`
}

type scoreboardStatus struct {
	Type scoreboardStatusType `json:"type"`
}

type scoreboardStatusType struct {
	State     string `json:"state"`
	Completed bool   `json:"completed"`
}

// GetScoreboard fetches the events for one (year, week, season type) slate.
// Returns a *FetchError on a non-2xx status or network failure; malformed
// individual events degrade instead of failing the whole fetch.
func (s *ScoreboardService) GetScoreboard(ctx context.Context, year, week, seasonType int) ([]models.Event, error) {
	key := ScoreboardKey{Year: year, Week: week, SeasonType: seasonType}
	if s.cache != nil {
		if events, ok := s.cache.Get(key); ok {
			s.logger.Debugf("Cache hit for year=%d week=%d seasontype=%d", year, week, seasonType)
			return events, nil
		}
	}

	url := fmt.Sprintf("%s?year=%d&week=%d&seasontype=%d", s.baseURL, year, week, seasonType)
	s.logger.Debugf("Fetching %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	var sbResp scoreboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&sbResp); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("decoding response: %w", err)}
	}

	events := s.convertEvents(sbResp.Events)
	s.logger.Infof("Fetched %d events for year=%d week=%d seasontype=%d", len(events), year, week, seasonType)

	if s.cache != nil {
		s.cache.Put(key, events)
	}
	return events, nil
}

// convertEvents normalizes raw scoreboard events. Absent competitions,
// competitors or scores degrade to empty values rather than dropping the
// event entirely, so the finality gate still sees every game in the slate.
func (s *ScoreboardService) convertEvents(events []scoreboardEvent) []models.Event {
	converted := make([]models.Event, 0, len(events))
	for _, event := range events {
		converted = append(converted, s.convertEvent(event))
	}
	return converted
}

func (s *ScoreboardService) convertEvent(event scoreboardEvent) models.Event {
	out := models.Event{
		ID:    event.ID,
		State: models.EventStatePre,
	}

	// ESPN uses "2025-09-08T00:20Z", occasionally with seconds
	date, err := time.Parse("2006-01-02T15:04Z", event.Date)
	if err != nil {
		date, err = time.Parse(time.RFC3339, event.Date)
		if err != nil {
			s.logger.Warnf("Failed to parse date %q for event %s: %v", event.Date, event.ID, err)
		}
	}
	out.Date = date

	status := event.Status
	if len(event.Competitions) > 0 && event.Competitions[0].Status != nil {
		status = event.Competitions[0].Status
	}
	if status != nil {
		out.State = convertEventState(status.Type.State)
	}

	if len(event.Competitions) > 0 {
		for _, competitor := range event.Competitions[0].Competitors {
			name := competitor.Team.ShortDisplayName
			if name == "" {
				name = competitor.Team.DisplayName
			}
			out.Competitors = append(out.Competitors, models.Competitor{
				HomeAway: competitor.HomeAway,
				TeamName: name,
				Score:    competitor.Score.String(),
				Winner:   competitor.Winner,
			})
		}
	}

	return out
}

func convertEventState(state string) models.EventState {
	switch strings.ToLower(state) {
	case "pre":
		return models.EventStatePre
	case "in":
		return models.EventStateIn
	case "post":
		return models.EventStatePost
	default:
		return models.EventStatePre
	}
}
