package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	"github.com/evrs-lk/evrs-api/internal/domain/repository"
)

// ErrScorerUnavailable is returned while the breaker is open or the scorer
// cannot be reached.
var ErrScorerUnavailable = errors.New("risk scorer unavailable")

// Scorer event-expansion modes. "latest" scores one row per citizen built
// from the newest dose; "all" scores a row per dose. Anything else is
// rejected upstream with a 422.
const (
	RiskModeLatest = "latest"
	RiskModeAll    = "all"
)

// RiskEvent is the wide per-citizen row the external scorer consumes: the
// citizen's demographics plus up to four dose slots, oldest first.
type RiskEvent struct {
	CitizenID string `json:"citizenId"`
	BirthDate string `json:"birthDate"`
	District  string `json:"district"`
	Division  string `json:"division"`

	V1Code     string `json:"v1Code,omitempty"`
	V1Date     string `json:"v1Date,omitempty"`
	V1Location string `json:"v1Location,omitempty"`
	V1HcpID    string `json:"v1HcpId,omitempty"`

	V2Code     string `json:"v2Code,omitempty"`
	V2Date     string `json:"v2Date,omitempty"`
	V2Location string `json:"v2Location,omitempty"`
	V2HcpID    string `json:"v2HcpId,omitempty"`

	V3Code     string `json:"v3Code,omitempty"`
	V3Date     string `json:"v3Date,omitempty"`
	V3Location string `json:"v3Location,omitempty"`
	V3HcpID    string `json:"v3HcpId,omitempty"`

	V4Code     string `json:"v4Code,omitempty"`
	V4Date     string `json:"v4Date,omitempty"`
	V4Location string `json:"v4Location,omitempty"`
	V4HcpID    string `json:"v4HcpId,omitempty"`
}

// RiskScore is one item of the scorer's "results" array: the probability the
// citizen misses their next dose, the tier cut from it, and the outreach the
// scorer recommends for that tier.
type RiskScore struct {
	CitizenID         string  `json:"citizenId"`
	DoseNumber        *int    `json:"dose_number"`
	IndexVCode        string  `json:"index_v_code,omitempty"`
	IndexVDate        string  `json:"index_v_date,omitempty"`
	RiskProb          float64 `json:"risk_prob"`
	RiskTier          string  `json:"risk_tier"`
	DueBy             string  `json:"due_by,omitempty"`
	RecommendedAction string  `json:"recommended_action,omitempty"`
}

// RiskService assembles citizen dose histories into the scorer's wide format
// and forwards them, guarding the upstream call with a circuit breaker.
type RiskService struct {
	Citizens     repository.CitizenRepository
	Vaccinations repository.VaccinationRepository

	ScorerURL string
	Client    *http.Client
	Breaker   *gobreaker.CircuitBreaker
	Logger    *logrus.Logger
}

func NewRiskService(citizens repository.CitizenRepository, vaccinations repository.VaccinationRepository,
	scorerURL string, timeout time.Duration, logger *logrus.Logger) *RiskService {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "risk-scorer",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state change")
		},
	})
	return &RiskService{
		Citizens:     citizens,
		Vaccinations: vaccinations,
		ScorerURL:    scorerURL,
		Client:       &http.Client{Timeout: timeout},
		Breaker:      cb,
		Logger:       logger,
	}
}

// ScoreCitizens scores one page of citizens. mode selects the scorer's event
// expansion and falls back to "latest" when it is not a known mode.
func (s *RiskService) ScoreCitizens(ctx context.Context, page, size int, mode string) ([]RiskScore, error) {
	if mode != RiskModeAll {
		mode = RiskModeLatest
	}
	citizens, _, err := s.Citizens.List(ctx, page, size)
	if err != nil {
		return nil, err
	}
	events := make([]RiskEvent, 0, len(citizens))
	for i := range citizens {
		ev, err := s.buildEvent(ctx, &citizens[i])
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if len(events) == 0 {
		return []RiskScore{}, nil
	}
	return s.forward(ctx, events, mode)
}

// ScoreCitizen scores a single citizen by id.
func (s *RiskService) ScoreCitizen(ctx context.Context, citizenID string) (*RiskScore, error) {
	c, err := s.Citizens.GetByID(ctx, citizenID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCitizenNotFound
	}
	if err != nil {
		return nil, err
	}
	ev, err := s.buildEvent(ctx, c)
	if err != nil {
		return nil, err
	}
	scores, err := s.forward(ctx, []RiskEvent{ev}, RiskModeLatest)
	if err != nil {
		return nil, err
	}
	// the scorer produces nothing for a citizen with no recorded doses
	if len(scores) == 0 {
		return nil, fmt.Errorf("no scoreable doses for %s", citizenID)
	}
	return &scores[0], nil
}

func (s *RiskService) buildEvent(ctx context.Context, c *entity.Citizen) (RiskEvent, error) {
	// newest-first from the repository, reversed so slots fill oldest-first
	recs, err := s.Vaccinations.ListByCitizen(ctx, c.CitizenID, 4)
	if err != nil {
		return RiskEvent{}, err
	}
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}

	ev := RiskEvent{
		CitizenID: c.CitizenID,
		BirthDate: c.BirthDate.Format("2006-01-02"),
		District:  c.District,
		Division:  c.Division,
	}
	type slot struct {
		code, date, location, hcpID *string
	}
	slots := []slot{
		{&ev.V1Code, &ev.V1Date, &ev.V1Location, &ev.V1HcpID},
		{&ev.V2Code, &ev.V2Date, &ev.V2Location, &ev.V2HcpID},
		{&ev.V3Code, &ev.V3Date, &ev.V3Location, &ev.V3HcpID},
		{&ev.V4Code, &ev.V4Date, &ev.V4Location, &ev.V4HcpID},
	}
	for i, r := range recs {
		if i >= len(slots) {
			break
		}
		*slots[i].code = r.VaccineID
		*slots[i].date = r.CreatedAt.Format("2006-01-02")
		*slots[i].location = r.VaccinationLocation
		*slots[i].hcpID = r.RecordedBy.ID
	}
	return ev, nil
}

func (s *RiskService) forward(ctx context.Context, events []RiskEvent, mode string) ([]RiskScore, error) {
	payload, err := json.Marshal(map[string]any{"events": events, "mode": mode})
	if err != nil {
		return nil, err
	}

	out, err := s.Breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ScorerURL+"/score", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.Client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("scorer responded %d: %s", resp.StatusCode, body)
		}
		var parsed struct {
			Results []RiskScore `json:"results"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return nil, err
		}
		return parsed.Results, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrScorerUnavailable
		}
		s.Logger.WithError(err).Warn("risk scorer call failed")
		return nil, fmt.Errorf("%w: %v", ErrScorerUnavailable, err)
	}
	return out.([]RiskScore), nil
}
