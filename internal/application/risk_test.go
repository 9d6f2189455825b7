package application

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	repo "github.com/evrs-lk/evrs-api/internal/domain/repository"
)

type stubCitizens struct {
	byID map[string]*entity.Citizen
}

func (s *stubCitizens) Create(context.Context, *entity.Citizen) error { return nil }

func (s *stubCitizens) GetByID(_ context.Context, id string) (*entity.Citizen, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return c, nil
}

func (s *stubCitizens) List(context.Context, int, int) ([]entity.Citizen, int64, error) {
	out := make([]entity.Citizen, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (s *stubCitizens) UpdateAddress(context.Context, string, string) error { return nil }

func (s *stubCitizens) UpdateMedical(context.Context, string, repo.MedicalUpdate) (*entity.Citizen, error) {
	return nil, repo.ErrNotFound
}

func (s *stubCitizens) UpdatePassword(context.Context, string, string) error { return nil }

type stubVaccinations struct {
	byCitizen map[string][]entity.VaccinationRecord
}

func (s *stubVaccinations) Create(context.Context, *entity.VaccinationRecord) error { return nil }

func (s *stubVaccinations) GetByID(context.Context, string) (*entity.VaccinationRecord, error) {
	return nil, repo.ErrNotFound
}

// newest-first, like the Mongo repository
func (s *stubVaccinations) ListByCitizen(_ context.Context, citizenID string, limit int) ([]entity.VaccinationRecord, error) {
	recs := s.byCitizen[citizenID]
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (s *stubVaccinations) ListAll(context.Context, int, int) ([]entity.VaccinationRecord, int64, error) {
	return nil, 0, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestScoreCitizenBuildsWideEvent(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 1, d, 10, 0, 0, 0, time.UTC) }
	citizens := &stubCitizens{byID: map[string]*entity.Citizen{
		"CIT-1": {
			CitizenID: "CIT-1",
			BirthDate: time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC),
			District:  "Kandy",
			Division:  "Kandy Central",
		},
	}}
	vaccinations := &stubVaccinations{byCitizen: map[string][]entity.VaccinationRecord{
		"CIT-1": {
			{VaccineID: "VAC-2", VaccinationLocation: "Kandy GH", RecordedBy: entity.RecordedBy{ID: "HCP-9"}, CreatedAt: day(20)},
			{VaccineID: "VAC-1", VaccinationLocation: "Kandy GH", RecordedBy: entity.RecordedBy{ID: "HCP-9"}, CreatedAt: day(2)},
		},
	}}

	var got struct {
		Mode   string      `json:"mode"`
		Events []RiskEvent `json:"events"`
	}
	srv := httptest.NewServer(scorerStub(t, &got))
	defer srv.Close()

	svc := NewRiskService(citizens, vaccinations, srv.URL, 5*time.Second, quietLogger())
	score, err := svc.ScoreCitizen(context.Background(), "CIT-1")
	require.NoError(t, err)
	assert.Equal(t, "CIT-1", score.CitizenID)
	assert.Equal(t, 0.82, score.RiskProb)
	assert.Equal(t, "High", score.RiskTier)
	require.NotNil(t, score.DoseNumber)
	assert.Equal(t, 2, *score.DoseNumber)
	assert.Equal(t, "2026-03-03", score.DueBy)
	assert.Equal(t, "Call + WhatsApp + SMS", score.RecommendedAction)

	require.Len(t, got.Events, 1)
	ev := got.Events[0]
	assert.Equal(t, "latest", got.Mode)
	assert.Equal(t, "1990-06-01", ev.BirthDate)
	// dose slots fill oldest first
	assert.Equal(t, "VAC-1", ev.V1Code)
	assert.Equal(t, "2026-01-02", ev.V1Date)
	assert.Equal(t, "VAC-2", ev.V2Code)
	assert.Equal(t, "", ev.V3Code)
}

// scorerStub mimics the scorer endpoint: only the "latest" and "all" modes
// are accepted, and results come back keyed risk_prob/risk_tier under a
// top-level "results" array.
func scorerStub(t *testing.T, got *struct {
	Mode   string      `json:"mode"`
	Events []RiskEvent `json:"events"`
}) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/score", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		if got.Mode != "latest" && got.Mode != "all" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		dose := 2
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{
				"citizenId":          got.Events[0].CitizenID,
				"dose_number":        dose,
				"index_v_code":       got.Events[0].V2Code,
				"index_v_date":       got.Events[0].V2Date,
				"risk_prob":          0.82,
				"risk_tier":          "High",
				"due_by":             "2026-03-03",
				"recommended_action": "Call + WhatsApp + SMS",
			}},
		})
	})
}

func TestScoreCitizensNormalizesMode(t *testing.T) {
	citizens := &stubCitizens{byID: map[string]*entity.Citizen{
		"CIT-1": {CitizenID: "CIT-1", BirthDate: time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)},
	}}
	vaccinations := &stubVaccinations{byCitizen: map[string][]entity.VaccinationRecord{
		"CIT-1": {{VaccineID: "VAC-1", CreatedAt: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)}},
	}}

	var got struct {
		Mode   string      `json:"mode"`
		Events []RiskEvent `json:"events"`
	}
	srv := httptest.NewServer(scorerStub(t, &got))
	defer srv.Close()

	svc := NewRiskService(citizens, vaccinations, srv.URL, 5*time.Second, quietLogger())

	scores, err := svc.ScoreCitizens(context.Background(), 1, 10, "bogus")
	require.NoError(t, err)
	assert.Equal(t, RiskModeLatest, got.Mode)
	require.Len(t, scores, 1)
	assert.Equal(t, "High", scores[0].RiskTier)

	_, err = svc.ScoreCitizens(context.Background(), 1, 10, RiskModeAll)
	require.NoError(t, err)
	assert.Equal(t, RiskModeAll, got.Mode)
}

func TestScoreCitizenUnknown(t *testing.T) {
	svc := NewRiskService(&stubCitizens{byID: map[string]*entity.Citizen{}}, &stubVaccinations{},
		"http://127.0.0.1:0", time.Second, quietLogger())

	_, err := svc.ScoreCitizen(context.Background(), "CIT-404")
	assert.ErrorIs(t, err, ErrCitizenNotFound)
}

func TestScorerBreakerOpensAfterFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	citizens := &stubCitizens{byID: map[string]*entity.Citizen{"CIT-1": {CitizenID: "CIT-1"}}}
	svc := NewRiskService(citizens, &stubVaccinations{}, srv.URL, time.Second, quietLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.ScoreCitizen(ctx, "CIT-1")
		assert.ErrorIs(t, err, ErrScorerUnavailable)
	}
	// breaker is open now; the scorer is no longer called
	_, err := svc.ScoreCitizen(ctx, "CIT-1")
	assert.ErrorIs(t, err, ErrScorerUnavailable)
}
