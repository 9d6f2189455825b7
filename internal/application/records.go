package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	"github.com/evrs-lk/evrs-api/internal/domain/repository"
	"github.com/evrs-lk/evrs-api/pkg/helpers"
	"github.com/evrs-lk/evrs-api/pkg/notify"
)

var (
	ErrCitizenNotFound = errors.New("citizen not found")
	ErrVaccineNotFound = errors.New("vaccine not found")
	ErrVaccineExists   = errors.New("vaccine already exists")
)

// NewVaccinationInput is what a vaccinator submits when recording a dose.
type NewVaccinationInput struct {
	CitizenID           string
	VaccineID           string
	BatchNumber         string
	ExpiryDate          time.Time
	VaccinationLocation string
	Division            string
	AdditionalNotes     string
}

// VaccinationView is a dose joined with its vaccine and the name of whoever
// recorded it, for citizen-facing history pages.
type VaccinationView struct {
	entity.VaccinationRecord
	VaccineName    string `json:"vaccine_name"`
	SideEffects    string `json:"side_effects,omitempty"`
	VaccinatorName string `json:"vaccinator_name,omitempty"`
}

// RecordsService owns the vaccine catalog and vaccination records.
type RecordsService struct {
	Citizens     repository.CitizenRepository
	Vaccines     repository.VaccineRepository
	Vaccinations repository.VaccinationRepository
	HCPs         repository.HCPRepository
	Hospitals    repository.HospitalRepository
	MOHs         repository.MOHRepository

	Publisher   *helpers.RabbitPublisher
	SendNotices bool
	Logger      *logrus.Logger
}

// CreateVaccine adds a catalog entry. Names are unique; the Mongo index
// surfaces duplicates as ErrVaccineExists.
func (s *RecordsService) CreateVaccine(ctx context.Context, name, sideEffects string, by entity.RecordedBy) (*entity.Vaccine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("vaccine name is required")
	}
	now := time.Now().UTC()
	v := &entity.Vaccine{
		VaccineID:   uuid.NewString(),
		Name:        name,
		SideEffects: strings.TrimSpace(sideEffects),
		RecordedBy:  by,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Vaccines.Create(ctx, v); err != nil {
		if repository.IsDuplicate(err) {
			return nil, ErrVaccineExists
		}
		return nil, err
	}
	return v, nil
}

func (s *RecordsService) ListVaccines(ctx context.Context) ([]entity.Vaccine, error) {
	return s.Vaccines.List(ctx)
}

func (s *RecordsService) GetVaccine(ctx context.Context, vaccineID string) (*entity.Vaccine, error) {
	v, err := s.Vaccines.GetByID(ctx, vaccineID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrVaccineNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// AddVaccination records a dose against an existing citizen and vaccine and,
// when notices are enabled, queues a notification to the citizen's committed
// contact details.
func (s *RecordsService) AddVaccination(ctx context.Context, in NewVaccinationInput, by entity.RecordedBy) (*entity.VaccinationRecord, error) {
	citizen, err := s.Citizens.GetByID(ctx, in.CitizenID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCitizenNotFound
	}
	if err != nil {
		return nil, err
	}
	vaccine, err := s.Vaccines.GetByID(ctx, in.VaccineID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrVaccineNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &entity.VaccinationRecord{
		VaccinationID:       uuid.NewString(),
		CitizenID:           citizen.CitizenID,
		VaccineID:           vaccine.VaccineID,
		BatchNumber:         strings.TrimSpace(in.BatchNumber),
		ExpiryDate:          in.ExpiryDate,
		VaccinationLocation: strings.TrimSpace(in.VaccinationLocation),
		Division:            strings.TrimSpace(in.Division),
		AdditionalNotes:     strings.TrimSpace(in.AdditionalNotes),
		RecordedBy:          by,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.Vaccinations.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.notifyDoseRecorded(ctx, citizen, vaccine, rec)
	return rec, nil
}

// notifyDoseRecorded is best-effort; a queue outage never fails the record.
func (s *RecordsService) notifyDoseRecorded(ctx context.Context, c *entity.Citizen, v *entity.Vaccine, rec *entity.VaccinationRecord) {
	if !s.SendNotices || s.Publisher == nil {
		return
	}
	body := fmt.Sprintf("Dear %s, a %s vaccination was recorded for you on %s at %s.",
		c.FullName(), v.Name, rec.CreatedAt.Format("2 Jan 2006"), rec.VaccinationLocation)

	var job *notify.Job
	switch {
	case c.Email != "":
		job = &notify.Job{Channel: "email", Target: c.Email, Subject: "Vaccination recorded", Body: body}
	case c.PhoneNumber != "":
		job = &notify.Job{Channel: "phone", Target: c.PhoneNumber, Body: body}
	default:
		return
	}
	if err := s.Publisher.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("citizenId", c.CitizenID).Warn("failed to queue vaccination notice")
	}
}

// ListCitizenVaccinations returns a citizen's doses newest-first, joined with
// vaccine details and the recording account's display name.
func (s *RecordsService) ListCitizenVaccinations(ctx context.Context, citizenID string, limit int) ([]VaccinationView, error) {
	if _, err := s.Citizens.GetByID(ctx, citizenID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCitizenNotFound
		}
		return nil, err
	}
	recs, err := s.Vaccinations.ListByCitizen(ctx, citizenID, limit)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, recs)
}

// ListAllVaccinations pages through every dose for admin review.
func (s *RecordsService) ListAllVaccinations(ctx context.Context, page, size int) ([]VaccinationView, int64, error) {
	recs, total, err := s.Vaccinations.ListAll(ctx, page, size)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.enrich(ctx, recs)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *RecordsService) enrich(ctx context.Context, recs []entity.VaccinationRecord) ([]VaccinationView, error) {
	if len(recs) == 0 {
		return []VaccinationView{}, nil
	}

	vaccineIDs := make([]string, 0, len(recs))
	byRole := map[entity.AccountKind][]string{}
	seen := map[string]bool{}
	for _, r := range recs {
		if !seen["v:"+r.VaccineID] {
			seen["v:"+r.VaccineID] = true
			vaccineIDs = append(vaccineIDs, r.VaccineID)
		}
		key := string(r.RecordedBy.Role) + ":" + r.RecordedBy.ID
		if !seen[key] {
			seen[key] = true
			byRole[r.RecordedBy.Role] = append(byRole[r.RecordedBy.Role], r.RecordedBy.ID)
		}
	}

	vaccines, err := s.Vaccines.GetManyByIDs(ctx, vaccineIDs)
	if err != nil {
		return nil, err
	}
	vaccineByID := make(map[string]entity.Vaccine, len(vaccines))
	for _, v := range vaccines {
		vaccineByID[v.VaccineID] = v
	}

	names := map[string]string{}
	if ids := byRole[entity.KindHCP]; len(ids) > 0 {
		hcps, err := s.HCPs.GetManyByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, h := range hcps {
			names[string(entity.KindHCP)+":"+h.HCPID] = h.FullName
		}
	}
	if ids := byRole[entity.KindHospital]; len(ids) > 0 {
		hospitals, err := s.Hospitals.GetManyByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, h := range hospitals {
			names[string(entity.KindHospital)+":"+h.HospitalID] = h.Name
		}
	}
	if ids := byRole[entity.KindMOH]; len(ids) > 0 {
		mohs, err := s.MOHs.GetManyByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, m := range mohs {
			names[string(entity.KindMOH)+":"+m.MOHID] = m.Name
		}
	}

	views := make([]VaccinationView, 0, len(recs))
	for _, r := range recs {
		view := VaccinationView{VaccinationRecord: r}
		if v, ok := vaccineByID[r.VaccineID]; ok {
			view.VaccineName = v.Name
			view.SideEffects = v.SideEffects
		}
		view.VaccinatorName = names[string(r.RecordedBy.Role)+":"+r.RecordedBy.ID]
		views = append(views, view)
	}
	return views, nil
}
