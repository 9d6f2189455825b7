package application

import (
	"context"
	"errors"
	"strings"

	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	"github.com/evrs-lk/evrs-api/internal/domain/repository"
)

// ProfileService serves the account-facing profile pages and the citizen
// profile writes. Contact fields never change through here.
type ProfileService struct {
	Citizens  repository.CitizenRepository
	HCPs      repository.HCPRepository
	Hospitals repository.HospitalRepository
	MOHs      repository.MOHRepository
	Search    *SearchService
}

func (s *ProfileService) GetCitizen(ctx context.Context, citizenID string) (*entity.Citizen, error) {
	c, err := s.Citizens.GetByID(ctx, citizenID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCitizenNotFound
	}
	return c, err
}

func (s *ProfileService) GetHCP(ctx context.Context, hcpID string) (*entity.HealthcareProvider, error) {
	h, err := s.HCPs.GetByID(ctx, hcpID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	return h, err
}

func (s *ProfileService) GetHospital(ctx context.Context, hospitalID string) (*entity.Hospital, error) {
	h, err := s.Hospitals.GetByID(ctx, hospitalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	return h, err
}

func (s *ProfileService) GetMOH(ctx context.Context, mohID string) (*entity.MOHOfficial, error) {
	m, err := s.MOHs.GetByID(ctx, mohID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	return m, err
}

func (s *ProfileService) UpdateCitizenAddress(ctx context.Context, citizenID, address string) (*entity.Citizen, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, errors.New("address is required")
	}
	if err := s.Citizens.UpdateAddress(ctx, citizenID, address); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCitizenNotFound
		}
		return nil, err
	}
	return s.reloadAndIndex(ctx, citizenID)
}

func (s *ProfileService) UpdateCitizenMedical(ctx context.Context, citizenID string, m repository.MedicalUpdate) (*entity.Citizen, error) {
	c, err := s.Citizens.UpdateMedical(ctx, citizenID, m)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCitizenNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.Search != nil {
		_ = s.Search.IndexCitizen(ctx, c)
	}
	return c, nil
}

// ReindexCitizen refreshes the search document after out-of-band changes,
// like a committed contact change.
func (s *ProfileService) ReindexCitizen(ctx context.Context, citizenID string) {
	_, _ = s.reloadAndIndex(ctx, citizenID)
}

func (s *ProfileService) reloadAndIndex(ctx context.Context, citizenID string) (*entity.Citizen, error) {
	c, err := s.Citizens.GetByID(ctx, citizenID)
	if err != nil {
		return nil, err
	}
	if s.Search != nil {
		_ = s.Search.IndexCitizen(ctx, c)
	}
	return c, nil
}
