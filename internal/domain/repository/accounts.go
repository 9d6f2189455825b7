package repository

import (
	"context"

	"github.com/evrs-lk/evrs-api/internal/domain/entity"
)

// CitizenRepository covers citizen reads and the profile writes the portal
// exposes. Contact fields are mutated only through ContactDirectory.
type CitizenRepository interface {
	Create(ctx context.Context, c *entity.Citizen) error
	GetByID(ctx context.Context, citizenID string) (*entity.Citizen, error)
	List(ctx context.Context, page, size int) ([]entity.Citizen, int64, error)
	UpdateAddress(ctx context.Context, citizenID, address string) error
	UpdateMedical(ctx context.Context, citizenID string, m MedicalUpdate) (*entity.Citizen, error)
	UpdatePassword(ctx context.Context, citizenID, hash string) error
}

// MedicalUpdate carries the optional medical-info fields; nil means unchanged.
type MedicalUpdate struct {
	BloodType         *string
	Allergies         []string
	MedicalConditions []string
	EmergencyContact  *entity.EmergencyContact
}

type HCPRepository interface {
	Create(ctx context.Context, h *entity.HealthcareProvider) error
	GetByID(ctx context.Context, hcpID string) (*entity.HealthcareProvider, error)
	GetManyByIDs(ctx context.Context, ids []string) ([]entity.HealthcareProvider, error)
	List(ctx context.Context, page, size int) ([]entity.HealthcareProvider, int64, error)
	UpdatePassword(ctx context.Context, hcpID, hash string) error
}

type HospitalRepository interface {
	Create(ctx context.Context, h *entity.Hospital) error
	GetByID(ctx context.Context, hospitalID string) (*entity.Hospital, error)
	GetManyByIDs(ctx context.Context, ids []string) ([]entity.Hospital, error)
	List(ctx context.Context, page, size int) ([]entity.Hospital, int64, error)
	UpdatePassword(ctx context.Context, hospitalID, hash string) error
}

// AdminRepository is intentionally small; admin accounts are provisioned by
// the seed tool, not through the API.
type AdminRepository interface {
	Create(ctx context.Context, a *entity.Admin) error
	GetByID(ctx context.Context, adminID string) (*entity.Admin, error)
}

type MOHRepository interface {
	Create(ctx context.Context, m *entity.MOHOfficial) error
	GetByID(ctx context.Context, mohID string) (*entity.MOHOfficial, error)
	GetManyByIDs(ctx context.Context, ids []string) ([]entity.MOHOfficial, error)
	List(ctx context.Context, page, size int) ([]entity.MOHOfficial, int64, error)
	UpdatePassword(ctx context.Context, mohID, hash string) error
}
