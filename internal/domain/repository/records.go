package repository

import (
	"context"

	"github.com/evrs-lk/evrs-api/internal/domain/entity"
)

type VaccineRepository interface {
	Create(ctx context.Context, v *entity.Vaccine) error
	GetByID(ctx context.Context, vaccineID string) (*entity.Vaccine, error)
	GetManyByIDs(ctx context.Context, ids []string) ([]entity.Vaccine, error)
	List(ctx context.Context) ([]entity.Vaccine, error)
}

type VaccinationRepository interface {
	Create(ctx context.Context, r *entity.VaccinationRecord) error
	GetByID(ctx context.Context, vaccinationID string) (*entity.VaccinationRecord, error)
	// ListByCitizen returns records newest-first; limit <= 0 means no limit.
	ListByCitizen(ctx context.Context, citizenID string, limit int) ([]entity.VaccinationRecord, error)
	ListAll(ctx context.Context, page, size int) ([]entity.VaccinationRecord, int64, error)
}
