package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	"github.com/evrs-lk/evrs-api/internal/domain/repository"
)

type VaccineRepository struct {
	col *mongo.Collection
}

func NewVaccineRepository(db *mongo.Database) *VaccineRepository {
	return &VaccineRepository{col: db.Collection(CollVaccines)}
}

func (r *VaccineRepository) Create(ctx context.Context, v *entity.Vaccine) error {
	return insertStamped(ctx, r.col, v, func(now time.Time) {
		v.CreatedAt = now
		v.UpdatedAt = now
	})
}

func (r *VaccineRepository) GetByID(ctx context.Context, vaccineID string) (*entity.Vaccine, error) {
	return findByID[entity.Vaccine](ctx, r.col, "vaccineId", vaccineID)
}

func (r *VaccineRepository) GetManyByIDs(ctx context.Context, ids []string) ([]entity.Vaccine, error) {
	return findManyByIDs[entity.Vaccine](ctx, r.col, "vaccineId", ids)
}

func (r *VaccineRepository) List(ctx context.Context) ([]entity.Vaccine, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []entity.Vaccine
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type VaccinationRepository struct {
	col *mongo.Collection
}

func NewVaccinationRepository(db *mongo.Database) *VaccinationRepository {
	return &VaccinationRepository{col: db.Collection(CollVaccinations)}
}

func (r *VaccinationRepository) Create(ctx context.Context, rec *entity.VaccinationRecord) error {
	return insertStamped(ctx, r.col, rec, func(now time.Time) {
		rec.CreatedAt = now
		rec.UpdatedAt = now
	})
}

func (r *VaccinationRepository) GetByID(ctx context.Context, vaccinationID string) (*entity.VaccinationRecord, error) {
	return findByID[entity.VaccinationRecord](ctx, r.col, "vaccinationId", vaccinationID)
}

func (r *VaccinationRepository) ListByCitizen(ctx context.Context, citizenID string, limit int) ([]entity.VaccinationRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{"citizenId": citizenID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []entity.VaccinationRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *VaccinationRepository) ListAll(ctx context.Context, page, size int) ([]entity.VaccinationRecord, int64, error) {
	return listPage[entity.VaccinationRecord](ctx, r.col, page, size)
}

var (
	_ repository.VaccineRepository     = (*VaccineRepository)(nil)
	_ repository.VaccinationRepository = (*VaccinationRepository)(nil)
)
