package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	"github.com/evrs-lk/evrs-api/internal/domain/repository"
)

// Shared query helpers for the three staff collections, which differ only in
// entity type and natural-id field.

func findByID[T any](ctx context.Context, col *mongo.Collection, idField, id string) (*T, error) {
	var out T
	err := col.FindOne(ctx, bson.M{idField: id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func findManyByIDs[T any](ctx context.Context, col *mongo.Collection, idField string, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := col.Find(ctx, bson.M{idField: bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func listPage[T any](ctx context.Context, col *mongo.Collection, page, size int) ([]T, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * size)).
		SetLimit(int64(size))
	cur, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func setPassword(ctx context.Context, col *mongo.Collection, idField, id, hash string) error {
	res, err := col.UpdateOne(ctx,
		bson.M{idField: id},
		bson.M{"$set": bson.M{"password": hash, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func insertStamped[T any](ctx context.Context, col *mongo.Collection, doc T, stamp func(now time.Time)) error {
	stamp(time.Now().UTC())
	_, err := col.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

type HCPRepository struct {
	col *mongo.Collection
}

func NewHCPRepository(db *mongo.Database) *HCPRepository {
	return &HCPRepository{col: db.Collection(CollHCPs)}
}

func (r *HCPRepository) Create(ctx context.Context, h *entity.HealthcareProvider) error {
	return insertStamped(ctx, r.col, h, func(now time.Time) {
		h.CreatedAt = now
		h.UpdatedAt = now
	})
}

func (r *HCPRepository) GetByID(ctx context.Context, hcpID string) (*entity.HealthcareProvider, error) {
	return findByID[entity.HealthcareProvider](ctx, r.col, "hcpId", hcpID)
}

func (r *HCPRepository) GetManyByIDs(ctx context.Context, ids []string) ([]entity.HealthcareProvider, error) {
	return findManyByIDs[entity.HealthcareProvider](ctx, r.col, "hcpId", ids)
}

func (r *HCPRepository) List(ctx context.Context, page, size int) ([]entity.HealthcareProvider, int64, error) {
	return listPage[entity.HealthcareProvider](ctx, r.col, page, size)
}

func (r *HCPRepository) UpdatePassword(ctx context.Context, hcpID, hash string) error {
	return setPassword(ctx, r.col, "hcpId", hcpID, hash)
}

type HospitalRepository struct {
	col *mongo.Collection
}

func NewHospitalRepository(db *mongo.Database) *HospitalRepository {
	return &HospitalRepository{col: db.Collection(CollHospitals)}
}

func (r *HospitalRepository) Create(ctx context.Context, h *entity.Hospital) error {
	return insertStamped(ctx, r.col, h, func(now time.Time) {
		h.CreatedAt = now
		h.UpdatedAt = now
	})
}

func (r *HospitalRepository) GetByID(ctx context.Context, hospitalID string) (*entity.Hospital, error) {
	return findByID[entity.Hospital](ctx, r.col, "hospitalId", hospitalID)
}

func (r *HospitalRepository) GetManyByIDs(ctx context.Context, ids []string) ([]entity.Hospital, error) {
	return findManyByIDs[entity.Hospital](ctx, r.col, "hospitalId", ids)
}

func (r *HospitalRepository) List(ctx context.Context, page, size int) ([]entity.Hospital, int64, error) {
	return listPage[entity.Hospital](ctx, r.col, page, size)
}

func (r *HospitalRepository) UpdatePassword(ctx context.Context, hospitalID, hash string) error {
	return setPassword(ctx, r.col, "hospitalId", hospitalID, hash)
}

type MOHRepository struct {
	col *mongo.Collection
}

func NewMOHRepository(db *mongo.Database) *MOHRepository {
	return &MOHRepository{col: db.Collection(CollMOHs)}
}

func (r *MOHRepository) Create(ctx context.Context, m *entity.MOHOfficial) error {
	return insertStamped(ctx, r.col, m, func(now time.Time) {
		m.CreatedAt = now
		m.UpdatedAt = now
	})
}

func (r *MOHRepository) GetByID(ctx context.Context, mohID string) (*entity.MOHOfficial, error) {
	return findByID[entity.MOHOfficial](ctx, r.col, "mohId", mohID)
}

func (r *MOHRepository) GetManyByIDs(ctx context.Context, ids []string) ([]entity.MOHOfficial, error) {
	return findManyByIDs[entity.MOHOfficial](ctx, r.col, "mohId", ids)
}

func (r *MOHRepository) List(ctx context.Context, page, size int) ([]entity.MOHOfficial, int64, error) {
	return listPage[entity.MOHOfficial](ctx, r.col, page, size)
}

func (r *MOHRepository) UpdatePassword(ctx context.Context, mohID, hash string) error {
	return setPassword(ctx, r.col, "mohId", mohID, hash)
}

type AdminRepository struct {
	col *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{col: db.Collection(CollAdmins)}
}

func (r *AdminRepository) Create(ctx context.Context, a *entity.Admin) error {
	return insertStamped(ctx, r.col, a, func(now time.Time) {
		a.CreatedAt = now
		a.UpdatedAt = now
	})
}

func (r *AdminRepository) GetByID(ctx context.Context, adminID string) (*entity.Admin, error) {
	return findByID[entity.Admin](ctx, r.col, "adminId", adminID)
}

var (
	_ repository.HCPRepository      = (*HCPRepository)(nil)
	_ repository.HospitalRepository = (*HospitalRepository)(nil)
	_ repository.MOHRepository      = (*MOHRepository)(nil)
	_ repository.AdminRepository    = (*AdminRepository)(nil)
)
