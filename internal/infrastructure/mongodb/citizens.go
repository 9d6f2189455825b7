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

type CitizenRepository struct {
	col *mongo.Collection
}

func NewCitizenRepository(db *mongo.Database) *CitizenRepository {
	return &CitizenRepository{col: db.Collection(CollCitizens)}
}

func (r *CitizenRepository) Create(ctx context.Context, c *entity.Citizen) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *CitizenRepository) GetByID(ctx context.Context, citizenID string) (*entity.Citizen, error) {
	var c entity.Citizen
	err := r.col.FindOne(ctx, bson.M{"citizenId": citizenID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CitizenRepository) List(ctx context.Context, page, size int) ([]entity.Citizen, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * size)).
		SetLimit(int64(size))
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []entity.Citizen
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *CitizenRepository) UpdateAddress(ctx context.Context, citizenID, address string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"citizenId": citizenID},
		bson.M{"$set": bson.M{"address": address, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CitizenRepository) UpdateMedical(ctx context.Context, citizenID string, m repository.MedicalUpdate) (*entity.Citizen, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if m.BloodType != nil {
		set["bloodType"] = *m.BloodType
	}
	if m.Allergies != nil {
		set["allergies"] = m.Allergies
	}
	if m.MedicalConditions != nil {
		set["medicalConditions"] = m.MedicalConditions
	}
	if m.EmergencyContact != nil {
		set["emergencyContact"] = m.EmergencyContact
	}

	var c entity.Citizen
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"citizenId": citizenID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CitizenRepository) UpdatePassword(ctx context.Context, citizenID, hash string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"citizenId": citizenID},
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

var _ repository.CitizenRepository = (*CitizenRepository)(nil)
