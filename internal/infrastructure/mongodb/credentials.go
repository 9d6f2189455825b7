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

// CredentialDirectory implements repository.CredentialStore over one account
// collection, mirroring ContactDirectory's per-kind parameterization.
type CredentialDirectory struct {
	col     *mongo.Collection
	kind    entity.AccountKind
	idField string
}

func NewCredentialDirectory(db *mongo.Database, kind entity.AccountKind) *CredentialDirectory {
	var coll, idField string
	switch kind {
	case entity.KindCitizen:
		coll, idField = CollCitizens, "citizenId"
	case entity.KindHCP:
		coll, idField = CollHCPs, "hcpId"
	case entity.KindHospital:
		coll, idField = CollHospitals, "hospitalId"
	case entity.KindMOH:
		coll, idField = CollMOHs, "mohId"
	case entity.KindAdmin:
		coll, idField = CollAdmins, "adminId"
	default:
		panic("mongodb: unknown account kind " + string(kind))
	}
	return &CredentialDirectory{col: db.Collection(coll), kind: kind, idField: idField}
}

func (d *CredentialDirectory) Kind() entity.AccountKind { return d.kind }

func (d *CredentialDirectory) GetHash(ctx context.Context, accountID string) (string, error) {
	var doc struct {
		Password string `bson:"password"`
	}
	err := d.col.FindOne(ctx, bson.M{d.idField: accountID},
		options.FindOne().SetProjection(bson.M{"password": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return doc.Password, nil
}

func (d *CredentialDirectory) UpdatePassword(ctx context.Context, accountID, hash string) error {
	res, err := d.col.UpdateOne(ctx,
		bson.M{d.idField: accountID},
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

var _ repository.CredentialStore = (*CredentialDirectory)(nil)
