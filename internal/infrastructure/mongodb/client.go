package mongodb

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used across the registry.
const (
	CollCitizens     = "citizens"
	CollHCPs         = "healthcare_providers"
	CollHospitals    = "hospitals"
	CollMOHs         = "moh_officials"
	CollAdmins       = "admins"
	CollVaccines     = "vaccines"
	CollVaccinations = "vaccination_records"
)

// Connect opens a client, pings the deployment, and returns the database handle.
func Connect(ctx context.Context, uri, dbName string, maxPool uint64, timeout time.Duration, logger *logrus.Logger) (*mongo.Database, *mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().ApplyURI(uri).SetMaxPoolSize(maxPool)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	if logger != nil {
		logger.WithField("db", dbName).Info("mongodb connected")
	}
	return client.Database(dbName), client, nil
}

// EnsureIndexes creates the registry's indexes. Phone numbers are unique and
// sparse within each account collection; cross-kind uniqueness is enforced at
// request time by the phone index scan.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
	}
	uniqueSparse := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		}
	}

	accountIdx := map[string]string{
		CollCitizens:  "citizenId",
		CollHCPs:      "hcpId",
		CollHospitals: "hospitalId",
		CollMOHs:      "mohId",
	}
	for coll, idField := range accountIdx {
		_, err := db.Collection(coll).Indexes().CreateMany(ctx, []mongo.IndexModel{
			unique(idField),
			uniqueSparse("phoneNumber"),
		})
		if err != nil {
			return err
		}
	}

	if _, err := db.Collection(CollAdmins).Indexes().CreateOne(ctx, unique("adminId")); err != nil {
		return err
	}

	if _, err := db.Collection(CollVaccines).Indexes().CreateMany(ctx, []mongo.IndexModel{
		unique("vaccineId"),
		unique("name"),
	}); err != nil {
		return err
	}

	_, err := db.Collection(CollVaccinations).Indexes().CreateMany(ctx, []mongo.IndexModel{
		unique("vaccinationId"),
		{Keys: bson.D{{Key: "citizenId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}
