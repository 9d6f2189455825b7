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

// ContactDirectory implements repository.ContactDirectory over one account
// collection. The same implementation serves all four kinds; only the
// collection and the natural-id field differ.
type ContactDirectory struct {
	col     *mongo.Collection
	kind    entity.AccountKind
	idField string
}

func NewContactDirectory(db *mongo.Database, kind entity.AccountKind) *ContactDirectory {
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
	default:
		panic("mongodb: unknown account kind " + string(kind))
	}
	return &ContactDirectory{col: db.Collection(coll), kind: kind, idField: idField}
}

func (d *ContactDirectory) Kind() entity.AccountKind { return d.kind }

func slotField(ch entity.Channel) string {
	if ch == entity.ChannelPhone {
		return "pendingPhone"
	}
	return "pendingEmail"
}

func committedField(ch entity.Channel) string {
	if ch == entity.ChannelPhone {
		return "phoneNumber"
	}
	return "email"
}

type contactDoc struct {
	Email        string                `bson:"email"`
	Phone        string                `bson:"phoneNumber"`
	PendingEmail *entity.PendingChange `bson:"pendingEmail"`
	PendingPhone *entity.PendingChange `bson:"pendingPhone"`
}

func (doc *contactDoc) toContact(accountID string) *entity.Contact {
	return &entity.Contact{
		AccountID:    accountID,
		Email:        doc.Email,
		Phone:        doc.Phone,
		PendingEmail: doc.PendingEmail,
		PendingPhone: doc.PendingPhone,
	}
}

func (d *ContactDirectory) GetContact(ctx context.Context, accountID string) (*entity.Contact, error) {
	var doc contactDoc
	opts := options.FindOne().SetProjection(bson.M{
		"email": 1, "phoneNumber": 1, "pendingEmail": 1, "pendingPhone": 1,
	})
	err := d.col.FindOne(ctx, bson.M{d.idField: accountID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toContact(accountID), nil
}

func (d *ContactDirectory) SetPending(ctx context.Context, accountID string, ch entity.Channel, p entity.PendingChange) error {
	res, err := d.col.UpdateOne(ctx,
		bson.M{d.idField: accountID},
		bson.M{"$set": bson.M{slotField(ch): p}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CommitPending is the single atomic validate-and-clear operation: the filter
// matches only when the slot still holds code and is unexpired, and the
// pipeline update copies the pending target into the committed field and
// removes the slot. A concurrent superseding request makes the filter miss.
func (d *ContactDirectory) CommitPending(ctx context.Context, accountID string, ch entity.Channel, code string, now time.Time) (string, error) {
	slot := slotField(ch)
	filter := bson.M{
		d.idField:          accountID,
		slot + ".code":      code,
		slot + ".expiresAt": bson.M{"$gt": now},
	}
	update := bson.A{
		bson.M{"$set": bson.M{
			committedField(ch): "$" + slot + ".target",
			"updatedAt":        now,
		}},
		bson.M{"$unset": slot},
	}

	var doc contactDoc
	err := d.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", repository.ErrPendingMismatch
	}
	if err != nil {
		return "", err
	}
	if ch == entity.ChannelPhone {
		return doc.Phone, nil
	}
	return doc.Email, nil
}

func (d *ContactDirectory) IncrementAttempts(ctx context.Context, accountID string, ch entity.Channel, code string) (int, error) {
	slot := slotField(ch)
	var doc contactDoc
	err := d.col.FindOneAndUpdate(ctx,
		bson.M{d.idField: accountID, slot + ".code": code},
		bson.M{"$inc": bson.M{slot + ".attempts": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, repository.ErrPendingMismatch
	}
	if err != nil {
		return 0, err
	}
	p := doc.PendingEmail
	if ch == entity.ChannelPhone {
		p = doc.PendingPhone
	}
	if p == nil {
		return 0, repository.ErrPendingMismatch
	}
	return p.Attempts, nil
}

func (d *ContactDirectory) ClearPending(ctx context.Context, accountID string, ch entity.Channel) error {
	_, err := d.col.UpdateOne(ctx,
		bson.M{d.idField: accountID},
		bson.M{"$unset": bson.M{slotField(ch): ""}},
	)
	return err
}

var _ repository.ContactDirectory = (*ContactDirectory)(nil)

// PhoneDirectory answers phone uniqueness across every account collection.
type PhoneDirectory struct {
	cols []*mongo.Collection
}

func NewPhoneDirectory(db *mongo.Database) *PhoneDirectory {
	return &PhoneDirectory{cols: []*mongo.Collection{
		db.Collection(CollCitizens),
		db.Collection(CollHCPs),
		db.Collection(CollHospitals),
		db.Collection(CollMOHs),
	}}
}

func (p *PhoneDirectory) PhoneInUse(ctx context.Context, phone string) (bool, error) {
	for _, col := range p.cols {
		n, err := col.CountDocuments(ctx, bson.M{"phoneNumber": phone}, options.Count().SetLimit(1))
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

var _ repository.PhoneIndex = (*PhoneDirectory)(nil)
