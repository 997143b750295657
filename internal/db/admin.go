package db

import (
	"context"
	"errors"
	"time"

	model "github.com/glkeru/skn/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AdminDB struct {
	payments    *mongo.Collection
	withdrawals *mongo.Collection
	pins        *mongo.Collection
}

func NewAdminDB(db *mongo.Database) *AdminDB {
	return &AdminDB{
		payments:    db.Collection("payment_requests"),
		withdrawals: db.Collection("withdrawal_requests"),
		pins:        db.Collection("pins"),
	}
}

func (a *AdminDB) EnsureIndexes(ctx context.Context) error {
	_, err := a.pins.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "pinCode", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "assignedTo", Value: 1}}},
	})
	if err != nil {
		return mongoErr(err)
	}
	_, err = a.withdrawals.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "memberId", Value: 1}, {Key: "status", Value: 1}},
	})
	return mongoErr(err)
}

func (a *AdminDB) GetPaymentRequest(ctx context.Context, id string) (*model.PaymentRequest, error) {
	req := &model.PaymentRequest{}
	err := a.payments.FindOne(ctx, bson.M{"_id": id}).Decode(req)
	if err != nil {
		return nil, mongoErr(err)
	}
	return req, nil
}

// Решение по заявке: только из статуса pending
func resolve(ctx context.Context, coll *mongo.Collection, id string, status model.RequestStatus, adminID string, note string) error {
	set := bson.M{
		"status":     status,
		"approvedBy": adminID,
		"approvedAt": time.Now(),
	}
	if status == model.RequestRejected {
		set["rejectionReason"] = note
	} else {
		set["adminNotes"] = note
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id, "status": model.RequestPending}, bson.M{"$set": set})
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return mongoErr(err)
		}
		if n == 0 {
			return model.ErrNotFound
		}
		return model.ErrInvalidStatus
	}
	return nil
}

func (a *AdminDB) ResolvePaymentRequest(ctx context.Context, id string, status model.RequestStatus, adminID string, note string) error {
	return resolve(ctx, a.payments, id, status, adminID, note)
}

func (a *AdminDB) AssignedPin(ctx context.Context, memberID string) (*model.Pin, error) {
	pin := &model.Pin{}
	err := a.pins.FindOne(ctx, bson.M{"assignedTo": memberID, "status": model.PinAssigned}).Decode(pin)
	if err != nil {
		return nil, mongoErr(err)
	}
	return pin, nil
}

// Выдать первый свободный пин
func (a *AdminDB) TakeUnusedPin(ctx context.Context, memberID string) (*model.Pin, error) {
	pin := &model.Pin{}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{
		"status":     model.PinAssigned,
		"assignedTo": memberID,
		"assignedAt": time.Now(),
	}}
	err := a.pins.FindOneAndUpdate(ctx, bson.M{"status": model.PinUnused}, update, opts).Decode(pin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNoPins
		}
		return nil, mongoErr(err)
	}
	return pin, nil
}

func (a *AdminDB) InsertPins(ctx context.Context, pins []model.Pin) error {
	docs := make([]any, len(pins))
	for i, p := range pins {
		docs[i] = p
	}
	_, err := a.pins.InsertMany(ctx, docs)
	return mongoErr(err)
}

func (a *AdminDB) CreateWithdrawal(ctx context.Context, w model.WithdrawalRequest) error {
	_, err := a.withdrawals.InsertOne(ctx, w)
	return mongoErr(err)
}

func (a *AdminDB) GetWithdrawal(ctx context.Context, id string) (*model.WithdrawalRequest, error) {
	w := &model.WithdrawalRequest{}
	err := a.withdrawals.FindOne(ctx, bson.M{"_id": id}).Decode(w)
	if err != nil {
		return nil, mongoErr(err)
	}
	return w, nil
}

func (a *AdminDB) ResolveWithdrawal(ctx context.Context, id string, status model.RequestStatus, adminID string, note string) error {
	return resolve(ctx, a.withdrawals, id, status, adminID, note)
}

func (a *AdminDB) MarkRefunded(ctx context.Context, id string) error {
	res, err := a.withdrawals.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"refunded": true}})
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}
