package db

import (
	"context"
	"time"

	model "github.com/glkeru/skn/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MembersDB struct {
	coll *mongo.Collection
}

func NewMembersDB(db *mongo.Database) *MembersDB {
	return &MembersDB{db.Collection("members")}
}

func (m *MembersDB) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "referralCode", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "parentId", Value: 1}, {Key: "side", Value: 1}}},
		{Keys: bson.D{{Key: "propagation.done", Value: 1}}},
		{Keys: bson.D{{Key: "referralPin", Value: 1}}},
	})
	return mongoErr(err)
}

// пустой родитель: поле равно "" или отсутствует
func noParent() bson.M {
	return bson.M{"$in": bson.A{"", nil}}
}

func (m *MembersDB) GetMember(ctx context.Context, id string) (*model.Member, error) {
	member := &model.Member{}
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(member)
	if err != nil {
		return nil, mongoErr(err)
	}
	return member, nil
}

func (m *MembersDB) FindChildClaim(ctx context.Context, parentID string, side model.Side) (*model.Member, error) {
	member := &model.Member{}
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: 1}})
	err := m.coll.FindOne(ctx, bson.M{"parentId": parentID, "side": side}, opts).Decode(member)
	if err != nil {
		return nil, mongoErr(err)
	}
	return member, nil
}

// Запись позиции: только если участник еще не размещен
func (m *MembersDB) SetPosition(ctx context.Context, memberID string, pos model.Position) error {
	pos.Checkpoint.UpdatedAt = time.Now()
	filter := bson.M{
		"_id":      memberID,
		"parentId": noParent(),
		"isActive": bson.M{"$ne": true},
	}
	update := bson.M{"$set": bson.M{
		"parentId":    pos.ParentID,
		"side":        pos.Side,
		"depth":       pos.Depth,
		"path":        pos.Path,
		"isActive":    true,
		"propagation": pos.Checkpoint,
		"updatedAt":   time.Now(),
	}}
	res, err := m.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return m.missOr(ctx, memberID, model.ErrAlreadyPlaced)
	}
	return nil
}

// Откат позиции после проигранной гонки за слот
func (m *MembersDB) ClearPosition(ctx context.Context, memberID string, parentID string) error {
	filter := bson.M{"_id": memberID, "parentId": parentID}
	update := bson.M{
		"$set": bson.M{
			"parentId":  "",
			"isActive":  false,
			"depth":     0,
			"updatedAt": time.Now(),
		},
		"$unset": bson.M{"side": "", "path": "", "propagation": ""},
	}
	_, err := m.coll.UpdateOne(ctx, filter, update)
	return mongoErr(err)
}

func childField(side model.Side) string {
	if side == model.SideLeft {
		return "leftChildId"
	}
	return "rightChildId"
}

// Указатель на ребенка: слот должен быть пуст или уже указывать на childID
func (m *MembersDB) ClaimChild(ctx context.Context, parentID string, side model.Side, childID string) error {
	field := childField(side)
	filter := bson.M{
		"_id": parentID,
		field: bson.M{"$in": bson.A{"", nil, childID}},
	}
	update := bson.M{"$set": bson.M{field: childID, "updatedAt": time.Now()}}
	res, err := m.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return m.missOr(ctx, parentID, model.ErrConcurrentPlacement)
	}
	return nil
}

func (m *MembersDB) UpdateCounters(ctx context.Context, memberID string, version int64, c model.Counters, key string) error {
	var ver any = version
	if version == 0 {
		// документы без поля version
		ver = bson.M{"$in": bson.A{int64(0), nil}}
	}
	filter := bson.M{"_id": memberID, "version": ver}
	update := bson.M{
		"$set": bson.M{
			"leftActiveCount":  c.LeftActiveCount,
			"rightActiveCount": c.RightActiveCount,
			"pairsCompleted":   c.PairsCompleted,
			"totalEarnings":    c.TotalEarnings,
			"starLevel":        c.StarLevel,
			"withdrawnTotal":   c.WithdrawnTotal,
			"updatedAt":        time.Now(),
		},
		"$inc": bson.M{"version": 1},
	}
	if key != "" {
		update["$addToSet"] = bson.M{"pendingKeys": key}
	}
	res, err := m.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return m.missOr(ctx, memberID, model.ErrVersionConflict)
	}
	return nil
}

// Результат изменения записан, ключ больше не нужен. Версию не меняет
func (m *MembersDB) ReleaseKey(ctx context.Context, memberID string, key string) error {
	_, err := m.coll.UpdateOne(ctx, bson.M{"_id": memberID}, bson.M{"$pull": bson.M{"pendingKeys": key}})
	return mongoErr(err)
}

func checkpointFilter(memberID string, from string) bson.M {
	return bson.M{
		"_id":                        memberID,
		"propagation.nextAncestorId": from,
		"propagation.done":           false,
	}
}

func (m *MembersDB) SaveCheckpoint(ctx context.Context, memberID string, from string, cp model.Checkpoint) error {
	cp.UpdatedAt = time.Now()
	res, err := m.coll.UpdateOne(ctx, checkpointFilter(memberID, from), bson.M{"$set": bson.M{"propagation": cp}})
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return m.missOr(ctx, memberID, model.ErrCheckpointMoved)
	}
	return nil
}

func (m *MembersDB) PendingPropagations(ctx context.Context, before time.Time, limit int64) ([]model.Member, error) {
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "propagation.updatedAt", Value: 1}})
	filter := bson.M{
		"propagation.done":      false,
		"propagation.updatedAt": bson.M{"$lt": before},
	}
	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mongoErr(err)
	}
	var members []model.Member
	if err := cur.All(ctx, &members); err != nil {
		return nil, mongoErr(err)
	}
	return members, nil
}

func (m *MembersDB) SetPayment(ctx context.Context, memberID string, status model.PaymentStatus, pin string) error {
	set := bson.M{"paymentStatus": status, "updatedAt": time.Now()}
	if pin != "" {
		set["referralPin"] = pin
	}
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": memberID}, bson.M{"$set": set})
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (m *MembersDB) FindByPin(ctx context.Context, pin string) (*model.Member, error) {
	member := &model.Member{}
	err := m.coll.FindOne(ctx, bson.M{"referralPin": pin}).Decode(member)
	if err != nil {
		return nil, mongoErr(err)
	}
	return member, nil
}

// если документа нет - ErrNotFound, иначе conflict
func (m *MembersDB) missOr(ctx context.Context, id string, conflict error) error {
	n, err := m.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoErr(err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return conflict
}
