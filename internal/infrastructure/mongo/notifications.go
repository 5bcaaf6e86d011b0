package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-listing-notify/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NotificationRepo stores notifications in one collection. Every lookup by id
// filters on recipient_id as well, so ownership is part of the predicate.
type NotificationRepo struct {
	coll notificationCollection
}

// notificationCollection is the part of *mongo.Collection the repo uses.
type notificationCollection interface {
	InsertMany(ctx context.Context, documents any, opts ...options.Lister[options.InsertManyOptions]) (*mongo.InsertManyResult, error)
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error)
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
	FindOneAndUpdate(ctx context.Context, filter, update any, opts ...options.Lister[options.FindOneAndUpdateOptions]) *mongo.SingleResult
	UpdateMany(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateManyOptions]) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter any, opts ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error)
	DeleteMany(ctx context.Context, filter any, opts ...options.Lister[options.DeleteManyOptions]) (*mongo.DeleteResult, error)
}

func NewNotificationRepo(db *mongo.Database) *NotificationRepo {
	return &NotificationRepo{coll: db.Collection(collNotifications)}
}

func owned(recipientID, notificationID string) bson.D {
	return bson.D{{Key: "_id", Value: notificationID}, {Key: "recipient_id", Value: recipientID}}
}

// CreateMany inserts unordered, so one bad document does not stop the rest.
func (r *NotificationRepo) CreateMany(ctx context.Context, ns []domain.Notification) (int, error) {
	if len(ns) == 0 {
		return 0, nil
	}
	docs := make([]any, len(ns))
	for i := range ns {
		docs[i] = ns[i]
	}
	_, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return insertedCount(len(docs), err)
}

// insertedCount derives how many documents an unordered insert wrote.
func insertedCount(total int, err error) (int, error) {
	if err == nil {
		return total, nil
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && bwe.WriteConcernError == nil {
		return max(total-len(bwe.WriteErrors), 0), err
	}
	return 0, err
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.coll.InsertOne(ctx, n)
	return err
}

func (r *NotificationRepo) List(ctx context.Context, recipientID string, offset, limit int) ([]domain.Notification, int, error) {
	filter := bson.D{{Key: "recipient_id", Value: recipientID}}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if offset < 0 || int64(offset) >= total || limit < 1 {
		return []domain.Notification{}, int(total), nil
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, err
	}
	out := []domain.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, int(total), nil
}

func (r *NotificationRepo) CountUnread(ctx context.Context, recipientID string) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{
		{Key: "recipient_id", Value: recipientID},
		{Key: "is_read", Value: false},
	})
	return int(n), err
}

func (r *NotificationRepo) MarkRead(ctx context.Context, recipientID, notificationID string) (*domain.Notification, error) {
	var n domain.Notification
	err := r.coll.FindOneAndUpdate(ctx,
		owned(recipientID, notificationID),
		bson.D{{Key: "$set", Value: bson.D{{Key: "is_read", Value: true}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.D{{Key: "recipient_id", Value: recipientID}, {Key: "is_read", Value: false}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "is_read", Value: true}}}},
	)
	if err != nil {
		return 0, err
	}
	return int(res.ModifiedCount), nil
}

func (r *NotificationRepo) Delete(ctx context.Context, recipientID, notificationID string) error {
	res, err := r.coll.DeleteOne(ctx, owned(recipientID, notificationID))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	return nil
}

func (r *NotificationRepo) DeleteAll(ctx context.Context, recipientID string) (int, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{{Key: "recipient_id", Value: recipientID}})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}
