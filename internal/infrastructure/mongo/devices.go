package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-listing-notify/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type DeviceRepo struct {
	coll *mongo.Collection
}

func NewDeviceRepo(db *mongo.Database) *DeviceRepo {
	return &DeviceRepo{coll: db.Collection(collDevices)}
}

func (r *DeviceRepo) Put(ctx context.Context, d *domain.Device) error {
	_, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: d.DeviceID}}, d, options.Replace().SetUpsert(true))
	return err
}

func (r *DeviceRepo) GetByToken(ctx context.Context, token string) (*domain.Device, error) {
	var d domain.Device
	err := r.coll.FindOne(ctx, bson.D{{Key: "token", Value: token}}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("device not found: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return &d, nil
}

func (r *DeviceRepo) ListByRecipient(ctx context.Context, recipientID string) ([]domain.Device, error) {
	return r.listEnabled(ctx, bson.D{{Key: "user_id", Value: recipientID}})
}

// listByRecipients fetches the enabled devices of many recipients in one query.
func (r *DeviceRepo) listByRecipients(ctx context.Context, recipientIDs []string) ([]domain.Device, error) {
	return r.listEnabled(ctx, bson.D{{Key: "user_id", Value: bson.D{{Key: "$in", Value: recipientIDs}}}})
}

func (r *DeviceRepo) listEnabled(ctx context.Context, filter bson.D) ([]domain.Device, error) {
	filter = append(filter, bson.E{Key: "enable", Value: true})
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []domain.Device{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete disables a device owned by recipientID.
func (r *DeviceRepo) Delete(ctx context.Context, recipientID, deviceID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: deviceID}, {Key: "user_id", Value: recipientID}, {Key: "enable", Value: true}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "enable", Value: false},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("device %s: %w", deviceID, domain.ErrNotFound)
	}
	return nil
}
