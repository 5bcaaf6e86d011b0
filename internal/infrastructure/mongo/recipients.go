package mongo

import (
	"context"
	"fmt"

	"github.com/go-listing-notify/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// RecipientRepo reads the recipient directory from the users collection.
type RecipientRepo struct {
	coll    *mongo.Collection
	role    string
	devices *DeviceRepo
}

func NewRecipientRepo(db *mongo.Database, role string, devices *DeviceRepo) *RecipientRepo {
	return &RecipientRepo{coll: db.Collection(collRecipients), role: role, devices: devices}
}

func (r *RecipientRepo) ListActive(ctx context.Context) ([]domain.Recipient, error) {
	filter := bson.D{{Key: "enable", Value: 1}}
	if r.role != "" {
		filter = append(filter, bson.E{Key: "role", Value: r.role})
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find recipients: %w", err)
	}
	recipients := []domain.Recipient{}
	if err := cur.All(ctx, &recipients); err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return recipients, nil
	}

	ids := make([]string, len(recipients))
	for i, rc := range recipients {
		ids[i] = rc.RecipientID
	}
	devices, err := r.devices.listByRecipients(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find devices: %w", err)
	}
	attachDevices(recipients, devices)
	return recipients, nil
}

func attachDevices(recipients []domain.Recipient, devices []domain.Device) {
	byOwner := make(map[string][]domain.Device, len(recipients))
	for _, d := range devices {
		byOwner[d.RecipientID] = append(byOwner[d.RecipientID], d)
	}
	for i := range recipients {
		recipients[i].Devices = byOwner[recipients[i].RecipientID]
	}
}
