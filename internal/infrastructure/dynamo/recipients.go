package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-listing-notify/internal/domain"
	"golang.org/x/sync/errgroup"
)

// deviceLookups bounds concurrent device queries while joining recipients.
const deviceLookups = 8

// RecipientRepo reads the recipient directory: the users table joined with
// enabled devices. It never writes.
type RecipientRepo struct {
	client    api
	tableName string
	role      string
	devices   *DeviceRepo
}

func NewRecipientRepo(client api, tableName, role string, devices *DeviceRepo) *RecipientRepo {
	return &RecipientRepo{client: client, tableName: tableName, role: role, devices: devices}
}

// ListActive returns enabled recipients with the configured role, each with
// its enabled devices attached.
func (r *RecipientRepo) ListActive(ctx context.Context) ([]domain.Recipient, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexEnable),
		KeyConditionExpression: aws.String("#en = :one"),
		ExpressionAttributeNames: map[string]string{
			"#en": fieldEnable,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	}
	if r.role != "" {
		in.FilterExpression = aws.String("#role = :role")
		in.ExpressionAttributeNames["#role"] = fieldRole
		in.ExpressionAttributeValues[":role"] = strValue(r.role)
	}
	items, err := queryAll(ctx, r.client, in)
	if err != nil {
		return nil, fmt.Errorf("query recipients: %w", err)
	}
	recipients := []domain.Recipient{}
	if err := attributevalue.UnmarshalListOfMaps(items, &recipients); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deviceLookups)
	for i := range recipients {
		g.Go(func() error {
			devs, err := r.devices.ListByRecipient(gctx, recipients[i].RecipientID)
			if err != nil {
				return fmt.Errorf("devices for %s: %w", recipients[i].RecipientID, err)
			}
			recipients[i].Devices = devs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return recipients, nil
}
