package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-listing-notify/internal/domain"
)

// DeviceRepo provides typed DynamoDB operations for the devices table.
type DeviceRepo struct {
	client    api
	tableName string
}

func NewDeviceRepo(client api, tableName string) *DeviceRepo {
	return &DeviceRepo{client: client, tableName: tableName}
}

func (r *DeviceRepo) Put(ctx context.Context, d *domain.Device) error {
	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		return fmt.Errorf("marshal device: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *DeviceRepo) Get(ctx context.Context, deviceID string) (*domain.Device, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrDeviceID, deviceID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("device not found: %w", domain.ErrNotFound)
	}
	var d domain.Device
	if err := attributevalue.UnmarshalMap(out.Item, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByToken finds the device holding token, enabled or not.
func (r *DeviceRepo) GetByToken(ctx context.Context, token string) (*domain.Device, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexToken),
		KeyConditionExpression: aws.String("#tok = :t"),
		ExpressionAttributeNames: map[string]string{
			"#tok": attrToken,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": strValue(token),
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("device not found: %w", domain.ErrNotFound)
	}
	var d domain.Device
	if err := attributevalue.UnmarshalMap(out.Items[0], &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByRecipient returns the recipient's enabled devices.
func (r *DeviceRepo) ListByRecipient(ctx context.Context, recipientID string) ([]domain.Device, error) {
	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexUserID),
		KeyConditionExpression: aws.String("#uid = :uid"),
		FilterExpression:       aws.String("#en = :t"),
		ExpressionAttributeNames: map[string]string{
			"#uid": attrUserID,
			"#en":  fieldEnable,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": strValue(recipientID),
			":t":   boolValue(true),
		},
	})
	if err != nil {
		return nil, err
	}
	devices := []domain.Device{}
	if err := attributevalue.UnmarshalListOfMaps(items, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// Delete disables a device owned by recipientID. Devices are soft deleted so a
// re-registered token keeps its id.
func (r *DeviceRepo) Delete(ctx context.Context, recipientID, deviceID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldEnable:    false,
		fieldUpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	ue.Names["#owner"] = attrUserID
	ue.Values[":owner"] = strValue(recipientID)
	ue.Values[":live"] = boolValue(true)

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrDeviceID, deviceID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("#owner = :owner AND #f0 = :live"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("device %s: %w", deviceID, domain.ErrNotFound)
		}
		return err
	}
	return nil
}
