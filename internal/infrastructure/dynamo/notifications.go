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
	"github.com/go-listing-notify/internal/obs/retry"
)

// NotificationRepo stores notifications keyed by recipient_id (PK) and
// notification_id (SK). Every single-item operation addresses the composite
// key, so a record is only reachable through its owner.
type NotificationRepo struct {
	client    api
	tableName string
	batch     retry.Policy
}

func NewNotificationRepo(client api, tableName string) *NotificationRepo {
	return &NotificationRepo{
		client:    client,
		tableName: tableName,
		batch: retry.Policy{
			Name:     "dynamo_notifications_batch",
			Attempts: 5,
			Backoff:  retry.ExpoJitter{Base: 50 * time.Millisecond, Max: 2 * time.Second, Jitter: 0.2},
		},
	}
}

func (r *NotificationRepo) key(recipientID, notificationID string) map[string]types.AttributeValue {
	return compositeKey(attrRecipientID, recipientID, attrNotificationID, notificationID)
}

// CreateMany writes ns in BatchWriteItem chunks. Chunks are independent: a
// failed chunk does not stop the others, and the returned count covers every
// item DynamoDB acknowledged.
func (r *NotificationRepo) CreateMany(ctx context.Context, ns []domain.Notification) (int, error) {
	reqs := make([]types.WriteRequest, 0, len(ns))
	for i := range ns {
		item, err := attributevalue.MarshalMap(&ns[i])
		if err != nil {
			return 0, fmt.Errorf("marshal notification: %w", err)
		}
		reqs = append(reqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}

	saved := 0
	var firstErr error
	for _, c := range chunk(reqs, maxBatchWrite) {
		n, err := writeBatch(ctx, r.client, r.tableName, c, r.batch)
		saved += n
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return saved, firstErr
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *NotificationRepo) byRecipient(recipientID string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": attrRecipientID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": strValue(recipientID),
		},
	}
}

func (r *NotificationRepo) unreadByRecipient(recipientID string) *dynamodb.QueryInput {
	in := r.byRecipient(recipientID)
	in.FilterExpression = aws.String("#read = :f")
	in.ExpressionAttributeNames["#read"] = fieldIsRead
	in.ExpressionAttributeValues[":f"] = boolValue(false)
	return in
}

// List returns one window of the recipient's notifications, newest first.
// ULID sort keys order by creation time, so a descending query is already sorted.
func (r *NotificationRepo) List(ctx context.Context, recipientID string, offset, limit int) ([]domain.Notification, int, error) {
	total, err := countAll(ctx, r.client, r.byRecipient(recipientID))
	if err != nil {
		return nil, 0, err
	}
	if offset < 0 || offset >= total || limit < 1 {
		return []domain.Notification{}, total, nil
	}

	in := r.byRecipient(recipientID)
	in.ScanIndexForward = aws.Bool(false)
	want := offset + min(limit, total-offset)
	var items []map[string]types.AttributeValue
	p := dynamodb.NewQueryPaginator(r.client, in)
	for p.HasMorePages() && len(items) < want {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, page.Items...)
	}
	if offset >= len(items) {
		return []domain.Notification{}, total, nil
	}
	items = items[offset:min(want, len(items))]

	out := make([]domain.Notification, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *NotificationRepo) CountUnread(ctx context.Context, recipientID string) (int, error) {
	return countAll(ctx, r.client, r.unreadByRecipient(recipientID))
}

// MarkRead sets is_read on an existing record. A missing or foreign record
// fails the condition and is reported as not found.
func (r *NotificationRepo) MarkRead(ctx context.Context, recipientID, notificationID string) (*domain.Notification, error) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldIsRead: true})
	if err != nil {
		return nil, err
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       r.key(recipientID, notificationID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(" + attrNotificationID + ")"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
		}
		return nil, err
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Attributes, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkAllRead flips every unread record. Each update is conditioned on the
// record still being unread, so concurrent callers never double count.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	in := r.unreadByRecipient(recipientID)
	in.ProjectionExpression = aws.String("#sk")
	in.ExpressionAttributeNames["#sk"] = attrNotificationID
	items, err := queryAll(ctx, r.client, in)
	if err != nil {
		return 0, err
	}

	ue, err := buildUpdateExpr(map[string]interface{}{fieldIsRead: true})
	if err != nil {
		return 0, err
	}
	ue.Values[":f"] = boolValue(false)

	modified := 0
	for _, item := range items {
		sk, ok := item[attrNotificationID].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(r.tableName),
			Key:                       r.key(recipientID, sk.Value),
			UpdateExpression:          aws.String(ue.Expr),
			ConditionExpression:       aws.String("#f0 = :f"),
			ExpressionAttributeNames:  ue.Names,
			ExpressionAttributeValues: ue.Values,
		})
		if err != nil {
			if isConditionFailed(err) {
				continue
			}
			return modified, err
		}
		modified++
	}
	return modified, nil
}

func (r *NotificationRepo) Delete(ctx context.Context, recipientID, notificationID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 r.key(recipientID, notificationID),
		ConditionExpression: aws.String("attribute_exists(" + attrNotificationID + ")"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func (r *NotificationRepo) DeleteAll(ctx context.Context, recipientID string) (int, error) {
	in := r.byRecipient(recipientID)
	in.ProjectionExpression = aws.String("#pk, #sk")
	in.ExpressionAttributeNames["#sk"] = attrNotificationID
	items, err := queryAll(ctx, r.client, in)
	if err != nil {
		return 0, err
	}

	reqs := make([]types.WriteRequest, 0, len(items))
	for _, item := range items {
		reqs = append(reqs, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: item}})
	}
	deleted := 0
	for _, c := range chunk(reqs, maxBatchWrite) {
		n, err := writeBatch(ctx, r.client, r.tableName, c, r.batch)
		deleted += n
		if err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}
