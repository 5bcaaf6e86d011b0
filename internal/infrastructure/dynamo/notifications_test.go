package dynamo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-listing-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(f *fakeAPI) *NotificationRepo {
	r := NewNotificationRepo(f, "notifications")
	r.batch = fastPolicy()
	return r
}

func notifications(n int) []domain.Notification {
	out := make([]domain.Notification, n)
	for i := range out {
		out[i] = domain.Notification{
			NotificationID: fmt.Sprintf("%03d", i),
			RecipientID:    "r1",
			Title:          "t",
			CreatedAt:      time.Unix(int64(i), 0).UTC(),
		}
	}
	return out
}

func TestNotificationRepo_CreateMany_Chunks(t *testing.T) {
	var sizes []int
	f := &fakeAPI{batchFn: func(in *dynamodb.BatchWriteItemInput, _ int) (*dynamodb.BatchWriteItemOutput, error) {
		sizes = append(sizes, len(in.RequestItems["notifications"]))
		return &dynamodb.BatchWriteItemOutput{}, nil
	}}

	n, err := newTestRepo(f).CreateMany(context.Background(), notifications(60))

	require.NoError(t, err)
	assert.Equal(t, 60, n)
	assert.Equal(t, []int{25, 25, 10}, sizes)
}

func TestNotificationRepo_CreateMany_FailedChunkDoesNotStopOthers(t *testing.T) {
	f := &fakeAPI{batchFn: func(_ *dynamodb.BatchWriteItemInput, call int) (*dynamodb.BatchWriteItemOutput, error) {
		if call == 1 {
			return nil, errors.New("validation")
		}
		return &dynamodb.BatchWriteItemOutput{}, nil
	}}

	n, err := newTestRepo(f).CreateMany(context.Background(), notifications(30))

	assert.Error(t, err)
	assert.Equal(t, 5, n)
}

func TestNotificationRepo_MarkRead_ConditionFailed_IsNotFound(t *testing.T) {
	f := &fakeAPI{updateFn: func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("failed")}
	}}

	_, err := newTestRepo(f).MarkRead(context.Background(), "intruder", "01J")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	require.Len(t, f.updates, 1)
	key := f.updates[0].Key
	assert.Equal(t, "intruder", key[attrRecipientID].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "01J", key[attrNotificationID].(*types.AttributeValueMemberS).Value)
}

func TestNotificationRepo_MarkRead_ReturnsUpdated(t *testing.T) {
	f := &fakeAPI{updateFn: func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
		item, _ := attributevalue.MarshalMap(domain.Notification{NotificationID: "01J", RecipientID: "r1", IsRead: true})
		return &dynamodb.UpdateItemOutput{Attributes: item}, nil
	}}

	n, err := newTestRepo(f).MarkRead(context.Background(), "r1", "01J")

	require.NoError(t, err)
	assert.True(t, n.IsRead)
}

func TestNotificationRepo_Delete_ConditionFailed_IsNotFound(t *testing.T) {
	f := &fakeAPI{deleteFn: func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
		return nil, &types.ConditionalCheckFailedException{}
	}}

	err := newTestRepo(f).Delete(context.Background(), "r1", "01J")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestNotificationRepo_List_Window(t *testing.T) {
	all := notifications(5)
	f := &fakeAPI{queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
		if in.Select == types.SelectCount {
			return &dynamodb.QueryOutput{Count: int32(len(all))}, nil
		}
		// newest first
		var items []map[string]types.AttributeValue
		for i := len(all) - 1; i >= 0; i-- {
			item, _ := attributevalue.MarshalMap(all[i])
			items = append(items, item)
		}
		return &dynamodb.QueryOutput{Items: items}, nil
	}}

	got, total, err := newTestRepo(f).List(context.Background(), "r1", 2, 2)

	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, got, 2)
	assert.Equal(t, "002", got[0].NotificationID)
	assert.Equal(t, "001", got[1].NotificationID)
}

func TestNotificationRepo_List_NegativeOffset_OnlyCounts(t *testing.T) {
	queries := 0
	f := &fakeAPI{queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
		queries++
		require.Equal(t, types.SelectCount, in.Select)
		return &dynamodb.QueryOutput{Count: 4}, nil
	}}

	got, total, err := newTestRepo(f).List(context.Background(), "r1", -20, 20)

	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, got)
	assert.Equal(t, 1, queries)
}

func TestNotificationRepo_MarkAllRead_SkipsConcurrentlyRead(t *testing.T) {
	f := &fakeAPI{
		queryFn: func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
				{attrNotificationID: strValue("a")},
				{attrNotificationID: strValue("b")},
				{attrNotificationID: strValue("c")},
			}}, nil
		},
		updateFn: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			if in.Key[attrNotificationID].(*types.AttributeValueMemberS).Value == "b" {
				return nil, &types.ConditionalCheckFailedException{}
			}
			return &dynamodb.UpdateItemOutput{}, nil
		},
	}

	n, err := newTestRepo(f).MarkAllRead(context.Background(), "r1")

	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNotificationRepo_DeleteAll(t *testing.T) {
	f := &fakeAPI{
		queryFn: func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			items := make([]map[string]types.AttributeValue, 30)
			for i := range items {
				items[i] = compositeKey(attrRecipientID, "r1", attrNotificationID, fmt.Sprint(i))
			}
			return &dynamodb.QueryOutput{Items: items}, nil
		},
		batchFn: func(in *dynamodb.BatchWriteItemInput, _ int) (*dynamodb.BatchWriteItemOutput, error) {
			for _, w := range in.RequestItems["notifications"] {
				if w.DeleteRequest == nil {
					return nil, errors.New("expected delete request")
				}
			}
			return &dynamodb.BatchWriteItemOutput{}, nil
		},
	}

	n, err := newTestRepo(f).DeleteAll(context.Background(), "r1")

	require.NoError(t, err)
	assert.Equal(t, 30, n)
	assert.Equal(t, 2, f.batchCalls)
}
