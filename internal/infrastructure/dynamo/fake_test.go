package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-listing-notify/internal/obs/retry"
)

// fakeAPI answers DynamoDB calls from per-method hooks. Unset hooks fail.
type fakeAPI struct {
	batchCalls int
	batchFn    func(in *dynamodb.BatchWriteItemInput, call int) (*dynamodb.BatchWriteItemOutput, error)
	queryFn    func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
	updateFn   func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	deleteFn   func(in *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error)
	putFn      func(in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	updates    []*dynamodb.UpdateItemInput
}

var errNoHook = errors.New("no hook")

func (f *fakeAPI) GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return nil, errNoHook
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.putFn == nil {
		return nil, errNoHook
	}
	return f.putFn(in)
}

func (f *fakeAPI) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	if f.updateFn == nil {
		return nil, errNoHook
	}
	return f.updateFn(in)
}

func (f *fakeAPI) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if f.deleteFn == nil {
		return nil, errNoHook
	}
	return f.deleteFn(in)
}

func (f *fakeAPI) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if f.queryFn == nil {
		return nil, errNoHook
	}
	return f.queryFn(in)
}

func (f *fakeAPI) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.batchCalls++
	if f.batchFn == nil {
		return nil, errNoHook
	}
	return f.batchFn(in, f.batchCalls)
}

func putRequests(n int) []types.WriteRequest {
	out := make([]types.WriteRequest, n)
	for i := range out {
		out[i] = types.WriteRequest{PutRequest: &types.PutRequest{Item: strKey("k", fmt.Sprint(i))}}
	}
	return out
}

func fastPolicy() retry.Policy {
	return retry.Policy{Name: "test", Attempts: 3, Backoff: retry.ExpoJitter{Base: time.Millisecond}}
}
