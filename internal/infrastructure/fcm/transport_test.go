package fcm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/go-listing-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	calls  []*messaging.MulticastMessage
	failAt int // 1-based call index that fails as a whole; 0 = never
}

func (f *fakeSender) SendEachForMulticast(_ context.Context, m *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.calls = append(f.calls, m)
	if f.failAt == len(f.calls) {
		return nil, errors.New("unavailable")
	}
	br := &messaging.BatchResponse{}
	for i := range m.Tokens {
		if i%2 == 1 {
			br.Responses = append(br.Responses, &messaging.SendResponse{Error: errors.New("bad token")})
			br.FailureCount++
			continue
		}
		br.Responses = append(br.Responses, &messaging.SendResponse{Success: true, MessageID: fmt.Sprintf("m%d", i)})
		br.SuccessCount++
	}
	return br, nil
}

func targets(n int) []domain.PushTarget {
	out := make([]domain.PushTarget, n)
	for i := range out {
		out[i] = domain.PushTarget{Token: fmt.Sprintf("tok-%d", i)}
	}
	return out
}

func TestSend_PerTokenOutcomes(t *testing.T) {
	f := &fakeSender{}
	tr := &Transport{client: f}

	res, err := tr.Send(context.Background(), domain.PushMessage{Targets: targets(3), PushContent: domain.PushContent{Title: "t", Body: "b"}})

	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.True(t, res[0].Success)
	assert.False(t, res[1].Success)
	assert.Error(t, res[1].Err)
	assert.True(t, res[2].Success)
	assert.Equal(t, "tok-2", res[2].Token)
}

func TestSend_ChunksAt500(t *testing.T) {
	f := &fakeSender{}
	tr := &Transport{client: f}

	res, err := tr.Send(context.Background(), domain.PushMessage{Targets: targets(1201)})

	require.NoError(t, err)
	assert.Len(t, res, 1201)
	require.Len(t, f.calls, 3)
	assert.Len(t, f.calls[0].Tokens, 500)
	assert.Len(t, f.calls[2].Tokens, 201)
}

func TestSend_FirstChunkFails_IsBatchError(t *testing.T) {
	tr := &Transport{client: &fakeSender{failAt: 1}}
	_, err := tr.Send(context.Background(), domain.PushMessage{Targets: targets(2)})
	assert.Error(t, err)
}

func TestSend_LaterChunkFails_MarksOnlyThatChunk(t *testing.T) {
	tr := &Transport{client: &fakeSender{failAt: 2}}
	res, err := tr.Send(context.Background(), domain.PushMessage{Targets: targets(600)})

	require.NoError(t, err)
	require.Len(t, res, 600)
	assert.True(t, res[0].Success)
	assert.False(t, res[550].Success)
	assert.Error(t, res[550].Err)
}

func TestBuildMessage_PlatformHints(t *testing.T) {
	badge := 1
	m := buildMessage(targets(1), domain.PushContent{
		Title: "t",
		Body:  "b",
		Hints: domain.PlatformHints{
			Android: &domain.AndroidHints{Sound: "notif_sound"},
			IOS:     &domain.IOSHints{Sound: "notif_sound.wav", Badge: &badge},
		},
	})
	require.NotNil(t, m.Android)
	assert.Equal(t, "notif_sound", m.Android.Notification.Sound)
	require.NotNil(t, m.APNS)
	assert.Equal(t, "notif_sound.wav", m.APNS.Payload.Aps.Sound)
	assert.Equal(t, &badge, m.APNS.Payload.Aps.Badge)
}

func TestBuildMessage_EmptyHintsOmitted(t *testing.T) {
	m := buildMessage(targets(1), domain.PushContent{
		Title: "t",
		Hints: domain.PlatformHints{Android: &domain.AndroidHints{}},
	})
	assert.Nil(t, m.Android)
	assert.Nil(t, m.APNS)
	assert.Equal(t, "t", m.Notification.Title)
}
