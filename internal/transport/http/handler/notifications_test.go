package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-listing-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const nid = "01HZX3J8Q6V2K9M4N7P5R1S3T0"

func newNotifHandler() (*NotificationHandler, *mockNotifSvc, *mockDeviceSvc) {
	ns, ds := &mockNotifSvc{}, &mockDeviceSvc{}
	return NewNotificationHandler(ns, ds, 20), ns, ds
}

func TestList_MissingClaims(t *testing.T) {
	h, svc, _ := newNotifHandler()
	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/v1/notifications/list", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestList_InvalidToken(t *testing.T) {
	p := newTestJWTProvider(t)
	h, _, _ := newNotifHandler()
	r := httptest.NewRequest(http.MethodGet, "/v1/notifications/list", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.List), rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestList_UsesClaimsRecipientAndQuery(t *testing.T) {
	p := newTestJWTProvider(t)
	h, svc, _ := newNotifHandler()
	page := &domain.NotificationPage{
		Data:       []domain.Notification{{NotificationID: nid, RecipientID: "u1", Title: "t"}},
		Pagination: domain.NewPagination(11, 2, 5),
	}
	svc.On("List", mock.Anything, "u1", 2, 5).Return(page, nil)

	rr := httptest.NewRecorder()
	r := bearerReq(t, p, http.MethodGet, "/v1/notifications/list?page=2&limit=5&recipientId=u2", "u1", "user", nil)
	serveAuthed(p, http.HandlerFunc(h.List), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var got struct {
		Data       []domain.Notification `json:"data"`
		Pagination domain.Pagination     `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Len(t, got.Data, 1)
	assert.Equal(t, 11, got.Pagination.Total)
	assert.Equal(t, 3, got.Pagination.TotalPages)
	assert.True(t, got.Pagination.HasNext)
	svc.AssertExpectations(t)
}

func TestList_DefaultPageSize(t *testing.T) {
	p := newTestJWTProvider(t)
	h, svc, _ := newNotifHandler()
	svc.On("List", mock.Anything, "u1", 1, 20).Return(&domain.NotificationPage{Data: []domain.Notification{}}, nil)

	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.List), rr, bearerReq(t, p, http.MethodGet, "/v1/notifications/list?page=abc", "u1", "user", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestList_StorageFailure_500(t *testing.T) {
	p := newTestJWTProvider(t)
	h, svc, _ := newNotifHandler()
	svc.On("List", mock.Anything, "u1", 1, 20).Return(nil, fmt.Errorf("list: %w", domain.ErrStorage))

	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.List), rr, bearerReq(t, p, http.MethodGet, "/v1/notifications/list", "u1", "user", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "storage")
}

func TestUnreadCount(t *testing.T) {
	p := newTestJWTProvider(t)
	h, svc, _ := newNotifHandler()
	svc.On("UnreadCount", mock.Anything, "u1").Return(4, nil)

	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.UnreadCount), rr, bearerReq(t, p, http.MethodGet, "/v1/notifications/unread-count", "u1", "user", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"unreadCount":4}`, rr.Body.String())
}

func TestMarkRead_NotFound(t *testing.T) {
	p := newTestJWTProvider(t)
	h, svc, _ := newNotifHandler()
	svc.On("MarkRead", mock.Anything, "u1", nid).Return(nil, fmt.Errorf("notification %s: %w", nid, domain.ErrNotFound))

	rr := httptest.NewRecorder()
	r := withChiID(bearerReq(t, p, http.MethodPatch, "/v1/notifications/"+nid+"/read", "u1", "user", nil), nid)
	serveAuthed(p, http.HandlerFunc(h.MarkRead), rr, r)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	svc.AssertExpectations(t)
}

func TestMarkRead_BadID(t *testing.T) {
	p := newTestJWTProvider(t)
	h, svc, _ := newNotifHandler()
	svc.On("MarkRead", mock.Anything, "u1", "nope").Return(nil, fmt.Errorf("invalid notification id: %w", domain.ErrBadRequest))

	rr := httptest.NewRecorder()
	r := withChiID(bearerReq(t, p, http.MethodPatch, "/v1/notifications/nope/read", "u1", "user", nil), "nope")
	serveAuthed(p, http.HandlerFunc(h.MarkRead), rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMarkRead_HappyPath(t *testing.T) {
	p := newTestJWTProvider(t)
	h, svc, _ := newNotifHandler()
	svc.On("MarkRead", mock.Anything, "u1", nid).Return(&domain.Notification{NotificationID: nid, RecipientID: "u1", IsRead: true}, nil)

	rr := httptest.NewRecorder()
	r := withChiID(bearerReq(t, p, http.MethodPatch, "/v1/notifications/"+nid+"/read", "u1", "user", nil), nid)
	serveAuthed(p, http.HandlerFunc(h.MarkRead), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var n domain.Notification
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&n))
	assert.True(t, n.IsRead)
}

func TestMarkAllRead(t *testing.T) {
	p := newTestJWTProvider(t)
	h, svc, _ := newNotifHandler()
	svc.On("MarkAllRead", mock.Anything, "u1").Return(3, nil)

	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.MarkAllRead), rr, bearerReq(t, p, http.MethodPatch, "/v1/notifications/read-all", "u1", "user", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"modifiedCount":3}`, rr.Body.String())
}

func TestDelete(t *testing.T) {
	p := newTestJWTProvider(t)
	h, svc, _ := newNotifHandler()
	svc.On("Delete", mock.Anything, "u1", nid).Return(nil)

	rr := httptest.NewRecorder()
	r := withChiID(bearerReq(t, p, http.MethodDelete, "/v1/notifications/"+nid, "u1", "user", nil), nid)
	serveAuthed(p, http.HandlerFunc(h.Delete), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var env MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.NotEmpty(t, env.Message)
}

func TestDeleteAll(t *testing.T) {
	p := newTestJWTProvider(t)
	h, svc, _ := newNotifHandler()
	svc.On("DeleteAll", mock.Anything, "u1").Return(5, nil)

	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.DeleteAll), rr, bearerReq(t, p, http.MethodDelete, "/v1/notifications/delete-all", "u1", "user", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deletedCount":5}`, rr.Body.String())
}

func TestRegisterToken_InvalidBody(t *testing.T) {
	p := newTestJWTProvider(t)
	h, _, ds := newNotifHandler()

	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.RegisterToken), rr,
		bearerReq(t, p, http.MethodPost, "/v1/notifications/register-token", "u1", "user", []byte("not-json")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	ds.AssertNotCalled(t, "RegisterToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterToken_WrongFieldType_422(t *testing.T) {
	p := newTestJWTProvider(t)
	h, _, _ := newNotifHandler()

	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.RegisterToken), rr,
		bearerReq(t, p, http.MethodPost, "/v1/notifications/register-token", "u1", "user", []byte(`{"token":42}`)))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestRegisterToken_HappyPath(t *testing.T) {
	p := newTestJWTProvider(t)
	h, _, ds := newNotifHandler()
	req := domain.RegisterTokenRequest{Token: "tok-1", Platform: domain.PlatformIOS}
	ds.On("RegisterToken", mock.Anything, "u1", req).
		Return(&domain.Device{DeviceID: "d1", RecipientID: "u1", Token: "tok-1", Platform: domain.PlatformIOS, Enable: true}, nil)
	body, _ := json.Marshal(req)

	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.RegisterToken), rr,
		bearerReq(t, p, http.MethodPost, "/v1/notifications/register-token", "u1", "user", body))

	assert.Equal(t, http.StatusOK, rr.Code)
	ds.AssertExpectations(t)
}
