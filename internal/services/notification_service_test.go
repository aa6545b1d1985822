package services

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omerg864/SecuRent-sub001/internal/models"
)

type fakeDeliverer struct {
	attempts int
	online   bool

	lastRole     models.Role
	lastIdentity string
	lastPayload  *models.Notification
}

func (f *fakeDeliverer) Deliver(role models.Role, identity string, n *models.Notification) int {
	f.lastRole = role
	f.lastIdentity = identity
	f.lastPayload = n
	return f.attempts
}

func (f *fakeDeliverer) Online(role models.Role, identity string) bool {
	return f.online
}

type fakeUploader struct {
	url string
	err error
}

func (f *fakeUploader) UploadImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	return f.url, f.err
}

type auditRecord struct {
	role     models.Role
	identity string
	attempts int
}

type fakeAudit struct {
	records []auditRecord
}

func (f *fakeAudit) NotificationDelivered(ctx context.Context, n *models.Notification, role models.Role, identity string, attempts int) {
	f.records = append(f.records, auditRecord{role: role, identity: identity, attempts: attempts})
}

func TestPushDeliversToTarget(t *testing.T) {
	hub := &fakeDeliverer{attempts: 2}
	audit := &fakeAudit{}
	service := NewNotificationService(hub, nil, audit)

	attempts, err := service.Push(context.Background(), PushRequest{
		TargetRole: "business",
		TargetID:   "biz-1",
		Title:      "New booking",
		Content:    "A customer booked your kayak",
		Kind:       "booking",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	assert.Equal(t, models.RoleBusiness, hub.lastRole)
	assert.Equal(t, "biz-1", hub.lastIdentity)
	require.NotNil(t, hub.lastPayload)
	assert.Equal(t, "New booking", hub.lastPayload.Title)
	assert.Equal(t, "biz-1", hub.lastPayload.Business)
	assert.NotEmpty(t, hub.lastPayload.ID)

	require.Len(t, audit.records, 1)
	assert.Equal(t, auditRecord{role: models.RoleBusiness, identity: "biz-1", attempts: 2}, audit.records[0])
}

func TestPushOfflineRecipientIsNotAnError(t *testing.T) {
	hub := &fakeDeliverer{attempts: 0}
	service := NewNotificationService(hub, nil, nil)

	attempts, err := service.Push(context.Background(), PushRequest{
		TargetRole: "customer",
		TargetID:   "cust-1",
		Title:      "t",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, attempts)
}

func TestPushValidation(t *testing.T) {
	service := NewNotificationService(&fakeDeliverer{}, nil, nil)

	cases := []struct {
		name string
		req  PushRequest
	}{
		{"UnknownRole", PushRequest{TargetRole: "supplier", TargetID: "x", Title: "t"}},
		{"MissingTarget", PushRequest{TargetRole: "customer", Title: "t"}},
		{"MissingTitle", PushRequest{TargetRole: "customer", TargetID: "cust-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Push(context.Background(), tc.req)
			assert.Error(t, err)
		})
	}
}

func TestPushAttachment(t *testing.T) {
	image := &multipart.FileHeader{Filename: "receipt.png"}

	t.Run("UploadedURLLandsOnNotification", func(t *testing.T) {
		hub := &fakeDeliverer{attempts: 1}
		service := NewNotificationService(hub, &fakeUploader{url: "https://cdn/receipt.png"}, nil)

		_, err := service.Push(context.Background(), PushRequest{
			TargetRole: "customer", TargetID: "cust-1", Title: "t", Image: image,
		})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/receipt.png", hub.lastPayload.ImageURL)
	})

	t.Run("UploadFailureAbortsDelivery", func(t *testing.T) {
		hub := &fakeDeliverer{}
		service := NewNotificationService(hub, &fakeUploader{err: errors.New("bucket gone")}, nil)

		_, err := service.Push(context.Background(), PushRequest{
			TargetRole: "customer", TargetID: "cust-1", Title: "t", Image: image,
		})
		assert.Error(t, err)
		assert.Nil(t, hub.lastPayload)
	})

	t.Run("ImageIgnoredWithoutUploader", func(t *testing.T) {
		hub := &fakeDeliverer{attempts: 1}
		service := NewNotificationService(hub, nil, nil)

		_, err := service.Push(context.Background(), PushRequest{
			TargetRole: "customer", TargetID: "cust-1", Title: "t", Image: image,
		})
		require.NoError(t, err)
		assert.Empty(t, hub.lastPayload.ImageURL)
	})
}

func TestOnlinePassthrough(t *testing.T) {
	service := NewNotificationService(&fakeDeliverer{online: true}, nil, nil)
	assert.True(t, service.Online(models.RoleAdmin, "admin-1"))
}
