package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/omerg864/SecuRent-sub001/internal/models"
)

var ErrMissingTarget = errors.New("notification target is required")

// Deliverer is the hub-facing contract: best-effort fan-out to every live
// connection of a principal.
type Deliverer interface {
	Deliver(role models.Role, identity string, n *models.Notification) int
	Online(role models.Role, identity string) bool
}

// Uploader stores a notification attachment and returns its public URL.
type Uploader interface {
	UploadImage(ctx context.Context, file *multipart.FileHeader) (string, error)
}

// AuditSink records completed fan-outs for analytics. Fire-and-forget.
type AuditSink interface {
	NotificationDelivered(ctx context.Context, n *models.Notification, role models.Role, identity string, attempts int)
}

// PushRequest is what the REST collaborators hand us: a notification record
// plus its target principal.
type PushRequest struct {
	TargetRole string
	TargetID   string
	Title      string
	Content    string
	Kind       string
	Image      *multipart.FileHeader
}

// NotificationService turns push requests into live deliveries. uploader and
// audit may be nil when the corresponding backing service is not configured.
type NotificationService struct {
	hub      Deliverer
	uploader Uploader
	audit    AuditSink
}

func NewNotificationService(hub Deliverer, uploader Uploader, audit AuditSink) *NotificationService {
	return &NotificationService{
		hub:      hub,
		uploader: uploader,
		audit:    audit,
	}
}

// Push builds the notification and delivers it to every live matching
// connection. An offline recipient is not an error; the returned count is
// the number of write attempts.
func (s *NotificationService) Push(ctx context.Context, req PushRequest) (int, error) {
	role, err := models.ParseRole(req.TargetRole)
	if err != nil {
		return 0, err
	}
	if req.TargetID == "" {
		return 0, ErrMissingTarget
	}
	if req.Title == "" {
		return 0, errors.New("notification title is required")
	}

	n := models.NewNotification(role, req.TargetID, req.Title, req.Content, req.Kind)

	if req.Image != nil && s.uploader != nil {
		url, err := s.uploader.UploadImage(ctx, req.Image)
		if err != nil {
			return 0, fmt.Errorf("failed to upload attachment: %w", err)
		}
		n.ImageURL = url
	}

	attempts := s.hub.Deliver(role, req.TargetID, n)

	if s.audit != nil {
		s.audit.NotificationDelivered(ctx, n, role, req.TargetID, attempts)
	}
	return attempts, nil
}

// Online reports whether the target principal has at least one live
// connection right now.
func (s *NotificationService) Online(role models.Role, identity string) bool {
	return s.hub.Online(role, identity)
}
