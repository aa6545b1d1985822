package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is the record pushed to live connections. The service does
// not store it; persistence belongs to the REST backend that produced it.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Customer  string    `json:"customer,omitempty"`
	Business  string    `json:"business,omitempty"`
	ImageURL  string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	IsRead    bool      `json:"isRead"`
}

// NewNotification builds a notification addressed to one principal. The
// recipient id lands in the customer or business field to match the envelope
// the mobile clients already parse; admin pushes carry neither.
func NewNotification(targetRole Role, targetID, title, content, kind string) *Notification {
	n := &Notification{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		Type:      kind,
		CreatedAt: time.Now().UTC(),
		IsRead:    false,
	}
	switch targetRole {
	case RoleCustomer:
		n.Customer = targetID
	case RoleBusiness:
		n.Business = targetID
	}
	return n
}
