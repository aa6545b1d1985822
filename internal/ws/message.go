package ws

import (
	"encoding/json"

	"github.com/omerg864/SecuRent-sub001/internal/models"
)

// MessageType represents the type of WebSocket frame using a custom enum type
// for better type safety.
type MessageType string

const (
	// MessageTypeAuth is both the inbound handshake frame and the outbound
	// re-auth challenge.
	MessageTypeAuth MessageType = "auth"

	// MessageTypeNotification is the outbound push envelope.
	MessageTypeNotification MessageType = "notification"
)

// Greeting is the plain text frame sent on every accepted connection,
// before authentication. Informational only.
const Greeting = "Connected to SecuRent notification service"

// Envelope is the tagged JSON frame exchanged over the socket.
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// AuthData is the payload of an inbound auth frame.
type AuthData struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

type notificationData struct {
	Notification *models.Notification `json:"notification"`
}

// EncodeNotification wraps a notification in the outbound push envelope.
func EncodeNotification(n *models.Notification) ([]byte, error) {
	data, err := json.Marshal(notificationData{Notification: n})
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: MessageTypeNotification, Data: data})
}

// EncodeAuthChallenge builds the auth-type frame the server round-trips to
// ask a client to re-send its credentials.
func EncodeAuthChallenge() []byte {
	payload, _ := json.Marshal(Envelope{Type: MessageTypeAuth})
	return payload
}
