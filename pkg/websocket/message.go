package websocket

import "time"

const TypeNotification = "notification"

// Envelope — конверт: по Type фронтенд понимает, что делать с Payload.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NotificationPayload — уведомление для "колокольчика".
type NotificationPayload struct {
	EventID    string       `json:"eventId"`
	EntityType string       `json:"entityType"`
	EntityID   uint64       `json:"entityId"`
	IsRead     bool         `json:"isRead"`
	Actor      ActorInfo    `json:"actor"`
	Message    string       `json:"message"`
	Changes    []ChangeInfo `json:"changes"`
	Link       string       `json:"link"`
	CreatedAt  time.Time    `json:"created_at"`
}

type ActorInfo struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type ChangeInfo struct {
	Action string `json:"action"`
	Text   string `json:"text"`
}
