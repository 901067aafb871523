package entity

import "time"

const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

// ChatMessage belongs to an order's message thread. Status only ever moves
// forward: sent -> delivered -> read.
type ChatMessage struct {
	ID         string     `json:"id" firestore:"id"`
	Text       string     `json:"text" firestore:"text"`
	SenderID   string     `json:"sender_id" firestore:"senderId"`
	SenderRole string     `json:"sender_role" firestore:"senderRole"`
	SenderName string     `json:"sender_name" firestore:"senderName"`
	Timestamp  time.Time  `json:"timestamp" firestore:"timestamp"`
	Status     string     `json:"status" firestore:"status"`
	ReadAt     *time.Time `json:"read_at,omitempty" firestore:"readAt,omitempty"`
}
