package entity

import "time"

// Batch groups orders created together in one checkout.
type Batch struct {
	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"user_id" firestore:"userId"`
	OrderIDs  []string  `json:"order_ids" firestore:"orderIds"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
