package entity

import "time"

type Dealer struct {
	ID       string  `json:"id" firestore:"id"`
	UserID   string  `json:"user_id" firestore:"userId"`
	Name     string  `json:"name" firestore:"name"`
	ShopName string  `json:"shop_name" firestore:"shopName"`
	Phone    string  `json:"phone,omitempty" firestore:"phone,omitempty"`
	Address  string  `json:"address,omitempty" firestore:"address,omitempty"`
	City     string  `json:"city,omitempty" firestore:"city,omitempty"`
	Rating   float64 `json:"rating" firestore:"rating"`

	// Services offered at the shop, e.g. "color", "binding", "lamination".
	Services []string `json:"services,omitempty" firestore:"services,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
