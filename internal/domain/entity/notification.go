package entity

import "time"

// Notification types consumed by the customer, dealer and admin UIs.
const (
	NotificationOrderAccepted          = "order_accepted"
	NotificationOrderRejected          = "order_rejected"
	NotificationOrderStatusUpdate      = "order_status_update"
	NotificationOrderDealerReassigned  = "order_dealer_reassigned"
	NotificationOrderAssigned          = "order_assigned"
	NotificationOrderETAOverridden     = "order_eta_overridden"
	NotificationOrderPricingOverridden = "order_pricing_overridden"
	NotificationETAUpdated             = "eta_updated"
	NotificationPaymentSuccess         = "payment_success"
	NotificationPaymentFailed          = "payment_failed"
	NotificationAdminAnnouncement      = "admin_announcement"
	NotificationNewMessage             = "new_message"
)

// Notification is a transient fact addressed to one user, or to everyone
// when UserID is empty. Dealers are addressed as "dealer_<dealerId>".
type Notification struct {
	ID        string    `json:"id" firestore:"id"`
	Type      string    `json:"type" firestore:"type"`
	Title     string    `json:"title" firestore:"title"`
	Message   string    `json:"message" firestore:"message"`
	UserID    string    `json:"user_id,omitempty" firestore:"userId,omitempty"`
	OrderID   string    `json:"order_id,omitempty" firestore:"orderId,omitempty"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
	Read      bool      `json:"read" firestore:"read"`
}

// DealerTarget returns the notification address for a dealer.
func DealerTarget(dealerID string) string {
	return "dealer_" + dealerID
}
