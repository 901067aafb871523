package entity

import (
	"time"
)

type Order struct {
	ID           string `json:"id" firestore:"id"`
	UserID       string `json:"user_id" firestore:"userId"`
	CustomerName string `json:"customer_name" firestore:"customerName"`
	DealerID     string `json:"dealer_id,omitempty" firestore:"dealerId,omitempty"`
	DealerName   string `json:"dealer_name,omitempty" firestore:"dealerName,omitempty"`

	// Print job summary. File contents live in external storage; the order
	// only carries what the dealer needs to run the job.
	FileName string            `json:"file_name" firestore:"fileName"`
	Pages    int               `json:"pages" firestore:"pages"`
	Copies   int               `json:"copies" firestore:"copies"`
	Options  map[string]string `json:"options,omitempty" firestore:"options,omitempty"` // color, paper size, binding...

	Status    string    `json:"status" firestore:"status"`        // human label, kept in sync with StatusKey
	StatusKey StatusKey `json:"status_key" firestore:"statusKey"` // canonical enum
	ETA       string    `json:"eta,omitempty" firestore:"eta,omitempty"`

	Cost  float64 `json:"cost" firestore:"cost"`
	Price string  `json:"price" firestore:"price"` // display string, e.g. "₹999"

	PaymentMethod string     `json:"payment_method" firestore:"paymentMethod"` // COD, UPI, Card
	PaymentStatus string     `json:"payment_status" firestore:"paymentStatus"` // Pending, Paid, Failed
	PaymentDate   *time.Time `json:"payment_date,omitempty" firestore:"paymentDate,omitempty"`

	RejectionReason string `json:"rejection_reason,omitempty" firestore:"rejectionReason,omitempty"`

	ETAOverridden         bool       `json:"eta_overridden" firestore:"etaOverridden"`
	ETAOverriddenAt       *time.Time `json:"eta_overridden_at,omitempty" firestore:"etaOverriddenAt,omitempty"`
	PricingOverridden     bool       `json:"pricing_overridden" firestore:"pricingOverridden"`
	PricingOverrideReason string     `json:"pricing_override_reason,omitempty" firestore:"pricingOverrideReason,omitempty"`
	PricingOverriddenAt   *time.Time `json:"pricing_overridden_at,omitempty" firestore:"pricingOverriddenAt,omitempty"`

	BatchID    string `json:"batch_id,omitempty" firestore:"batchId,omitempty"`
	BatchIndex int    `json:"batch_index,omitempty" firestore:"batchIndex,omitempty"`

	AcceptedAt          *time.Time `json:"accepted_at,omitempty" firestore:"acceptedAt,omitempty"`
	RejectedAt          *time.Time `json:"rejected_at,omitempty" firestore:"rejectedAt,omitempty"`
	PrintingStartedAt   *time.Time `json:"printing_started_at,omitempty" firestore:"printingStartedAt,omitempty"`
	PrintingCompletedAt *time.Time `json:"printing_completed_at,omitempty" firestore:"printingCompletedAt,omitempty"`
	ReadyAt             *time.Time `json:"ready_at,omitempty" firestore:"readyAt,omitempty"`
	OutForDeliveryAt    *time.Time `json:"out_for_delivery_at,omitempty" firestore:"outForDeliveryAt,omitempty"`
	DeliveredAt         *time.Time `json:"delivered_at,omitempty" firestore:"deliveredAt,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty" firestore:"cancelledAt,omitempty"`

	// Append-only sub-collections owned by the order. Embedding them keeps
	// every lifecycle mutation a single document write, so history, audit
	// and the order state can never drift apart.
	StatusHistory []StatusHistoryEntry `json:"status_history" firestore:"statusHistory"`
	ChangeLog     []ChangeLogEntry     `json:"change_log" firestore:"changeLog"`
	AuditLog      []AuditEntry         `json:"audit_log" firestore:"auditLog"`
	Messages      []ChatMessage        `json:"messages" firestore:"messages"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

type StatusHistoryEntry struct {
	Status    string    `json:"status" firestore:"status"`
	StatusKey StatusKey `json:"status_key" firestore:"statusKey"`
	Label     string    `json:"label" firestore:"label"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}

// ChangeLogEntry is the coarse per-action ledger. It predates the
// field-level audit log and coexists with it for older consumers.
type ChangeLogEntry struct {
	Timestamp     time.Time `json:"timestamp" firestore:"timestamp"`
	Role          string    `json:"role" firestore:"role"`
	Action        string    `json:"action" firestore:"action"`
	PreviousState string    `json:"previous_state,omitempty" firestore:"previousState,omitempty"`
}

// AuditEntry records one logical change operation. ChangedFields is exactly
// the key set of Changes and is never empty; an entry is only appended when
// at least one tracked field actually differs.
type AuditEntry struct {
	ID            string                 `json:"id" firestore:"id"`
	Timestamp     time.Time              `json:"timestamp" firestore:"timestamp"`
	Role          string                 `json:"role" firestore:"role"`
	UserID        string                 `json:"user_id" firestore:"userId"`
	ChangedFields []string               `json:"changed_fields" firestore:"changedFields"`
	Changes       map[string]FieldChange `json:"changes" firestore:"changes"`
	Reason        string                 `json:"reason,omitempty" firestore:"reason,omitempty"`
}

type FieldChange struct {
	Previous interface{} `json:"previous" firestore:"previous"`
	Current  interface{} `json:"current" firestore:"current"`
}
