package entity

// StatusKey is the canonical order status identifier persisted on the order
// document. The literal strings are part of the stored data contract and
// must not change without a migration.
type StatusKey string

const (
	StatusPending           StatusKey = "pending"
	StatusDealerAccepted    StatusKey = "dealer-accepted"
	StatusPrintingStarted   StatusKey = "printing-started"
	StatusPrintingCompleted StatusKey = "printing-completed"
	StatusReadyForPickup    StatusKey = "ready-for-pickup"
	StatusOutForDelivery    StatusKey = "out-for-delivery"
	StatusDelivered         StatusKey = "delivered"
	StatusRejected          StatusKey = "rejected"
	StatusCancelled         StatusKey = "cancelled"
)

// Legacy spellings still found in older documents. They are accepted on
// read and rewritten to the canonical key at the storage boundary so that
// internal logic never branches on them.
var legacyAliases = map[string]StatusKey{
	"ready":      StatusReadyForPickup,
	"processing": StatusDealerAccepted,
	"completed":  StatusDelivered,
}

var statusLabels = map[StatusKey]string{
	StatusPending:           "Pending",
	StatusDealerAccepted:    "Dealer Accepted",
	StatusPrintingStarted:   "Printing Started",
	StatusPrintingCompleted: "Printing Completed",
	StatusReadyForPickup:    "Ready for Pickup",
	StatusOutForDelivery:    "Out for Delivery",
	StatusDelivered:         "Delivered",
	StatusRejected:          "Rejected",
	StatusCancelled:         "Cancelled",
}

// stage positions for forward-only enforcement. ReadyForPickup and
// OutForDelivery are alternates at the same stage; Rejected and Cancelled
// sit outside the pipeline and are handled separately.
var statusRank = map[StatusKey]int{
	StatusPending:           0,
	StatusDealerAccepted:    1,
	StatusPrintingStarted:   2,
	StatusPrintingCompleted: 3,
	StatusReadyForPickup:    4,
	StatusOutForDelivery:    4,
	StatusDelivered:         5,
}

// NormalizeStatusKey maps legacy aliases to the canonical key. Unknown
// values are returned unchanged so callers can reject them explicitly.
func NormalizeStatusKey(key string) StatusKey {
	if canonical, ok := legacyAliases[key]; ok {
		return canonical
	}
	return StatusKey(key)
}

// IsValidStatusKey reports whether key (after normalization) is part of the
// canonical set.
func IsValidStatusKey(key string) bool {
	_, ok := statusLabels[NormalizeStatusKey(key)]
	return ok
}

// Label returns the human-readable status label shown to users.
func (k StatusKey) Label() string {
	if label, ok := statusLabels[k]; ok {
		return label
	}
	return string(k)
}

// IsTerminal reports whether no further transitions are allowed.
func (k StatusKey) IsTerminal() bool {
	return k == StatusDelivered || k == StatusRejected || k == StatusCancelled
}

// CanTransitionTo reports whether the pipeline allows moving from k to next.
// Policy is strictly forward-only: an order never moves backward and never
// revisits a stage. Rejected and Cancelled are reachable from any
// non-terminal state.
func (k StatusKey) CanTransitionTo(next StatusKey) bool {
	if k.IsTerminal() {
		return false
	}
	if next == StatusRejected || next == StatusCancelled {
		return true
	}
	fromRank, ok := statusRank[k]
	if !ok {
		return false
	}
	toRank, ok := statusRank[next]
	if !ok {
		return false
	}
	return toRank > fromRank
}
