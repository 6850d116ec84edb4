package domain

type Status string

const (
	StatusPending          Status = "Pending"
	StatusPreparing        Status = "Preparing"
	StatusReadyForShipping Status = "Ready for Shipping"
	StatusShipped          Status = "Shipped"
	StatusReceived         Status = "Received"
	StatusRejected         Status = "Rejected"
	StatusCancelled        Status = "Cancelled"
	StatusReturned         Status = "Returned"
)

// ParseStatus validates against the closed enum; unrecognized values are
// rejected, never stored.
func ParseStatus(v string) (Status, bool) {
	switch Status(v) {
	case StatusPending, StatusPreparing, StatusReadyForShipping, StatusShipped,
		StatusReceived, StatusRejected, StatusCancelled, StatusReturned:
		return Status(v), true
	default:
		return "", false
	}
}

// Terminal statuses accept no further administrative transitions. Received is
// terminal for normal flow but still reachable by the refund path, which is
// handled separately.
func (s Status) Terminal() bool {
	switch s {
	case StatusReceived, StatusRejected, StatusCancelled, StatusReturned:
		return true
	default:
		return false
	}
}

// CanTransition reports whether an administrative status change from -> to is
// allowed: any non-terminal state may move forward along the fulfilment chain
// or branch to Rejected/Cancelled/Returned; nothing moves back to Pending.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusPending || to == from {
		return false
	}
	return true
}
