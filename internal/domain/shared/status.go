package shared

// Status defines the decision lifecycle shared by loans and fund contributions
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"

	// StatusRepaid marks a loan whose remaining balance reached zero.
	// Loans only; fund contributions never transition here.
	StatusRepaid Status = "REPAID"
)

// Decided reports whether the status is terminal for the approval flow.
// Decisions are single-step and non-reversible.
func (s Status) Decided() bool {
	return s != StatusPending
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
