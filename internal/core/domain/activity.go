package domain

import "time"

// Activity actions recorded in the console audit log.
const (
	ActionPaymentApproved = "payment_request.approved"
	ActionPaymentRejected = "payment_request.rejected"
	ActionUpgradeApproved = "upgrade_request.approved"
	ActionUpgradeRejected = "upgrade_request.rejected"
	ActionPaymentQRUpdate = "payment_config.updated"
)

// ReviewAction maps a decision on a request kind to its audit action.
func ReviewAction(kind RequestKind, status RequestStatus) string {
	switch {
	case kind == KindUpgrade && status == StatusApproved:
		return ActionUpgradeApproved
	case kind == KindUpgrade:
		return ActionUpgradeRejected
	case status == StatusApproved:
		return ActionPaymentApproved
	default:
		return ActionPaymentRejected
	}
}

// Activity is one audit entry for a state change made through the console.
type Activity struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actorId"`
	ActorEmail string    `json:"actorEmail"`
	Action     string    `json:"action"`
	TargetKind string    `json:"targetKind"`
	TargetID   string    `json:"targetId"`
	Detail     string    `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}
