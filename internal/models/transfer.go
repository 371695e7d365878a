package models

import "time"

// TransferStatus defines the stages of the two-party approval chain.
// Status never regresses: pending_transferee, then pending_manager, then approved,
// or rejected from either pending stage.
type TransferStatus string

const (
	TransferPendingTransferee TransferStatus = "pending_transferee"
	TransferPendingManager    TransferStatus = "pending_manager"
	TransferApproved          TransferStatus = "approved"
	TransferRejected          TransferStatus = "rejected"
)

// Terminal reports whether the status allows no further transitions.
func (s TransferStatus) Terminal() bool {
	return s == TransferApproved || s == TransferRejected
}

// TaskTransfer is a pending reassignment request for one workflow assignment.
type TaskTransfer struct {
	ID           int64          `json:"id"`
	AssignmentID int64          `json:"assignment_id"`
	FromUserID   int64          `json:"from_user_id"`
	ToUserID     int64          `json:"to_user_id"`
	RequestedBy  int64          `json:"requested_by"`
	Status       TransferStatus `json:"status"`
	Reason       string         `json:"reason,omitempty"`

	TransfereeResponse    string     `json:"transferee_response,omitempty"`
	TransfereeRespondedAt *time.Time `json:"transferee_responded_at,omitempty"`
	ManagerID             *int64     `json:"manager_id,omitempty"`
	ManagerResponse       string     `json:"manager_response,omitempty"`
	ManagerRespondedAt    *time.Time `json:"manager_responded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
