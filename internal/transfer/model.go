package transfer

import (
	"fmt"
	"time"
)

// Status classifies the lifecycle state of a transfer.
type Status string

const (
	// StatusPending marks a transfer created but not yet committed.
	StatusPending Status = "pending"
	// StatusCompleted marks a transfer whose debit and credit both committed.
	StatusCompleted Status = "completed"
	// StatusFailed marks a transfer rejected before any balance changed.
	StatusFailed Status = "failed"
)

// ParseStatus validates a status string at the construction boundary.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusCompleted, StatusFailed:
		return Status(s), nil
	default:
		return "", fmt.Errorf("invalid transfer status %q", s)
	}
}

// Transfer is a logical money movement between two wallets. A completed
// transfer corresponds to exactly two ledger entries, one debit and one
// credit, committed together with it.
type Transfer struct {
	ID               string
	SenderID         string
	RecipientAddress string
	RecipientID      string
	Amount           int64
	Description      string
	Status           Status
	CreatedAt        time.Time
}
