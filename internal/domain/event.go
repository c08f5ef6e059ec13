package domain

import "time"

const EventTransferCompleted = "transfer.completed"

// TransferCompleted is emitted once both balances and both log records of a
// transfer have been persisted.
type TransferCompleted struct {
	CorrelationID    string    `json:"correlation_id"`
	Channel          Channel   `json:"channel"`
	SenderID         string    `json:"sender_id"`
	RecipientID      string    `json:"recipient_id"`
	Amount           int64     `json:"amount"`
	SenderBalance    int64     `json:"sender_balance"`
	RecipientBalance int64     `json:"recipient_balance"`
	OccurredAt       time.Time `json:"occurred_at"`
}
