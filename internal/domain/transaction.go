package domain

import "time"

type TransactionKind string

const (
	KindPixSent     TransactionKind = "pix_sent"
	KindPixReceived TransactionKind = "pix_received"
	KindTEDSent     TransactionKind = "ted_sent"
	KindTEDReceived TransactionKind = "ted_received"
)

type Channel string

const (
	ChannelPix Channel = "pix"
	ChannelTED Channel = "ted"
)

func (c Channel) IsValid() bool {
	return c == ChannelPix || c == ChannelTED
}

func (c Channel) Kinds() (sent, received TransactionKind) {
	if c == ChannelTED {
		return KindTEDSent, KindTEDReceived
	}
	return KindPixSent, KindPixReceived
}

func (c Channel) Label() string {
	if c == ChannelTED {
		return "TED"
	}
	return "PIX"
}

type TransactionStatus string

const TransactionStatusCompleted TransactionStatus = "completed"

const CategoryTransfer = "Transferência"

// Transaction is one side of a transfer. Amount is signed: negative for the
// debited party, positive for the credited one. Both sides of a transfer
// carry the same CorrelationID and the same FromID/ToID pair.
type Transaction struct {
	ID            string
	CorrelationID string
	Kind          TransactionKind
	Description   string
	Amount        int64
	Timestamp     time.Time
	Status        TransactionStatus
	Category      string
	FromID        string
	ToID          string
}

func (t *Transaction) BelongsTo(accountID string) bool {
	return t.FromID == accountID || t.ToID == accountID
}

// IsSideOf reports whether this record is the accountID's own half of the
// transfer: the debit for the sender, the credit for the recipient.
func (t *Transaction) IsSideOf(accountID string) bool {
	if t.Amount < 0 {
		return t.FromID == accountID
	}
	return t.ToID == accountID
}

func (t *Transaction) IsIncome() bool  { return t.Amount > 0 }
func (t *Transaction) IsExpense() bool { return t.Amount < 0 }

func (t *Transaction) Channel() Channel {
	switch t.Kind {
	case KindTEDSent, KindTEDReceived:
		return ChannelTED
	default:
		return ChannelPix
	}
}
