package amqp

import (
	"encoding/json"
	"time"
)

// Change reasons carried by ledger notifications.
const (
	ReasonTransactionAdded    = "transaction_added"
	ReasonSubscriptionUpdated = "subscription_updated"
)

// LedgerChangedMessage tells the worker that the ledger changed and an
// archival pass may be due. It carries only the reason and the affected
// transaction id; the worker re-reads the full snapshot from its source.
type LedgerChangedMessage struct {
	Reason        string    `json:"reason"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(reason, transactionID string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Reason:        reason,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON creates a message from JSON bytes
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
