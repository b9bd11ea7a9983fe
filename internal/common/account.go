package common

import (
	"math/big"
	"time"
)

// Account keeps running transfer aggregates for a single address. The
// sent/received transfer lists are never stored here; they are resolved at
// query time by reverse lookup on Transfer.FromAddress / Transfer.ToAddress.
type Account struct {
	ID              string    `json:"id" ch:"id"`
	TotalSent       *big.Int  `json:"total_sent" ch:"total_sent"`
	TotalReceived   *big.Int  `json:"total_received" ch:"total_received"`
	SentCount       uint64    `json:"sent_count" ch:"sent_count"`
	ReceivedCount   uint64    `json:"received_count" ch:"received_count"`
	InsertTimestamp time.Time `json:"insert_timestamp" ch:"insert_timestamp"`
}

// NewAccount returns an account with all aggregates at zero. The address is
// expected to be normalized already.
func NewAccount(address string) *Account {
	return &Account{
		ID:            address,
		TotalSent:     new(big.Int),
		TotalReceived: new(big.Int),
	}
}
