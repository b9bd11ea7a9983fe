package common

import (
	"fmt"
	"math/big"
	"time"
)

// Transfer is an immutable record of one observed transfer event, keyed by
// transaction hash and log index. It is inserted exactly once and never
// updated or deleted.
type Transfer struct {
	ID              string    `json:"id" ch:"id"`
	FromAddress     string    `json:"from_address" ch:"from_address"`
	ToAddress       string    `json:"to_address" ch:"to_address"`
	Value           *big.Int  `json:"value" ch:"value"`
	TransactionHash string    `json:"transaction_hash" ch:"transaction_hash"`
	LogIndex        uint64    `json:"log_index" ch:"log_index"`
	BlockTimestamp  *big.Int  `json:"block_timestamp" ch:"block_timestamp"`
	InsertTimestamp time.Time `json:"insert_timestamp" ch:"insert_timestamp"`
}

// TransferID builds the composite entity key. Two transfers in the same
// transaction are distinguished by their log index.
func TransferID(transactionHash string, logIndex uint64) string {
	return fmt.Sprintf("%s-%d", transactionHash, logIndex)
}
