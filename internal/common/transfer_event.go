package common

import (
	"fmt"
	"math/big"

	gethcommon "github.com/ethereum/go-ethereum/common"
)

// TransferEvent is a single observed transfer, as delivered by a source.
// Sequence is the source-assigned position of the event in its feed and is
// strictly increasing within one source.
type TransferEvent struct {
	Sequence        uint64   `json:"sequence"`
	FromAddress     string   `json:"from_address"`
	ToAddress       string   `json:"to_address"`
	Value           *big.Int `json:"value"`
	TransactionHash string   `json:"transaction_hash"`
	LogIndex        uint64   `json:"log_index"`
	BlockTimestamp  *big.Int `json:"block_timestamp"`
}

func (e *TransferEvent) Validate() error {
	if !gethcommon.IsHexAddress(e.FromAddress) {
		return fmt.Errorf("invalid from_address '%s'", e.FromAddress)
	}
	if !gethcommon.IsHexAddress(e.ToAddress) {
		return fmt.Errorf("invalid to_address '%s'", e.ToAddress)
	}
	if e.TransactionHash == "" {
		return fmt.Errorf("missing transaction_hash")
	}
	if e.Value == nil || e.Value.Sign() < 0 {
		return fmt.Errorf("invalid value for transfer %s", TransferID(e.TransactionHash, e.LogIndex))
	}
	if e.BlockTimestamp == nil {
		return fmt.Errorf("missing block_timestamp for transfer %s", TransferID(e.TransactionHash, e.LogIndex))
	}
	return nil
}
