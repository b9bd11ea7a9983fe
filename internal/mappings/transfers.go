package mappings

import (
	"fmt"
	"time"

	"github.com/tokengraph/indexer/internal/common"
	"github.com/tokengraph/indexer/internal/metrics"
	"github.com/tokengraph/indexer/internal/storage"
)

// HandleTransfer applies one transfer event to the entity store: it resolves
// both accounts (creating them on first sight), bumps their counters, adds
// the value to the running totals with exact big.Int arithmetic, and records
// the immutable Transfer entity.
//
// When sender and receiver are the same address, both lookups must resolve to
// one underlying record so both sides of the update land on it.
//
// Returns the persisted transfer and the updated account snapshots so callers
// can forward them downstream.
func HandleTransfer(store storage.IEntityStore, event *common.TransferEvent) (*common.Transfer, []common.Account, error) {
	if err := event.Validate(); err != nil {
		return nil, nil, err
	}

	fromAddress := common.NormalizeAddress(event.FromAddress)
	toAddress := common.NormalizeAddress(event.ToAddress)

	sender, err := GetOrCreateAccount(store, fromAddress)
	if err != nil {
		return nil, nil, err
	}

	receiver := sender
	if toAddress != fromAddress {
		receiver, err = GetOrCreateAccount(store, toAddress)
		if err != nil {
			return nil, nil, err
		}
	}

	sender.SentCount++
	receiver.ReceivedCount++
	sender.TotalSent.Add(sender.TotalSent, event.Value)
	receiver.TotalReceived.Add(receiver.TotalReceived, event.Value)

	transactionHash := common.NormalizeHash(event.TransactionHash)
	transfer := common.Transfer{
		ID:              common.TransferID(transactionHash, event.LogIndex),
		FromAddress:     fromAddress,
		ToAddress:       toAddress,
		Value:           event.Value,
		TransactionHash: transactionHash,
		LogIndex:        event.LogIndex,
		BlockTimestamp:  event.BlockTimestamp,
		InsertTimestamp: time.Now(),
	}

	accounts := []common.Account{*sender}
	if receiver != sender {
		accounts = append(accounts, *receiver)
	}
	if err := store.UpsertAccounts(accounts); err != nil {
		return nil, nil, fmt.Errorf("failed to persist accounts for transfer %s: %w", transfer.ID, err)
	}
	if err := store.InsertTransfers([]common.Transfer{transfer}); err != nil {
		return nil, nil, fmt.Errorf("failed to persist transfer %s: %w", transfer.ID, err)
	}

	metrics.TransfersHandled.Inc()
	return &transfer, accounts, nil
}
