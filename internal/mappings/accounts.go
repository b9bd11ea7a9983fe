package mappings

import (
	"fmt"

	"github.com/tokengraph/indexer/internal/common"
	"github.com/tokengraph/indexer/internal/metrics"
	"github.com/tokengraph/indexer/internal/storage"
)

// GetOrCreateAccount returns the account stored under the address, creating
// and persisting one with zeroed aggregates on first sight. Calling it twice
// with no intervening writes yields the same record both times.
func GetOrCreateAccount(store storage.IEntityStore, address string) (*common.Account, error) {
	account, err := store.GetAccount(address)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", address, err)
	}
	if account != nil {
		return account, nil
	}

	account = common.NewAccount(address)
	if err := store.UpsertAccounts([]common.Account{*account}); err != nil {
		return nil, fmt.Errorf("failed to persist new account %s: %w", address, err)
	}
	metrics.AccountsCreated.Inc()
	return account, nil
}
