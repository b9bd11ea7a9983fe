package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/common"
)

// MemoryConnector keeps entities as JSON strings in an LRU cache. It backs
// tests and local development; with a large enough maxItems it behaves like
// a complete store.
type MemoryConnector struct {
	cache *lru.Cache[string, string]
}

func NewMemoryConnector(cfg *config.MemoryConfig) (*MemoryConnector, error) {
	maxItems := 10000
	if cfg.MaxItems > 0 {
		maxItems = cfg.MaxItems
	}

	cache, err := lru.New[string, string](maxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	return &MemoryConnector{
		cache: cache,
	}, nil
}

func accountKey(address string) string {
	return fmt.Sprintf("account:%s", address)
}

func transferKey(id string) string {
	return fmt.Sprintf("transfer:%s", id)
}

func cursorKey(source string) string {
	return fmt.Sprintf("cursor:%s", source)
}

func (m *MemoryConnector) GetAccount(address string) (*common.Account, error) {
	value, ok := m.cache.Get(accountKey(address))
	if !ok {
		return nil, nil
	}
	account := common.Account{}
	if err := json.Unmarshal([]byte(value), &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (m *MemoryConnector) UpsertAccounts(accounts []common.Account) error {
	for _, account := range accounts {
		accountJson, err := json.Marshal(account)
		if err != nil {
			return err
		}
		m.cache.Add(accountKey(account.ID), string(accountJson))
	}
	return nil
}

func (m *MemoryConnector) InsertTransfers(transfers []common.Transfer) error {
	for _, transfer := range transfers {
		transferJson, err := json.Marshal(transfer)
		if err != nil {
			return err
		}
		m.cache.Add(transferKey(transfer.ID), string(transferJson))
	}
	return nil
}

func (m *MemoryConnector) GetAccounts(qf AccountsQueryFilter) (QueryResult[common.Account], error) {
	idsToCheck := make(map[string]struct{}, len(qf.IDs))
	for _, id := range qf.IDs {
		idsToCheck[id] = struct{}{}
	}

	accounts := []common.Account{}
	for _, key := range m.cache.Keys() {
		if !strings.HasPrefix(key, "account:") {
			continue
		}
		if len(idsToCheck) > 0 {
			if _, ok := idsToCheck[strings.TrimPrefix(key, "account:")]; !ok {
				continue
			}
		}
		value, ok := m.cache.Get(key)
		if !ok {
			continue
		}
		account := common.Account{}
		if err := json.Unmarshal([]byte(value), &account); err != nil {
			return QueryResult[common.Account]{}, err
		}
		accounts = append(accounts, account)
	}

	if err := sortAccounts(accounts, qf.OrderBy, qf.OrderDirection); err != nil {
		return QueryResult[common.Account]{}, err
	}
	return QueryResult[common.Account]{Data: applyPage(accounts, qf.First, qf.Skip)}, nil
}

func (m *MemoryConnector) GetTransfers(qf TransfersQueryFilter) (QueryResult[common.Transfer], error) {
	transfers := []common.Transfer{}
	for _, key := range m.cache.Keys() {
		if !strings.HasPrefix(key, "transfer:") {
			continue
		}
		value, ok := m.cache.Get(key)
		if !ok {
			continue
		}
		transfer := common.Transfer{}
		if err := json.Unmarshal([]byte(value), &transfer); err != nil {
			return QueryResult[common.Transfer]{}, err
		}
		if matchesTransferFilter(&transfer, &qf) {
			transfers = append(transfers, transfer)
		}
	}

	if err := sortTransfers(transfers, qf.OrderBy, qf.OrderDirection); err != nil {
		return QueryResult[common.Transfer]{}, err
	}
	return QueryResult[common.Transfer]{Data: applyPage(transfers, qf.First, qf.Skip)}, nil
}

func (m *MemoryConnector) GetLastAppliedSequence(source string) (uint64, error) {
	value, ok := m.cache.Get(cursorKey(source))
	if !ok {
		return 0, nil
	}
	sequence, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse cursor for source %s: %w", source, err)
	}
	return sequence, nil
}

func (m *MemoryConnector) SetLastAppliedSequence(source string, sequence uint64) error {
	m.cache.Add(cursorKey(source), strconv.FormatUint(sequence, 10))
	return nil
}

func (m *MemoryConnector) Close() error {
	m.cache.Purge()
	return nil
}
