package storage

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/common"
)

// BadgerConnector persists entities in an embedded badger database for
// single-node deployments. Entities are gob-encoded under typed key
// prefixes; queries iterate the relevant prefix and sort in process.
type BadgerConnector struct {
	db       *badger.DB
	gcTicker *time.Ticker
	stopGC   chan struct{}
}

func NewBadgerConnector(cfg *config.BadgerConfig) (*BadgerConnector, error) {
	path := cfg.Path
	if path == "" {
		path = filepath.Join(os.TempDir(), "tokengraph-entities")
	}
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = false
	opts.DetectConflicts = false
	opts.Logger = nil // Disable badger's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	bc := &BadgerConnector{
		db:     db,
		stopGC: make(chan struct{}),
	}

	bc.gcTicker = time.NewTicker(time.Duration(60) * time.Second)
	go bc.runGC()

	return bc, nil
}

func (bc *BadgerConnector) runGC() {
	for {
		select {
		case <-bc.gcTicker.C:
			err := bc.db.RunValueLogGC(0.5)
			if err != nil && err != badger.ErrNoRewrite {
				log.Debug().Err(err).Msg("BadgerDB GC error")
			}
		case <-bc.stopGC:
			return
		}
	}
}

func gobEncode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (bc *BadgerConnector) GetAccount(address string) (*common.Account, error) {
	var account *common.Account
	err := bc.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(accountKey(address)))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded := common.Account{}
			if err := gobDecode(val, &decoded); err != nil {
				return err
			}
			account = &decoded
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (bc *BadgerConnector) UpsertAccounts(accounts []common.Account) error {
	return bc.db.Update(func(txn *badger.Txn) error {
		for _, account := range accounts {
			encoded, err := gobEncode(&account)
			if err != nil {
				return err
			}
			if err := txn.Set([]byte(accountKey(account.ID)), encoded); err != nil {
				return err
			}
		}
		return nil
	})
}

func (bc *BadgerConnector) InsertTransfers(transfers []common.Transfer) error {
	return bc.db.Update(func(txn *badger.Txn) error {
		for _, transfer := range transfers {
			encoded, err := gobEncode(&transfer)
			if err != nil {
				return err
			}
			if err := txn.Set([]byte(transferKey(transfer.ID)), encoded); err != nil {
				return err
			}
		}
		return nil
	})
}

func (bc *BadgerConnector) GetAccounts(qf AccountsQueryFilter) (QueryResult[common.Account], error) {
	idsToCheck := make(map[string]struct{}, len(qf.IDs))
	for _, id := range qf.IDs {
		idsToCheck[id] = struct{}{}
	}

	accounts := []common.Account{}
	err := bc.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("account:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if len(idsToCheck) > 0 {
				id := string(item.Key()[len("account:"):])
				if _, ok := idsToCheck[id]; !ok {
					continue
				}
			}
			err := item.Value(func(val []byte) error {
				account := common.Account{}
				if err := gobDecode(val, &account); err != nil {
					return err
				}
				accounts = append(accounts, account)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return QueryResult[common.Account]{}, err
	}

	if err := sortAccounts(accounts, qf.OrderBy, qf.OrderDirection); err != nil {
		return QueryResult[common.Account]{}, err
	}
	return QueryResult[common.Account]{Data: applyPage(accounts, qf.First, qf.Skip)}, nil
}

func (bc *BadgerConnector) GetTransfers(qf TransfersQueryFilter) (QueryResult[common.Transfer], error) {
	transfers := []common.Transfer{}
	err := bc.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("transfer:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				transfer := common.Transfer{}
				if err := gobDecode(val, &transfer); err != nil {
					return err
				}
				if matchesTransferFilter(&transfer, &qf) {
					transfers = append(transfers, transfer)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return QueryResult[common.Transfer]{}, err
	}

	if err := sortTransfers(transfers, qf.OrderBy, qf.OrderDirection); err != nil {
		return QueryResult[common.Transfer]{}, err
	}
	return QueryResult[common.Transfer]{Data: applyPage(transfers, qf.First, qf.Skip)}, nil
}

func (bc *BadgerConnector) GetLastAppliedSequence(source string) (uint64, error) {
	var sequence uint64
	err := bc.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cursorKey(source)))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			parsed, err := strconv.ParseUint(string(val), 10, 64)
			if err != nil {
				return fmt.Errorf("failed to parse cursor for source %s: %w", source, err)
			}
			sequence = parsed
			return nil
		})
	})
	return sequence, err
}

func (bc *BadgerConnector) SetLastAppliedSequence(source string, sequence uint64) error {
	return bc.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(cursorKey(source)), []byte(strconv.FormatUint(sequence, 10)))
	})
}

func (bc *BadgerConnector) Close() error {
	bc.gcTicker.Stop()
	close(bc.stopGC)
	return bc.db.Close()
}
