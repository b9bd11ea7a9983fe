package storage

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/common"
)

// TransfersQueryFilter selects transfer entities. Zero-valued fields are
// ignored. The *_Not fields implement the suffix-negation operators of the
// query surface (e.g. to_not=<addr>).
type TransfersQueryFilter struct {
	From            string
	To              string
	FromNot         string
	ToNot           string
	TransactionHash string
	ValueGt         *big.Int
	OrderBy         string
	OrderDirection  string
	First           int
	Skip            int
}

type AccountsQueryFilter struct {
	IDs            []string
	OrderBy        string
	OrderDirection string
	First          int
	Skip           int
}

type QueryResult[T any] struct {
	Data []T `json:"data"`
}

// IEntityStore is the main entity storage. GetAccount returns (nil, nil)
// when no account exists under the address; absence is not an error.
type IEntityStore interface {
	GetAccount(address string) (*common.Account, error)
	UpsertAccounts(accounts []common.Account) error
	InsertTransfers(transfers []common.Transfer) error
	GetAccounts(qf AccountsQueryFilter) (QueryResult[common.Account], error)
	GetTransfers(qf TransfersQueryFilter) (QueryResult[common.Transfer], error)
	Close() error
}

// ICursorStore persists the last applied event sequence per source so a
// restarted indexer resumes instead of reapplying events.
type ICursorStore interface {
	GetLastAppliedSequence(source string) (uint64, error)
	SetLastAppliedSequence(source string, sequence uint64) error
	Close() error
}

type IStorage struct {
	MainStorage   IEntityStore
	CursorStorage ICursorStore
}

func NewStorageConnector(cfg *config.StorageConfig) (IStorage, error) {
	var storage IStorage
	var err error

	storage.MainStorage, err = NewConnector[IEntityStore](&cfg.Main)
	if err != nil {
		return IStorage{}, fmt.Errorf("failed to create main storage: %w", err)
	}

	storage.CursorStorage, err = NewConnector[ICursorStore](&cfg.Cursor)
	if err != nil {
		return IStorage{}, fmt.Errorf("failed to create cursor storage: %w", err)
	}

	return storage, nil
}

func NewConnector[T any](cfg *config.StorageConnectionConfig) (T, error) {
	var conn interface{}
	var err error
	if cfg.Clickhouse != nil {
		conn, err = NewClickHouseConnector(cfg.Clickhouse)
	} else if cfg.Badger != nil {
		conn, err = NewBadgerConnector(cfg.Badger)
	} else if cfg.Redis != nil {
		conn, err = NewRedisConnector(cfg.Redis)
	} else if cfg.Memory != nil {
		conn, err = NewMemoryConnector(cfg.Memory)
	} else {
		return *new(T), fmt.Errorf("no storage driver configured")
	}

	if err != nil {
		return *new(T), err
	}

	typedConn, ok := conn.(T)
	if !ok {
		return *new(T), fmt.Errorf("connector does not implement the required interface")
	}

	return typedConn, nil
}

// TransferOrderColumns and AccountOrderColumns are the fields the stores
// accept in OrderBy. They double as the allowlist that keeps user input out
// of ClickHouse ORDER BY clauses.
var TransferOrderColumns = map[string]bool{
	"id":              true,
	"value":           true,
	"block_timestamp": true,
	"log_index":       true,
}

var AccountOrderColumns = map[string]bool{
	"id":             true,
	"total_sent":     true,
	"total_received": true,
	"sent_count":     true,
	"received_count": true,
}

func matchesTransferFilter(t *common.Transfer, qf *TransfersQueryFilter) bool {
	if qf.From != "" && t.FromAddress != qf.From {
		return false
	}
	if qf.To != "" && t.ToAddress != qf.To {
		return false
	}
	if qf.FromNot != "" && t.FromAddress == qf.FromNot {
		return false
	}
	if qf.ToNot != "" && t.ToAddress == qf.ToNot {
		return false
	}
	if qf.TransactionHash != "" && t.TransactionHash != qf.TransactionHash {
		return false
	}
	if qf.ValueGt != nil && t.Value.Cmp(qf.ValueGt) <= 0 {
		return false
	}
	return true
}

func sortTransfers(transfers []common.Transfer, orderBy string, orderDirection string) error {
	if orderBy == "" {
		orderBy = "id"
	}
	if !TransferOrderColumns[orderBy] {
		return fmt.Errorf("cannot order transfers by '%s'", orderBy)
	}
	desc := strings.EqualFold(orderDirection, "desc")
	sort.SliceStable(transfers, func(i, j int) bool {
		cmp := compareTransfers(orderBy, &transfers[i], &transfers[j])
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return nil
}

func compareTransfers(orderBy string, a, b *common.Transfer) int {
	switch orderBy {
	case "value":
		return a.Value.Cmp(b.Value)
	case "block_timestamp":
		return a.BlockTimestamp.Cmp(b.BlockTimestamp)
	case "log_index":
		return compareUint64(a.LogIndex, b.LogIndex)
	default:
		return strings.Compare(a.ID, b.ID)
	}
}

func sortAccounts(accounts []common.Account, orderBy string, orderDirection string) error {
	if orderBy == "" {
		orderBy = "id"
	}
	if !AccountOrderColumns[orderBy] {
		return fmt.Errorf("cannot order accounts by '%s'", orderBy)
	}
	desc := strings.EqualFold(orderDirection, "desc")
	sort.SliceStable(accounts, func(i, j int) bool {
		cmp := compareAccounts(orderBy, &accounts[i], &accounts[j])
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return nil
}

func compareAccounts(orderBy string, a, b *common.Account) int {
	switch orderBy {
	case "total_sent":
		return a.TotalSent.Cmp(b.TotalSent)
	case "total_received":
		return a.TotalReceived.Cmp(b.TotalReceived)
	case "sent_count":
		return compareUint64(a.SentCount, b.SentCount)
	case "received_count":
		return compareUint64(a.ReceivedCount, b.ReceivedCount)
	default:
		return strings.Compare(a.ID, b.ID)
	}
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// applyPage slices out the requested window. First <= 0 means no limit.
func applyPage[T any](data []T, first int, skip int) []T {
	if skip > 0 {
		if skip >= len(data) {
			return []T{}
		}
		data = data[skip:]
	}
	if first > 0 && first < len(data) {
		data = data[:first]
	}
	return data
}
