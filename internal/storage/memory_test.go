package storage

import (
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/common"
)

func newMemoryStore(t *testing.T) *MemoryConnector {
	t.Helper()
	store, err := NewMemoryConnector(&config.MemoryConfig{MaxItems: 10000})
	require.NoError(t, err)
	return store
}

func seedTransfers(t *testing.T, store *MemoryConnector, count int) {
	t.Helper()
	transfers := make([]common.Transfer, 0, count)
	for i := 0; i < count; i++ {
		txHash := fmt.Sprintf("0xhash%03d", i)
		transfers = append(transfers, common.Transfer{
			ID:              common.TransferID(txHash, 0),
			FromAddress:     fmt.Sprintf("0xfrom%d", i%3),
			ToAddress:       fmt.Sprintf("0xto%d", i%2),
			Value:           big.NewInt(int64((i + 1) * 100)),
			TransactionHash: txHash,
			LogIndex:        0,
			BlockTimestamp:  big.NewInt(int64(1700000000 + i)),
			InsertTimestamp: time.Now(),
		})
	}
	require.NoError(t, store.InsertTransfers(transfers))
}

func TestMemoryGetAccountMissing(t *testing.T) {
	store := newMemoryStore(t)

	account, err := store.GetAccount("0xunknown")
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestMemoryUpsertAccountsRoundTrip(t *testing.T) {
	store := newMemoryStore(t)

	account := common.Account{
		ID:            "0xabc",
		TotalSent:     big.NewInt(300),
		TotalReceived: big.NewInt(50),
		SentCount:     2,
		ReceivedCount: 1,
	}
	require.NoError(t, store.UpsertAccounts([]common.Account{account}))

	got, err := store.GetAccount("0xabc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "300", got.TotalSent.String())
	assert.Equal(t, "50", got.TotalReceived.String())
	assert.Equal(t, uint64(2), got.SentCount)

	// Upserting again replaces the stored row.
	account.SentCount = 3
	account.TotalSent = big.NewInt(500)
	require.NoError(t, store.UpsertAccounts([]common.Account{account}))

	got, err = store.GetAccount("0xabc")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got.SentCount)
	assert.Equal(t, "500", got.TotalSent.String())

	result, err := store.GetAccounts(AccountsQueryFilter{})
	require.NoError(t, err)
	assert.Len(t, result.Data, 1)
}

func TestMemoryGetAccountsByIDs(t *testing.T) {
	store := newMemoryStore(t)

	accounts := []common.Account{
		{ID: "0xa", TotalSent: big.NewInt(1), TotalReceived: big.NewInt(0)},
		{ID: "0xb", TotalSent: big.NewInt(2), TotalReceived: big.NewInt(0)},
		{ID: "0xc", TotalSent: big.NewInt(3), TotalReceived: big.NewInt(0)},
	}
	require.NoError(t, store.UpsertAccounts(accounts))

	result, err := store.GetAccounts(AccountsQueryFilter{IDs: []string{"0xa", "0xc"}})
	require.NoError(t, err)
	require.Len(t, result.Data, 2)
	for _, account := range result.Data {
		assert.Contains(t, []string{"0xa", "0xc"}, account.ID)
	}
}

func TestMemoryGetAccountsOrdering(t *testing.T) {
	store := newMemoryStore(t)

	accounts := []common.Account{
		{ID: "0xa", TotalSent: big.NewInt(10), TotalReceived: big.NewInt(0), SentCount: 1},
		{ID: "0xb", TotalSent: big.NewInt(30), TotalReceived: big.NewInt(0), SentCount: 3},
		{ID: "0xc", TotalSent: big.NewInt(20), TotalReceived: big.NewInt(0), SentCount: 2},
	}
	require.NoError(t, store.UpsertAccounts(accounts))

	result, err := store.GetAccounts(AccountsQueryFilter{OrderBy: "total_sent", OrderDirection: "desc"})
	require.NoError(t, err)
	require.Len(t, result.Data, 3)
	assert.Equal(t, "0xb", result.Data[0].ID)
	assert.Equal(t, "0xc", result.Data[1].ID)
	assert.Equal(t, "0xa", result.Data[2].ID)

	_, err = store.GetAccounts(AccountsQueryFilter{OrderBy: "not_a_column"})
	assert.Error(t, err)
}

func TestMemoryGetTransfersFilters(t *testing.T) {
	store := newMemoryStore(t)
	seedTransfers(t, store, 12)

	testCases := []struct {
		name     string
		filter   TransfersQueryFilter
		expected int
	}{
		{name: "no filter", filter: TransfersQueryFilter{}, expected: 12},
		{name: "by from", filter: TransfersQueryFilter{From: "0xfrom0"}, expected: 4},
		{name: "by to", filter: TransfersQueryFilter{To: "0xto1"}, expected: 6},
		{name: "from negated", filter: TransfersQueryFilter{FromNot: "0xfrom0"}, expected: 8},
		{name: "to negated", filter: TransfersQueryFilter{ToNot: "0xto0"}, expected: 6},
		{name: "by transaction hash", filter: TransfersQueryFilter{TransactionHash: "0xhash003"}, expected: 1},
		{name: "value greater than", filter: TransfersQueryFilter{ValueGt: big.NewInt(1000)}, expected: 2},
		{name: "value greater than is strict", filter: TransfersQueryFilter{ValueGt: big.NewInt(1200)}, expected: 0},
		{name: "combined", filter: TransfersQueryFilter{From: "0xfrom0", To: "0xto1"}, expected: 2},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			result, err := store.GetTransfers(tt.filter)
			require.NoError(t, err)
			assert.Len(t, result.Data, tt.expected)
		})
	}
}

func TestMemoryGetTransfersOrderingAndPaging(t *testing.T) {
	store := newMemoryStore(t)
	seedTransfers(t, store, 10)

	result, err := store.GetTransfers(TransfersQueryFilter{OrderBy: "value", OrderDirection: "desc", First: 3})
	require.NoError(t, err)
	require.Len(t, result.Data, 3)
	assert.Equal(t, "1000", result.Data[0].Value.String())
	assert.Equal(t, "900", result.Data[1].Value.String())
	assert.Equal(t, "800", result.Data[2].Value.String())

	result, err = store.GetTransfers(TransfersQueryFilter{OrderBy: "value", OrderDirection: "asc", First: 3, Skip: 2})
	require.NoError(t, err)
	require.Len(t, result.Data, 3)
	assert.Equal(t, "300", result.Data[0].Value.String())

	result, err = store.GetTransfers(TransfersQueryFilter{Skip: 100})
	require.NoError(t, err)
	assert.Empty(t, result.Data)

	_, err = store.GetTransfers(TransfersQueryFilter{OrderBy: "insert_timestamp"})
	assert.Error(t, err)
}

func TestMemoryCursorRoundTrip(t *testing.T) {
	store := newMemoryStore(t)

	sequence, err := store.GetLastAppliedSequence("transfers.ndjson")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), sequence)

	require.NoError(t, store.SetLastAppliedSequence("transfers.ndjson", 42))
	sequence, err = store.GetLastAppliedSequence("transfers.ndjson")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), sequence)

	// Cursors are scoped per source.
	sequence, err = store.GetLastAppliedSequence("other.ndjson")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), sequence)
}

func TestApplyPage(t *testing.T) {
	data := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, applyPage(data, 0, 0))
	assert.Equal(t, []int{1, 2}, applyPage(data, 2, 0))
	assert.Equal(t, []int{3, 4}, applyPage(data, 2, 2))
	assert.Equal(t, []int{5}, applyPage(data, 10, 4))
	assert.Empty(t, applyPage(data, 2, 10))
}
