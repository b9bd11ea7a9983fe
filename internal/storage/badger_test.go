package storage

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/common"
)

func newBadgerStore(t *testing.T) *BadgerConnector {
	t.Helper()
	store, err := NewBadgerConnector(&config.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBadgerAccountRoundTrip(t *testing.T) {
	store := newBadgerStore(t)

	account, err := store.GetAccount("0xmissing")
	require.NoError(t, err)
	assert.Nil(t, account)

	stored := common.Account{
		ID:              "0xabc",
		TotalSent:       big.NewInt(1234),
		TotalReceived:   big.NewInt(0),
		SentCount:       4,
		ReceivedCount:   0,
		InsertTimestamp: time.Now().UTC(),
	}
	require.NoError(t, store.UpsertAccounts([]common.Account{stored}))

	got, err := store.GetAccount("0xabc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1234", got.TotalSent.String())
	assert.Equal(t, uint64(4), got.SentCount)
}

func TestBadgerTransfersQuery(t *testing.T) {
	store := newBadgerStore(t)

	transfers := []common.Transfer{
		{
			ID:              "0xtx1-0",
			FromAddress:     "0xa",
			ToAddress:       "0xb",
			Value:           big.NewInt(100),
			TransactionHash: "0xtx1",
			LogIndex:        0,
			BlockTimestamp:  big.NewInt(1700000001),
		},
		{
			ID:              "0xtx2-0",
			FromAddress:     "0xb",
			ToAddress:       "0xa",
			Value:           big.NewInt(300),
			TransactionHash: "0xtx2",
			LogIndex:        0,
			BlockTimestamp:  big.NewInt(1700000002),
		},
		{
			ID:              "0xtx3-0",
			FromAddress:     "0xa",
			ToAddress:       "0xc",
			Value:           big.NewInt(200),
			TransactionHash: "0xtx3",
			LogIndex:        0,
			BlockTimestamp:  big.NewInt(1700000003),
		},
	}
	require.NoError(t, store.InsertTransfers(transfers))

	result, err := store.GetTransfers(TransfersQueryFilter{From: "0xa", OrderBy: "value", OrderDirection: "desc"})
	require.NoError(t, err)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "0xtx3-0", result.Data[0].ID)
	assert.Equal(t, "0xtx1-0", result.Data[1].ID)

	result, err = store.GetTransfers(TransfersQueryFilter{ValueGt: big.NewInt(150)})
	require.NoError(t, err)
	assert.Len(t, result.Data, 2)
}

func TestBadgerCursorPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewBadgerConnector(&config.BadgerConfig{Path: dir})
	require.NoError(t, err)
	require.NoError(t, store.SetLastAppliedSequence("transfers.ndjson", 7))
	require.NoError(t, store.Close())

	store, err = NewBadgerConnector(&config.BadgerConfig{Path: dir})
	require.NoError(t, err)
	defer store.Close()

	sequence, err := store.GetLastAppliedSequence("transfers.ndjson")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), sequence)
}
