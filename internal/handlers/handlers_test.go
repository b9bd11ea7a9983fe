package handlers

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/common"
	"github.com/tokengraph/indexer/internal/storage"
)

const (
	testAlice = "0x00000000000000000000000000000000000a11ce"
	testBob   = "0x0000000000000000000000000000000000000b0b"
	testCarol = "0x000000000000000000000000000000000000ca01"
)

func setupTestStorage(t *testing.T) *storage.MemoryConnector {
	t.Helper()
	store, err := storage.NewMemoryConnector(&config.MemoryConfig{MaxItems: 10000})
	require.NoError(t, err)

	storageOnce.Do(func() {})
	mainStorage = store
	storageErr = nil
	t.Cleanup(func() {
		mainStorage = nil
		storageOnce = sync.Once{}
	})
	return store
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/accounts", GetAccounts)
	r.GET("/accounts/:address", GetAccountByAddress)
	r.GET("/accounts/:address/transfers", GetAccountTransfers)
	r.GET("/transfers", GetTransfers)
	return r
}

func seedEntities(t *testing.T, store *storage.MemoryConnector) {
	t.Helper()
	accounts := []common.Account{
		{ID: testAlice, TotalSent: big.NewInt(300), TotalReceived: big.NewInt(0), SentCount: 2},
		{ID: testBob, TotalSent: big.NewInt(0), TotalReceived: big.NewInt(300), ReceivedCount: 2},
	}
	require.NoError(t, store.UpsertAccounts(accounts))

	transfers := []common.Transfer{
		{
			ID:              "0xtx1-0",
			FromAddress:     testAlice,
			ToAddress:       testBob,
			Value:           big.NewInt(100),
			TransactionHash: "0xtx1",
			LogIndex:        0,
			BlockTimestamp:  big.NewInt(1700000001),
			InsertTimestamp: time.Now(),
		},
		{
			ID:              "0xtx2-1",
			FromAddress:     testAlice,
			ToAddress:       testBob,
			Value:           big.NewInt(200),
			TransactionHash: "0xtx2",
			LogIndex:        1,
			BlockTimestamp:  big.NewInt(1700000002),
			InsertTimestamp: time.Now(),
		},
	}
	require.NoError(t, store.InsertTransfers(transfers))
}

func doRequest(t *testing.T, r *gin.Engine, url string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", url, nil)
	r.ServeHTTP(w, req)

	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestGetAccountByAddress(t *testing.T) {
	store := setupTestStorage(t)
	seedEntities(t, store)
	r := setupRouter()

	w, body := doRequest(t, r, "/accounts/"+testAlice)
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, testAlice, data["id"])
	assert.Equal(t, "300", data["totalSent"])
	assert.Equal(t, "0", data["totalReceived"])
	assert.Equal(t, float64(2), data["sentCount"])
}

func TestGetAccountByAddressNotFound(t *testing.T) {
	setupTestStorage(t)
	r := setupRouter()

	w, _ := doRequest(t, r, "/accounts/"+testCarol)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAccountByAddressInvalid(t *testing.T) {
	setupTestStorage(t)
	r := setupRouter()

	w, _ := doRequest(t, r, "/accounts/not-an-address")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAccountByAddressIsCaseInsensitive(t *testing.T) {
	store := setupTestStorage(t)
	seedEntities(t, store)
	r := setupRouter()

	w, body := doRequest(t, r, "/accounts/0x00000000000000000000000000000000000A11CE")
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, testAlice, data["id"])
}

func TestGetAccounts(t *testing.T) {
	store := setupTestStorage(t)
	seedEntities(t, store)
	r := setupRouter()

	w, body := doRequest(t, r, "/accounts?orderBy=totalSent&orderDirection=desc")
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, testAlice, first["id"])
}

func TestGetAccountsInvalidOrderBy(t *testing.T) {
	setupTestStorage(t)
	r := setupRouter()

	w, _ := doRequest(t, r, "/accounts?orderBy=balance")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTransfers(t *testing.T) {
	store := setupTestStorage(t)
	seedEntities(t, store)
	r := setupRouter()

	w, body := doRequest(t, r, "/transfers?orderBy=value&orderDirection=desc")
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "0xtx2-1", first["id"])
	assert.Equal(t, "200", first["value"])
	assert.Equal(t, testAlice, first["from"])
	assert.Equal(t, testBob, first["to"])
	assert.Equal(t, "1700000002", first["timestamp"])
	assert.Equal(t, float64(1), first["logIndex"])
}

func TestGetTransfersWhereFilters(t *testing.T) {
	store := setupTestStorage(t)
	seedEntities(t, store)
	r := setupRouter()

	w, body := doRequest(t, r, "/transfers?where_value_gt=100")
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "0xtx2-1", data[0].(map[string]interface{})["id"])

	w, body = doRequest(t, r, "/transfers?where_from_not="+testAlice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["data"])

	w, _ = doRequest(t, r, "/transfers?where_balance=1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, r, "/transfers?where_from=banana")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, r, "/transfers?where_value_gt=banana")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAccountTransfers(t *testing.T) {
	store := setupTestStorage(t)
	seedEntities(t, store)
	r := setupRouter()

	w, body := doRequest(t, r, "/accounts/"+testAlice+"/transfers")
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].([]interface{})
	assert.Len(t, data, 2)

	w, body = doRequest(t, r, "/accounts/"+testAlice+"/transfers?direction=received")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["data"])

	w, body = doRequest(t, r, "/accounts/"+testBob+"/transfers?direction=received")
	require.Equal(t, http.StatusOK, w.Code)
	data = body["data"].([]interface{})
	assert.Len(t, data, 2)

	w, _ = doRequest(t, r, "/accounts/"+testAlice+"/transfers?direction=sideways")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
