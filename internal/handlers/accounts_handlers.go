package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/tokengraph/indexer/api"
	"github.com/tokengraph/indexer/internal/common"
	"github.com/tokengraph/indexer/internal/storage"
)

type AccountModel struct {
	Id            string `json:"id"`
	TotalSent     string `json:"totalSent"`
	TotalReceived string `json:"totalReceived"`
	SentCount     uint64 `json:"sentCount"`
	ReceivedCount uint64 `json:"receivedCount"`
}

// GetAccounts handles GET /accounts.
func GetAccounts(c *gin.Context) {
	params, err := api.ParseQueryParams(c.Request)
	if err != nil {
		api.BadRequestErrorHandler(c, err)
		return
	}

	orderBy, err := api.OrderByColumn("accounts", params.OrderBy)
	if err != nil {
		api.BadRequestErrorHandler(c, err)
		return
	}
	if err := api.ValidateOrderDirection(params.OrderDirection); err != nil {
		api.BadRequestErrorHandler(c, err)
		return
	}

	mainStorage, err := getMainStorage()
	if err != nil {
		log.Error().Err(err).Msg("Error getting main storage")
		api.InternalErrorHandler(c)
		return
	}

	accountsResult, err := mainStorage.GetAccounts(storage.AccountsQueryFilter{
		OrderBy:        orderBy,
		OrderDirection: params.OrderDirection,
		First:          params.First,
		Skip:           params.Skip,
	})
	if err != nil {
		log.Error().Err(err).Msg("Error querying accounts")
		api.InternalErrorHandler(c)
		return
	}

	sendJSONResponse(c, api.QueryResponse{
		Meta: api.Meta{
			First: params.First,
			Skip:  params.Skip,
		},
		Data: serializeAccounts(accountsResult.Data),
	})
}

// GetAccountByAddress handles GET /accounts/:address.
func GetAccountByAddress(c *gin.Context) {
	address, err := parseAddressParam(c)
	if err != nil {
		api.BadRequestErrorHandler(c, err)
		return
	}

	mainStorage, err := getMainStorage()
	if err != nil {
		log.Error().Err(err).Msg("Error getting main storage")
		api.InternalErrorHandler(c)
		return
	}

	account, err := mainStorage.GetAccount(address)
	if err != nil {
		log.Error().Err(err).Msg("Error querying account")
		api.InternalErrorHandler(c)
		return
	}
	if account == nil {
		api.NotFoundErrorHandler(c, fmt.Errorf("no account found for address %s", address))
		return
	}

	sendJSONResponse(c, api.QueryResponse{
		Meta: api.Meta{Address: address},
		Data: serializeAccount(*account),
	})
}

// GetAccountTransfers handles GET /accounts/:address/transfers. The
// direction query param selects the derived list: transfers sent by the
// account (default) or received by it. The lists are resolved by reverse
// lookup on the transfer entities, never read from the account record.
func GetAccountTransfers(c *gin.Context) {
	address, err := parseAddressParam(c)
	if err != nil {
		api.BadRequestErrorHandler(c, err)
		return
	}

	params, err := api.ParseQueryParams(c.Request)
	if err != nil {
		api.BadRequestErrorHandler(c, err)
		return
	}

	qf, err := buildTransfersQueryFilter(params)
	if err != nil {
		api.BadRequestErrorHandler(c, err)
		return
	}

	direction := c.DefaultQuery("direction", "sent")
	switch direction {
	case "sent":
		qf.From = address
	case "received":
		qf.To = address
	default:
		api.BadRequestErrorHandler(c, fmt.Errorf("invalid direction '%s', must be 'sent' or 'received'", direction))
		return
	}

	mainStorage, err := getMainStorage()
	if err != nil {
		log.Error().Err(err).Msg("Error getting main storage")
		api.InternalErrorHandler(c)
		return
	}

	transfersResult, err := mainStorage.GetTransfers(*qf)
	if err != nil {
		log.Error().Err(err).Msg("Error querying account transfers")
		api.InternalErrorHandler(c)
		return
	}

	sendJSONResponse(c, api.QueryResponse{
		Meta: api.Meta{
			Address: address,
			First:   params.First,
			Skip:    params.Skip,
		},
		Data: serializeTransfers(transfersResult.Data),
	})
}

func parseAddressParam(c *gin.Context) (string, error) {
	address := c.Param("address")
	if !common.IsValidAddress(address) {
		return "", fmt.Errorf("invalid address '%s'", address)
	}
	return common.NormalizeAddress(address), nil
}

func serializeAccounts(accounts []common.Account) []AccountModel {
	accountModels := make([]AccountModel, len(accounts))
	for i, account := range accounts {
		accountModels[i] = serializeAccount(account)
	}
	return accountModels
}

func serializeAccount(account common.Account) AccountModel {
	return AccountModel{
		Id:            account.ID,
		TotalSent:     account.TotalSent.String(),
		TotalReceived: account.TotalReceived.String(),
		SentCount:     account.SentCount,
		ReceivedCount: account.ReceivedCount,
	}
}
