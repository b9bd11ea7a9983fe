package handlers

import (
	"fmt"
	"math/big"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/tokengraph/indexer/api"
	"github.com/tokengraph/indexer/internal/common"
	"github.com/tokengraph/indexer/internal/storage"
)

// TransferModel mirrors the documented response shape of the transfer
// entity; big integers are serialized as decimal strings.
type TransferModel struct {
	Id              string `json:"id"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	Timestamp       string `json:"timestamp"`
	TransactionHash string `json:"transactionHash"`
	LogIndex        uint64 `json:"logIndex"`
}

// GetTransfers handles GET /transfers. Supported where_* params: from, to,
// from_not, to_not, transaction_hash, value_gt.
func GetTransfers(c *gin.Context) {
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

	mainStorage, err := getMainStorage()
	if err != nil {
		log.Error().Err(err).Msg("Error getting main storage")
		api.InternalErrorHandler(c)
		return
	}

	transfersResult, err := mainStorage.GetTransfers(*qf)
	if err != nil {
		log.Error().Err(err).Msg("Error querying transfers")
		api.InternalErrorHandler(c)
		return
	}

	sendJSONResponse(c, api.QueryResponse{
		Meta: api.Meta{
			First: params.First,
			Skip:  params.Skip,
		},
		Data: serializeTransfers(transfersResult.Data),
	})
}

func buildTransfersQueryFilter(params api.QueryParams) (*storage.TransfersQueryFilter, error) {
	orderBy, err := api.OrderByColumn("transfers", params.OrderBy)
	if err != nil {
		return nil, err
	}
	if err := api.ValidateOrderDirection(params.OrderDirection); err != nil {
		return nil, err
	}

	qf := storage.TransfersQueryFilter{
		OrderBy:        orderBy,
		OrderDirection: params.OrderDirection,
		First:          params.First,
		Skip:           params.Skip,
	}

	for key, value := range params.Where {
		switch key {
		case "from":
			if !common.IsValidAddress(value) {
				return nil, fmt.Errorf("invalid from '%s'", value)
			}
			qf.From = common.NormalizeAddress(value)
		case "to":
			if !common.IsValidAddress(value) {
				return nil, fmt.Errorf("invalid to '%s'", value)
			}
			qf.To = common.NormalizeAddress(value)
		case "from_not":
			if !common.IsValidAddress(value) {
				return nil, fmt.Errorf("invalid from_not '%s'", value)
			}
			qf.FromNot = common.NormalizeAddress(value)
		case "to_not":
			if !common.IsValidAddress(value) {
				return nil, fmt.Errorf("invalid to_not '%s'", value)
			}
			qf.ToNot = common.NormalizeAddress(value)
		case "transaction_hash":
			qf.TransactionHash = common.NormalizeHash(value)
		case "value_gt":
			valueGt, ok := new(big.Int).SetString(value, 10)
			if !ok {
				return nil, fmt.Errorf("invalid value_gt '%s'", value)
			}
			qf.ValueGt = valueGt
		default:
			return nil, fmt.Errorf("unsupported where filter '%s'", key)
		}
	}
	return &qf, nil
}

func serializeTransfers(transfers []common.Transfer) []TransferModel {
	transferModels := make([]TransferModel, len(transfers))
	for i, transfer := range transfers {
		transferModels[i] = serializeTransfer(transfer)
	}
	return transferModels
}

func serializeTransfer(transfer common.Transfer) TransferModel {
	return TransferModel{
		Id:              transfer.ID,
		From:            transfer.FromAddress,
		To:              transfer.ToAddress,
		Value:           transfer.Value.String(),
		Timestamp:       transfer.BlockTimestamp.String(),
		TransactionHash: transfer.TransactionHash,
		LogIndex:        transfer.LogIndex,
	}
}
