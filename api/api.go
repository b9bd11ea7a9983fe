package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/schema"
	"github.com/rs/zerolog/log"
	config "github.com/tokengraph/indexer/configs"
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// QueryParams carries the subgraph-style query surface: orderBy /
// orderDirection / first / skip plus where_* filter params with suffix
// operators (e.g. where_to_not=<addr>).
type QueryParams struct {
	Where          map[string]string `schema:"-"`
	OrderBy        string            `schema:"orderBy"`
	OrderDirection string            `schema:"orderDirection"`
	First          int               `schema:"first"`
	Skip           int               `schema:"skip"`
}

type Meta struct {
	Address string `json:"address,omitempty"`
	First   int    `json:"first"`
	Skip    int    `json:"skip"`
}

type QueryResponse struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data,omitempty"`
}

func writeError(c *gin.Context, message string, code int) {
	resp := Error{
		Code:    code,
		Message: message,
	}
	c.JSON(code, resp)
}

var (
	BadRequestErrorHandler = func(c *gin.Context, err error) {
		writeError(c, err.Error(), http.StatusBadRequest)
	}
	NotFoundErrorHandler = func(c *gin.Context, err error) {
		writeError(c, err.Error(), http.StatusNotFound)
	}
	InternalErrorHandler = func(c *gin.Context) {
		writeError(c, "An unexpected error occurred.", http.StatusInternalServerError)
	}
	UnauthorizedErrorHandler = func(c *gin.Context, err error) {
		writeError(c, err.Error(), http.StatusUnauthorized)
	}
)

func ParseQueryParams(r *http.Request) (QueryParams, error) {
	var params QueryParams
	rawQueryParams := r.URL.Query()
	params.Where = make(map[string]string)
	for key, values := range rawQueryParams {
		if strings.HasPrefix(key, "where_") {
			strippedKey := strings.TrimPrefix(key, "where_")
			params.Where[strippedKey] = values[0]
			delete(rawQueryParams, key)
		}
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	if err := decoder.Decode(&params, rawQueryParams); err != nil {
		log.Error().Err(err).Msg("Error parsing query params")
		return QueryParams{}, err
	}

	params.First = clampFirst(params.First)
	if params.Skip < 0 {
		params.Skip = 0
	}
	return params, nil
}

func clampFirst(first int) int {
	defaultLimit := config.Cfg.API.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 100
	}
	maxLimit := config.Cfg.API.MaxLimit
	if maxLimit <= 0 {
		maxLimit = 1000
	}
	if first <= 0 {
		return defaultLimit
	}
	if first > maxLimit {
		return maxLimit
	}
	return first
}
