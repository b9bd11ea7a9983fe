package handlers

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/storage"
)

// package-level variables for shared storage
var (
	mainStorage storage.IEntityStore
	storageOnce sync.Once
	storageErr  error
)

// getMainStorage returns the shared entity store used by all handlers.
func getMainStorage() (storage.IEntityStore, error) {
	storageOnce.Do(func() {
		mainStorage, storageErr = storage.NewConnector[storage.IEntityStore](&config.Cfg.Storage.Main)
		if storageErr != nil {
			log.Error().Err(storageErr).Msg("Error creating storage connector")
		}
	})
	return mainStorage, storageErr
}

func sendJSONResponse(c *gin.Context, response interface{}) {
	c.JSON(200, response)
}
