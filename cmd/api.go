package cmd

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/handlers"
	"github.com/tokengraph/indexer/internal/middleware"
)

var (
	apiCmd = &cobra.Command{
		Use:   "api",
		Short: "Serve the query API",
		Long:  "Serve account and transfer queries over HTTP",
		Run: func(cmd *cobra.Command, args []string) {
			RunApi(cmd, args)
		},
	}
)

func RunApi(cmd *cobra.Command, args []string) {
	r := gin.New()
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())

	root := r.Group("/")
	{
		root.Use(middleware.Authorization)

		root.GET("/accounts", handlers.GetAccounts)
		root.GET("/accounts/:address", handlers.GetAccountByAddress)
		root.GET("/accounts/:address/transfers", handlers.GetAccountTransfers)

		root.GET("/transfers", handlers.GetTransfers)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	host := config.Cfg.API.Host
	if host == "" {
		host = ":3000"
	}
	if err := r.Run(host); err != nil {
		log.Fatal().Err(err).Msg("Failed to start API server")
	}
}
