package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/archive"
	"github.com/tokengraph/indexer/internal/storage"
)

var (
	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export transfers to parquet files",
		Long:  "Export all stored transfers to parquet files and optionally upload them to S3",
		Run: func(cmd *cobra.Command, args []string) {
			RunExport(cmd, args)
		},
	}
)

func RunExport(cmd *cobra.Command, args []string) {
	store, err := storage.NewConnector[storage.IEntityStore](&config.Cfg.Storage.Main)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize main storage")
	}
	defer store.Close()

	archiver, err := archive.NewArchiver(&config.Cfg.Archive)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create archiver")
	}

	if err := archiver.Export(store); err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
	log.Info().Msg("Export complete")
}
