package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/orchestrator"
	"github.com/tokengraph/indexer/internal/source"
)

var (
	orchestratorCmd = &cobra.Command{
		Use:   "orchestrator",
		Short: "Apply transfer events to storage",
		Long:  "Read transfer events from the configured source and apply them to account and transfer entities",
		Run: func(cmd *cobra.Command, args []string) {
			RunOrchestrator(cmd, args)
		},
	}
)

func RunOrchestrator(cmd *cobra.Command, args []string) {
	log.Info().Msg("Starting indexer")
	src, err := source.NewSource(&config.Cfg.Source)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize event source")
	}

	orchestrator, err := orchestrator.NewOrchestrator(src)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create orchestrator")
	}

	if err := orchestrator.Start(); err != nil {
		log.Fatal().Err(err).Msg("Orchestrator stopped with an error")
	}
}
