package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	configs "github.com/tokengraph/indexer/configs"
	customLogger "github.com/tokengraph/indexer/internal/log"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "tokengraph",
		Short: "Token transfer subgraph indexer",
		Long:  "Indexes token transfer events into account and transfer entities and serves them over a query API",
		Run: func(cmd *cobra.Command, args []string) {
			go func() {
				RunOrchestrator(cmd, args)
			}()
			RunApi(cmd, args)
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level to use for the application")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "Whether to prettify the log output")
	rootCmd.PersistentFlags().String("api-host", "", "Host and port for the query API")
	rootCmd.PersistentFlags().Int("api-default-limit", 100, "Default number of items per query")
	rootCmd.PersistentFlags().Int("api-max-limit", 1000, "Maximum number of items per query")
	rootCmd.PersistentFlags().String("source-name", "", "Name of the event source, used for resume cursors")
	rootCmd.PersistentFlags().String("source-file-path", "", "Path to an NDJSON file of transfer events")
	rootCmd.PersistentFlags().Bool("publisher-enabled", false, "Toggle the Kafka publisher")
	rootCmd.PersistentFlags().String("publisher-brokers", "", "Comma separated list of Kafka brokers")
	rootCmd.PersistentFlags().String("storage-main-clickhouse-host", "", "Clickhouse host for main storage")
	rootCmd.PersistentFlags().Int("storage-main-clickhouse-port", 0, "Clickhouse port for main storage")
	rootCmd.PersistentFlags().String("storage-main-clickhouse-database", "", "Clickhouse database for main storage")
	rootCmd.PersistentFlags().String("storage-main-clickhouse-username", "", "Clickhouse username for main storage")
	rootCmd.PersistentFlags().String("storage-main-clickhouse-password", "", "Clickhouse password for main storage")
	rootCmd.PersistentFlags().String("storage-main-badger-path", "", "Badger path for main storage")
	rootCmd.PersistentFlags().Int("storage-main-memory-maxItems", 0, "Max items for main memory storage")
	rootCmd.PersistentFlags().String("storage-cursor-redis-addr", "", "Redis address for cursor storage")
	rootCmd.PersistentFlags().Int("storage-cursor-memory-maxItems", 0, "Max items for cursor memory storage")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))
	viper.BindPFlag("api.host", rootCmd.PersistentFlags().Lookup("api-host"))
	viper.BindPFlag("api.defaultLimit", rootCmd.PersistentFlags().Lookup("api-default-limit"))
	viper.BindPFlag("api.maxLimit", rootCmd.PersistentFlags().Lookup("api-max-limit"))
	viper.BindPFlag("source.name", rootCmd.PersistentFlags().Lookup("source-name"))
	viper.BindPFlag("source.file.path", rootCmd.PersistentFlags().Lookup("source-file-path"))
	viper.BindPFlag("publisher.enabled", rootCmd.PersistentFlags().Lookup("publisher-enabled"))
	viper.BindPFlag("publisher.brokers", rootCmd.PersistentFlags().Lookup("publisher-brokers"))
	viper.BindPFlag("storage.main.clickhouse.host", rootCmd.PersistentFlags().Lookup("storage-main-clickhouse-host"))
	viper.BindPFlag("storage.main.clickhouse.port", rootCmd.PersistentFlags().Lookup("storage-main-clickhouse-port"))
	viper.BindPFlag("storage.main.clickhouse.database", rootCmd.PersistentFlags().Lookup("storage-main-clickhouse-database"))
	viper.BindPFlag("storage.main.clickhouse.username", rootCmd.PersistentFlags().Lookup("storage-main-clickhouse-username"))
	viper.BindPFlag("storage.main.clickhouse.password", rootCmd.PersistentFlags().Lookup("storage-main-clickhouse-password"))
	viper.BindPFlag("storage.main.badger.path", rootCmd.PersistentFlags().Lookup("storage-main-badger-path"))
	viper.BindPFlag("storage.main.memory.maxItems", rootCmd.PersistentFlags().Lookup("storage-main-memory-maxItems"))
	viper.BindPFlag("storage.cursor.redis.addr", rootCmd.PersistentFlags().Lookup("storage-cursor-redis-addr"))
	viper.BindPFlag("storage.cursor.memory.maxItems", rootCmd.PersistentFlags().Lookup("storage-cursor-memory-maxItems"))
	rootCmd.AddCommand(orchestratorCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(exportCmd)
}

func initConfig() {
	configs.LoadConfig(cfgFile)
	customLogger.InitLogger()
}
