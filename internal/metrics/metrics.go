package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Indexer Metrics
var (
	EventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_events_processed_total",
		Help: "The total number of transfer events applied to the entity store",
	})

	EventsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_events_skipped_total",
		Help: "The number of events skipped because they were at or below the resume cursor",
	})

	EventsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_events_failed_total",
		Help: "The number of events rejected by validation or storage",
	})

	LastAppliedSequence = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "indexer_last_applied_sequence",
		Help: "The sequence number of the last applied transfer event",
	})

	HandleTransferDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "indexer_handle_transfer_duration_seconds",
		Help:    "Time taken to apply a single transfer event",
		Buckets: prometheus.DefBuckets,
	})
)

// Mapping Metrics
var (
	AccountsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mappings_accounts_created_total",
		Help: "The number of accounts created lazily on first sight",
	})

	TransfersHandled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mappings_transfers_handled_total",
		Help: "The number of transfer entities written",
	})
)

// Publisher Metrics
var (
	PublisherTransferCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "publisher_transfer_counter",
		Help: "The number of transfer records published",
	})

	PublisherAccountCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "publisher_account_counter",
		Help: "The number of account snapshots published",
	})

	PublishDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "publish_duration_seconds",
		Help:    "Time taken to publish entity updates to Kafka",
		Buckets: prometheus.DefBuckets,
	})
)

// ClickHouse Insert Row Count Metrics
var (
	ClickHouseTransfersInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clickhouse_transfers_inserted_total",
		Help: "The total number of transfer rows inserted into ClickHouse",
	})

	ClickHouseAccountsUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clickhouse_accounts_upserted_total",
		Help: "The total number of account rows upserted into ClickHouse",
	})
)

// Archive Metrics
var (
	ArchivedTransfers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archive_transfers_written_total",
		Help: "The number of transfer rows written to parquet archives",
	})

	ArchiveFilesUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archive_files_uploaded_total",
		Help: "The number of parquet archive files uploaded to S3",
	})
)
