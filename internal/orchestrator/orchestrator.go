package orchestrator

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/mappings"
	"github.com/tokengraph/indexer/internal/metrics"
	"github.com/tokengraph/indexer/internal/publisher"
	"github.com/tokengraph/indexer/internal/source"
	"github.com/tokengraph/indexer/internal/storage"
)

// Orchestrator drains a transfer event source into the entity store, one
// event at a time. Events are applied with sequential read-modify-write
// semantics; there is no parallelism in the apply path.
type Orchestrator struct {
	source    source.ISource
	storage   storage.IStorage
	publisher *publisher.Publisher
	cancel    context.CancelFunc
}

func NewOrchestrator(src source.ISource) (*Orchestrator, error) {
	storage, err := storage.NewStorageConnector(&config.Cfg.Storage)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		source:    src,
		storage:   storage,
		publisher: publisher.GetInstance(),
	}, nil
}

func (o *Orchestrator) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	go func() {
		sig, ok := <-sigChan
		if ok {
			log.Info().Msgf("Received signal %v, initiating graceful shutdown", sig)
			o.cancel()
		}
	}()

	err := o.run(ctx)
	close(sigChan)
	return err
}

func (o *Orchestrator) run(ctx context.Context) error {
	sourceName := o.source.Name()
	cursor, err := o.storage.CursorStorage.GetLastAppliedSequence(sourceName)
	if err != nil {
		return err
	}
	if cursor > 0 {
		log.Info().Str("source", sourceName).Uint64("cursor", cursor).Msg("Resuming from stored cursor")
	}

	applied := 0
	lastApplied := cursor
	for {
		event, err := o.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, context.Canceled) {
			log.Info().Str("source", sourceName).Msg("Event application interrupted")
			break
		}
		if err != nil {
			metrics.EventsFailed.Inc()
			return err
		}

		// Events at or below the cursor were applied in a previous run.
		if event.Sequence <= cursor {
			metrics.EventsSkipped.Inc()
			continue
		}

		handleStart := time.Now()
		transfer, accounts, err := mappings.HandleTransfer(o.storage.MainStorage, event)
		if err != nil {
			metrics.EventsFailed.Inc()
			return err
		}
		metrics.HandleTransferDuration.Observe(time.Since(handleStart).Seconds())
		metrics.EventsProcessed.Inc()
		metrics.LastAppliedSequence.Set(float64(event.Sequence))

		if err := o.publisher.PublishTransfer(transfer, accounts); err != nil {
			log.Error().Err(err).Str("transfer", transfer.ID).Msg("Failed to publish transfer")
		}

		// Account aggregates are read-modify-write; a replayed event would
		// double-count them. The cursor advances with every applied event.
		if err := o.storage.CursorStorage.SetLastAppliedSequence(sourceName, event.Sequence); err != nil {
			return err
		}
		lastApplied = event.Sequence
		applied++
	}

	log.Info().Str("source", sourceName).Int("applied", applied).Uint64("cursor", lastApplied).Msg("Event application finished")
	return nil
}

func (o *Orchestrator) Shutdown() {
	if o.cancel != nil {
		o.cancel()
	}
}
