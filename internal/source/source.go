package source

import (
	"context"
	"fmt"

	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/common"
)

// ISource yields transfer events in feed order. Next returns io.EOF once the
// feed is exhausted. Each event carries a strictly increasing sequence number
// used for resume cursors.
type ISource interface {
	Name() string
	Next(ctx context.Context) (*common.TransferEvent, error)
	Close()
}

func NewSource(cfg *config.SourceConfig) (ISource, error) {
	if cfg.File != nil {
		return NewFileSource(cfg.Name, cfg.File)
	}
	return nil, fmt.Errorf("no event source configured")
}
