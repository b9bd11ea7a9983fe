package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"

	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/common"
)

// rawTransferEvent is the NDJSON wire shape. Value and block timestamp are
// decimal strings so amounts beyond 2^64 survive the trip.
type rawTransferEvent struct {
	FromAddress     string `json:"from_address"`
	ToAddress       string `json:"to_address"`
	Value           string `json:"value"`
	TransactionHash string `json:"transaction_hash"`
	LogIndex        uint64 `json:"log_index"`
	BlockTimestamp  string `json:"block_timestamp"`
}

// FileSource reads one transfer event per line from an NDJSON file. The line
// number doubles as the event sequence.
type FileSource struct {
	name    string
	file    *os.File
	scanner *bufio.Scanner
	line    uint64
}

func NewFileSource(name string, cfg *config.FileSourceConfig) (*FileSource, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("no path configured for file source")
	}
	file, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if name == "" {
		name = cfg.Path
	}
	return &FileSource{
		name:    name,
		file:    file,
		scanner: scanner,
	}, nil
}

func (s *FileSource) Name() string {
	return s.name
}

func (s *FileSource) Next(ctx context.Context) (*common.TransferEvent, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, fmt.Errorf("failed to read events file: %w", err)
			}
			return nil, io.EOF
		}
		s.line++
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var raw rawTransferEvent
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("malformed event at line %d: %w", s.line, err)
		}
		event, err := s.decode(&raw)
		if err != nil {
			return nil, fmt.Errorf("malformed event at line %d: %w", s.line, err)
		}
		return event, nil
	}
}

func (s *FileSource) decode(raw *rawTransferEvent) (*common.TransferEvent, error) {
	value, ok := new(big.Int).SetString(raw.Value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid value '%s'", raw.Value)
	}
	blockTimestamp, ok := new(big.Int).SetString(raw.BlockTimestamp, 10)
	if !ok {
		return nil, fmt.Errorf("invalid block_timestamp '%s'", raw.BlockTimestamp)
	}

	event := &common.TransferEvent{
		Sequence:        s.line,
		FromAddress:     common.NormalizeAddress(raw.FromAddress),
		ToAddress:       common.NormalizeAddress(raw.ToAddress),
		Value:           value,
		TransactionHash: common.NormalizeHash(raw.TransactionHash),
		LogIndex:        raw.LogIndex,
		BlockTimestamp:  blockTimestamp,
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *FileSource) Close() {
	s.file.Close()
}
