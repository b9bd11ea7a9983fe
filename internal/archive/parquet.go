package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog/log"
	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/common"
	"github.com/tokengraph/indexer/internal/metrics"
	"github.com/tokengraph/indexer/internal/storage"
)

const DEFAULT_MAX_FILE_SIZE_MB = 512
const DEFAULT_TRANSFERS_PER_BATCH = 5000

// ParquetTransfer is the archive row shape. Big integers are decimal
// strings so values beyond fixed-width column types survive.
type ParquetTransfer struct {
	Id              string `parquet:"id"`
	FromAddress     string `parquet:"from_address"`
	ToAddress       string `parquet:"to_address"`
	Value           string `parquet:"value"`
	TransactionHash string `parquet:"transaction_hash"`
	LogIndex        uint64 `parquet:"log_index"`
	BlockTimestamp  string `parquet:"block_timestamp"`
}

var writerOptions = []parquet.WriterOption{
	parquet.Compression(&parquet.Zstd),
	parquet.DataPageStatistics(true),
	parquet.PageBufferSize(8 * 1024 * 1024), // 8MB pages
}

// Archiver streams transfers out of the entity store into size-rotated
// parquet files and optionally ships them to S3.
type Archiver struct {
	directory         string
	maxFileSize       int64
	transfersPerBatch int
	uploader          *S3Uploader

	file    *os.File
	writer  *parquet.GenericWriter[ParquetTransfer]
	written []string
}

func NewArchiver(cfg *config.ArchiveConfig) (*Archiver, error) {
	directory := cfg.Directory
	if directory == "" {
		directory = os.TempDir()
	}

	maxFileSizeMB := cfg.MaxFileSizeMB
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = DEFAULT_MAX_FILE_SIZE_MB
	}

	transfersPerBatch := cfg.TransfersPerBatch
	if transfersPerBatch <= 0 {
		transfersPerBatch = DEFAULT_TRANSFERS_PER_BATCH
	}

	var uploader *S3Uploader
	if cfg.S3 != nil {
		var err error
		uploader, err = NewS3Uploader(cfg.S3)
		if err != nil {
			return nil, err
		}
	}

	return &Archiver{
		directory:         directory,
		maxFileSize:       maxFileSizeMB * 1024 * 1024,
		transfersPerBatch: transfersPerBatch,
		uploader:          uploader,
	}, nil
}

// Export pages through all transfers in id order and archives them.
func (a *Archiver) Export(store storage.IEntityStore) error {
	skip := 0
	for {
		result, err := store.GetTransfers(storage.TransfersQueryFilter{
			OrderBy: "id",
			First:   a.transfersPerBatch,
			Skip:    skip,
		})
		if err != nil {
			return fmt.Errorf("failed to read transfers for archive: %w", err)
		}
		if len(result.Data) == 0 {
			break
		}

		if err := a.writeBatch(result.Data); err != nil {
			return err
		}
		skip += len(result.Data)
	}

	if err := a.flush(); err != nil {
		return err
	}

	if a.uploader != nil {
		for _, path := range a.written {
			if err := a.uploader.Upload(path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Archiver) writeBatch(transfers []common.Transfer) error {
	if a.file == nil {
		if err := a.rotate(); err != nil {
			return err
		}
	}

	rows := make([]ParquetTransfer, len(transfers))
	for i, transfer := range transfers {
		rows[i] = ParquetTransfer{
			Id:              transfer.ID,
			FromAddress:     transfer.FromAddress,
			ToAddress:       transfer.ToAddress,
			Value:           transfer.Value.String(),
			TransactionHash: transfer.TransactionHash,
			LogIndex:        transfer.LogIndex,
			BlockTimestamp:  transfer.BlockTimestamp.String(),
		}
	}

	if _, err := a.writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	metrics.ArchivedTransfers.Add(float64(len(rows)))

	stat, err := a.file.Stat()
	if err != nil {
		return err
	}
	if stat.Size() >= a.maxFileSize {
		if err := a.flush(); err != nil {
			return err
		}
	}
	return nil
}

func (a *Archiver) rotate() error {
	filename := filepath.Join(a.directory, fmt.Sprintf("transfers-%d.parquet", time.Now().UnixNano()))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	a.file = file
	a.writer = parquet.NewGenericWriter[ParquetTransfer](file, writerOptions...)
	return nil
}

func (a *Archiver) flush() error {
	if a.file == nil {
		return nil
	}
	if err := a.writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	name := a.file.Name()
	if err := a.file.Close(); err != nil {
		return err
	}
	a.written = append(a.written, name)
	a.file = nil
	a.writer = nil
	log.Info().Str("file", name).Msg("Closed parquet archive file")
	return nil
}
