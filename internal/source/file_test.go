package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "github.com/tokengraph/indexer/configs"
)

func writeEventsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transfers.ndjson")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileSourceReadsEventsInOrder(t *testing.T) {
	path := writeEventsFile(t, `{"from_address":"0x00000000000000000000000000000000000a11ce","to_address":"0x0000000000000000000000000000000000000b0b","value":"100","transaction_hash":"0xTX1","log_index":0,"block_timestamp":"1700000001"}
{"from_address":"0x0000000000000000000000000000000000000b0b","to_address":"0x00000000000000000000000000000000000a11ce","value":"4273064450700601552394449","transaction_hash":"0xtx2","log_index":3,"block_timestamp":"1700000002"}
`)

	src, err := NewFileSource("", &config.FileSourceConfig{Path: path})
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, path, src.Name())

	event, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), event.Sequence)
	assert.Equal(t, "0x00000000000000000000000000000000000a11ce", event.FromAddress)
	assert.Equal(t, "100", event.Value.String())
	assert.Equal(t, "0xtx1", event.TransactionHash)

	event, err = src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), event.Sequence)
	assert.Equal(t, "4273064450700601552394449", event.Value.String())
	assert.Equal(t, uint64(3), event.LogIndex)
	assert.Equal(t, "1700000002", event.BlockTimestamp.String())

	_, err = src.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestFileSourceSkipsEmptyLines(t *testing.T) {
	path := writeEventsFile(t, `{"from_address":"0x00000000000000000000000000000000000a11ce","to_address":"0x0000000000000000000000000000000000000b0b","value":"1","transaction_hash":"0xtx1","log_index":0,"block_timestamp":"1700000001"}

{"from_address":"0x00000000000000000000000000000000000a11ce","to_address":"0x0000000000000000000000000000000000000b0b","value":"2","transaction_hash":"0xtx2","log_index":0,"block_timestamp":"1700000002"}
`)

	src, err := NewFileSource("transfers", &config.FileSourceConfig{Path: path})
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, "transfers", src.Name())

	event, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), event.Sequence)

	// The blank line consumes sequence 2 but yields no event.
	event, err = src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), event.Sequence)
	assert.Equal(t, "2", event.Value.String())

	_, err = src.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestFileSourceMalformedLine(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "invalid json", content: "{not json}\n"},
		{name: "bad value", content: `{"from_address":"0x00000000000000000000000000000000000a11ce","to_address":"0x0000000000000000000000000000000000000b0b","value":"1.5","transaction_hash":"0xtx1","log_index":0,"block_timestamp":"1700000001"}` + "\n"},
		{name: "bad address", content: `{"from_address":"banana","to_address":"0x0000000000000000000000000000000000000b0b","value":"1","transaction_hash":"0xtx1","log_index":0,"block_timestamp":"1700000001"}` + "\n"},
		{name: "missing timestamp", content: `{"from_address":"0x00000000000000000000000000000000000a11ce","to_address":"0x0000000000000000000000000000000000000b0b","value":"1","transaction_hash":"0xtx1","log_index":0,"block_timestamp":""}` + "\n"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			path := writeEventsFile(t, tt.content)
			src, err := NewFileSource("", &config.FileSourceConfig{Path: path})
			require.NoError(t, err)
			defer src.Close()

			_, err = src.Next(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestFileSourceContextCancellation(t *testing.T) {
	path := writeEventsFile(t, `{"from_address":"0x00000000000000000000000000000000000a11ce","to_address":"0x0000000000000000000000000000000000000b0b","value":"1","transaction_hash":"0xtx1","log_index":0,"block_timestamp":"1700000001"}
`)

	src, err := NewFileSource("", &config.FileSourceConfig{Path: path})
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = src.Next(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestNewSourceRequiresDriver(t *testing.T) {
	_, err := NewSource(&config.SourceConfig{})
	assert.Error(t, err)
}
