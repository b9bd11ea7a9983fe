package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/common"
	"github.com/tokengraph/indexer/internal/metrics"
)

type ClickHouseConnector struct {
	conn clickhouse.Conn
	cfg  *config.ClickhouseConfig
}

func NewClickHouseConnector(cfg *config.ClickhouseConfig) (*ClickHouseConnector, error) {
	conn, err := connectDB(cfg)
	if err != nil {
		return nil, err
	}
	c := &ClickHouseConnector{
		conn: conn,
		cfg:  cfg,
	}
	if err := c.createTablesIfNotExist(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return c, nil
}

func connectDB(cfg *config.ClickhouseConfig) (clickhouse.Conn, error) {
	if cfg.Port == 0 {
		return nil, fmt.Errorf("invalid clickhouse port: %d", cfg.Port)
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr:     []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Protocol: clickhouse.Native,
		TLS: func() *tls.Config {
			if cfg.DisableTLS {
				return nil
			}
			return &tls.Config{}
		}(),
		Auth: clickhouse.Auth{
			Username: cfg.Username,
			Password: cfg.Password,
			Database: cfg.Database,
		},
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	return conn, nil
}

func (c *ClickHouseConnector) createTablesIfNotExist() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS transfers (
			id String,
			from_address String,
			to_address String,
			value UInt256,
			transaction_hash String,
			log_index UInt64,
			block_timestamp UInt256,
			insert_timestamp DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(insert_timestamp)
		ORDER BY id`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id String,
			total_sent UInt256,
			total_received UInt256,
			sent_count UInt64,
			received_count UInt64,
			insert_timestamp DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(insert_timestamp)
		ORDER BY id`,
	}
	for _, statement := range statements {
		if err := c.conn.Exec(context.Background(), statement); err != nil {
			return err
		}
	}
	return nil
}

func (c *ClickHouseConnector) GetAccount(address string) (*common.Account, error) {
	query := `SELECT id, total_sent, total_received, sent_count, received_count, insert_timestamp
		FROM accounts FINAL WHERE id = ?`
	rows, err := c.conn.Query(context.Background(), query, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	account, err := scanAccount(rows)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *ClickHouseConnector) UpsertAccounts(accounts []common.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	batch, err := c.conn.PrepareBatch(context.Background(),
		`INSERT INTO accounts (id, total_sent, total_received, sent_count, received_count, insert_timestamp)`)
	if err != nil {
		return fmt.Errorf("failed to prepare accounts batch: %w", err)
	}
	now := time.Now()
	for _, account := range accounts {
		err := batch.Append(
			account.ID,
			account.TotalSent,
			account.TotalReceived,
			account.SentCount,
			account.ReceivedCount,
			now,
		)
		if err != nil {
			return err
		}
	}
	if err := batch.Send(); err != nil {
		return err
	}
	metrics.ClickHouseAccountsUpserted.Add(float64(len(accounts)))
	return nil
}

func (c *ClickHouseConnector) InsertTransfers(transfers []common.Transfer) error {
	if len(transfers) == 0 {
		return nil
	}
	batch, err := c.conn.PrepareBatch(context.Background(),
		`INSERT INTO transfers (id, from_address, to_address, value, transaction_hash, log_index, block_timestamp, insert_timestamp)`)
	if err != nil {
		return fmt.Errorf("failed to prepare transfers batch: %w", err)
	}
	now := time.Now()
	for _, transfer := range transfers {
		err := batch.Append(
			transfer.ID,
			transfer.FromAddress,
			transfer.ToAddress,
			transfer.Value,
			transfer.TransactionHash,
			transfer.LogIndex,
			transfer.BlockTimestamp,
			now,
		)
		if err != nil {
			return err
		}
	}
	if err := batch.Send(); err != nil {
		return err
	}
	metrics.ClickHouseTransfersInserted.Add(float64(len(transfers)))
	return nil
}

func (c *ClickHouseConnector) GetAccounts(qf AccountsQueryFilter) (QueryResult[common.Account], error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, total_sent, total_received, sent_count, received_count, insert_timestamp FROM accounts FINAL`)

	args := []interface{}{}
	if len(qf.IDs) > 0 {
		sb.WriteString(" WHERE id IN (?)")
		args = append(args, qf.IDs)
	}

	orderClause, err := buildOrderBy(qf.OrderBy, qf.OrderDirection, AccountOrderColumns)
	if err != nil {
		return QueryResult[common.Account]{}, err
	}
	sb.WriteString(orderClause)
	sb.WriteString(buildLimit(qf.First, qf.Skip))

	rows, err := c.conn.Query(context.Background(), sb.String(), args...)
	if err != nil {
		return QueryResult[common.Account]{}, err
	}
	defer rows.Close()

	result := QueryResult[common.Account]{Data: []common.Account{}}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return QueryResult[common.Account]{}, err
		}
		result.Data = append(result.Data, account)
	}
	return result, nil
}

func (c *ClickHouseConnector) GetTransfers(qf TransfersQueryFilter) (QueryResult[common.Transfer], error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, from_address, to_address, value, transaction_hash, log_index, block_timestamp, insert_timestamp FROM transfers FINAL`)

	conditions := []string{}
	args := []interface{}{}
	if qf.From != "" {
		conditions = append(conditions, "from_address = ?")
		args = append(args, qf.From)
	}
	if qf.To != "" {
		conditions = append(conditions, "to_address = ?")
		args = append(args, qf.To)
	}
	if qf.FromNot != "" {
		conditions = append(conditions, "from_address != ?")
		args = append(args, qf.FromNot)
	}
	if qf.ToNot != "" {
		conditions = append(conditions, "to_address != ?")
		args = append(args, qf.ToNot)
	}
	if qf.TransactionHash != "" {
		conditions = append(conditions, "transaction_hash = ?")
		args = append(args, qf.TransactionHash)
	}
	if qf.ValueGt != nil {
		conditions = append(conditions, "value > ?")
		args = append(args, qf.ValueGt)
	}
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}

	orderClause, err := buildOrderBy(qf.OrderBy, qf.OrderDirection, TransferOrderColumns)
	if err != nil {
		return QueryResult[common.Transfer]{}, err
	}
	sb.WriteString(orderClause)
	sb.WriteString(buildLimit(qf.First, qf.Skip))

	rows, err := c.conn.Query(context.Background(), sb.String(), args...)
	if err != nil {
		return QueryResult[common.Transfer]{}, err
	}
	defer rows.Close()

	result := QueryResult[common.Transfer]{Data: []common.Transfer{}}
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return QueryResult[common.Transfer]{}, err
		}
		result.Data = append(result.Data, transfer)
	}
	return result, nil
}

// buildOrderBy only ever interpolates column names from the allowlist, never
// user input.
func buildOrderBy(orderBy string, orderDirection string, allowed map[string]bool) (string, error) {
	if orderBy == "" {
		orderBy = "id"
	}
	if !allowed[orderBy] {
		return "", fmt.Errorf("cannot order by '%s'", orderBy)
	}
	direction := "ASC"
	if strings.EqualFold(orderDirection, "desc") {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", orderBy, direction), nil
}

func buildLimit(first int, skip int) string {
	if first <= 0 {
		return ""
	}
	if skip > 0 {
		return fmt.Sprintf(" LIMIT %d OFFSET %d", first, skip)
	}
	return fmt.Sprintf(" LIMIT %d", first)
}

func scanAccount(rows driver.Rows) (common.Account, error) {
	var account common.Account
	account.TotalSent = new(big.Int)
	account.TotalReceived = new(big.Int)
	err := rows.Scan(
		&account.ID,
		&account.TotalSent,
		&account.TotalReceived,
		&account.SentCount,
		&account.ReceivedCount,
		&account.InsertTimestamp,
	)
	return account, err
}

func scanTransfer(rows driver.Rows) (common.Transfer, error) {
	var transfer common.Transfer
	transfer.Value = new(big.Int)
	transfer.BlockTimestamp = new(big.Int)
	err := rows.Scan(
		&transfer.ID,
		&transfer.FromAddress,
		&transfer.ToAddress,
		&transfer.Value,
		&transfer.TransactionHash,
		&transfer.LogIndex,
		&transfer.BlockTimestamp,
		&transfer.InsertTimestamp,
	)
	return transfer, err
}

func (c *ClickHouseConnector) Close() error {
	return c.conn.Close()
}
