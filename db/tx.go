package db

import (
	"context"
	"database/sql"
	"fmt"
	"petcoin/tx"
	"petcoin/util"
	"strings"
	"time"
)

const createTxTable = "CREATE TABLE IF NOT EXISTS `token_tx` (" +
	"`id` BIGINT UNSIGNED NOT NULL AUTO_INCREMENT, " +
	"`tx_hash` CHAR(66) NOT NULL, " +
	"`method` VARCHAR(64) NOT NULL, " +
	"`from` CHAR(42) NOT NULL, " +
	"`to` CHAR(42) NOT NULL, " +
	"`amount` DECIMAL(65,0) NOT NULL DEFAULT 0, " +
	"`release_time` BIGINT NOT NULL DEFAULT 0, " +
	"`status` VARCHAR(16) NOT NULL, " +
	"`error` TEXT, " +
	"`block_number` BIGINT UNSIGNED NOT NULL DEFAULT 0, " +
	"`created_at` DATETIME NOT NULL, " +
	"PRIMARY KEY (`id`), " +
	"KEY `idx_tx_hash` (`tx_hash`), " +
	"KEY `idx_from` (`from`), " +
	"KEY `idx_to` (`to`)" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"

// CreateTables creates the journal table if missing.
func (s *Store) CreateTables(ctx context.Context) error {
	_, err := s.wrappedExec(ctx, createTxTable)
	return err
}

// InsertTx persists a submitted transaction.
func (s *Store) InsertTx(ctx context.Context, r *tx.Record) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	amount := "0"
	if r.Amount != nil {
		amount = r.Amount.String()
	}

	return s.transact(ctx, func(sqlTx *sql.Tx) error {
		const query = "INSERT INTO `token_tx` (`tx_hash`, `method`, `from`, `to`, `amount`, `release_time`, `status`, `error`, `block_number`, `created_at`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		result, err := sqlTx.ExecContext(ctx, query,
			r.TxHash,
			r.Method,
			strings.ToLower(r.From),
			strings.ToLower(r.To),
			amount,
			r.ReleaseTime,
			r.Status,
			r.Error,
			r.BlockNumber,
			r.CreatedAt,
		)
		if err != nil {
			return err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		r.ID = uint(id)

		return nil
	})
}

// UpdateTxStatus records the final status of hash.
func (s *Store) UpdateTxStatus(ctx context.Context, hash string, status string, blockNumber uint64, errMsg string) error {
	const query = "UPDATE `token_tx` SET `status` = ?, `block_number` = ?, `error` = ? WHERE `tx_hash` = ?"
	result, err := s.wrappedExec(ctx, query, status, blockNumber, errMsg, hash)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("no journal record of tx %s", hash)
	}

	return nil
}

// GetTxs returns latest journal records sent from or to address.
func (s *Store) GetTxs(ctx context.Context, address string, limit uint) ([]*tx.Record, error) {
	const query = "SELECT `id`, `tx_hash`, `method`, `from`, `to`, `amount`, `release_time`, `status`, `error`, `block_number`, `created_at` FROM `token_tx` WHERE `from` = ? OR `to` = ? ORDER BY `id` DESC LIMIT ?"

	address = strings.ToLower(address)
	rows, err := s.wrappedQuery(ctx, query, address, address, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*tx.Record{}

	for rows.Next() {
		var r tx.Record
		var amountStr string
		var errMsg sql.NullString

		err := rows.Scan(
			&r.ID,
			&r.TxHash,
			&r.Method,
			&r.From,
			&r.To,
			&amountStr,
			&r.ReleaseTime,
			&r.Status,
			&errMsg,
			&r.BlockNumber,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		r.Error = errMsg.String
		if r.Amount, err = util.StrToBigInt(amountStr); err != nil {
			return nil, err
		}

		result = append(result, &r)
	}

	return result, rows.Err()
}
