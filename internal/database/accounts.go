package database

import (
	"database/sql"
	"fmt"

	"github.com/dkazakov/invest-aggregator/internal/models"
)

// UpsertAccount records a brokerage account on first sight and reports
// whether a row was created. Idempotent: when the account already exists the
// stored row is returned unchanged, so the first writer owns the account
// regardless of the userID supplied later.
func (db *DB) UpsertAccount(accountID string, userID int) (*models.BrokerageAccount, bool, error) {
	insert := `
		INSERT INTO brokerage_accounts (account_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (account_id) DO NOTHING
	`
	res, err := db.conn.Exec(insert, accountID, userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert brokerage account: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert brokerage account: %w", err)
	}

	query := `
		SELECT account_id, user_id
		FROM brokerage_accounts
		WHERE account_id = $1
	`
	var a models.BrokerageAccount
	if err := db.conn.QueryRow(query, accountID).Scan(&a.AccountID, &a.UserID); err != nil {
		return nil, false, fmt.Errorf("failed to get brokerage account: %w", err)
	}
	return &a, inserted > 0, nil
}

// GetAccountsByUserID returns the brokerage accounts owned by a user.
func (db *DB) GetAccountsByUserID(userID int) ([]*models.BrokerageAccount, error) {
	query := `
		SELECT account_id, user_id
		FROM brokerage_accounts
		WHERE user_id = $1
		ORDER BY account_id ASC
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list brokerage accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.BrokerageAccount
	for rows.Next() {
		var a models.BrokerageAccount
		if err := rows.Scan(&a.AccountID, &a.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan brokerage account: %w", err)
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

// GetAccountByID retrieves one brokerage account.
func (db *DB) GetAccountByID(accountID string) (*models.BrokerageAccount, error) {
	query := `
		SELECT account_id, user_id
		FROM brokerage_accounts
		WHERE account_id = $1
	`
	var a models.BrokerageAccount
	err := db.conn.QueryRow(query, accountID).Scan(&a.AccountID, &a.UserID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("brokerage account not found: %s", accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brokerage account: %w", err)
	}
	return &a, nil
}
