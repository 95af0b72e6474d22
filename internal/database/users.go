package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dkazakov/invest-aggregator/internal/models"
)

// GetUserByAPIToken resolves a user from their session API token.
func (db *DB) GetUserByAPIToken(token string) (*models.User, error) {
	query := `
		SELECT id, email, api_token, tinkoff_token, created_at, updated_at
		FROM users
		WHERE api_token = $1
	`
	return db.scanUser(db.conn.QueryRow(query, token))
}

// GetUserByID retrieves a user by primary key.
func (db *DB) GetUserByID(id int) (*models.User, error) {
	query := `
		SELECT id, email, api_token, tinkoff_token, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return db.scanUser(db.conn.QueryRow(query, id))
}

// UpdateTinkoffToken stores the user's personal invest API token.
func (db *DB) UpdateTinkoffToken(userID int, token string) error {
	query := `
		UPDATE users
		SET tinkoff_token = $2, updated_at = $3
		WHERE id = $1
	`
	res, err := db.conn.Exec(query, userID, token, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update tinkoff token: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update tinkoff token: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found: %d", userID)
	}
	return nil
}

// ListUsersWithTinkoffToken returns every user with a stored invest token,
// for the background sync worker.
func (db *DB) ListUsersWithTinkoffToken() ([]*models.User, error) {
	query := `
		SELECT id, email, api_token, tinkoff_token, created_at, updated_at
		FROM users
		WHERE tinkoff_token IS NOT NULL AND tinkoff_token <> ''
		ORDER BY id ASC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := db.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser inserts a new user.
func (db *DB) CreateUser(u *models.User) error {
	query := `
		INSERT INTO users (email, api_token, tinkoff_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query, u.Email, u.APIToken, u.TinkoffToken, now).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var tinkoffToken sql.NullString

	err := row.Scan(&u.ID, &u.Email, &u.APIToken, &tinkoffToken, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if tinkoffToken.Valid {
		u.TinkoffToken = &tinkoffToken.String
	}
	return &u, nil
}
