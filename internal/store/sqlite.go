package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed export output
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a new Store, opening the SQLite database and running migrations
func New(dbPath string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// An in-memory database lives only as long as its single connection.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		logger: logger,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug("store initialized", "path", dbPath)
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// ============================================================================
// Payload Operations
// ============================================================================

// SavePayload inserts the batch metadata and sets its ID
func (s *Store) SavePayload(rec *PayloadRecord) error {
	const query = `
		INSERT INTO payloads (version, batch_size, batch_index, batch_id, exported_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query, rec.Version, rec.BatchSize, rec.BatchIndex, rec.BatchID, rec.ExportedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payload: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	rec.ID = id
	return nil
}

// ============================================================================
// Account Operations
// ============================================================================

// UpsertAccount inserts an account, or replaces the row of an account with the
// same name while keeping its original position.
func (s *Store) UpsertAccount(acc *Account) error {
	const query = `
		INSERT INTO accounts (name, issuer, type, value, payload_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			issuer = excluded.issuer,
			type = excluded.type,
			value = excluded.value,
			payload_id = excluded.payload_id
	`

	if _, err := s.db.Exec(query, acc.Name, acc.Issuer, acc.Type, acc.Value, acc.PayloadID); err != nil {
		return fmt.Errorf("failed to upsert account %q: %w", acc.Name, err)
	}

	if err := s.db.QueryRow("SELECT position FROM accounts WHERE name = ?", acc.Name).Scan(&acc.Position); err != nil {
		return fmt.Errorf("failed to read account position: %w", err)
	}
	return nil
}

// ListAccounts returns all accounts in insertion order
func (s *Store) ListAccounts() ([]Account, error) {
	const query = `
		SELECT position, name, issuer, type, value, payload_id
		FROM accounts ORDER BY position
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var acc Account
		if err := rows.Scan(&acc.Position, &acc.Name, &acc.Issuer, &acc.Type, &acc.Value, &acc.PayloadID); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}
