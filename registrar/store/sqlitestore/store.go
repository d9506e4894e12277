// Package sqlitestore implements the registrar persistence port on an
// embedded single-file SQLite database. The schema is self-initialized at
// startup; timestamps are stored as UTC RFC3339Nano text so lexicographic
// ordering equals chronological ordering.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/screwyprof/valreg/pkg/clock"
	"github.com/screwyprof/valreg/registrar"
)

const timeLayout = time.RFC3339Nano

// Audit listing cap mandated by the port contract.
const auditLimit = 100

const requestColumns = `id, moniker, identity, website, security_contact, details,
	pubkey, signature, commission_rate, withdrawal_fee,
	operator_name, operator_email, operator_wallet, operator_telegram,
	status, network, validator_address, creation_tx_hash, creation_tx_date,
	transfer_tx_hash, transfer_tx_date, notes, reviewer, review_date,
	request_date, last_updated`

const transactionColumns = `id, request_id, tx_hash, tx_type, from_address, to_address,
	value, gas_used, status, network, created_date`

const auditColumns = `id, user_id, action, request_id, details, ip_address, created_date`

// Option configures the Store
// ------------------------------------------------
type Option func(*Store)

// WithClock injects a custom clock (e.g., for testing)
func WithClock(c registrar.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// Store implements registrar.Store on database/sql with the modernc SQLite
// driver.
type Store struct {
	db    *sql.DB
	clock registrar.Clock
}

// New creates a new SQLite store over an open database handle.
// Returns the store and a closer function.
func New(db *sql.DB, opts ...Option) (*Store, func()) {
	store := &Store{
		db:    db,
		clock: clock.SystemClock{},
	}
	for _, opt := range opts {
		opt(store)
	}
	closer := func() {
		_ = db.Close()
	}
	return store, closer
}

// InitSchema creates the three tables and their indexes if absent. The
// embedded backend owns its schema; the networked backend defers to the
// migrator instead.
func (s *Store) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS delegation_requests (
			id TEXT PRIMARY KEY,
			moniker TEXT NOT NULL,
			identity TEXT,
			website TEXT,
			security_contact TEXT,
			details TEXT,
			pubkey TEXT NOT NULL UNIQUE,
			signature TEXT NOT NULL,
			commission_rate TEXT NOT NULL,
			withdrawal_fee TEXT NOT NULL,
			operator_name TEXT NOT NULL,
			operator_email TEXT NOT NULL,
			operator_wallet TEXT NOT NULL,
			operator_telegram TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			network TEXT NOT NULL DEFAULT 'mainnet',
			validator_address TEXT,
			creation_tx_hash TEXT,
			creation_tx_date TEXT,
			transfer_tx_hash TEXT,
			transfer_tx_date TEXT,
			notes TEXT,
			reviewer TEXT,
			review_date TEXT,
			request_date TEXT NOT NULL,
			last_updated TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			tx_hash TEXT NOT NULL,
			tx_type TEXT NOT NULL,
			from_address TEXT,
			to_address TEXT,
			value TEXT,
			gas_used TEXT,
			status TEXT NOT NULL,
			network TEXT NOT NULL,
			created_date TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			action TEXT NOT NULL,
			request_id TEXT,
			details TEXT,
			ip_address TEXT,
			created_date TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_status ON delegation_requests(status)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_network ON delegation_requests(network)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_request ON transactions(request_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_request ON audit_log(request_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return storageErr("init schema", err)
		}
	}
	return nil
}

// CreateRequest persists a new request with status "pending" and the network
// defaulting to "mainnet". The pubkey unique index is the authoritative
// duplicate guard; its violation surfaces as registrar.ErrDuplicateKey.
func (s *Store) CreateRequest(ctx context.Context, id string, fields registrar.NewRequest) (registrar.DelegationRequest, error) {
	network := fields.Network
	if network == "" {
		network = registrar.NetworkMainnet
	}
	now := s.formatNow()

	query := `
		INSERT INTO delegation_requests (
			id, moniker, identity, website, security_contact, details,
			pubkey, signature, commission_rate, withdrawal_fee,
			operator_name, operator_email, operator_wallet, operator_telegram,
			status, network, request_date, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		id,
		fields.Moniker,
		nullIfEmpty(fields.Identity),
		nullIfEmpty(fields.Website),
		nullIfEmpty(fields.SecurityContact),
		nullIfEmpty(fields.Details),
		fields.Pubkey,
		fields.Signature,
		fields.CommissionRate,
		fields.WithdrawalFee,
		fields.OperatorName,
		fields.OperatorEmail,
		fields.OperatorWallet,
		nullIfEmpty(fields.OperatorTelegram),
		string(registrar.StatusPending),
		string(network),
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return registrar.DelegationRequest{}, registrar.ErrDuplicateKey
		}
		return registrar.DelegationRequest{}, storageErr("create request", err)
	}

	return s.GetRequest(ctx, id)
}

// GetRequest fetches one request by id.
func (s *Store) GetRequest(ctx context.Context, id string) (registrar.DelegationRequest, error) {
	query := "SELECT " + requestColumns + " FROM delegation_requests WHERE id = ?"

	req, err := scanRequest(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return registrar.DelegationRequest{}, registrar.ErrNotFound
	}
	if err != nil {
		return registrar.DelegationRequest{}, storageErr("get request", err)
	}
	return req, nil
}

// ListRequests returns requests matching the filter, newest first.
func (s *Store) ListRequests(ctx context.Context, filter registrar.Filter) ([]registrar.DelegationRequest, error) {
	query := "SELECT " + requestColumns + " FROM delegation_requests"
	var conditions []string
	var args []any

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Network != "" {
		conditions = append(conditions, "network = ?")
		args = append(args, string(filter.Network))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY request_date DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list requests", err)
	}
	defer rows.Close()

	var out []registrar.DelegationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, storageErr("list requests", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list requests", err)
	}
	return out, nil
}

// UpdateStatus writes the status and review metadata, stamping review_date
// and last_updated.
func (s *Store) UpdateStatus(ctx context.Context, id string, status registrar.Status, review registrar.ReviewUpdate) (registrar.DelegationRequest, error) {
	now := s.formatNow()

	query := `
		UPDATE delegation_requests
		SET status = ?, notes = ?, reviewer = ?, review_date = ?, last_updated = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		string(status),
		nullIfEmpty(review.Notes),
		nullIfEmpty(review.Reviewer),
		now,
		now,
		id,
	)
	if err != nil {
		return registrar.DelegationRequest{}, storageErr("update status", err)
	}
	if err := requireOneRow(result); err != nil {
		return registrar.DelegationRequest{}, err
	}

	return s.GetRequest(ctx, id)
}

// MergeTransactionFields overwrites the supplied transaction fields, stamping
// the matching tx date for each supplied hash and bumping last_updated.
// Fields already set are overwritten: last write wins.
func (s *Store) MergeTransactionFields(ctx context.Context, id string, fields registrar.TxFields) (registrar.DelegationRequest, error) {
	now := s.formatNow()

	var updates []string
	var args []any

	if fields.ValidatorAddress != "" {
		updates = append(updates, "validator_address = ?")
		args = append(args, fields.ValidatorAddress)
	}
	if fields.CreationTxHash != "" {
		updates = append(updates, "creation_tx_hash = ?", "creation_tx_date = ?")
		args = append(args, fields.CreationTxHash, now)
	}
	if fields.TransferTxHash != "" {
		updates = append(updates, "transfer_tx_hash = ?", "transfer_tx_date = ?")
		args = append(args, fields.TransferTxHash, now)
	}
	updates = append(updates, "last_updated = ?")
	args = append(args, now, id)

	query := "UPDATE delegation_requests SET " + strings.Join(updates, ", ") + " WHERE id = ?"

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return registrar.DelegationRequest{}, storageErr("merge transaction fields", err)
	}
	if err := requireOneRow(result); err != nil {
		return registrar.DelegationRequest{}, err
	}

	return s.GetRequest(ctx, id)
}

// DeleteRequest removes one request and reports the rows removed. Unknown
// ids remove zero rows without error. Transactions and audit entries are
// deliberately not cascaded.
func (s *Store) DeleteRequest(ctx context.Context, id string) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM delegation_requests WHERE id = ?", id)
	if err != nil {
		return 0, storageErr("delete request", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, storageErr("delete request", err)
	}
	return count, nil
}

// AddTransaction appends one immutable transaction record.
func (s *Store) AddTransaction(ctx context.Context, rec registrar.TransactionRecord) (registrar.TransactionRecord, error) {
	now := s.clock.Now().UTC()

	query := `
		INSERT INTO transactions (
			request_id, tx_hash, tx_type, from_address, to_address,
			value, gas_used, status, network, created_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		rec.RequestID,
		rec.TxHash,
		rec.TxType,
		nullIfEmpty(rec.FromAddress),
		nullIfEmpty(rec.ToAddress),
		nullIfEmpty(rec.Value),
		nullIfEmpty(rec.GasUsed),
		rec.Status,
		string(rec.Network),
		now.Format(timeLayout),
	)
	if err != nil {
		return registrar.TransactionRecord{}, storageErr("add transaction", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return registrar.TransactionRecord{}, storageErr("add transaction", err)
	}

	rec.ID = id
	rec.CreatedDate = now
	return rec, nil
}

// ListTransactions returns a request's transaction records, newest first.
func (s *Store) ListTransactions(ctx context.Context, requestID string) ([]registrar.TransactionRecord, error) {
	query := "SELECT " + transactionColumns +
		" FROM transactions WHERE request_id = ? ORDER BY created_date DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, storageErr("list transactions", err)
	}
	defer rows.Close()

	var out []registrar.TransactionRecord
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, storageErr("list transactions", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list transactions", err)
	}
	return out, nil
}

// AddAuditEntry appends one audit log entry.
func (s *Store) AddAuditEntry(ctx context.Context, entry registrar.AuditEntry) (registrar.AuditEntry, error) {
	now := s.clock.Now().UTC()

	query := `
		INSERT INTO audit_log (user_id, action, request_id, details, ip_address, created_date)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		entry.Actor,
		entry.Action,
		nullIfEmpty(entry.RequestID),
		nullIfEmpty(entry.Details),
		nullIfEmpty(entry.IPAddress),
		now.Format(timeLayout),
	)
	if err != nil {
		return registrar.AuditEntry{}, storageErr("add audit entry", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return registrar.AuditEntry{}, storageErr("add audit entry", err)
	}

	entry.ID = id
	entry.CreatedDate = now
	return entry, nil
}

// ListAuditEntries returns the most recent audit entries, newest first,
// capped at 100, optionally filtered by request id.
func (s *Store) ListAuditEntries(ctx context.Context, requestID string) ([]registrar.AuditEntry, error) {
	query := "SELECT " + auditColumns + " FROM audit_log"
	var args []any

	if requestID != "" {
		query += " WHERE request_id = ?"
		args = append(args, requestID)
	}
	query += fmt.Sprintf(" ORDER BY created_date DESC, id DESC LIMIT %d", auditLimit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list audit entries", err)
	}
	defer rows.Close()

	var out []registrar.AuditEntry
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, storageErr("list audit entries", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list audit entries", err)
	}
	return out, nil
}

func (s *Store) formatNow() string {
	return s.clock.Now().UTC().Format(timeLayout)
}

// requireOneRow maps a zero-row UPDATE to registrar.ErrNotFound.
func requireOneRow(result sql.Result) error {
	count, err := result.RowsAffected()
	if err != nil {
		return storageErr("rows affected", err)
	}
	if count == 0 {
		return registrar.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
		code == sqlite3.SQLITE_CONSTRAINT
}

func storageErr(op string, err error) error {
	return registrar.StorageFailure(fmt.Errorf("%s: %w", op, err))
}

// compile-time interface check
var _ registrar.Store = (*Store)(nil)
