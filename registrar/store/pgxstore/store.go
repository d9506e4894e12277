// Package pgxstore implements the registrar persistence port on PostgreSQL
// using pgx. Schema is managed externally by the migrator.
package pgxstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxc "github.com/zolstein/pgx-collect"

	"github.com/screwyprof/valreg/pkg/clock"
	"github.com/screwyprof/valreg/registrar"
	"github.com/screwyprof/valreg/registrar/store/dbrow"
)

// PostgreSQL unique_violation SQLSTATE.
const uniqueViolationCode = "23505"

// Audit listing cap mandated by the port contract.
const auditLimit = 100

// Option configures the Store
// ------------------------------------------------
type Option func(*Store)

// WithClock injects a custom clock (e.g., for testing)
func WithClock(c registrar.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// Store implements registrar.Store using pgx
type Store struct {
	pool  *pgxpool.Pool
	clock registrar.Clock
}

// New creates a new PostgreSQL store with an existing connection pool.
// Returns the store and a closer function.
func New(pool *pgxpool.Pool, opts ...Option) (*Store, func()) {
	store := &Store{
		pool:  pool,
		clock: clock.SystemClock{},
	}
	for _, opt := range opts {
		opt(store)
	}
	closer := func() {
		pool.Close()
	}
	return store, closer
}

// CreateRequest persists a new request with status "pending" and the network
// defaulting to "mainnet". The pubkey unique constraint is the authoritative
// duplicate guard; its violation surfaces as registrar.ErrDuplicateKey.
func (s *Store) CreateRequest(ctx context.Context, id string, fields registrar.NewRequest) (registrar.DelegationRequest, error) {
	network := fields.Network
	if network == "" {
		network = registrar.NetworkMainnet
	}
	now := s.clock.Now().UTC()

	query := `
		INSERT INTO delegation_requests (
			id, moniker, identity, website, security_contact, details,
			pubkey, signature, commission_rate, withdrawal_fee,
			operator_name, operator_email, operator_wallet, operator_telegram,
			status, network, request_date, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
		RETURNING ` + requestColumns

	rows, err := s.pool.Query(ctx, query,
		id,
		fields.Moniker,
		dbrow.NullIfEmpty(fields.Identity),
		dbrow.NullIfEmpty(fields.Website),
		dbrow.NullIfEmpty(fields.SecurityContact),
		dbrow.NullIfEmpty(fields.Details),
		fields.Pubkey,
		fields.Signature,
		fields.CommissionRate,
		fields.WithdrawalFee,
		fields.OperatorName,
		fields.OperatorEmail,
		fields.OperatorWallet,
		dbrow.NullIfEmpty(fields.OperatorTelegram),
		string(registrar.StatusPending),
		string(network),
		now,
	)
	if err != nil {
		return registrar.DelegationRequest{}, storageErr("create request", err)
	}

	row, err := pgxc.CollectExactlyOneRow(rows, pgxc.RowToStructByName[dbrow.Request])
	if err != nil {
		if isUniqueViolation(err) {
			return registrar.DelegationRequest{}, registrar.ErrDuplicateKey
		}
		return registrar.DelegationRequest{}, storageErr("create request", err)
	}

	return row.Domain(), nil
}

// GetRequest fetches one request by id.
func (s *Store) GetRequest(ctx context.Context, id string) (registrar.DelegationRequest, error) {
	query := "SELECT " + requestColumns + " FROM delegation_requests WHERE id = $1"

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return registrar.DelegationRequest{}, storageErr("get request", err)
	}

	row, err := pgxc.CollectExactlyOneRow(rows, pgxc.RowToStructByName[dbrow.Request])
	if errors.Is(err, pgx.ErrNoRows) {
		return registrar.DelegationRequest{}, registrar.ErrNotFound
	}
	if err != nil {
		return registrar.DelegationRequest{}, storageErr("get request", err)
	}

	return row.Domain(), nil
}

// ListRequests returns requests matching the filter, newest first.
func (s *Store) ListRequests(ctx context.Context, filter registrar.Filter) ([]registrar.DelegationRequest, error) {
	query, args := NewRequestsQuery().ForFilter(filter).Build()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list requests", err)
	}

	collected, err := pgxc.CollectRows(rows, pgxc.RowToStructByName[dbrow.Request])
	if err != nil {
		return nil, storageErr("list requests", err)
	}

	return dbrow.RequestsToDomain(collected), nil
}

// UpdateStatus writes the status and review metadata, stamping review_date
// and last_updated.
func (s *Store) UpdateStatus(ctx context.Context, id string, status registrar.Status, review registrar.ReviewUpdate) (registrar.DelegationRequest, error) {
	now := s.clock.Now().UTC()

	query := `
		UPDATE delegation_requests
		SET status = $1, notes = $2, reviewer = $3, review_date = $4, last_updated = $4
		WHERE id = $5
		RETURNING ` + requestColumns

	rows, err := s.pool.Query(ctx, query,
		string(status),
		dbrow.NullIfEmpty(review.Notes),
		dbrow.NullIfEmpty(review.Reviewer),
		now,
		id,
	)
	if err != nil {
		return registrar.DelegationRequest{}, storageErr("update status", err)
	}

	row, err := pgxc.CollectExactlyOneRow(rows, pgxc.RowToStructByName[dbrow.Request])
	if errors.Is(err, pgx.ErrNoRows) {
		return registrar.DelegationRequest{}, registrar.ErrNotFound
	}
	if err != nil {
		return registrar.DelegationRequest{}, storageErr("update status", err)
	}

	return row.Domain(), nil
}

// MergeTransactionFields overwrites the supplied transaction fields, stamping
// the matching tx date for each supplied hash and bumping last_updated.
// Fields already set are overwritten: last write wins.
func (s *Store) MergeTransactionFields(ctx context.Context, id string, fields registrar.TxFields) (registrar.DelegationRequest, error) {
	now := s.clock.Now().UTC()

	var updates []string
	var args []any

	next := func(v any) int {
		args = append(args, v)
		return len(args)
	}

	if fields.ValidatorAddress != "" {
		updates = append(updates, fmt.Sprintf("validator_address = $%d", next(fields.ValidatorAddress)))
	}
	if fields.CreationTxHash != "" {
		updates = append(updates, fmt.Sprintf("creation_tx_hash = $%d", next(fields.CreationTxHash)))
		updates = append(updates, fmt.Sprintf("creation_tx_date = $%d", next(now)))
	}
	if fields.TransferTxHash != "" {
		updates = append(updates, fmt.Sprintf("transfer_tx_hash = $%d", next(fields.TransferTxHash)))
		updates = append(updates, fmt.Sprintf("transfer_tx_date = $%d", next(now)))
	}
	updates = append(updates, fmt.Sprintf("last_updated = $%d", next(now)))

	query := "UPDATE delegation_requests SET " + strings.Join(updates, ", ") +
		fmt.Sprintf(" WHERE id = $%d RETURNING ", next(id)) + requestColumns

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return registrar.DelegationRequest{}, storageErr("merge transaction fields", err)
	}

	row, err := pgxc.CollectExactlyOneRow(rows, pgxc.RowToStructByName[dbrow.Request])
	if errors.Is(err, pgx.ErrNoRows) {
		return registrar.DelegationRequest{}, registrar.ErrNotFound
	}
	if err != nil {
		return registrar.DelegationRequest{}, storageErr("merge transaction fields", err)
	}

	return row.Domain(), nil
}

// DeleteRequest removes one request and reports the rows removed. Unknown
// ids remove zero rows without error. Transactions and audit entries are
// deliberately not cascaded.
func (s *Store) DeleteRequest(ctx context.Context, id string) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM delegation_requests WHERE id = $1", id)
	if err != nil {
		return 0, storageErr("delete request", err)
	}
	return tag.RowsAffected(), nil
}

// AddTransaction appends one immutable transaction record.
func (s *Store) AddTransaction(ctx context.Context, rec registrar.TransactionRecord) (registrar.TransactionRecord, error) {
	now := s.clock.Now().UTC()

	query := `
		INSERT INTO transactions (
			request_id, tx_hash, tx_type, from_address, to_address,
			value, gas_used, status, network, created_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + transactionColumns

	rows, err := s.pool.Query(ctx, query,
		rec.RequestID,
		rec.TxHash,
		rec.TxType,
		dbrow.NullIfEmpty(rec.FromAddress),
		dbrow.NullIfEmpty(rec.ToAddress),
		dbrow.NullIfEmpty(rec.Value),
		dbrow.NullIfEmpty(rec.GasUsed),
		rec.Status,
		string(rec.Network),
		now,
	)
	if err != nil {
		return registrar.TransactionRecord{}, storageErr("add transaction", err)
	}

	row, err := pgxc.CollectExactlyOneRow(rows, pgxc.RowToStructByName[dbrow.Transaction])
	if err != nil {
		return registrar.TransactionRecord{}, storageErr("add transaction", err)
	}

	return row.Domain(), nil
}

// ListTransactions returns a request's transaction records, newest first.
func (s *Store) ListTransactions(ctx context.Context, requestID string) ([]registrar.TransactionRecord, error) {
	query := "SELECT " + transactionColumns +
		" FROM transactions WHERE request_id = $1 ORDER BY created_date DESC, id DESC"

	rows, err := s.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, storageErr("list transactions", err)
	}

	collected, err := pgxc.CollectRows(rows, pgxc.RowToStructByName[dbrow.Transaction])
	if err != nil {
		return nil, storageErr("list transactions", err)
	}

	return dbrow.TransactionsToDomain(collected), nil
}

// AddAuditEntry appends one audit log entry.
func (s *Store) AddAuditEntry(ctx context.Context, entry registrar.AuditEntry) (registrar.AuditEntry, error) {
	now := s.clock.Now().UTC()

	query := `
		INSERT INTO audit_log (user_id, action, request_id, details, ip_address, created_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + auditColumns

	rows, err := s.pool.Query(ctx, query,
		entry.Actor,
		entry.Action,
		dbrow.NullIfEmpty(entry.RequestID),
		dbrow.NullIfEmpty(entry.Details),
		dbrow.NullIfEmpty(entry.IPAddress),
		now,
	)
	if err != nil {
		return registrar.AuditEntry{}, storageErr("add audit entry", err)
	}

	row, err := pgxc.CollectExactlyOneRow(rows, pgxc.RowToStructByName[dbrow.AuditEntry])
	if err != nil {
		return registrar.AuditEntry{}, storageErr("add audit entry", err)
	}

	return row.Domain(), nil
}

// ListAuditEntries returns the most recent audit entries, newest first,
// capped at 100, optionally filtered by request id.
func (s *Store) ListAuditEntries(ctx context.Context, requestID string) ([]registrar.AuditEntry, error) {
	query := "SELECT " + auditColumns + " FROM audit_log"
	var args []any

	if requestID != "" {
		query += " WHERE request_id = $1"
		args = append(args, requestID)
	}
	query += fmt.Sprintf(" ORDER BY created_date DESC, id DESC LIMIT %d", auditLimit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list audit entries", err)
	}

	collected, err := pgxc.CollectRows(rows, pgxc.RowToStructByName[dbrow.AuditEntry])
	if err != nil {
		return nil, storageErr("list audit entries", err)
	}

	return dbrow.AuditEntriesToDomain(collected), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func storageErr(op string, err error) error {
	return registrar.StorageFailure(fmt.Errorf("%s: %w", op, err))
}

// compile-time interface check
var _ registrar.Store = (*Store)(nil)
