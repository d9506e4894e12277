package registrar

import (
	"context"
	"time"
)

// Clock abstracts time for deterministic tests. pkg/clock.SystemClock
// satisfies it in production.
type Clock interface {
	Now() time.Time
}

// Filter narrows a request listing. Zero-valued fields are ignored;
// non-zero fields are ANDed.
type Filter struct {
	Status  Status
	Network Network
}

// ReviewUpdate carries the reviewer metadata stored alongside a status write.
type ReviewUpdate struct {
	Notes    string
	Reviewer string
}

// TxFields are the per-request transaction columns merged by evidence
// submissions. Each field is independently optional; a set field overwrites
// the stored value (last write wins, no conflict detection).
type TxFields struct {
	ValidatorAddress string
	CreationTxHash   string
	TransferTxHash   string
}

// Store is the persistence port. Both backends (embedded SQLite, networked
// PostgreSQL) satisfy it with identical observable behavior: same defaults,
// same ordering, same error taxonomy.
//
// Contract:
//   - CreateRequest persists with status "pending" and network defaulting to
//     "mainnet", and returns ErrDuplicateKey when the pubkey already exists
//     (enforced by a storage-level unique constraint).
//   - GetRequest returns ErrNotFound for an unknown id.
//   - ListRequests returns newest first (request_date descending).
//   - UpdateStatus stamps review_date and last_updated and returns the
//     updated request, or ErrNotFound.
//   - MergeTransactionFields merges the set fields, stamping creation_tx_date
//     or transfer_tx_date when the matching hash is supplied, bumps
//     last_updated, and returns the updated request, or ErrNotFound.
//   - ListTransactions and ListAuditEntries return newest first; audit
//     listing is capped at 100 entries, optionally filtered by request id
//     (empty string means all).
//   - DeleteRequest returns the number of rows removed (0 or 1), never
//     ErrNotFound.
//
// All other failures are reported as ErrStorageFailure wrappers.
type Store interface {
	CreateRequest(ctx context.Context, id string, fields NewRequest) (DelegationRequest, error)
	GetRequest(ctx context.Context, id string) (DelegationRequest, error)
	ListRequests(ctx context.Context, filter Filter) ([]DelegationRequest, error)
	UpdateStatus(ctx context.Context, id string, status Status, review ReviewUpdate) (DelegationRequest, error)
	MergeTransactionFields(ctx context.Context, id string, fields TxFields) (DelegationRequest, error)
	DeleteRequest(ctx context.Context, id string) (int64, error)

	AddTransaction(ctx context.Context, rec TransactionRecord) (TransactionRecord, error)
	ListTransactions(ctx context.Context, requestID string) ([]TransactionRecord, error)

	AddAuditEntry(ctx context.Context, entry AuditEntry) (AuditEntry, error)
	ListAuditEntries(ctx context.Context, requestID string) ([]AuditEntry, error)
}
