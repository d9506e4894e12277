package registrar

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Audit trail action tags.
const (
	ActionRequestCreated      = "REQUEST_CREATED"
	ActionStatusUpdated       = "STATUS_UPDATED"
	ActionTransactionRecorded = "TRANSACTION_RECORDED"
	ActionRequestDeleted      = "REQUEST_DELETED"
)

// Option configures the Service
// ------------------------------------------------
type Option func(*Service)

// WithNewID injects a custom request id generator (e.g., for testing)
func WithNewID(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// Service drives the delegation request lifecycle on top of the persistence
// port: field validation and duplicate rejection on intake, the review
// workflow, transaction-evidence reconciliation with automatic completion,
// and the audit trail.
type Service struct {
	store Store
	newID func() string
}

// NewService constructs a Service with required dependencies and options.
// By default request ids are random UUIDs.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest validates and persists a new delegation request.
//
// The duplicate-pubkey pre-check here is advisory: two concurrent submissions
// with the same key can both pass it, in which case the storage unique
// constraint decides and the loser still observes ErrDuplicateKey.
func (s *Service) CreateRequest(ctx context.Context, req NewRequest) (DelegationRequest, error) {
	if err := ValidateNewRequest(req); err != nil {
		return DelegationRequest{}, err
	}

	existing, err := s.store.ListRequests(ctx, Filter{})
	if err != nil {
		return DelegationRequest{}, err
	}
	for _, r := range existing {
		if r.Pubkey == req.Pubkey {
			return DelegationRequest{}, ErrDuplicateKey
		}
	}

	created, err := s.store.CreateRequest(ctx, s.newID(), req)
	if err != nil {
		return DelegationRequest{}, err
	}

	err = s.appendAudit(ctx, AuditEntry{
		Actor:     req.OperatorEmail,
		Action:    ActionRequestCreated,
		RequestID: created.ID,
		Details:   fmt.Sprintf("New delegation request from %s", req.OperatorName),
		IPAddress: req.Origin,
	})
	if err != nil {
		return DelegationRequest{}, err
	}

	return created, nil
}

// GetRequest returns a request together with its recorded transactions.
func (s *Service) GetRequest(ctx context.Context, id string) (DelegationRequest, []TransactionRecord, error) {
	req, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return DelegationRequest{}, nil, err
	}

	txs, err := s.store.ListTransactions(ctx, id)
	if err != nil {
		return DelegationRequest{}, nil, err
	}

	return req, txs, nil
}

// ListRequests returns requests matching the filter, newest first.
func (s *Service) ListRequests(ctx context.Context, filter Filter) ([]DelegationRequest, error) {
	return s.store.ListRequests(ctx, filter)
}

// UpdateStatus applies a reviewer's status decision. The status must belong
// to the fixed set; nothing is written otherwise.
func (s *Service) UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (DelegationRequest, error) {
	if !ValidStatus(upd.Status) {
		return DelegationRequest{}, fmt.Errorf("%w: %q", ErrInvalidStatus, upd.Status)
	}

	reviewer := upd.Reviewer
	if reviewer == "" {
		reviewer = DefaultActor
	}

	updated, err := s.store.UpdateStatus(ctx, id, upd.Status, ReviewUpdate{
		Notes:    upd.Notes,
		Reviewer: reviewer,
	})
	if err != nil {
		return DelegationRequest{}, err
	}

	err = s.appendAudit(ctx, AuditEntry{
		Actor:     reviewer,
		Action:    ActionStatusUpdated,
		RequestID: id,
		Details:   fmt.Sprintf("Status changed to %s", upd.Status),
		IPAddress: upd.Origin,
	})
	if err != nil {
		return DelegationRequest{}, err
	}

	return updated, nil
}

// RecordTransaction reconciles transaction evidence into a request:
//
//  1. merge creation/transfer hashes into the request's transaction fields,
//  2. append an immutable transaction record when a raw hash is supplied,
//  3. re-read the persisted request and auto-complete it once both hashes
//     are present (idempotent on resubmission),
//  4. append an audit entry.
//
// The steps are four independent storage round trips, not one atomic unit; a
// failure mid-way leaves earlier effects in place and is reported as-is.
func (s *Service) RecordTransaction(ctx context.Context, id string, ev Evidence) (DelegationRequest, error) {
	if ev.CreationTxHash != "" || ev.TransferTxHash != "" {
		_, err := s.store.MergeTransactionFields(ctx, id, TxFields{
			ValidatorAddress: ev.ValidatorAddress,
			CreationTxHash:   ev.CreationTxHash,
			TransferTxHash:   ev.TransferTxHash,
		})
		if err != nil {
			return DelegationRequest{}, err
		}
	}

	if ev.TxHash != "" {
		rec := TransactionRecord{
			RequestID:   id,
			TxHash:      ev.TxHash,
			TxType:      ev.TxType,
			FromAddress: ev.FromAddress,
			ToAddress:   ev.ToAddress,
			Value:       ev.Value,
			GasUsed:     ev.GasUsed,
			Status:      ev.Status,
			Network:     ev.Network,
		}
		if rec.TxType == "" {
			rec.TxType = TxTypeUnknown
		}
		if rec.Status == "" {
			rec.Status = TxStatusSuccess
		}
		if rec.Network == "" {
			rec.Network = NetworkMainnet
		}
		if _, err := s.store.AddTransaction(ctx, rec); err != nil {
			return DelegationRequest{}, err
		}
	}

	// Completion is decided from the freshly persisted state, not from the
	// evidence just submitted, so resubmitting an already-complete pair
	// re-triggers the same transition harmlessly.
	req, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return DelegationRequest{}, err
	}
	if req.Completed() {
		req, err = s.store.UpdateStatus(ctx, id, StatusCompleted, ReviewUpdate{
			Notes:    CompletedNote,
			Reviewer: SystemActor,
		})
		if err != nil {
			return DelegationRequest{}, err
		}
	}

	err = s.appendAudit(ctx, AuditEntry{
		Actor:     DefaultActor,
		Action:    ActionTransactionRecorded,
		RequestID: id,
		Details:   fmt.Sprintf("Transaction recorded: %s", ev.TxHash),
		IPAddress: ev.Origin,
	})
	if err != nil {
		return DelegationRequest{}, err
	}

	return req, nil
}

// DeleteRequest removes a request and reports how many rows were removed
// (0 or 1). Deleting an unknown id is not an error. Transaction records and
// audit entries referencing the request are deliberately left behind.
func (s *Service) DeleteRequest(ctx context.Context, id, origin string) (int64, error) {
	count, err := s.store.DeleteRequest(ctx, id)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	err = s.appendAudit(ctx, AuditEntry{
		Actor:     DefaultActor,
		Action:    ActionRequestDeleted,
		RequestID: id,
		Details:   fmt.Sprintf("Request %s deleted", id),
		IPAddress: origin,
	})
	if err != nil {
		return count, err
	}

	return count, nil
}

// ListAudit returns the most recent audit entries, newest first, capped at
// the store's limit. An empty requestID returns entries for all requests.
func (s *Service) ListAudit(ctx context.Context, requestID string) ([]AuditEntry, error) {
	return s.store.ListAuditEntries(ctx, requestID)
}

// Stats aggregates the full request set by status and network.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	requests, err := s.store.ListRequests(ctx, Filter{})
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(requests)}
	for _, r := range requests {
		switch r.Status {
		case StatusPending:
			stats.Pending++
		case StatusApproved:
			stats.Approved++
		case StatusRejected:
			stats.Rejected++
		case StatusCompleted:
			stats.Completed++
		}
		switch r.Network {
		case NetworkMainnet:
			stats.Mainnet++
		case NetworkTestnet:
			stats.Testnet++
		case NetworkMock:
			stats.Mock++
		}
	}

	return stats, nil
}

// RequestWithTransactions pairs a request with its transaction history.
type RequestWithTransactions struct {
	Request      DelegationRequest
	Transactions []TransactionRecord
}

// CompletedRequests returns every completed request together with its
// transaction history, newest first.
func (s *Service) CompletedRequests(ctx context.Context) ([]RequestWithTransactions, error) {
	completed, err := s.store.ListRequests(ctx, Filter{Status: StatusCompleted})
	if err != nil {
		return nil, err
	}

	out := make([]RequestWithTransactions, 0, len(completed))
	for _, req := range completed {
		txs, err := s.store.ListTransactions(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, RequestWithTransactions{Request: req, Transactions: txs})
	}

	return out, nil
}

// appendAudit writes one audit entry, substituting the system actor when the
// caller supplied none.
func (s *Service) appendAudit(ctx context.Context, entry AuditEntry) error {
	if entry.Actor == "" {
		entry.Actor = SystemActor
	}
	_, err := s.store.AddAuditEntry(ctx, entry)
	return err
}
