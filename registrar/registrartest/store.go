// Package registrartest provides in-memory test doubles for the registrar
// persistence port.
package registrartest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/screwyprof/valreg/registrar"
)

// AuditLimit mirrors the port's audit listing cap.
const AuditLimit = 100

// TickClock is a deterministic clock that advances by a fixed step on every
// Now call, so consecutive writes get strictly increasing timestamps.
type TickClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewTickClock starts at a fixed instant and advances one second per call.
func NewTickClock() *TickClock {
	return &TickClock{
		now:  time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		step: time.Second,
	}
}

func (c *TickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// Store is an in-memory implementation of registrar.Store honoring the full
// port contract: pubkey uniqueness, creation defaults, timestamp stamping,
// newest-first ordering and the audit cap.
type Store struct {
	mu        sync.Mutex
	clock     registrar.Clock
	requests  map[string]registrar.DelegationRequest
	txs       []registrar.TransactionRecord
	audit     []registrar.AuditEntry
	nextTxID  int64
	nextLogID int64

	// FailWith, when set, makes every operation fail with the given error.
	// Useful for exercising storage-failure paths.
	FailWith error
}

var _ registrar.Store = (*Store)(nil)

// New creates an empty in-memory store driven by a TickClock.
func New() *Store {
	return &Store{
		clock:    NewTickClock(),
		requests: make(map[string]registrar.DelegationRequest),
	}
}

func (s *Store) CreateRequest(ctx context.Context, id string, fields registrar.NewRequest) (registrar.DelegationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return registrar.DelegationRequest{}, s.FailWith
	}

	for _, r := range s.requests {
		if r.Pubkey == fields.Pubkey {
			return registrar.DelegationRequest{}, registrar.ErrDuplicateKey
		}
	}

	network := fields.Network
	if network == "" {
		network = registrar.NetworkMainnet
	}

	now := s.clock.Now()
	req := registrar.DelegationRequest{
		ID:               id,
		Moniker:          fields.Moniker,
		Identity:         fields.Identity,
		Website:          fields.Website,
		SecurityContact:  fields.SecurityContact,
		Details:          fields.Details,
		Pubkey:           fields.Pubkey,
		Signature:        fields.Signature,
		CommissionRate:   fields.CommissionRate,
		WithdrawalFee:    fields.WithdrawalFee,
		OperatorName:     fields.OperatorName,
		OperatorEmail:    fields.OperatorEmail,
		OperatorWallet:   fields.OperatorWallet,
		OperatorTelegram: fields.OperatorTelegram,
		Status:           registrar.StatusPending,
		Network:          network,
		RequestDate:      now,
		LastUpdated:      now,
	}
	s.requests[id] = req
	return req, nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (registrar.DelegationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return registrar.DelegationRequest{}, s.FailWith
	}

	req, ok := s.requests[id]
	if !ok {
		return registrar.DelegationRequest{}, registrar.ErrNotFound
	}
	return req, nil
}

func (s *Store) ListRequests(ctx context.Context, filter registrar.Filter) ([]registrar.DelegationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}

	var out []registrar.DelegationRequest
	for _, r := range s.requests {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Network != "" && r.Network != filter.Network {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RequestDate.After(out[j].RequestDate)
	})
	return out, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status registrar.Status, review registrar.ReviewUpdate) (registrar.DelegationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return registrar.DelegationRequest{}, s.FailWith
	}

	req, ok := s.requests[id]
	if !ok {
		return registrar.DelegationRequest{}, registrar.ErrNotFound
	}

	now := s.clock.Now()
	req.Status = status
	req.Notes = review.Notes
	req.Reviewer = review.Reviewer
	req.ReviewDate = &now
	req.LastUpdated = now
	s.requests[id] = req
	return req, nil
}

func (s *Store) MergeTransactionFields(ctx context.Context, id string, fields registrar.TxFields) (registrar.DelegationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return registrar.DelegationRequest{}, s.FailWith
	}

	req, ok := s.requests[id]
	if !ok {
		return registrar.DelegationRequest{}, registrar.ErrNotFound
	}

	now := s.clock.Now()
	if fields.ValidatorAddress != "" {
		req.ValidatorAddress = fields.ValidatorAddress
	}
	if fields.CreationTxHash != "" {
		req.CreationTxHash = fields.CreationTxHash
		req.CreationTxDate = &now
	}
	if fields.TransferTxHash != "" {
		req.TransferTxHash = fields.TransferTxHash
		req.TransferTxDate = &now
	}
	req.LastUpdated = now
	s.requests[id] = req
	return req, nil
}

func (s *Store) DeleteRequest(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return 0, s.FailWith
	}

	if _, ok := s.requests[id]; !ok {
		return 0, nil
	}
	delete(s.requests, id)
	return 1, nil
}

func (s *Store) AddTransaction(ctx context.Context, rec registrar.TransactionRecord) (registrar.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return registrar.TransactionRecord{}, s.FailWith
	}

	s.nextTxID++
	rec.ID = s.nextTxID
	rec.CreatedDate = s.clock.Now()
	s.txs = append(s.txs, rec)
	return rec, nil
}

func (s *Store) ListTransactions(ctx context.Context, requestID string) ([]registrar.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}

	var out []registrar.TransactionRecord
	for _, tx := range s.txs {
		if tx.RequestID == requestID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedDate.After(out[j].CreatedDate)
	})
	return out, nil
}

func (s *Store) AddAuditEntry(ctx context.Context, entry registrar.AuditEntry) (registrar.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return registrar.AuditEntry{}, s.FailWith
	}

	s.nextLogID++
	entry.ID = s.nextLogID
	entry.CreatedDate = s.clock.Now()
	s.audit = append(s.audit, entry)
	return entry, nil
}

func (s *Store) ListAuditEntries(ctx context.Context, requestID string) ([]registrar.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}

	var out []registrar.AuditEntry
	for _, e := range s.audit {
		if requestID != "" && e.RequestID != requestID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedDate.After(out[j].CreatedDate)
	})
	if len(out) > AuditLimit {
		out = out[:AuditLimit]
	}
	return out, nil
}
