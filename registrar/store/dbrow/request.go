// Package dbrow defines database row representations of the registrar
// records and their conversions to the domain model. Optional columns are
// pointers so both backends can round-trip NULLs identically.
package dbrow

import (
	"time"

	"github.com/screwyprof/valreg/registrar"
)

// Request mirrors one row of the delegation_requests table.
type Request struct {
	ID               string     `db:"id"`
	Moniker          string     `db:"moniker"`
	Identity         *string    `db:"identity"`
	Website          *string    `db:"website"`
	SecurityContact  *string    `db:"security_contact"`
	Details          *string    `db:"details"`
	Pubkey           string     `db:"pubkey"`
	Signature        string     `db:"signature"`
	CommissionRate   string     `db:"commission_rate"`
	WithdrawalFee    string     `db:"withdrawal_fee"`
	OperatorName     string     `db:"operator_name"`
	OperatorEmail    string     `db:"operator_email"`
	OperatorWallet   string     `db:"operator_wallet"`
	OperatorTelegram *string    `db:"operator_telegram"`
	Status           string     `db:"status"`
	Network          string     `db:"network"`
	ValidatorAddress *string    `db:"validator_address"`
	CreationTxHash   *string    `db:"creation_tx_hash"`
	CreationTxDate   *time.Time `db:"creation_tx_date"`
	TransferTxHash   *string    `db:"transfer_tx_hash"`
	TransferTxDate   *time.Time `db:"transfer_tx_date"`
	Notes            *string    `db:"notes"`
	Reviewer         *string    `db:"reviewer"`
	ReviewDate       *time.Time `db:"review_date"`
	RequestDate      time.Time  `db:"request_date"`
	LastUpdated      time.Time  `db:"last_updated"`
}

// Domain converts the row to the domain model.
func (r Request) Domain() registrar.DelegationRequest {
	return registrar.DelegationRequest{
		ID:               r.ID,
		Moniker:          r.Moniker,
		Identity:         Deref(r.Identity),
		Website:          Deref(r.Website),
		SecurityContact:  Deref(r.SecurityContact),
		Details:          Deref(r.Details),
		Pubkey:           r.Pubkey,
		Signature:        r.Signature,
		CommissionRate:   r.CommissionRate,
		WithdrawalFee:    r.WithdrawalFee,
		OperatorName:     r.OperatorName,
		OperatorEmail:    r.OperatorEmail,
		OperatorWallet:   r.OperatorWallet,
		OperatorTelegram: Deref(r.OperatorTelegram),
		Status:           registrar.Status(r.Status),
		Network:          registrar.Network(r.Network),
		ValidatorAddress: Deref(r.ValidatorAddress),
		CreationTxHash:   Deref(r.CreationTxHash),
		CreationTxDate:   r.CreationTxDate,
		TransferTxHash:   Deref(r.TransferTxHash),
		TransferTxDate:   r.TransferTxDate,
		Notes:            Deref(r.Notes),
		Reviewer:         Deref(r.Reviewer),
		ReviewDate:       r.ReviewDate,
		RequestDate:      r.RequestDate,
		LastUpdated:      r.LastUpdated,
	}
}

// RequestsToDomain converts a slice of rows to domain requests.
func RequestsToDomain(rows []Request) []registrar.DelegationRequest {
	out := make([]registrar.DelegationRequest, len(rows))
	for i, row := range rows {
		out[i] = row.Domain()
	}
	return out
}

// Transaction mirrors one row of the transactions table.
type Transaction struct {
	ID          int64     `db:"id"`
	RequestID   string    `db:"request_id"`
	TxHash      string    `db:"tx_hash"`
	TxType      string    `db:"tx_type"`
	FromAddress *string   `db:"from_address"`
	ToAddress   *string   `db:"to_address"`
	Value       *string   `db:"value"`
	GasUsed     *string   `db:"gas_used"`
	Status      string    `db:"status"`
	Network     string    `db:"network"`
	CreatedDate time.Time `db:"created_date"`
}

// Domain converts the row to the domain model.
func (t Transaction) Domain() registrar.TransactionRecord {
	return registrar.TransactionRecord{
		ID:          t.ID,
		RequestID:   t.RequestID,
		TxHash:      t.TxHash,
		TxType:      t.TxType,
		FromAddress: Deref(t.FromAddress),
		ToAddress:   Deref(t.ToAddress),
		Value:       Deref(t.Value),
		GasUsed:     Deref(t.GasUsed),
		Status:      t.Status,
		Network:     registrar.Network(t.Network),
		CreatedDate: t.CreatedDate,
	}
}

// TransactionsToDomain converts a slice of rows to domain records.
func TransactionsToDomain(rows []Transaction) []registrar.TransactionRecord {
	out := make([]registrar.TransactionRecord, len(rows))
	for i, row := range rows {
		out[i] = row.Domain()
	}
	return out
}

// AuditEntry mirrors one row of the audit_log table.
type AuditEntry struct {
	ID          int64     `db:"id"`
	Actor       string    `db:"user_id"`
	Action      string    `db:"action"`
	RequestID   *string   `db:"request_id"`
	Details     *string   `db:"details"`
	IPAddress   *string   `db:"ip_address"`
	CreatedDate time.Time `db:"created_date"`
}

// Domain converts the row to the domain model.
func (e AuditEntry) Domain() registrar.AuditEntry {
	return registrar.AuditEntry{
		ID:          e.ID,
		Actor:       e.Actor,
		Action:      e.Action,
		RequestID:   Deref(e.RequestID),
		Details:     Deref(e.Details),
		IPAddress:   Deref(e.IPAddress),
		CreatedDate: e.CreatedDate,
	}
}

// AuditEntriesToDomain converts a slice of rows to domain entries.
func AuditEntriesToDomain(rows []AuditEntry) []registrar.AuditEntry {
	out := make([]registrar.AuditEntry, len(rows))
	for i, row := range rows {
		out[i] = row.Domain()
	}
	return out
}

// NullIfEmpty maps an empty string to NULL for optional text columns.
func NullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref maps NULL back to the empty string.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
