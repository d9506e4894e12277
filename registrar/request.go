// Package registrar implements the validator delegation request lifecycle:
// intake and validation of onboarding requests, the review workflow, and
// reconciliation of on-chain transaction evidence against each request.
package registrar

import "time"

// DelegationRequest is one validator onboarding attempt, from submission
// through review to on-chain completion.
type DelegationRequest struct {
	ID string `json:"id"`

	// Validator information
	Moniker         string `json:"moniker"`
	Identity        string `json:"identity,omitempty"`
	Website         string `json:"website,omitempty"`
	SecurityContact string `json:"security_contact,omitempty"`
	Details         string `json:"details,omitempty"`

	// Technical details. CommissionRate and WithdrawalFee are opaque decimal
	// strings; their semantics belong to the chain layer.
	Pubkey         string `json:"pubkey"`
	Signature      string `json:"signature"`
	CommissionRate string `json:"commission_rate"`
	WithdrawalFee  string `json:"withdrawal_fee"`

	// Operator contact information
	OperatorName     string `json:"operator_name"`
	OperatorEmail    string `json:"operator_email"`
	OperatorWallet   string `json:"operator_wallet"`
	OperatorTelegram string `json:"operator_telegram,omitempty"`

	// Workflow state
	Status     Status     `json:"status"`
	Network    Network    `json:"network"`
	Notes      string     `json:"notes,omitempty"`
	Reviewer   string     `json:"reviewer,omitempty"`
	ReviewDate *time.Time `json:"review_date,omitempty"`

	// On-chain evidence
	ValidatorAddress string     `json:"validator_address,omitempty"`
	CreationTxHash   string     `json:"creation_tx_hash,omitempty"`
	CreationTxDate   *time.Time `json:"creation_tx_date,omitempty"`
	TransferTxHash   string     `json:"transfer_tx_hash,omitempty"`
	TransferTxDate   *time.Time `json:"transfer_tx_date,omitempty"`

	RequestDate time.Time `json:"request_date"`
	LastUpdated time.Time `json:"last_updated"`
}

// Completed reports whether both on-chain transactions have been observed.
func (r DelegationRequest) Completed() bool {
	return r.CreationTxHash != "" && r.TransferTxHash != ""
}

// NewRequest carries the fields of an inbound request submission.
type NewRequest struct {
	Moniker         string `json:"moniker"`
	Identity        string `json:"identity"`
	Website         string `json:"website"`
	SecurityContact string `json:"security_contact"`
	Details         string `json:"details"`

	Pubkey         string `json:"pubkey"`
	Signature      string `json:"signature"`
	CommissionRate string `json:"commission_rate"`
	WithdrawalFee  string `json:"withdrawal_fee"`

	OperatorName     string `json:"operator_name"`
	OperatorEmail    string `json:"operator_email"`
	OperatorWallet   string `json:"operator_wallet"`
	OperatorTelegram string `json:"operator_telegram"`

	Network Network `json:"network"`

	// Origin is the caller's network address, recorded in the audit trail.
	Origin string `json:"-"`
}

// TransactionRecord is one observed on-chain transaction, written once and
// never mutated.
type TransactionRecord struct {
	ID          int64     `json:"id"`
	RequestID   string    `json:"request_id"`
	TxHash      string    `json:"tx_hash"`
	TxType      string    `json:"tx_type"`
	FromAddress string    `json:"from_address,omitempty"`
	ToAddress   string    `json:"to_address,omitempty"`
	Value       string    `json:"value,omitempty"`
	GasUsed     string    `json:"gas_used,omitempty"`
	Status      string    `json:"status"`
	Network     Network   `json:"network"`
	CreatedDate time.Time `json:"created_date"`
}

// AuditEntry is one append-only record of a state-changing action.
type AuditEntry struct {
	ID          int64     `json:"id"`
	Actor       string    `json:"user_id"`
	Action      string    `json:"action"`
	RequestID   string    `json:"request_id,omitempty"`
	Details     string    `json:"details,omitempty"`
	IPAddress   string    `json:"ip_address,omitempty"`
	CreatedDate time.Time `json:"created_date"`
}

// Evidence is externally supplied transaction evidence for a request.
// Every field is optional; hashes are opaque and never verified here.
type Evidence struct {
	ValidatorAddress string  `json:"validator_address"`
	CreationTxHash   string  `json:"creation_tx_hash"`
	TransferTxHash   string  `json:"transfer_tx_hash"`
	TxHash           string  `json:"tx_hash"`
	TxType           string  `json:"tx_type"`
	FromAddress      string  `json:"from_address"`
	ToAddress        string  `json:"to_address"`
	Value            string  `json:"value"`
	GasUsed          string  `json:"gas_used"`
	Status           string  `json:"status"`
	Network          Network `json:"network"`

	Origin string `json:"-"`
}

// StatusUpdate carries a reviewer's status decision.
type StatusUpdate struct {
	Status   Status `json:"status"`
	Notes    string `json:"notes"`
	Reviewer string `json:"reviewer"`

	Origin string `json:"-"`
}

// Stats aggregates the full request set by status and network.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Completed int `json:"completed"`
	Mainnet   int `json:"mainnet"`
	Testnet   int `json:"testnet"`
	Mock      int `json:"mock"`
}
