package api

import (
	"github.com/screwyprof/valreg/registrar"
)

// DataResponse is the success envelope carrying a payload
type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// MessageResponse is the success envelope for write operations that return
// no payload
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CollectionResponse is the success envelope for the processed-validators
// export, carrying an item count alongside the payload
type CollectionResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    any  `json:"data"`
}

func Data(data any) DataResponse {
	return DataResponse{Success: true, Data: data}
}

func Message(message string) MessageResponse {
	return MessageResponse{Success: true, Message: message}
}

func Collection(count int, data any) CollectionResponse {
	return CollectionResponse{Success: true, Count: count, Data: data}
}

// CreateResult is the payload returned by POST /api/requests
type CreateResult struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// RequestDetail is the payload returned by GET /api/requests/{id}: the
// request together with its recorded transactions
type RequestDetail struct {
	Request      registrar.DelegationRequest   `json:"request"`
	Transactions []registrar.TransactionRecord `json:"transactions"`
}

// ProcessedValidator is one completed request reshaped for the export
// endpoint, grouped into validator/technical/operator/transaction/processing
// sections
type ProcessedValidator struct {
	ID          string            `json:"id"`
	RequestDate string            `json:"request_date"`
	Network     registrar.Network `json:"network"`
	Status      registrar.Status  `json:"status"`

	Validator    ValidatorInfo      `json:"validator"`
	Technical    TechnicalInfo      `json:"technical"`
	Operator     OperatorInfo       `json:"operator"`
	Transactions TransactionHistory `json:"transactions"`
	Processing   ProcessingInfo     `json:"processing"`
}

// ValidatorInfo is the public identity of a processed validator
type ValidatorInfo struct {
	Moniker          string `json:"moniker"`
	Identity         string `json:"identity"`
	Website          string `json:"website"`
	SecurityContact  string `json:"security_contact"`
	Details          string `json:"details"`
	ValidatorAddress string `json:"validator_address"`
}

// TechnicalInfo is the key material and economic parameters of a processed
// validator
type TechnicalInfo struct {
	Pubkey         string `json:"pubkey"`
	Signature      string `json:"signature"`
	CommissionRate string `json:"commission_rate"`
	WithdrawalFee  string `json:"withdrawal_fee"`
}

// OperatorInfo is the operator contact block of a processed validator
type OperatorInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Wallet   string `json:"wallet"`
	Telegram string `json:"telegram"`
}

// TransactionHistory groups the milestone transactions with the full
// transaction log
type TransactionHistory struct {
	CreationTx      TxRef            `json:"creation_tx"`
	TransferTx      TxRef            `json:"transfer_tx"`
	AllTransactions []TxHistoryEntry `json:"all_transactions"`
}

// TxRef is one milestone transaction: its hash and when it was observed
type TxRef struct {
	Hash string `json:"hash"`
	Date string `json:"date"`
}

// TxHistoryEntry is one recorded transaction in the export shape
type TxHistoryEntry struct {
	Hash    string `json:"hash"`
	Type    string `json:"type"`
	From    string `json:"from"`
	To      string `json:"to"`
	Value   string `json:"value"`
	GasUsed string `json:"gas_used"`
	Status  string `json:"status"`
	Date    string `json:"date"`
}

// ProcessingInfo is the review metadata of a processed validator
type ProcessingInfo struct {
	Reviewer    string `json:"reviewer"`
	ReviewDate  string `json:"review_date"`
	Notes       string `json:"notes"`
	LastUpdated string `json:"last_updated"`
}
