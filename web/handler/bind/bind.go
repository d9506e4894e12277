// Package bind translates between HTTP requests/responses and the domain
// types: JSON payload decoding, query parameter extraction, and response
// shaping.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/screwyprof/valreg/registrar"
	"github.com/screwyprof/valreg/web/api"
)

// Sentinel errors for request binding
var (
	ErrInvalidPayload = errors.New("invalid request payload")
)

// CreateRequest decodes a request-submission payload and records the
// caller's address for the audit trail
func CreateRequest(r *http.Request) (registrar.NewRequest, error) {
	var req registrar.NewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return registrar.NewRequest{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	req.Origin = Origin(r)

	return req, nil
}

// StatusUpdate decodes a reviewer's status decision
func StatusUpdate(r *http.Request) (registrar.StatusUpdate, error) {
	var upd registrar.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		return registrar.StatusUpdate{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	upd.Origin = Origin(r)

	return upd, nil
}

// Evidence decodes a transaction-evidence payload
func Evidence(r *http.Request) (registrar.Evidence, error) {
	var ev registrar.Evidence
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		return registrar.Evidence{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	ev.Origin = Origin(r)

	return ev, nil
}

// ListFilter extracts the optional status and network query filters.
// Absent parameters leave the filter field zero, which the port ignores.
func ListFilter(r *http.Request) registrar.Filter {
	query := r.URL.Query()

	return registrar.Filter{
		Status:  registrar.Status(query.Get("status")),
		Network: registrar.Network(query.Get("network")),
	}
}

// AuditRequestID extracts the optional request_id audit filter
func AuditRequestID(r *http.Request) string {
	return r.URL.Query().Get("request_id")
}

// Origin returns the caller's network address without the port
func Origin(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ProcessedValidators reshapes completed requests into the export format,
// grouped into validator/technical/operator/transaction/processing sections
func ProcessedValidators(completed []registrar.RequestWithTransactions) []api.ProcessedValidator {
	out := make([]api.ProcessedValidator, len(completed))
	for i, c := range completed {
		req := c.Request

		history := make([]api.TxHistoryEntry, len(c.Transactions))
		for j, tx := range c.Transactions {
			history[j] = api.TxHistoryEntry{
				Hash:    tx.TxHash,
				Type:    tx.TxType,
				From:    tx.FromAddress,
				To:      tx.ToAddress,
				Value:   tx.Value,
				GasUsed: tx.GasUsed,
				Status:  tx.Status,
				Date:    formatDate(&tx.CreatedDate),
			}
		}

		out[i] = api.ProcessedValidator{
			ID:          req.ID,
			RequestDate: formatDate(&req.RequestDate),
			Network:     req.Network,
			Status:      req.Status,
			Validator: api.ValidatorInfo{
				Moniker:          req.Moniker,
				Identity:         req.Identity,
				Website:          req.Website,
				SecurityContact:  req.SecurityContact,
				Details:          req.Details,
				ValidatorAddress: req.ValidatorAddress,
			},
			Technical: api.TechnicalInfo{
				Pubkey:         req.Pubkey,
				Signature:      req.Signature,
				CommissionRate: req.CommissionRate,
				WithdrawalFee:  req.WithdrawalFee,
			},
			Operator: api.OperatorInfo{
				Name:     req.OperatorName,
				Email:    req.OperatorEmail,
				Wallet:   req.OperatorWallet,
				Telegram: req.OperatorTelegram,
			},
			Transactions: api.TransactionHistory{
				CreationTx: api.TxRef{
					Hash: req.CreationTxHash,
					Date: formatDate(req.CreationTxDate),
				},
				TransferTx: api.TxRef{
					Hash: req.TransferTxHash,
					Date: formatDate(req.TransferTxDate),
				},
				AllTransactions: history,
			},
			Processing: api.ProcessingInfo{
				Reviewer:    req.Reviewer,
				ReviewDate:  formatDate(req.ReviewDate),
				Notes:       req.Notes,
				LastUpdated: formatDate(&req.LastUpdated),
			},
		}
	}

	return out
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
