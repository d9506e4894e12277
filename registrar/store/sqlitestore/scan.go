package sqlitestore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/screwyprof/valreg/registrar"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (registrar.DelegationRequest, error) {
	var (
		r                                      registrar.DelegationRequest
		identity, website, secContact, details sql.NullString
		telegram, validatorAddr                sql.NullString
		creationHash, transferHash             sql.NullString
		notes, reviewer                        sql.NullString
		creationDate, transferDate, reviewDate sql.NullString
		status, network                        string
		requestDate, lastUpdated               string
	)

	err := row.Scan(
		&r.ID, &r.Moniker, &identity, &website, &secContact, &details,
		&r.Pubkey, &r.Signature, &r.CommissionRate, &r.WithdrawalFee,
		&r.OperatorName, &r.OperatorEmail, &r.OperatorWallet, &telegram,
		&status, &network, &validatorAddr, &creationHash, &creationDate,
		&transferHash, &transferDate, &notes, &reviewer, &reviewDate,
		&requestDate, &lastUpdated,
	)
	if err != nil {
		return registrar.DelegationRequest{}, err
	}

	r.Identity = identity.String
	r.Website = website.String
	r.SecurityContact = secContact.String
	r.Details = details.String
	r.OperatorTelegram = telegram.String
	r.Status = registrar.Status(status)
	r.Network = registrar.Network(network)
	r.ValidatorAddress = validatorAddr.String
	r.CreationTxHash = creationHash.String
	r.TransferTxHash = transferHash.String
	r.Notes = notes.String
	r.Reviewer = reviewer.String

	if r.CreationTxDate, err = parseNullTime(creationDate); err != nil {
		return registrar.DelegationRequest{}, err
	}
	if r.TransferTxDate, err = parseNullTime(transferDate); err != nil {
		return registrar.DelegationRequest{}, err
	}
	if r.ReviewDate, err = parseNullTime(reviewDate); err != nil {
		return registrar.DelegationRequest{}, err
	}
	if r.RequestDate, err = parseTime(requestDate); err != nil {
		return registrar.DelegationRequest{}, err
	}
	if r.LastUpdated, err = parseTime(lastUpdated); err != nil {
		return registrar.DelegationRequest{}, err
	}

	return r, nil
}

func scanTransaction(row rowScanner) (registrar.TransactionRecord, error) {
	var (
		rec                      registrar.TransactionRecord
		from, to, value, gasUsed sql.NullString
		network, createdDate     string
	)

	err := row.Scan(
		&rec.ID, &rec.RequestID, &rec.TxHash, &rec.TxType,
		&from, &to, &value, &gasUsed, &rec.Status, &network, &createdDate,
	)
	if err != nil {
		return registrar.TransactionRecord{}, err
	}

	rec.FromAddress = from.String
	rec.ToAddress = to.String
	rec.Value = value.String
	rec.GasUsed = gasUsed.String
	rec.Network = registrar.Network(network)

	if rec.CreatedDate, err = parseTime(createdDate); err != nil {
		return registrar.TransactionRecord{}, err
	}

	return rec, nil
}

func scanAuditEntry(row rowScanner) (registrar.AuditEntry, error) {
	var (
		entry                         registrar.AuditEntry
		requestID, details, ipAddress sql.NullString
		createdDate                   string
	)

	err := row.Scan(
		&entry.ID, &entry.Actor, &entry.Action,
		&requestID, &details, &ipAddress, &createdDate,
	)
	if err != nil {
		return registrar.AuditEntry{}, err
	}

	entry.RequestID = requestID.String
	entry.Details = details.String
	entry.IPAddress = ipAddress.String

	if entry.CreatedDate, err = parseTime(createdDate); err != nil {
		return registrar.AuditEntry{}, err
	}

	return entry, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
