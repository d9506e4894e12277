package pgxstore

import (
	"fmt"

	"github.com/screwyprof/valreg/registrar"
)

// Column lists shared by queries and RETURNING clauses. Kept in one place so
// every query round-trips the same compatibility surface.
const (
	requestColumns = `id, moniker, identity, website, security_contact, details,
		pubkey, signature, commission_rate, withdrawal_fee,
		operator_name, operator_email, operator_wallet, operator_telegram,
		status, network, validator_address, creation_tx_hash, creation_tx_date,
		transfer_tx_hash, transfer_tx_date, notes, reviewer, review_date,
		request_date, last_updated`

	transactionColumns = `id, request_id, tx_hash, tx_type, from_address, to_address,
		value, gas_used, status, network, created_date`

	auditColumns = `id, user_id, action, request_id, details, ip_address, created_date`
)

// RequestsQueryBuilder builds filtered request listings.
type RequestsQueryBuilder struct {
	sql  string
	args []any
}

// NewRequestsQuery creates a new request listing query builder.
func NewRequestsQuery() *RequestsQueryBuilder {
	return &RequestsQueryBuilder{
		sql: "SELECT " + requestColumns + " FROM delegation_requests",
	}
}

// ForFilter applies the listing filter in one fluent call. Filter fields are
// ANDed; zero values add no condition.
func (q *RequestsQueryBuilder) ForFilter(filter registrar.Filter) *RequestsQueryBuilder {
	return q.
		filterByStatus(filter.Status).
		filterByNetwork(filter.Network).
		orderByRequestDateDesc()
}

func (q *RequestsQueryBuilder) filterByStatus(status registrar.Status) *RequestsQueryBuilder {
	if status != "" {
		q.addWhereCondition("status = $%d", string(status))
	}
	return q
}

func (q *RequestsQueryBuilder) filterByNetwork(network registrar.Network) *RequestsQueryBuilder {
	if network != "" {
		q.addWhereCondition("network = $%d", string(network))
	}
	return q
}

// orderByRequestDateDesc adds submission ordering (most recent first)
func (q *RequestsQueryBuilder) orderByRequestDateDesc() *RequestsQueryBuilder {
	q.sql += " ORDER BY request_date DESC, id DESC"
	return q
}

// Build returns the final SQL query and arguments
func (q *RequestsQueryBuilder) Build() (string, []any) {
	return q.sql, q.args
}

// addWhereCondition adds a WHERE condition, handling AND logic automatically
func (q *RequestsQueryBuilder) addWhereCondition(sqlClause string, value any) {
	placeholder := q.nextPlaceholder()

	if q.hasWhereClause() {
		q.sql += " AND " + fmt.Sprintf(sqlClause, placeholder)
	} else {
		q.sql += " WHERE " + fmt.Sprintf(sqlClause, placeholder)
	}

	q.args = append(q.args, value)
}

func (q *RequestsQueryBuilder) hasWhereClause() bool {
	return len(q.args) > 0
}

// nextPlaceholder returns the next PostgreSQL placeholder ($1, $2, etc.)
func (q *RequestsQueryBuilder) nextPlaceholder() int {
	return len(q.args) + 1
}
