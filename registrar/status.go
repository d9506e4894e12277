package registrar

// Status is a delegation request's workflow state. The set is fixed; any
// member may be written at any time via a status update. The only automatic
// transition is to StatusCompleted once both transaction hashes are present.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// Network tags which chain a request targets.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkMock    Network = "mock"
)

// Reviewer and note used for the automatic completion transition.
const (
	SystemActor   = "system"
	DefaultActor  = "admin"
	CompletedNote = "Validator created and ownership transferred"
)

// Transaction record defaults applied during reconciliation.
const (
	TxTypeUnknown   = "UNKNOWN"
	TxStatusSuccess = "success"
)

// ValidStatus reports whether s is a member of the fixed status set.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// requiredFields lists the submission fields that must be non-empty, in the
// order validation failures are reported.
type requiredField struct {
	name  string
	value func(NewRequest) string
}

var requiredFields = []requiredField{
	{"moniker", func(r NewRequest) string { return r.Moniker }},
	{"pubkey", func(r NewRequest) string { return r.Pubkey }},
	{"signature", func(r NewRequest) string { return r.Signature }},
	{"commission_rate", func(r NewRequest) string { return r.CommissionRate }},
	{"withdrawal_fee", func(r NewRequest) string { return r.WithdrawalFee }},
	{"operator_name", func(r NewRequest) string { return r.OperatorName }},
	{"operator_email", func(r NewRequest) string { return r.OperatorEmail }},
	{"operator_wallet", func(r NewRequest) string { return r.OperatorWallet }},
}

// ValidateNewRequest checks the required submission fields and returns a
// ValidationError naming the first missing one.
func ValidateNewRequest(req NewRequest) error {
	for _, f := range requiredFields {
		if f.value(req) == "" {
			return &ValidationError{Field: f.name}
		}
	}
	return nil
}
