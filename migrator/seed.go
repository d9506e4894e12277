package migrator

import (
	"github.com/screwyprof/valreg/registrar"
)

// DemoRequest is one seeded delegation request: the submission plus the
// lifecycle steps to replay on top of it.
type DemoRequest struct {
	Request  registrar.NewRequest
	Status   registrar.Status
	Notes    string
	Reviewer string
	Evidence []registrar.Evidence
}

// DemoRequests returns one request per lifecycle stage: a fresh pending
// submission, an approved one, a rejected one, and one reconciled all the
// way to completed.
func DemoRequests() []DemoRequest {
	return []DemoRequest{
		{
			Request: registrar.NewRequest{
				Moniker:        "Nebula One",
				Identity:       "8A3F1C09D2E4B576",
				Website:        "https://nebula-one.example.com",
				Details:        "Community validator run from redundant EU datacenters",
				Pubkey:         "pub1demo1nebula",
				Signature:      "sig1demo1nebula",
				CommissionRate: "5",
				WithdrawalFee:  "1000000",
				OperatorName:   "Nebula Labs",
				OperatorEmail:  "ops@nebula-one.example.com",
				OperatorWallet: "0x1111111111111111111111111111111111111111",
			},
		},
		{
			Request: registrar.NewRequest{
				Moniker:          "Quasar Node",
				Website:          "https://quasar.example.com",
				Pubkey:           "pub1demo2quasar",
				Signature:        "sig1demo2quasar",
				CommissionRate:   "7.5",
				WithdrawalFee:    "2000000",
				OperatorName:     "Quasar Ops",
				OperatorEmail:    "admin@quasar.example.com",
				OperatorWallet:   "0x2222222222222222222222222222222222222222",
				OperatorTelegram: "@quasarops",
				Network:          registrar.NetworkTestnet,
			},
			Status:   registrar.StatusApproved,
			Notes:    "Infrastructure review passed",
			Reviewer: "alice",
		},
		{
			Request: registrar.NewRequest{
				Moniker:        "Pulsar Staking",
				Pubkey:         "pub1demo3pulsar",
				Signature:      "sig1demo3pulsar",
				CommissionRate: "100",
				WithdrawalFee:  "1000000",
				OperatorName:   "Pulsar",
				OperatorEmail:  "contact@pulsar.example.com",
				OperatorWallet: "0x3333333333333333333333333333333333333333",
			},
			Status:   registrar.StatusRejected,
			Notes:    "Commission rate out of acceptable range",
			Reviewer: "bob",
		},
		{
			Request: registrar.NewRequest{
				Moniker:         "Aurora Validator",
				Identity:        "F00DCAFE12345678",
				Website:         "https://aurora.example.com",
				SecurityContact: "security@aurora.example.com",
				Pubkey:          "pub1demo4aurora",
				Signature:       "sig1demo4aurora",
				CommissionRate:  "10",
				WithdrawalFee:   "1500000",
				OperatorName:    "Aurora Systems",
				OperatorEmail:   "ops@aurora.example.com",
				OperatorWallet:  "0x4444444444444444444444444444444444444444",
			},
			Status:   registrar.StatusApproved,
			Notes:    "Approved after key verification",
			Reviewer: "alice",
			Evidence: []registrar.Evidence{
				{
					ValidatorAddress: "val0x4444aurora",
					CreationTxHash:   "0xaaaa000000000000000000000000000000000001",
					TxHash:           "0xaaaa000000000000000000000000000000000001",
					TxType:           "CREATE_VALIDATOR",
					FromAddress:      "0x4444444444444444444444444444444444444444",
					Value:            "1500000",
					GasUsed:          "210000",
				},
				{
					TransferTxHash: "0xaaaa000000000000000000000000000000000002",
					TxHash:         "0xaaaa000000000000000000000000000000000002",
					TxType:         "TRANSFER_OWNERSHIP",
					FromAddress:    "0x4444444444444444444444444444444444444444",
					ToAddress:      "val0x4444aurora",
					GasUsed:        "65000",
				},
			},
		},
	}
}
