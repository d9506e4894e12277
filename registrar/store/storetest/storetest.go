// Package storetest runs the persistence port contract against a backend.
// Every backend (embedded, networked, in-memory test double) must pass it
// unchanged; that is what keeps the backends interchangeable.
package storetest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/valreg/registrar"
)

// AuditLimit is the port's audit listing cap.
const AuditLimit = 100

// RunStoreContract exercises the full registrar.Store contract. The factory
// must return an empty, schema-initialized store whose clock yields strictly
// increasing timestamps.
func RunStoreContract(t *testing.T, newStore func(t *testing.T) registrar.Store) {
	t.Helper()

	t.Run("it creates a request with pending status and mainnet default", func(t *testing.T) {
		store := newStore(t)

		created, err := store.CreateRequest(t.Context(), "req-1", ValidRequest("pk-1"))

		require.NoError(t, err)
		assert.Equal(t, "req-1", created.ID)
		assert.Equal(t, registrar.StatusPending, created.Status)
		assert.Equal(t, registrar.NetworkMainnet, created.Network)
		assert.Equal(t, "5", created.CommissionRate)
		assert.Equal(t, "1000000", created.WithdrawalFee)
		assert.False(t, created.RequestDate.IsZero())
		assert.Equal(t, created.RequestDate, created.LastUpdated)
	})

	t.Run("it keeps the supplied network", func(t *testing.T) {
		store := newStore(t)

		req := ValidRequest("pk-1")
		req.Network = registrar.NetworkTestnet
		created, err := store.CreateRequest(t.Context(), "req-1", req)

		require.NoError(t, err)
		assert.Equal(t, registrar.NetworkTestnet, created.Network)
	})

	t.Run("it round-trips optional fields through NULL columns", func(t *testing.T) {
		store := newStore(t)

		req := ValidRequest("pk-1")
		req.Identity = "ABCD1234"
		req.Website = "https://v1.example.com"
		req.SecurityContact = "sec@example.com"
		req.Details = "a validator"
		req.OperatorTelegram = "@op"
		_, err := store.CreateRequest(t.Context(), "req-1", req)
		require.NoError(t, err)

		got, err := store.GetRequest(t.Context(), "req-1")

		require.NoError(t, err)
		assert.Equal(t, "ABCD1234", got.Identity)
		assert.Equal(t, "https://v1.example.com", got.Website)
		assert.Equal(t, "sec@example.com", got.SecurityContact)
		assert.Equal(t, "a validator", got.Details)
		assert.Equal(t, "@op", got.OperatorTelegram)
		assert.Empty(t, got.ValidatorAddress)
		assert.Nil(t, got.CreationTxDate)
		assert.Nil(t, got.ReviewDate)
	})

	t.Run("it rejects a duplicate pubkey with ErrDuplicateKey", func(t *testing.T) {
		store := newStore(t)

		_, err := store.CreateRequest(t.Context(), "req-1", ValidRequest("pk-dup"))
		require.NoError(t, err)

		_, err = store.CreateRequest(t.Context(), "req-2", ValidRequest("pk-dup"))

		require.ErrorIs(t, err, registrar.ErrDuplicateKey)

		// the loser left nothing behind
		all, err := store.ListRequests(t.Context(), registrar.Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("it returns ErrNotFound for an unknown request id", func(t *testing.T) {
		store := newStore(t)

		_, err := store.GetRequest(t.Context(), "missing")

		require.ErrorIs(t, err, registrar.ErrNotFound)
	})

	t.Run("it lists requests newest first", func(t *testing.T) {
		store := newStore(t)
		createRequests(t, store, "pk-1", "pk-2", "pk-3")

		all, err := store.ListRequests(t.Context(), registrar.Filter{})

		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "pk-3", all[0].Pubkey)
		assert.Equal(t, "pk-2", all[1].Pubkey)
		assert.Equal(t, "pk-1", all[2].Pubkey)
		for i := 1; i < len(all); i++ {
			assert.False(t, all[i-1].RequestDate.Before(all[i].RequestDate))
		}
	})

	t.Run("it ANDs status and network filters", func(t *testing.T) {
		store := newStore(t)

		approved := ValidRequest("pk-approved-testnet")
		approved.Network = registrar.NetworkTestnet
		_, err := store.CreateRequest(t.Context(), "req-1", approved)
		require.NoError(t, err)
		_, err = store.UpdateStatus(t.Context(), "req-1", registrar.StatusApproved, registrar.ReviewUpdate{Reviewer: "admin"})
		require.NoError(t, err)

		pendingTestnet := ValidRequest("pk-pending-testnet")
		pendingTestnet.Network = registrar.NetworkTestnet
		_, err = store.CreateRequest(t.Context(), "req-2", pendingTestnet)
		require.NoError(t, err)

		_, err = store.CreateRequest(t.Context(), "req-3", ValidRequest("pk-pending-mainnet"))
		require.NoError(t, err)

		matched, err := store.ListRequests(t.Context(), registrar.Filter{
			Status:  registrar.StatusApproved,
			Network: registrar.NetworkTestnet,
		})

		require.NoError(t, err)
		require.Len(t, matched, 1)
		assert.Equal(t, "req-1", matched[0].ID)
	})

	t.Run("it stamps review metadata on status update", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreateRequest(t.Context(), "req-1", ValidRequest("pk-1"))
		require.NoError(t, err)

		updated, err := store.UpdateStatus(t.Context(), "req-1", registrar.StatusApproved, registrar.ReviewUpdate{
			Notes:    "looks good",
			Reviewer: "alice",
		})

		require.NoError(t, err)
		assert.Equal(t, registrar.StatusApproved, updated.Status)
		assert.Equal(t, "looks good", updated.Notes)
		assert.Equal(t, "alice", updated.Reviewer)
		require.NotNil(t, updated.ReviewDate)
		assert.True(t, updated.LastUpdated.After(created.LastUpdated))
	})

	t.Run("it returns ErrNotFound when updating an unknown id", func(t *testing.T) {
		store := newStore(t)

		_, err := store.UpdateStatus(t.Context(), "missing", registrar.StatusApproved, registrar.ReviewUpdate{})

		require.ErrorIs(t, err, registrar.ErrNotFound)
	})

	t.Run("it merges transaction fields independently and stamps dates", func(t *testing.T) {
		store := newStore(t)
		_, err := store.CreateRequest(t.Context(), "req-1", ValidRequest("pk-1"))
		require.NoError(t, err)

		afterCreation, err := store.MergeTransactionFields(t.Context(), "req-1", registrar.TxFields{
			ValidatorAddress: "0xval",
			CreationTxHash:   "0xc1",
		})
		require.NoError(t, err)
		assert.Equal(t, "0xval", afterCreation.ValidatorAddress)
		assert.Equal(t, "0xc1", afterCreation.CreationTxHash)
		require.NotNil(t, afterCreation.CreationTxDate)
		assert.Empty(t, afterCreation.TransferTxHash)
		assert.Nil(t, afterCreation.TransferTxDate)

		afterTransfer, err := store.MergeTransactionFields(t.Context(), "req-1", registrar.TxFields{
			TransferTxHash: "0xt1",
		})
		require.NoError(t, err)
		assert.Equal(t, "0xc1", afterTransfer.CreationTxHash, "earlier merge survives")
		assert.Equal(t, "0xt1", afterTransfer.TransferTxHash)
		require.NotNil(t, afterTransfer.TransferTxDate)
	})

	t.Run("it overwrites already-set transaction fields last write wins", func(t *testing.T) {
		store := newStore(t)
		_, err := store.CreateRequest(t.Context(), "req-1", ValidRequest("pk-1"))
		require.NoError(t, err)

		first, err := store.MergeTransactionFields(t.Context(), "req-1", registrar.TxFields{CreationTxHash: "0xold"})
		require.NoError(t, err)

		second, err := store.MergeTransactionFields(t.Context(), "req-1", registrar.TxFields{CreationTxHash: "0xnew"})

		require.NoError(t, err)
		assert.Equal(t, "0xnew", second.CreationTxHash)
		require.NotNil(t, second.CreationTxDate)
		assert.True(t, second.CreationTxDate.After(*first.CreationTxDate))
	})

	t.Run("it returns ErrNotFound when merging into an unknown id", func(t *testing.T) {
		store := newStore(t)

		_, err := store.MergeTransactionFields(t.Context(), "missing", registrar.TxFields{CreationTxHash: "0xc1"})

		require.ErrorIs(t, err, registrar.ErrNotFound)
	})

	t.Run("it never decreases last_updated across mutations", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreateRequest(t.Context(), "req-1", ValidRequest("pk-1"))
		require.NoError(t, err)

		merged, err := store.MergeTransactionFields(t.Context(), "req-1", registrar.TxFields{CreationTxHash: "0xc1"})
		require.NoError(t, err)
		updated, err := store.UpdateStatus(t.Context(), "req-1", registrar.StatusApproved, registrar.ReviewUpdate{})
		require.NoError(t, err)

		assert.False(t, merged.LastUpdated.Before(created.LastUpdated))
		assert.False(t, updated.LastUpdated.Before(merged.LastUpdated))
	})

	t.Run("it deletes a request exactly once", func(t *testing.T) {
		store := newStore(t)
		_, err := store.CreateRequest(t.Context(), "req-1", ValidRequest("pk-1"))
		require.NoError(t, err)

		count, err := store.DeleteRequest(t.Context(), "req-1")
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		count, err = store.DeleteRequest(t.Context(), "req-1")
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)
	})

	t.Run("it appends and lists transaction records newest first", func(t *testing.T) {
		store := newStore(t)
		_, err := store.CreateRequest(t.Context(), "req-1", ValidRequest("pk-1"))
		require.NoError(t, err)

		for i := 1; i <= 3; i++ {
			_, err := store.AddTransaction(t.Context(), registrar.TransactionRecord{
				RequestID: "req-1",
				TxHash:    fmt.Sprintf("0xh%d", i),
				TxType:    "CREATE_VALIDATOR",
				Status:    "success",
				Network:   registrar.NetworkMainnet,
			})
			require.NoError(t, err)
		}

		txs, err := store.ListTransactions(t.Context(), "req-1")

		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, "0xh3", txs[0].TxHash)
		assert.Equal(t, "0xh2", txs[1].TxHash)
		assert.Equal(t, "0xh1", txs[2].TxHash)
	})

	t.Run("it accepts duplicate transaction hashes for retries", func(t *testing.T) {
		store := newStore(t)
		_, err := store.CreateRequest(t.Context(), "req-1", ValidRequest("pk-1"))
		require.NoError(t, err)

		for range 2 {
			_, err := store.AddTransaction(t.Context(), registrar.TransactionRecord{
				RequestID: "req-1",
				TxHash:    "0xsame",
				TxType:    "UNKNOWN",
				Status:    "success",
				Network:   registrar.NetworkMainnet,
			})
			require.NoError(t, err)
		}

		txs, err := store.ListTransactions(t.Context(), "req-1")
		require.NoError(t, err)
		assert.Len(t, txs, 2)
	})

	t.Run("it lists audit entries newest first filtered by request", func(t *testing.T) {
		store := newStore(t)

		for i := 1; i <= 2; i++ {
			_, err := store.AddAuditEntry(t.Context(), registrar.AuditEntry{
				Actor:     "admin",
				Action:    "STATUS_UPDATED",
				RequestID: "req-1",
				Details:   fmt.Sprintf("entry %d", i),
			})
			require.NoError(t, err)
		}
		_, err := store.AddAuditEntry(t.Context(), registrar.AuditEntry{
			Actor:     "admin",
			Action:    "STATUS_UPDATED",
			RequestID: "req-2",
		})
		require.NoError(t, err)

		entries, err := store.ListAuditEntries(t.Context(), "req-1")

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "entry 2", entries[0].Details)
		assert.Equal(t, "entry 1", entries[1].Details)

		all, err := store.ListAuditEntries(t.Context(), "")
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("it caps audit listings at the most recent 100", func(t *testing.T) {
		store := newStore(t)

		for i := 1; i <= AuditLimit+5; i++ {
			_, err := store.AddAuditEntry(t.Context(), registrar.AuditEntry{
				Actor:   "system",
				Action:  "TRANSACTION_RECORDED",
				Details: fmt.Sprintf("entry %d", i),
			})
			require.NoError(t, err)
		}

		entries, err := store.ListAuditEntries(t.Context(), "")

		require.NoError(t, err)
		require.Len(t, entries, AuditLimit)
		assert.Equal(t, fmt.Sprintf("entry %d", AuditLimit+5), entries[0].Details)
		assert.Equal(t, "entry 6", entries[len(entries)-1].Details)
	})
}

// ValidRequest builds a submission that passes required-field validation.
func ValidRequest(pubkey string) registrar.NewRequest {
	return registrar.NewRequest{
		Moniker:        "V1",
		Pubkey:         pubkey,
		Signature:      "sig1",
		CommissionRate: "5",
		WithdrawalFee:  "1000000",
		OperatorName:   "Op",
		OperatorEmail:  "op@example.com",
		OperatorWallet: "0xabc",
	}
}

func createRequests(t *testing.T, store registrar.Store, pubkeys ...string) {
	t.Helper()
	for i, pk := range pubkeys {
		_, err := store.CreateRequest(t.Context(), fmt.Sprintf("req-%d", i+1), ValidRequest(pk))
		require.NoError(t, err)
	}
}
