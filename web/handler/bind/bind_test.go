package bind_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/valreg/registrar"
	"github.com/screwyprof/valreg/web/handler/bind"
)

func TestCreateRequestBinding(t *testing.T) {
	t.Parallel()

	t.Run("it decodes a submission and captures the caller address", func(t *testing.T) {
		t.Parallel()

		// Arrange
		payload := `{"moniker":"V1","pubkey":"pk-1","network":"testnet"}`
		req := httptest.NewRequest(http.MethodPost, "/api/requests", strings.NewReader(payload))
		req.RemoteAddr = "203.0.113.7:54321"

		// Act
		submission, err := bind.CreateRequest(req)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "V1", submission.Moniker)
		assert.Equal(t, "pk-1", submission.Pubkey)
		assert.Equal(t, registrar.NetworkTestnet, submission.Network)
		assert.Equal(t, "203.0.113.7", submission.Origin)
	})

	t.Run("it rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		// Arrange
		req := httptest.NewRequest(http.MethodPost, "/api/requests", strings.NewReader("{"))

		// Act
		_, err := bind.CreateRequest(req)

		// Assert
		require.ErrorIs(t, err, bind.ErrInvalidPayload)
	})
}

func TestListFilterBinding(t *testing.T) {
	t.Parallel()

	t.Run("it passes absent parameters through as zero values", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/requests", nil)

		assert.Equal(t, registrar.Filter{}, bind.ListFilter(req))
	})

	t.Run("it extracts status and network", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/requests?status=approved&network=testnet", nil)

		assert.Equal(t, registrar.Filter{
			Status:  registrar.StatusApproved,
			Network: registrar.NetworkTestnet,
		}, bind.ListFilter(req))
	})
}

func TestProcessedValidatorsShaping(t *testing.T) {
	t.Parallel()

	t.Run("it formats dates and leaves unset ones empty", func(t *testing.T) {
		t.Parallel()

		// Arrange
		requested := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
		reconciled := requested.Add(time.Hour)

		completed := []registrar.RequestWithTransactions{{
			Request: registrar.DelegationRequest{
				ID:             "req-1",
				Moniker:        "V1",
				CreationTxHash: "0xc1",
				CreationTxDate: &reconciled,
				RequestDate:    requested,
				LastUpdated:    reconciled,
			},
		}}

		// Act
		shaped := bind.ProcessedValidators(completed)

		// Assert
		require.Len(t, shaped, 1)
		assert.Equal(t, "2026-03-01T12:00:00Z", shaped[0].RequestDate)
		assert.Equal(t, "2026-03-01T13:00:00Z", shaped[0].Transactions.CreationTx.Date)
		assert.Empty(t, shaped[0].Transactions.TransferTx.Date, "unset transfer date stays empty")
		assert.Empty(t, shaped[0].Processing.ReviewDate, "unset review date stays empty")
		assert.Empty(t, shaped[0].Transactions.AllTransactions)
	})
}
