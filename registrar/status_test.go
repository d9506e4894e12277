package registrar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/screwyprof/valreg/registrar"
)

func TestValidStatus(t *testing.T) {
	t.Parallel()

	t.Run("it accepts every member of the fixed set", func(t *testing.T) {
		t.Parallel()

		for _, s := range []registrar.Status{
			registrar.StatusPending,
			registrar.StatusApproved,
			registrar.StatusRejected,
			registrar.StatusCompleted,
		} {
			assert.True(t, registrar.ValidStatus(s), "status %q should be valid", s)
		}
	})

	t.Run("it rejects anything outside the set", func(t *testing.T) {
		t.Parallel()

		for _, s := range []registrar.Status{"", "archived", "PENDING", "done"} {
			assert.False(t, registrar.ValidStatus(s), "status %q should be invalid", s)
		}
	})
}

func TestValidateNewRequest(t *testing.T) {
	t.Parallel()

	t.Run("it accepts a fully populated submission", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, registrar.ValidateNewRequest(validSubmission("pk-1")))
	})

	t.Run("it treats optional fields as optional", func(t *testing.T) {
		t.Parallel()

		req := validSubmission("pk-1")
		req.Identity = ""
		req.Website = ""
		req.SecurityContact = ""
		req.Details = ""
		req.OperatorTelegram = ""

		assert.NoError(t, registrar.ValidateNewRequest(req))
	})

	t.Run("it reports fields in declaration order", func(t *testing.T) {
		t.Parallel()

		// Arrange - blank everything; the first declared field wins
		var req registrar.NewRequest

		// Act
		err := registrar.ValidateNewRequest(req)

		// Assert
		var vErr *registrar.ValidationError
		assert.ErrorAs(t, err, &vErr)
		assert.Equal(t, "moniker", vErr.Field)
	})
}

func TestRequestCompleted(t *testing.T) {
	t.Parallel()

	t.Run("it requires both transaction hashes", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name     string
			creation string
			transfer string
			want     bool
		}{
			{"no hashes", "", "", false},
			{"creation only", "0xc1", "", false},
			{"transfer only", "", "0xt1", false},
			{"both present", "0xc1", "0xt1", true},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				req := registrar.DelegationRequest{
					CreationTxHash: tc.creation,
					TransferTxHash: tc.transfer,
				}

				assert.Equal(t, tc.want, req.Completed())
			})
		}
	})
}
