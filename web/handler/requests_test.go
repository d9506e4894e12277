package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/valreg/registrar"
	"github.com/screwyprof/valreg/registrar/registrartest"
	"github.com/screwyprof/valreg/web/handler"
)

func TestRequestsAPI(t *testing.T) {
	t.Parallel()

	t.Run("it creates a request and returns its id", func(t *testing.T) {
		t.Parallel()

		// Arrange
		mux, _ := newTestMux(t)

		// Act
		resp := doJSON(t, mux, http.MethodPost, "/api/requests", validPayload("pk-1"))

		// Assert
		assert.Equal(t, http.StatusOK, resp.Code)

		body := parseBody(t, resp)
		assert.Equal(t, true, body["success"])

		data, ok := body["data"].(map[string]any)
		require.True(t, ok)
		assert.NotEmpty(t, data["id"])
		assert.Equal(t, "Request submitted successfully", data["message"])
	})

	t.Run("it rejects a submission missing a required field", func(t *testing.T) {
		t.Parallel()

		// Arrange
		mux, _ := newTestMux(t)
		payload := validPayload("pk-1")
		delete(payload, "moniker")

		// Act
		resp := doJSON(t, mux, http.MethodPost, "/api/requests", payload)

		// Assert
		assert.Equal(t, http.StatusBadRequest, resp.Code)

		body := parseBody(t, resp)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "missing required field: moniker", body["error"])
	})

	t.Run("it rejects a duplicate public key", func(t *testing.T) {
		t.Parallel()

		// Arrange
		mux, _ := newTestMux(t)
		resp := doJSON(t, mux, http.MethodPost, "/api/requests", validPayload("pk-dup"))
		require.Equal(t, http.StatusOK, resp.Code)

		// Act
		resp = doJSON(t, mux, http.MethodPost, "/api/requests", validPayload("pk-dup"))

		// Assert
		assert.Equal(t, http.StatusBadRequest, resp.Code)

		body := parseBody(t, resp)
		assert.Equal(t, "a request with this public key already exists", body["error"])
	})

	t.Run("it rejects malformed JSON payloads", func(t *testing.T) {
		t.Parallel()

		// Arrange
		mux, _ := newTestMux(t)

		req := httptest.NewRequest(http.MethodPost, "/api/requests", strings.NewReader("{not json"))
		resp := httptest.NewRecorder()

		// Act
		mux.ServeHTTP(resp, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, resp.Code)

		body := parseBody(t, resp)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["error"], "invalid request payload")
	})

	t.Run("it lists requests filtered by status and network", func(t *testing.T) {
		t.Parallel()

		// Arrange
		mux, svc := newTestMux(t)

		created := createViaService(t, svc, "pk-1")
		_, err := svc.UpdateStatus(t.Context(), created.ID, registrar.StatusUpdate{Status: registrar.StatusApproved})
		require.NoError(t, err)
		createViaService(t, svc, "pk-2")

		// Act
		resp := doJSON(t, mux, http.MethodGet, "/api/requests?status=approved&network=mainnet", nil)

		// Assert
		assert.Equal(t, http.StatusOK, resp.Code)

		body := parseBody(t, resp)
		data, ok := body["data"].([]any)
		require.True(t, ok)
		require.Len(t, data, 1)

		first, ok := data[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, created.ID, first["id"])
		assert.Equal(t, "approved", first["status"])
	})

	t.Run("it returns a request with its transactions", func(t *testing.T) {
		t.Parallel()

		// Arrange
		mux, svc := newTestMux(t)
		created := createViaService(t, svc, "pk-1")
		_, err := svc.RecordTransaction(t.Context(), created.ID, registrar.Evidence{TxHash: "0xraw"})
		require.NoError(t, err)

		// Act
		resp := doJSON(t, mux, http.MethodGet, "/api/requests/"+created.ID, nil)

		// Assert
		assert.Equal(t, http.StatusOK, resp.Code)

		body := parseBody(t, resp)
		data, ok := body["data"].(map[string]any)
		require.True(t, ok)

		request, ok := data["request"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, created.ID, request["id"])

		txs, ok := data["transactions"].([]any)
		require.True(t, ok)
		assert.Len(t, txs, 1)
	})

	t.Run("it returns 404 for an unknown request id", func(t *testing.T) {
		t.Parallel()

		// Arrange
		mux, _ := newTestMux(t)

		// Act
		resp := doJSON(t, mux, http.MethodGet, "/api/requests/missing", nil)

		// Assert
		assert.Equal(t, http.StatusNotFound, resp.Code)

		body := parseBody(t, resp)
		assert.Equal(t, "request not found", body["error"])
	})

	t.Run("it updates the status through the review endpoint", func(t *testing.T) {
		t.Parallel()

		// Arrange
		mux, svc := newTestMux(t)
		created := createViaService(t, svc, "pk-1")

		payload := map[string]any{"status": "approved", "notes": "ok", "reviewer": "alice"}

		// Act
		resp := doJSON(t, mux, http.MethodPut, "/api/requests/"+created.ID+"/status", payload)

		// Assert
		assert.Equal(t, http.StatusOK, resp.Code)

		body := parseBody(t, resp)
		assert.Equal(t, "Status updated successfully", body["message"])

		updated, _, err := svc.GetRequest(t.Context(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, registrar.StatusApproved, updated.Status)
		assert.Equal(t, "alice", updated.Reviewer)
	})

	t.Run("it rejects a status outside the fixed set", func(t *testing.T) {
		t.Parallel()

		// Arrange
		mux, svc := newTestMux(t)
		created := createViaService(t, svc, "pk-1")

		// Act
		resp := doJSON(t, mux, http.MethodPut, "/api/requests/"+created.ID+"/status",
			map[string]any{"status": "archived"})

		// Assert
		assert.Equal(t, http.StatusBadRequest, resp.Code)

		body := parseBody(t, resp)
		assert.Contains(t, body["error"], "invalid status")
	})

	t.Run("it completes a request once both hashes arrive via the API", func(t *testing.T) {
		t.Parallel()

		// Arrange
		mux, svc := newTestMux(t)
		created := createViaService(t, svc, "pk-1")

		// Act
		resp := doJSON(t, mux, http.MethodPost, "/api/requests/"+created.ID+"/transaction",
			map[string]any{
				"validator_address": "val-1",
				"creation_tx_hash":  "0xc1",
				"tx_hash":           "0xc1",
				"tx_type":           "CREATE_VALIDATOR",
			})
		require.Equal(t, http.StatusOK, resp.Code)

		resp = doJSON(t, mux, http.MethodPost, "/api/requests/"+created.ID+"/transaction",
			map[string]any{
				"transfer_tx_hash": "0xt1",
				"tx_hash":          "0xt1",
				"tx_type":          "TRANSFER_OWNERSHIP",
			})

		// Assert
		assert.Equal(t, http.StatusOK, resp.Code)

		body := parseBody(t, resp)
		assert.Equal(t, "Transaction details updated", body["message"])

		final, txs, err := svc.GetRequest(t.Context(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, registrar.StatusCompleted, final.Status)
		assert.Equal(t, "system", final.Reviewer)
		assert.Len(t, txs, 2)
	})

	t.Run("it deletes a request and 404s on the second attempt", func(t *testing.T) {
		t.Parallel()

		// Arrange
		mux, svc := newTestMux(t)
		created := createViaService(t, svc, "pk-1")

		// Act
		resp := doJSON(t, mux, http.MethodDelete, "/api/requests/"+created.ID, nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "Request deleted successfully", parseBody(t, resp)["message"])

		resp = doJSON(t, mux, http.MethodDelete, "/api/requests/"+created.ID, nil)

		// Assert
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestStatsAPI(t *testing.T) {
	t.Parallel()

	t.Run("it aggregates requests by status and network", func(t *testing.T) {
		t.Parallel()

		// Arrange
		mux, svc := newTestMux(t)
		createViaService(t, svc, "pk-1")
		createViaService(t, svc, "pk-2")

		// Act
		resp := doJSON(t, mux, http.MethodGet, "/api/stats", nil)

		// Assert
		assert.Equal(t, http.StatusOK, resp.Code)

		body := parseBody(t, resp)
		data, ok := body["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(2), data["total"])
		assert.Equal(t, float64(2), data["pending"])
		assert.Equal(t, float64(2), data["mainnet"])
	})
}

func TestAuditAPI(t *testing.T) {
	t.Parallel()

	t.Run("it lists audit entries filtered by request", func(t *testing.T) {
		t.Parallel()

		// Arrange
		mux, svc := newTestMux(t)
		first := createViaService(t, svc, "pk-1")
		createViaService(t, svc, "pk-2")

		// Act
		resp := doJSON(t, mux, http.MethodGet, "/api/audit?request_id="+first.ID, nil)

		// Assert
		assert.Equal(t, http.StatusOK, resp.Code)

		body := parseBody(t, resp)
		data, ok := body["data"].([]any)
		require.True(t, ok)
		require.Len(t, data, 1)

		entry, ok := data[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "REQUEST_CREATED", entry["action"])
		assert.Equal(t, "op@example.com", entry["user_id"])
	})
}

// =============================================================================
// Helpers
// =============================================================================

// newTestMux wires the full API surface onto an in-memory backend.
func newTestMux(t *testing.T) (*http.ServeMux, *registrar.Service) {
	t.Helper()

	svc := registrar.NewService(registrartest.New())

	mux := http.NewServeMux()
	handler.NewRequests(svc).AddRoutes(mux)
	handler.NewStats(svc).AddRoutes(mux)
	handler.NewAudit(svc).AddRoutes(mux)

	return mux, svc
}

func doJSON(t *testing.T, mux *http.ServeMux, method, target string, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	resp := httptest.NewRecorder()
	mux.ServeHTTP(resp, req)

	return resp
}

func parseBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	return body
}

func validPayload(pubkey string) map[string]any {
	return map[string]any{
		"moniker":         "V1",
		"pubkey":          pubkey,
		"signature":       "sig1",
		"commission_rate": "5",
		"withdrawal_fee":  "1000000",
		"operator_name":   "Op",
		"operator_email":  "op@example.com",
		"operator_wallet": "0xabc",
	}
}

func createViaService(t *testing.T, svc *registrar.Service, pubkey string) registrar.DelegationRequest {
	t.Helper()

	created, err := svc.CreateRequest(t.Context(), registrar.NewRequest{
		Moniker:        "V-" + pubkey,
		Pubkey:         pubkey,
		Signature:      "sig-" + pubkey,
		CommissionRate: "5",
		WithdrawalFee:  "1000000",
		OperatorName:   fmt.Sprintf("Operator %s", pubkey),
		OperatorEmail:  "op@example.com",
		OperatorWallet: "0xabc",
	})
	require.NoError(t, err)

	return created
}
