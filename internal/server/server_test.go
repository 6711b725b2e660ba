package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aroray/settleup/internal/auth"
	"github.com/aroray/settleup/internal/models"
	"github.com/aroray/settleup/internal/service"
	"github.com/aroray/settleup/internal/storage/sqlite"
)

func setupTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	srv := New(
		service.NewExpenseService(store),
		auth.NewDeviceAuthenticator(store),
		auth.NewJWTManager("test-secret", time.Hour),
	)
	ts := httptest.NewServer(srv.Handler())

	return ts, func() {
		ts.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}
}

// doJSON issues a request with an optional bearer token and decodes the
// response body into out when it is non-nil.
func doJSON(t *testing.T, method, url, token string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func registerMember(t *testing.T, baseURL, name string) (memberID, token string) {
	t.Helper()

	var session sessionResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/auth/register", "",
		map[string]string{"display_name": name, "device_secret": "correct horse battery"},
		&session)
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d", name, status)
	}
	return session.Member.ID, session.Token
}

func TestExpenseLifecycleOverHTTP(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	aliceID, aliceToken := registerMember(t, ts.URL, "alice")
	bobID, bobToken := registerMember(t, ts.URL, "bob")

	// Unauthenticated requests are rejected.
	if status := doJSON(t, http.MethodPost, ts.URL+"/api/expenses", "", map[string]any{}, nil); status != http.StatusUnauthorized {
		t.Errorf("unauthenticated create: status %d, want 401", status)
	}

	// String-encoded amounts are accepted alongside numeric ones.
	createBody := map[string]any{
		"group_id":    "g1",
		"description": "taxi",
		"total":       "45.50",
		"participants": []map[string]any{
			{"member_id": aliceID, "role": "payer", "amount": 45.50},
			{"member_id": bobID, "role": "ower", "amount": "45.50"},
		},
	}
	var created models.Expense
	if status := doJSON(t, http.MethodPost, ts.URL+"/api/expenses", aliceToken, createBody, &created); status != http.StatusCreated {
		t.Fatalf("create: status %d", status)
	}
	if !created.Total.Equal(decimal.RequireFromString("45.50")) {
		t.Errorf("total = %s, want 45.50", created.Total)
	}

	// Bob was auto-added to the group and can read the expense.
	var fetched models.Expense
	if status := doJSON(t, http.MethodGet, ts.URL+"/api/expenses/"+created.ID, bobToken, nil, &fetched); status != http.StatusOK {
		t.Fatalf("get: status %d", status)
	}

	// Bob records his payment as sent, then tries to walk it back.
	statusURL := fmt.Sprintf("%s/api/expenses/%s/participants/%s", ts.URL, created.ID, bobID)
	if status := doJSON(t, http.MethodPatch, statusURL, bobToken,
		map[string]string{"role": "ower", "status": "sent"}, nil); status != http.StatusOK {
		t.Fatalf("patch to sent: status %d", status)
	}
	if status := doJSON(t, http.MethodPatch, statusURL, bobToken,
		map[string]string{"role": "ower", "status": "pending"}, nil); status != http.StatusConflict {
		t.Errorf("backward patch: status %d, want 409", status)
	}

	// Group views.
	var balance struct {
		TotalOwed decimal.Decimal `json:"total_owed"`
	}
	if status := doJSON(t, http.MethodGet, ts.URL+"/api/groups/g1/balance", aliceToken, nil, &balance); status != http.StatusOK {
		t.Fatalf("balance: status %d", status)
	}
	if !balance.TotalOwed.Equal(decimal.RequireFromString("45.5")) {
		t.Errorf("alice total_owed = %s, want 45.5", balance.TotalOwed)
	}

	var transfers struct {
		Transfers []models.Transfer `json:"transfers"`
	}
	if status := doJSON(t, http.MethodGet, ts.URL+"/api/groups/g1/transfers", bobToken, nil, &transfers); status != http.StatusOK {
		t.Fatalf("transfers: status %d", status)
	}
	if len(transfers.Transfers) != 1 || transfers.Transfers[0].To != aliceID {
		t.Errorf("transfers = %+v, want single transfer to alice", transfers.Transfers)
	}

	// Only the creator may delete.
	if status := doJSON(t, http.MethodDelete, ts.URL+"/api/expenses/"+created.ID, bobToken, nil, nil); status != http.StatusForbidden {
		t.Errorf("non-creator delete: status %d, want 403", status)
	}
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/expenses/"+created.ID, nil)
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("creator delete: status %d, want 204", resp.StatusCode)
	}
}

func TestValidationErrorsOverHTTP(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	aliceID, aliceToken := registerMember(t, ts.URL, "alice")

	// No ower rows.
	body := map[string]any{
		"group_id":    "g1",
		"description": "solo",
		"total":       "10",
		"participants": []map[string]any{
			{"member_id": aliceID, "role": "payer", "amount": "10"},
		},
	}
	var errResp errorResponse
	if status := doJSON(t, http.MethodPost, ts.URL+"/api/expenses", aliceToken, body, &errResp); status != http.StatusBadRequest {
		t.Errorf("invalid expense: status %d, want 400", status)
	}
	if errResp.Error == "" {
		t.Error("expected an error message in the body")
	}

	if status := doJSON(t, http.MethodGet, ts.URL+"/api/expenses/nope", aliceToken, nil, nil); status != http.StatusNotFound {
		t.Errorf("missing expense: status %d, want 404", status)
	}
}

func TestFinalizeSplitOverHTTP(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	_, token := registerMember(t, ts.URL, "alice")

	body := map[string]any{
		"role":  "ower",
		"total": "90",
		"shares": []map[string]any{
			{"member_id": "alice", "percent": 50, "locked": false},
			{"member_id": "bob", "percent": 25, "locked": false},
			{"member_id": "carol", "percent": 25, "locked": false},
		},
	}
	var result finalizeSplitResponse
	if status := doJSON(t, http.MethodPost, ts.URL+"/api/split/finalize", token, body, &result); status != http.StatusOK {
		t.Fatalf("finalize: status %d", status)
	}
	if result.NeedsConfirmation {
		t.Fatal("exact 100% split should not need confirmation")
	}
	sum := decimal.Zero
	for _, p := range result.Participants {
		sum = sum.Add(p.Amount)
	}
	if !sum.Equal(decimal.RequireFromString("90")) {
		t.Errorf("share sum = %s, want 90", sum)
	}

	// A drifted split comes back rescaled for confirmation.
	body["shares"] = []map[string]any{
		{"member_id": "alice", "percent": 40, "locked": false},
		{"member_id": "bob", "percent": 40, "locked": false},
	}
	var drifted finalizeSplitResponse
	if status := doJSON(t, http.MethodPost, ts.URL+"/api/split/finalize", token, body, &drifted); status != http.StatusOK {
		t.Fatalf("finalize drifted: status %d", status)
	}
	if !drifted.NeedsConfirmation {
		t.Error("drifted split should need confirmation")
	}
	if len(drifted.Participants) != 0 {
		t.Errorf("confirmation response should not carry participants, got %+v", drifted.Participants)
	}
}
