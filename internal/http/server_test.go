package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"resourceguardian/internal/auth"
	"resourceguardian/internal/services"
	"resourceguardian/internal/storage"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo, err := storage.New(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	tokens := auth.NewTokenIssuer(testSecret, time.Hour)
	srv := NewServer(Options{
		Addr:               ":0",
		Users:              services.NewUserService(repo, tokens),
		Ledger:             services.NewSavingsLedger(repo, nil),
		Goals:              services.NewGoalTracker(repo),
		Transactions:       services.NewTransactionService(repo),
		Usage:              services.NewUsageService(repo),
		Tokens:             tokens,
		RateLimitPerMinute: 10_000,
	})
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any) (*stdhttp.Response, []byte) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := stdhttp.NewRequest(method, ts.URL+path, buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, data
}

func registerAndLogin(t *testing.T, ts *httptest.Server, username string) string {
	t.Helper()

	resp, body := doJSON(t, ts, "POST", "/api/auth/register", "", map[string]string{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "hunter2hunter2",
		"firstName": "Test",
		"lastName":  "User",
	})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("register status = %d, body %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, ts, "POST", "/api/auth/login", "", map[string]string{
		"login":    username,
		"password": "hunter2hunter2",
	})
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("login status = %d, body %s", resp.StatusCode, body)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if login.Token == "" {
		t.Fatal("login returned empty token")
	}
	return login.Token
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, "GET", "/api/users/me", "", nil)
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", resp.StatusCode)
	}

	resp, _ = doJSON(t, ts, "GET", "/api/users/me", "not-a-token", nil)
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("status with garbage token = %d, want 401", resp.StatusCode)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	registerAndLogin(t, ts, "alice")

	resp, _ := doJSON(t, ts, "POST", "/api/auth/login", "", map[string]string{
		"login":    "alice",
		"password": "wrong-password",
	})
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", resp.StatusCode)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newTestServer(t)
	registerAndLogin(t, ts, "bob")

	resp, body := doJSON(t, ts, "POST", "/api/auth/register", "", map[string]string{
		"username":  "bob",
		"email":     "other@example.com",
		"password":  "hunter2hunter2",
		"firstName": "Other",
		"lastName":  "Bob",
	})
	if resp.StatusCode != stdhttp.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409, body %s", resp.StatusCode, body)
	}
}

func TestEmailVerificationActivates(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "vera")

	resp, body := doJSON(t, ts, "GET", "/api/users/me", token, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("get me status = %d, body %s", resp.StatusCode, body)
	}
	var me struct {
		Status        string `json:"status"`
		EmailVerified bool   `json:"emailVerified"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Status != "PENDING_VERIFICATION" {
		t.Fatalf("status after register = %q, want PENDING_VERIFICATION", me.Status)
	}

	resp, body = doJSON(t, ts, "POST", "/api/users/me/verify-email", token, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("verify email status = %d, body %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if !me.EmailVerified || me.Status != "ACTIVE" {
		t.Fatalf("after verify: emailVerified=%v status=%q, want true/ACTIVE", me.EmailVerified, me.Status)
	}

	resp, body = doJSON(t, ts, "GET", "/api/users/active-count", token, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("active count status = %d, body %s", resp.StatusCode, body)
	}
	var count struct {
		ActiveUsers int64 `json:"activeUsers"`
	}
	if err := json.Unmarshal(body, &count); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	if count.ActiveUsers != 1 {
		t.Fatalf("activeUsers = %d, want 1", count.ActiveUsers)
	}
}

func TestSavingsGoalLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "carol")

	resp, body := doJSON(t, ts, "POST", "/api/savings-goals", token, map[string]any{
		"name":         "Laptop",
		"category":     "PURCHASE",
		"targetAmount": "1000.00",
	})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, body)
	}
	var goal struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &goal); err != nil {
		t.Fatalf("decode goal: %v", err)
	}

	path := fmt.Sprintf("/api/savings-goals/%d", goal.ID)

	resp, body = doJSON(t, ts, "POST", path+"/deposit", token, map[string]string{"amount": "600.00"})
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("deposit status = %d, body %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, ts, "POST", path+"/deposit", token, map[string]string{"amount": "400.00"})
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("second deposit status = %d, body %s", resp.StatusCode, body)
	}
	var after struct {
		Completed bool `json:"isCompleted"`
	}
	if err := json.Unmarshal(body, &after); err != nil {
		t.Fatalf("decode goal: %v", err)
	}
	if !after.Completed {
		t.Fatal("goal not completed after reaching target")
	}

	resp, body = doJSON(t, ts, "POST", path+"/withdraw", token, map[string]string{"amount": "2000.00"})
	if resp.StatusCode != stdhttp.StatusConflict {
		t.Fatalf("over-withdraw status = %d, body %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, ts, "GET", "/api/savings-goals/statistics", token, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("summary status = %d, body %s", resp.StatusCode, body)
	}
}

func TestTimeLockOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "dave")

	resp, body := doJSON(t, ts, "POST", "/api/savings-goals", token, map[string]any{
		"name":         "Emergency fund",
		"category":     "EMERGENCY",
		"targetAmount": "5000.00",
	})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, body)
	}
	var goal struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &goal); err != nil {
		t.Fatalf("decode goal: %v", err)
	}
	path := fmt.Sprintf("/api/savings-goals/%d", goal.ID)

	until := time.Now().UTC().Add(24 * time.Hour)
	resp, body = doJSON(t, ts, "POST", path+"/lock", token, map[string]any{"lockedUntil": until})
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("lock status = %d, body %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, ts, "POST", path+"/deposit", token, map[string]string{"amount": "10.00"})
	if resp.StatusCode != stdhttp.StatusConflict {
		t.Fatalf("locked deposit status = %d, want 409", resp.StatusCode)
	}

	resp, _ = doJSON(t, ts, "POST", path+"/unlock", token, nil)
	if resp.StatusCode != stdhttp.StatusConflict {
		t.Fatalf("early unlock status = %d, want 409", resp.StatusCode)
	}

	resp, _ = doJSON(t, ts, "DELETE", path, token, nil)
	if resp.StatusCode != stdhttp.StatusConflict {
		t.Fatalf("locked delete status = %d, want 409", resp.StatusCode)
	}
}

func TestOwnerScoping(t *testing.T) {
	ts := newTestServer(t)
	owner := registerAndLogin(t, ts, "erin")
	other := registerAndLogin(t, ts, "frank")

	resp, body := doJSON(t, ts, "POST", "/api/goals", owner, map[string]any{
		"title":       "Read 12 books",
		"type":        "PERSONAL",
		"unit":        "books",
		"targetValue": 12,
	})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, body)
	}
	var goal struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &goal); err != nil {
		t.Fatalf("decode goal: %v", err)
	}

	resp, _ = doJSON(t, ts, "GET", fmt.Sprintf("/api/goals/%d", goal.ID), other, nil)
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("cross-user read status = %d, want 404", resp.StatusCode)
	}
}

func TestGoalProgressOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "grace")

	resp, body := doJSON(t, ts, "POST", "/api/goals", token, map[string]any{
		"title":       "Morning runs",
		"type":        "BEHAVIORAL",
		"unit":        "runs",
		"targetValue": 10,
	})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, body)
	}
	var goal struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &goal); err != nil {
		t.Fatalf("decode goal: %v", err)
	}
	path := fmt.Sprintf("/api/goals/%d", goal.ID)

	resp, body = doJSON(t, ts, "PATCH", path+"/progress", token, map[string]any{"currentValue": 10})
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("progress status = %d, body %s", resp.StatusCode, body)
	}
	var after struct {
		Progress  int  `json:"progress"`
		Completed bool `json:"isCompleted"`
	}
	if err := json.Unmarshal(body, &after); err != nil {
		t.Fatalf("decode goal: %v", err)
	}
	if after.Progress != 100 || !after.Completed {
		t.Fatalf("progress = %d completed = %v, want 100 and true", after.Progress, after.Completed)
	}

	resp, _ = doJSON(t, ts, "PATCH", path+"/progress", token, map[string]any{"currentValue": -1})
	if resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("negative progress status = %d, want 400", resp.StatusCode)
	}
}

func TestPaymentNotificationOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "henry")

	resp, body := doJSON(t, ts, "POST", "/api/payments/notifications", token, map[string]string{
		"amount":         "250.00",
		"receiptNumber":  "QCX12345",
		"transactionId":  "TX-778",
		"recipientPhone": "+254700000001",
		"merchant":       "Naivas",
	})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("notification status = %d, body %s", resp.StatusCode, body)
	}
	var tx struct {
		Type     string `json:"type"`
		Source   string `json:"source"`
		Status   string `json:"status"`
		Merchant string `json:"merchant"`
	}
	if err := json.Unmarshal(body, &tx); err != nil {
		t.Fatalf("decode transaction: %v", err)
	}
	if tx.Type != "EXPENSE" || tx.Source != "MPESA" || tx.Status != "COMPLETED" {
		t.Fatalf("unexpected transaction %+v", tx)
	}

	resp, body = doJSON(t, ts, "POST", "/api/payments/notifications", token, map[string]string{
		"amount": "250.00",
	})
	if resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("incomplete notification status = %d, body %s", resp.StatusCode, body)
	}
}

func TestTransactionValidationAndSummary(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "iris")

	resp, body := doJSON(t, ts, "POST", "/api/transactions", token, map[string]any{
		"amount":      "120.50",
		"type":        "EXPENSE",
		"category":    "FOOD",
		"source":      "MANUAL",
		"description": "Lunch",
	})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, ts, "POST", "/api/transactions", token, map[string]any{
		"amount":      "120.50",
		"type":        "SIDEWAYS",
		"category":    "FOOD",
		"source":      "MANUAL",
		"description": "Lunch",
	})
	if resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("bad type status = %d, body %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, ts, "GET", "/api/transactions/monthly-summary", token, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("monthly summary status = %d, body %s", resp.StatusCode, body)
	}
	var summary struct {
		TransactionCount int `json:"transactionCount"`
	}
	if err := json.Unmarshal(body, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TransactionCount != 1 {
		t.Fatalf("transactionCount = %d, want 1", summary.TransactionCount)
	}

	resp, _ = doJSON(t, ts, "GET", "/api/transactions/statistics", token, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("statistics status = %d", resp.StatusCode)
	}
}

func TestUsageOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "judy")

	resp, body := doJSON(t, ts, "POST", "/api/app-usage", token, map[string]any{
		"appName":  "instagram",
		"duration": 30,
		"category": "SOCIAL_MEDIA",
	})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("record status = %d, body %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, ts, "GET", "/api/app-usage/summary", token, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("summary status = %d, body %s", resp.StatusCode, body)
	}
	var summary struct {
		TotalMinutes int `json:"totalMinutes"`
	}
	if err := json.Unmarshal(body, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalMinutes != 30 {
		t.Fatalf("totalMinutes = %d, want 30", summary.TotalMinutes)
	}

	resp, _ = doJSON(t, ts, "POST", "/api/app-usage", token, map[string]any{
		"appName":  "instagram",
		"duration": -5,
		"category": "SOCIAL_MEDIA",
	})
	if resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("negative duration status = %d, want 400", resp.StatusCode)
	}
}

func TestVerifyToken(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "kevin")

	resp, body := doJSON(t, ts, "GET", "/api/auth/verify-token", token, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("verify status = %d, body %s", resp.StatusCode, body)
	}
	var u struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if u.Username != "kevin" {
		t.Fatalf("username = %q, want kevin", u.Username)
	}

	resp, _ = doJSON(t, ts, "GET", "/api/auth/verify-token", "garbage", nil)
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("garbage token status = %d, want 401", resp.StatusCode)
	}
}

func TestSavingsGoalViews(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "lena")

	create := func(name, target, current string) int64 {
		resp, body := doJSON(t, ts, "POST", "/api/savings-goals", token, map[string]any{
			"name":          name,
			"category":      "OTHER",
			"targetAmount":  target,
			"currentAmount": current,
		})
		if resp.StatusCode != stdhttp.StatusCreated {
			t.Fatalf("create %s status = %d, body %s", name, resp.StatusCode, body)
		}
		var g struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(body, &g); err != nil {
			t.Fatalf("decode goal: %v", err)
		}
		return g.ID
	}

	create("open", "100.00", "10.00")
	create("done", "100.00", "100.00")
	lockedID := create("locked", "100.00", "0.00")

	until := time.Now().UTC().Add(time.Hour)
	resp, body := doJSON(t, ts, "POST", fmt.Sprintf("/api/savings-goals/%d/lock", lockedID), token,
		map[string]any{"lockedUntil": until})
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("lock status = %d, body %s", resp.StatusCode, body)
	}

	count := func(path string) int {
		resp, body := doJSON(t, ts, "GET", path, token, nil)
		if resp.StatusCode != stdhttp.StatusOK {
			t.Fatalf("%s status = %d, body %s", path, resp.StatusCode, body)
		}
		var list []json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		return len(list)
	}

	if got := count("/api/savings-goals/active"); got != 2 {
		t.Fatalf("active count = %d, want 2", got)
	}
	if got := count("/api/savings-goals/completed"); got != 1 {
		t.Fatalf("completed count = %d, want 1", got)
	}
	if got := count("/api/savings-goals/time-locked"); got != 1 {
		t.Fatalf("time-locked count = %d, want 1", got)
	}
}

func TestTransactionSearchRoutes(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "moira")

	record := func(desc, amount string) {
		resp, body := doJSON(t, ts, "POST", "/api/transactions", token, map[string]any{
			"amount":      amount,
			"type":        "EXPENSE",
			"category":    "FOOD",
			"source":      "MANUAL",
			"description": desc,
		})
		if resp.StatusCode != stdhttp.StatusCreated {
			t.Fatalf("create status = %d, body %s", resp.StatusCode, body)
		}
	}
	record("Lunch at Naivas", "120.00")
	record("Bus fare", "45.00")

	count := func(path string) int {
		resp, body := doJSON(t, ts, "GET", path, token, nil)
		if resp.StatusCode != stdhttp.StatusOK {
			t.Fatalf("%s status = %d, body %s", path, resp.StatusCode, body)
		}
		var list []json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		return len(list)
	}

	if got := count("/api/transactions/search?q=naivas"); got != 1 {
		t.Fatalf("search count = %d, want 1", got)
	}
	if got := count("/api/transactions/amount-range?min=100.00"); got != 1 {
		t.Fatalf("amount-range count = %d, want 1", got)
	}
	if got := count("/api/transactions/pending"); got != 0 {
		t.Fatalf("pending count = %d, want 0", got)
	}

	resp, _ := doJSON(t, ts, "GET", "/api/transactions/search", token, nil)
	if resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("missing search term status = %d, want 400", resp.StatusCode)
	}
	resp, _ = doJSON(t, ts, "GET", "/api/transactions/date-range?from=2025-01-01", token, nil)
	if resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("half date range status = %d, want 400", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, "GET", "/healthz", "", nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	resp, body := doJSON(t, ts, "GET", "/metrics", "", nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
	var m struct {
		TotalRequests int64 `json:"totalRequests"`
	}
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if m.TotalRequests < 1 {
		t.Fatalf("totalRequests = %d, want at least 1", m.TotalRequests)
	}
}
