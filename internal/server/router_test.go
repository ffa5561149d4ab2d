package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"finhub/internal/bank"
	"finhub/internal/config"
	"finhub/internal/middleware"
	"finhub/internal/testutil"
	"finhub/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

type testServer struct {
	router *gin.Engine
	tokens *middleware.TokenManager
}

func newTestServer(t *testing.T, bankURL string) *testServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	cfg := &config.Config{
		CORSAllowedOrigin: "*",
		AdminUsername:     "admin",
		AdminPassword:     "s3cret",
	}
	tokens := middleware.NewTokenManager("router-test-secret", time.Hour)
	client := bank.NewClient(bankURL, "test-key", &http.Client{Timeout: 5 * time.Second})

	return &testServer{
		router: NewRouter(Deps{Config: cfg, DB: db, Tokens: tokens, Bank: client}),
		tokens: tokens,
	}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	// Proxied bank responses may be arrays; only objects are returned parsed.
	var parsed interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("%s %s: invalid JSON: %v\nbody: %s", method, path, err, rec.Body.String())
		}
	}
	obj, _ := parsed.(map[string]interface{})
	return rec, obj
}

func (s *testServer) mustDo(t *testing.T, method, path, token, body string, want int) map[string]interface{} {
	t.Helper()
	rec, parsed := s.do(t, method, path, token, body)
	if rec.Code != want {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, path, want, rec.Code, rec.Body.String())
	}
	return parsed
}

// registerAndLogin creates a user and returns its bearer token.
func (s *testServer) registerAndLogin(t *testing.T, email string) string {
	t.Helper()
	s.mustDo(t, http.MethodPost, "/api/v1/auth/register", "",
		fmt.Sprintf(`{"name":"Test User","email":%q,"password":"password123"}`, email), http.StatusCreated)
	login := s.mustDo(t, http.MethodPost, "/api/v1/auth/login", "",
		fmt.Sprintf(`{"email":%q,"password":"password123"}`, email), http.StatusOK)
	token, _ := login["token"].(string)
	if token == "" {
		t.Fatalf("login returned no token: %v", login)
	}
	return token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:0")
	body := s.mustDo(t, http.MethodGet, "/api/health", "", "", http.StatusOK)
	if body["status"] != "ok" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestDashboardFlow(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:0")
	token := s.registerAndLogin(t, "flow@example.com")
	now := time.Now().UTC()

	s.mustDo(t, http.MethodPost, "/api/v1/transactions", token,
		`{"type":"income","category":"Salary","amount":"1000"}`, http.StatusCreated)
	s.mustDo(t, http.MethodPut, "/api/v1/balances", token,
		fmt.Sprintf(`{"year":%d,"month":%d,"balance":"1000"}`, now.Year(), int(now.Month())), http.StatusOK)

	body := s.mustDo(t, http.MethodGet, "/api/v1/analytics/summary", token, "", http.StatusOK)
	summary := body["summary"].(map[string]interface{})
	if summary["current_balance"] != "1000" {
		t.Errorf("current_balance = %v, want 1000", summary["current_balance"])
	}
	if summary["monthly_income"] != "1000" {
		t.Errorf("monthly_income = %v, want 1000", summary["monthly_income"])
	}
	if summary["monthly_expenses"] != "0" {
		t.Errorf("monthly_expenses = %v, want 0", summary["monthly_expenses"])
	}

	path := fmt.Sprintf("/api/v1/balances/%d/%d", now.Year(), int(now.Month()))
	balance := s.mustDo(t, http.MethodGet, path, token, "", http.StatusOK)["balance"].(map[string]interface{})
	if balance["balance"] != "1000" {
		t.Errorf("balance = %v, want 1000", balance["balance"])
	}
}

func TestGoalFlow(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:0")
	token := s.registerAndLogin(t, "goals@example.com")

	created := s.mustDo(t, http.MethodPost, "/api/v1/goals", token,
		`{"type":"saving_goals","title":"Emergency fund","extra_data":{"target_amount":"5000","current_amount":"250","deadline":"2030-01-01"}}`,
		http.StatusCreated)
	goal := created["goal"].(map[string]interface{})
	if goal["target_amount"] == nil || goal["debt_name"] != nil {
		t.Errorf("unexpected goal columns: %v", goal)
	}
	goalID := int(goal["id"].(float64))

	s.mustDo(t, http.MethodPost, "/api/v1/goals", token,
		`{"type":"debt_reduction_goals","title":"Card","extra_data":{"debt_name":"Visa","initial_debt":"1200","remaining_debt":"800"}}`,
		http.StatusCreated)
	s.mustDo(t, http.MethodPost, "/api/v1/goals", token,
		`{"type":"travel_goals","title":"Nope","extra_data":{}}`, http.StatusBadRequest)

	details := s.mustDo(t, http.MethodGet, "/api/v1/goals/details", token, "", http.StatusOK)
	if n := len(details["goals"].([]interface{})); n != 2 {
		t.Errorf("expected 2 goals, got %d", n)
	}
	byType := s.mustDo(t, http.MethodGet, "/api/v1/goals/type/saving_goals", token, "", http.StatusOK)
	if n := len(byType["goals"].([]interface{})); n != 1 {
		t.Errorf("expected 1 saving goal, got %d", n)
	}

	s.mustDo(t, http.MethodPost, "/api/v1/transactions", token,
		fmt.Sprintf(`{"type":"expense","amount":"100","goal_id":%d}`, goalID), http.StatusCreated)

	s.mustDo(t, http.MethodDelete, fmt.Sprintf("/api/v1/goals/%d", goalID), token, "", http.StatusOK)
	s.mustDo(t, http.MethodGet, fmt.Sprintf("/api/v1/goals/%d", goalID), token, "", http.StatusNotFound)

	txns := s.mustDo(t, http.MethodGet, "/api/v1/transactions", token, "", http.StatusOK)
	data := txns["data"].([]interface{})
	if len(data) != 1 || data[0].(map[string]interface{})["goal_id"] != nil {
		t.Errorf("expected the transaction to survive without a goal: %v", data)
	}
}

func TestBillFlow(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:0")
	token := s.registerAndLogin(t, "bills@example.com")
	due := time.Now().UTC().AddDate(0, 0, 3).Format("2006-01-02")

	created := s.mustDo(t, http.MethodPost, "/api/v1/bills", token,
		fmt.Sprintf(`{"name":"Rent","amount":"900","due_date":%q,"is_recurring":true,"recurrence_interval":"monthly"}`, due),
		http.StatusCreated)
	billID := int(created["bill"].(map[string]interface{})["id"].(float64))

	upcoming := s.mustDo(t, http.MethodGet, "/api/v1/bills/upcoming", token, "", http.StatusOK)
	if n := len(upcoming["bills"].([]interface{})); n != 1 {
		t.Fatalf("expected 1 upcoming bill, got %d", n)
	}

	paid := s.mustDo(t, http.MethodPost, fmt.Sprintf("/api/v1/bills/%d/pay", billID), token, "", http.StatusOK)
	if paid["next_bill"] == nil {
		t.Fatalf("expected a next occurrence: %v", paid)
	}

	upcoming = s.mustDo(t, http.MethodGet, "/api/v1/bills/upcoming?days=60", token, "", http.StatusOK)
	bills := upcoming["bills"].([]interface{})
	if len(bills) != 1 || int(bills[0].(map[string]interface{})["id"].(float64)) == billID {
		t.Errorf("expected only the next occurrence to be upcoming: %v", bills)
	}

	s.mustDo(t, http.MethodDelete, "/api/v1/bills/9999", token, "", http.StatusNotFound)
}

func TestUserIsolation(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:0")
	alice := s.registerAndLogin(t, "alice@example.com")
	bob := s.registerAndLogin(t, "bob@example.com")

	created := s.mustDo(t, http.MethodPost, "/api/v1/transactions", alice,
		`{"type":"expense","amount":"12.50"}`, http.StatusCreated)
	id := int(created["transaction"].(map[string]interface{})["id"].(float64))

	s.mustDo(t, http.MethodGet, fmt.Sprintf("/api/v1/transactions/%d", id), bob, "", http.StatusNotFound)
	s.mustDo(t, http.MethodDelete, fmt.Sprintf("/api/v1/transactions/%d", id), bob, "", http.StatusNotFound)
	s.mustDo(t, http.MethodGet, fmt.Sprintf("/api/v1/transactions/%d", id), alice, "", http.StatusOK)
}

func TestAuthBoundaries(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:0")

	s.mustDo(t, http.MethodGet, "/api/v1/goals", "", "", http.StatusUnauthorized)
	s.mustDo(t, http.MethodGet, "/api/v1/admin/users", "", "", http.StatusUnauthorized)

	userToken := s.registerAndLogin(t, "plain@example.com")
	s.mustDo(t, http.MethodGet, "/api/v1/admin/users", userToken, "", http.StatusForbidden)

	s.mustDo(t, http.MethodPost, "/api/v1/admin/login", "", `{"username":"admin","password":"wrong"}`, http.StatusUnauthorized)
	login := s.mustDo(t, http.MethodPost, "/api/v1/admin/login", "", `{"username":"admin","password":"s3cret"}`, http.StatusOK)
	adminToken := login["token"].(string)

	users := s.mustDo(t, http.MethodGet, "/api/v1/admin/users", adminToken, "", http.StatusOK)
	if users["total_items"].(float64) != 1 {
		t.Errorf("expected 1 user, got %v", users["total_items"])
	}

	// Admin tokens carry no user and cannot reach user routes.
	s.mustDo(t, http.MethodGet, "/api/v1/goals", adminToken, "", http.StatusUnauthorized)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/admin/transactions/export", adminToken, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get("Content-Disposition"), ".xlsx") {
		t.Errorf("export failed: %d %v", rec.Code, rec.Header())
	}
}

func TestBankProxy(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/enterprise/accounts":
			_, _ = w.Write([]byte(`[{"_id":"e1"}]`))
		case "/bills":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	s := newTestServer(t, upstream.URL)
	token := s.registerAndLogin(t, "bank@example.com")

	rec, _ := s.do(t, http.MethodGet, "/api/v1/bank/enterprise/accounts", token, "")
	if rec.Code != http.StatusOK || rec.Body.String() != `[{"_id":"e1"}]` {
		t.Errorf("unexpected proxy response: %d %s", rec.Code, rec.Body.String())
	}

	_, body := s.do(t, http.MethodGet, "/api/v1/bank/customer/bills", token, "")
	errObj, _ := body["error"].(map[string]interface{})
	if errObj["code"] != "UPSTREAM_ERROR" {
		t.Errorf("expected UPSTREAM_ERROR, got %v", body)
	}
	if strings.Contains(fmt.Sprint(body), "test-key") {
		t.Errorf("api key leaked: %v", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:0")
	rec, _ := s.do(t, http.MethodOptions, "/api/v1/goals", "", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}
}
