package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolaglobo/mmf-api/internal/adapter/handler"
	"github.com/dolaglobo/mmf-api/internal/adapter/storage/memory"
	"github.com/dolaglobo/mmf-api/internal/core/admins"
	"github.com/dolaglobo/mmf-api/internal/core/approval"
	"github.com/dolaglobo/mmf-api/internal/core/audit"
	"github.com/dolaglobo/mmf-api/internal/core/interest"
	"github.com/dolaglobo/mmf-api/internal/core/ledger"
	"github.com/dolaglobo/mmf-api/internal/core/statement"
	"github.com/dolaglobo/mmf-api/internal/core/wallet"
)

const testSecret = "test-secret"

func newApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()

	rate := decimal.RequireFromString("0.15")
	walletSvc := wallet.NewService(store, decimal.NewFromInt(50), "4114517", rate)
	auditSvc := audit.NewService(store)
	adminSvc := admins.NewService(store)

	h := &handler.Handlers{
		Auth:        &handler.AuthHandler{Wallet: walletSvc, Secret: testSecret},
		Account:     &handler.AccountHandler{Wallet: walletSvc},
		MobileMoney: &handler.MobileMoneyHandler{Wallet: walletSvc},
		Statement:   &handler.StatementHandler{Statements: statement.NewService(store, "")},
		Approval:    &handler.ApprovalHandler{Gateway: approval.NewGateway(store, "")},
		Interest:    &handler.InterestHandler{Engine: interest.NewEngine(store, auditSvc, rate)},
		Admin: &handler.AdminHandler{
			Admins:       adminSvc,
			Ledger:       ledger.NewService(store),
			Transactions: store,
			Secret:       testSecret,
		},
		Audit:       &handler.AuditHandler{Audit: auditSvc},
		Secret:      testSecret,
		AdminLoader: adminSvc,
	}

	app := fiber.New()
	h.Register(app)
	return app, store
}

func request(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func signupCustomer(t *testing.T, app *fiber.App, phone string) string {
	t.Helper()
	resp, body := request(t, app, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"phone": phone, "name": "Amina Odhiambo", "pin": "1234",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["access_token"].(string)
}

func registerAdmin(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, body := request(t, app, http.MethodPost, "/api/admin/auth/register", "", fiber.Map{
		"email": email, "name": "Staff", "password": "longenough",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["access_token"].(string)
}

func TestHealth(t *testing.T) {
	app, _ := newApp(t)
	resp, body := request(t, app, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestAuthRequired(t *testing.T) {
	app, _ := newApp(t)

	resp, _ := request(t, app, http.MethodGet, "/api/account", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = request(t, app, http.MethodGet, "/api/admin/overview", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// customer tokens do not open the admin surface
	token := signupCustomer(t, app, "0712345678")
	resp, _ = request(t, app, http.MethodGet, "/api/admin/overview", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDepositFlow(t *testing.T) {
	app, _ := newApp(t)
	customerToken := signupCustomer(t, app, "0712345678")
	adminToken := registerAdmin(t, app, "root@example.com") // first admin is super_admin

	// initiate
	resp, body := request(t, app, http.MethodPost, "/api/deposits", customerToken, fiber.Map{"amount": 1000})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	txnID := body["transaction_id"].(string)
	instructions := body["instructions"].(map[string]any)
	assert.Equal(t, "4114517", instructions["paybill"])

	// confirm payment
	resp, _ = request(t, app, http.MethodPost, "/api/deposits/"+txnID+"/confirm", customerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// staff verifies, money lands
	resp, _ = request(t, app, http.MethodPost, "/api/admin/deposits/"+txnID+"/verify", adminToken, fiber.Map{"note": "checked"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = request(t, app, http.MethodGet, "/api/account", customerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	account := body["account"].(map[string]any)
	assert.Equal(t, "1000", fmt.Sprintf("%v", account["balance"]))
}

func TestDepositBelowMinimum(t *testing.T) {
	app, _ := newApp(t)
	token := signupCustomer(t, app, "0712345678")

	resp, _ := request(t, app, http.MethodPost, "/api/deposits", token, fiber.Map{"amount": 49})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWithdrawalFlow(t *testing.T) {
	app, _ := newApp(t)
	customerToken := signupCustomer(t, app, "0712345678")
	adminToken := registerAdmin(t, app, "root@example.com")

	// fund the account through the deposit flow
	resp, body := request(t, app, http.MethodPost, "/api/deposits", customerToken, fiber.Map{"amount": 2000})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	depositID := body["transaction_id"].(string)
	request(t, app, http.MethodPost, "/api/deposits/"+depositID+"/confirm", customerToken, nil)
	request(t, app, http.MethodPost, "/api/admin/deposits/"+depositID+"/verify", adminToken, nil)

	resp, body = request(t, app, http.MethodPost, "/api/withdrawals", customerToken, fiber.Map{"amount": 500})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	txnID := body["transaction_id"].(string)

	resp, _ = request(t, app, http.MethodPost, "/api/admin/withdrawals/"+txnID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = request(t, app, http.MethodPost, "/api/admin/withdrawals/"+txnID+"/complete", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = request(t, app, http.MethodGet, "/api/account", customerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	account := body["account"].(map[string]any)
	assert.Equal(t, "1500", fmt.Sprintf("%v", account["balance"]))

	// completing twice conflicts
	resp, _ = request(t, app, http.MethodPost, "/api/admin/withdrawals/"+txnID+"/complete", adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestViewOnlyAdminForbidden(t *testing.T) {
	app, _ := newApp(t)
	customerToken := signupCustomer(t, app, "0712345678")
	registerAdmin(t, app, "root@example.com")
	viewerToken := registerAdmin(t, app, "viewer@example.com") // second admin starts view_only

	resp, body := request(t, app, http.MethodPost, "/api/deposits", customerToken, fiber.Map{"amount": 1000})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	txnID := body["transaction_id"].(string)
	request(t, app, http.MethodPost, "/api/deposits/"+txnID+"/confirm", customerToken, nil)

	resp, _ = request(t, app, http.MethodPost, "/api/admin/deposits/"+txnID+"/verify", viewerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// reads are open to any staff tier
	resp, _ = request(t, app, http.MethodGet, "/api/admin/customers", viewerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// the audit log is not
	resp, _ = request(t, app, http.MethodGet, "/api/admin/audit", viewerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStatementRequestFlow(t *testing.T) {
	app, _ := newApp(t)
	customerToken := signupCustomer(t, app, "0712345678")
	adminToken := registerAdmin(t, app, "root@example.com")

	resp, body := request(t, app, http.MethodPost, "/api/statements", customerToken, fiber.Map{"months": 3, "email": "amina@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reqID := body["id"].(string)
	assert.Equal(t, "pending", body["status"])

	for _, step := range []string{"start", "complete", "send"} {
		resp, _ = request(t, app, http.MethodPost, "/api/admin/statements/"+reqID+"/"+step, adminToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, "step %s", step)
	}

	resp, body = request(t, app, http.MethodGet, "/api/statements", customerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	requests := body["requests"].([]any)
	require.Len(t, requests, 1)
	assert.Equal(t, "sent", requests[0].(map[string]any)["status"])
}

func TestInterestDistributionEndpoint(t *testing.T) {
	app, _ := newApp(t)
	customerToken := signupCustomer(t, app, "0712345678")
	adminToken := registerAdmin(t, app, "root@example.com")

	resp, body := request(t, app, http.MethodPost, "/api/deposits", customerToken, fiber.Map{"amount": 10000})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	txnID := body["transaction_id"].(string)
	request(t, app, http.MethodPost, "/api/deposits/"+txnID+"/confirm", customerToken, nil)
	request(t, app, http.MethodPost, "/api/admin/deposits/"+txnID+"/verify", adminToken, nil)

	resp, body = request(t, app, http.MethodPost, "/api/admin/interest/distribute", adminToken, fiber.Map{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, "4.11", fmt.Sprintf("%v", body["total_distributed"]))

	// second run the same day credits nothing
	resp, body = request(t, app, http.MethodPost, "/api/admin/interest/distribute", adminToken, fiber.Map{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["count"])
}
