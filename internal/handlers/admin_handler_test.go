package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	apperrors "finhub/internal/errors"
	"finhub/internal/export"
	"finhub/internal/middleware"
	"finhub/internal/models"
	"finhub/internal/pagination"
)

func setupAdminRouter(handler *AdminHandler) *gin.Engine {
	r := newTestRouter()
	r.POST("/admin/login", handler.Login)
	g := r.Group("/admin")
	g.GET("/users", handler.ListUsers)
	g.GET("/users/:id", handler.GetUser)
	g.GET("/goals", handler.ListGoals)
	g.GET("/goals/:id", handler.GetGoal)
	g.GET("/transactions", handler.ListTransactions)
	g.GET("/transactions/export", handler.ExportTransactions)
	g.GET("/transactions/:id", handler.GetTransaction)
	g.GET("/bills", handler.ListBills)
	g.GET("/bills/:id", handler.GetBill)
	g.GET("/balances", handler.ListBalances)
	g.GET("/balances/:id", handler.GetBalance)
	return r
}

func TestAdminHandler_Login(t *testing.T) {
	t.Run("issues an admin token", func(t *testing.T) {
		tokens := newTestTokens()
		r := setupAdminRouter(NewAdminHandler(&mockAdminService{}, tokens))

		rec := doRequest(r, http.MethodPost, "/admin/login", `{"username":"admin","password":"s3cret"}`)
		assertStatus(t, rec, http.StatusOK)

		token, _ := parseJSON(t, rec)["token"].(string)
		claims, err := tokens.Parse(token)
		if err != nil {
			t.Fatalf("token did not verify: %v", err)
		}
		if claims.Role != middleware.RoleAdmin || claims.Username != "admin" || claims.UserID != 0 {
			t.Errorf("unexpected claims: %+v", claims)
		}
	})

	t.Run("returns 401 on bad credentials", func(t *testing.T) {
		adminSvc := &mockAdminService{
			authenticateFn: func(_, _ string) error { return apperrors.ErrInvalidCredentials },
		}
		r := setupAdminRouter(NewAdminHandler(adminSvc, newTestTokens()))

		rec := doRequest(r, http.MethodPost, "/admin/login", `{"username":"admin","password":"nope"}`)
		assertStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("returns 503 when not configured", func(t *testing.T) {
		adminSvc := &mockAdminService{
			authenticateFn: func(_, _ string) error { return apperrors.ErrAdminDisabled },
		}
		r := setupAdminRouter(NewAdminHandler(adminSvc, newTestTokens()))

		rec := doRequest(r, http.MethodPost, "/admin/login", `{"username":"admin","password":"x"}`)
		assertStatus(t, rec, http.StatusServiceUnavailable)
	})
}

func TestAdminHandler_Lists(t *testing.T) {
	var gotPage pagination.PageRequest
	adminSvc := &mockAdminService{
		listUsersFn: func(page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
			gotPage = page
			resp := pagination.NewPageResponse([]models.User{{Name: "Ada"}}, 1, 10, 1)
			return &resp, nil
		},
		getBillFn: func(_ uint) (*models.AdminBill, error) {
			return nil, apperrors.ErrBillNotFound
		},
	}
	r := setupAdminRouter(NewAdminHandler(adminSvc, newTestTokens()))

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"users", "/admin/users?page=1&page_size=10", http.StatusOK},
		{"user", "/admin/users/1", http.StatusOK},
		{"goals", "/admin/goals", http.StatusOK},
		{"goal", "/admin/goals/1", http.StatusOK},
		{"transactions", "/admin/transactions", http.StatusOK},
		{"transaction", "/admin/transactions/1", http.StatusOK},
		{"bills", "/admin/bills", http.StatusOK},
		{"missing bill", "/admin/bills/1", http.StatusNotFound},
		{"balances", "/admin/balances", http.StatusOK},
		{"balance", "/admin/balances/1", http.StatusOK},
		{"bad id", "/admin/balances/x", http.StatusBadRequest},
		{"bad page", "/admin/goals?page=-1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(r, http.MethodGet, tt.path, "")
			assertStatus(t, rec, tt.wantStatus)
		})
	}

	if gotPage.PageSize != 10 {
		t.Errorf("expected page_size 10 to be forwarded, got %d", gotPage.PageSize)
	}
}

func TestAdminHandler_ExportTransactions(t *testing.T) {
	t.Run("returns a workbook", func(t *testing.T) {
		adminSvc := &mockAdminService{
			allTransactionsFn: func() ([]models.AdminTransaction, error) {
				return []models.AdminTransaction{{UserName: "Ada"}}, nil
			},
		}
		r := setupAdminRouter(NewAdminHandler(adminSvc, newTestTokens()))

		rec := doRequest(r, http.MethodGet, "/admin/transactions/export", "")
		assertStatus(t, rec, http.StatusOK)
		if ct := rec.Header().Get("Content-Type"); ct != export.ContentTypeXLSX {
			t.Errorf("unexpected content type %q", ct)
		}

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		if err != nil {
			t.Fatalf("response is not a workbook: %v", err)
		}
		defer func() { _ = f.Close() }()
		rows, err := f.GetRows(export.TransactionsSheet)
		if err != nil || len(rows) != 2 {
			t.Errorf("expected header and one row, got %d (%v)", len(rows), err)
		}
	})

	t.Run("returns JSON error when the query fails", func(t *testing.T) {
		adminSvc := &mockAdminService{
			allTransactionsFn: func() ([]models.AdminTransaction, error) {
				return nil, apperrors.Wrap(apperrors.ErrPersistence, errors.New("boom"))
			},
		}
		r := setupAdminRouter(NewAdminHandler(adminSvc, newTestTokens()))

		rec := doRequest(r, http.MethodGet, "/admin/transactions/export", "")
		assertStatus(t, rec, http.StatusInternalServerError)
		assertErrorCode(t, parseJSON(t, rec), "PERSISTENCE_ERROR")
	})
}
