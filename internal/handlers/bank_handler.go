package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"finhub/internal/bank"
	apperrors "finhub/internal/errors"
	"finhub/internal/logger"
)

// BankClient is the upstream banking API as seen by the proxy handlers.
type BankClient interface {
	GetAccounts(ctx context.Context, scope bank.Scope, params url.Values) (json.RawMessage, error)
	GetAccount(ctx context.Context, scope bank.Scope, accountID string) (json.RawMessage, error)
	GetBills(ctx context.Context, scope bank.Scope) (json.RawMessage, error)
}

// BankHandler proxies read requests to the upstream banking API.
type BankHandler struct {
	client BankClient
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(client BankClient) *BankHandler {
	return &BankHandler{client: client}
}

func parseScope(c *gin.Context) (bank.Scope, error) {
	scope := bank.Scope(c.Param("scope"))
	if !scope.Valid() {
		return "", apperrors.WithMessage(apperrors.ErrNotFound, "Unknown bank scope")
	}
	return scope, nil
}

// respondUpstream writes body verbatim, or a generic upstream error. The
// underlying error is logged without the request URL.
func respondUpstream(c *gin.Context, op string, body json.RawMessage, err error) {
	if err != nil {
		logger.Get().Errorw("bank api request failed",
			"op", op,
			"error", err.Error(),
			"path", c.Request.URL.Path,
		)
		respondWithError(c, apperrors.ErrUpstream)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// GetAccounts lists bank accounts
// @Summary     List bank accounts
// @Description Proxy to the upstream banking API. Query parameters are forwarded.
// @Tags        bank
// @Produce     json
// @Security    BearerAuth
// @Param       scope path string true "API scope" Enums(customer, enterprise)
// @Success     200 {object} object "Upstream response"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Unknown scope"
// @Failure     500 {object} ErrorResponse "Upstream error"
// @Router      /bank/{scope}/accounts [get]
func (h *BankHandler) GetAccounts(c *gin.Context) {
	scope, err := parseScope(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	body, err := h.client.GetAccounts(c.Request.Context(), scope, c.Request.URL.Query())
	respondUpstream(c, "get_accounts", body, err)
}

// GetAccount fetches one bank account
// @Summary     Get bank account
// @Tags        bank
// @Produce     json
// @Security    BearerAuth
// @Param       scope     path string true "API scope" Enums(customer, enterprise)
// @Param       accountId path string true "Upstream account ID"
// @Success     200 {object} object "Upstream response"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Unknown scope"
// @Failure     500 {object} ErrorResponse "Upstream error"
// @Router      /bank/{scope}/accounts/{accountId} [get]
func (h *BankHandler) GetAccount(c *gin.Context) {
	scope, err := parseScope(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	body, err := h.client.GetAccount(c.Request.Context(), scope, c.Param("accountId"))
	respondUpstream(c, "get_account", body, err)
}

// GetBills lists bills known to the bank
// @Summary     List bank bills
// @Tags        bank
// @Produce     json
// @Security    BearerAuth
// @Param       scope path string true "API scope" Enums(customer, enterprise)
// @Success     200 {object} object "Upstream response"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Unknown scope"
// @Failure     500 {object} ErrorResponse "Upstream error"
// @Router      /bank/{scope}/bills [get]
func (h *BankHandler) GetBills(c *gin.Context) {
	scope, err := parseScope(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	body, err := h.client.GetBills(c.Request.Context(), scope)
	respondUpstream(c, "get_bills", body, err)
}
