package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/NICANORKYAMBA/bank-system-sub000/internal/ledger"
	"github.com/NICANORKYAMBA/bank-system-sub000/internal/model"
	"github.com/NICANORKYAMBA/bank-system-sub000/pkg/response"
)

// Handler exposes the transaction engine and account management over HTTP.
type Handler struct {
	engine   *ledger.Engine
	accounts *ledger.AccountService
}

func NewHandler(engine *ledger.Engine, accounts *ledger.AccountService) *Handler {
	return &Handler{
		engine:   engine,
		accounts: accounts,
	}
}

// ============================================================
// Movements
// ============================================================

type CreateMovementRequest struct {
	Type                 string          `json:"type" binding:"required,oneof=deposit withdrawal transfer"`
	Amount               decimal.Decimal `json:"amount" binding:"required"`
	SourceAccountID      int64           `json:"source_account_id" binding:"required"`
	DestinationAccountID *int64          `json:"destination_account_id"`
	UserID               int64           `json:"user_id" binding:"required"`
	Description          string          `json:"description"`
}

type MovementResponse struct {
	Transaction             *model.Transaction `json:"transaction"`
	SourceBalanceAfter      decimal.Decimal    `json:"source_balance_after"`
	DestinationBalanceAfter *decimal.Decimal   `json:"destination_balance_after,omitempty"`
	Message                 string             `json:"message"`
}

// CreateMovement executes one deposit, withdrawal or transfer.
// POST /api/v1/transactions
func (h *Handler) CreateMovement(c *gin.Context) {
	var req CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.engine.CreateMovement(c.Request.Context(), &ledger.MovementRequest{
		Type:                 req.Type,
		Amount:               req.Amount,
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		UserID:               req.UserID,
		Description:          req.Description,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, MovementResponse{
		Transaction:             result.Transaction,
		SourceBalanceAfter:      result.SourceBalanceAfter,
		DestinationBalanceAfter: result.DestinationBalanceAfter,
		Message:                 req.Type + " completed",
	})
}

// ReverseMovement undoes a prior transfer.
// POST /api/v1/transactions/:id/reverse
func (h *Handler) ReverseMovement(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid transaction id")
		return
	}

	result, err := h.engine.ReverseMovement(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, MovementResponse{
		Transaction:             result.Transaction,
		SourceBalanceAfter:      result.SourceBalanceAfter,
		DestinationBalanceAfter: result.DestinationBalanceAfter,
		Message:                 "transfer reversed",
	})
}

// GetTransaction fetches one ledger entry.
// GET /api/v1/transactions/:id
func (h *Handler) GetTransaction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid transaction id")
		return
	}

	txn, err := h.engine.GetTransaction(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, txn)
}

// ListAccountTransactions lists entries touching an account, newest first.
// GET /api/v1/accounts/:id/transactions?page=1&page_size=10
func (h *Handler) ListAccountTransactions(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid account id")
		return
	}
	page, pageSize := pageParams(c)

	txns, total, err := h.engine.ListByAccount(c.Request.Context(), id, page, pageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"list":      txns,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ListUserTransactions lists entries initiated by a user, newest first.
// GET /api/v1/users/:id/transactions?page=1&page_size=10
func (h *Handler) ListUserTransactions(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid user id")
		return
	}
	page, pageSize := pageParams(c)

	txns, total, err := h.engine.ListByUser(c.Request.Context(), id, page, pageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"list":      txns,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetStatement builds a date-ranged statement for an account.
// GET /api/v1/accounts/:id/statement?from=2024-01-01&to=2024-01-31
func (h *Handler) GetStatement(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid account id")
		return
	}

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		response.ParamError(c, "from must be a yyyy-mm-dd date")
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		response.ParamError(c, "to must be a yyyy-mm-dd date")
		return
	}
	// make the range inclusive of the whole end day
	to = to.Add(24*time.Hour - time.Nanosecond)

	statement, err := h.engine.GetStatement(c.Request.Context(), id, from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, statement)
}

// ============================================================
// Accounts
// ============================================================

type OpenAccountRequest struct {
	UserID         int64           `json:"user_id" binding:"required"`
	Currency       string          `json:"currency" binding:"required"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// OpenAccount creates an active account.
// POST /api/v1/accounts
func (h *Handler) OpenAccount(c *gin.Context) {
	var req OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	account, err := h.accounts.Open(c.Request.Context(), req.UserID, req.Currency, req.OpeningBalance)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, account)
}

// GetAccount fetches one account.
// GET /api/v1/accounts/:id
func (h *Handler) GetAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid account id")
		return
	}

	account, err := h.accounts.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, account)
}

// ListUserAccounts lists a user's accounts.
// GET /api/v1/users/:id/accounts
func (h *Handler) ListUserAccounts(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid user id")
		return
	}

	accounts, err := h.accounts.ListByUser(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"list": accounts})
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	return page, pageSize
}
