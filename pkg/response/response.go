package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NICANORKYAMBA/bank-system-sub000/internal/ledger"
)

const (
	CodeSuccess     = 0
	CodeParamError  = 400
	CodeNotFound    = 404
	CodeServerError = 500
)

// Business error codes, one per ledger failure kind.
const (
	CodeInvalidAmount       = 1001
	CodeInvalidMovement     = 1002
	CodeAccountNotFound     = 1003
	CodeAccountNotActive    = 1004
	CodeInsufficientBalance = 1005
	CodeSameAccountTransfer = 1006
	CodeOwnerMismatch       = 1007
	CodeCurrencyMismatch    = 1008
	CodeTransactionNotFound = 1009
	CodeAlreadyReversed     = 1010
	CodeNotReversible       = 1011
	CodeConflict            = 1012
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, status, code int, message string) {
	c.JSON(status, Response{
		Code:    code,
		Message: message,
	})
}

func ParamError(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeParamError, message)
}

// FromError maps a ledger failure to its HTTP status and business code:
// validation and precondition failures are 400, missing resources 404,
// contention 409, anything untagged 500.
func FromError(c *gin.Context, err error) {
	kind := ledger.KindOf(err)
	switch kind {
	case ledger.KindInvalidAmount:
		Error(c, http.StatusBadRequest, CodeInvalidAmount, err.Error())
	case ledger.KindInvalidMovement:
		Error(c, http.StatusBadRequest, CodeInvalidMovement, err.Error())
	case ledger.KindAccountNotActive:
		Error(c, http.StatusBadRequest, CodeAccountNotActive, err.Error())
	case ledger.KindInsufficientBalance:
		Error(c, http.StatusBadRequest, CodeInsufficientBalance, err.Error())
	case ledger.KindSameAccountTransfer:
		Error(c, http.StatusBadRequest, CodeSameAccountTransfer, err.Error())
	case ledger.KindOwnerMismatch:
		Error(c, http.StatusBadRequest, CodeOwnerMismatch, err.Error())
	case ledger.KindCurrencyMismatch:
		Error(c, http.StatusBadRequest, CodeCurrencyMismatch, err.Error())
	case ledger.KindAlreadyReversed:
		Error(c, http.StatusBadRequest, CodeAlreadyReversed, err.Error())
	case ledger.KindNotReversible:
		Error(c, http.StatusBadRequest, CodeNotReversible, err.Error())
	case ledger.KindAccountNotFound:
		Error(c, http.StatusNotFound, CodeAccountNotFound, err.Error())
	case ledger.KindTransactionNotFound:
		Error(c, http.StatusNotFound, CodeTransactionNotFound, err.Error())
	case ledger.KindConflict:
		Error(c, http.StatusConflict, CodeConflict, err.Error())
	default:
		Error(c, http.StatusInternalServerError, CodeServerError, "internal error")
	}
}
