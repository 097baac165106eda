package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by code, so errors.Is works against the
// constructor sentinels below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Currency resolution (CUR) ----

func ErrUnknownCurrency(token string) *AppError {
	return New("CUR_001", fmt.Sprintf("Unknown currency %q", token), http.StatusNotFound)
}

func ErrAliasCollision(alias, currencyID string) *AppError {
	return New("CUR_002", fmt.Sprintf("Alias %q already claimed by currency %q", alias, currencyID), http.StatusConflict)
}

func ErrNoPrimaryCurrency() *AppError {
	return New("CUR_003", "Exactly one currency must be marked primary", http.StatusInternalServerError)
}

// ---- Accounts (ACC) ----

func ErrUnknownAccount(key string) *AppError {
	return New("ACC_001", fmt.Sprintf("Account %q has no live session and no persisted record", key), http.StatusNotFound)
}

// ---- Balance operations (BAL/PAY) ----

func ErrInsufficientBalance() *AppError {
	return New("BAL_001", "Insufficient balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("BAL_002", "Amount must be positive", http.StatusBadRequest)
}

func ErrNotTransferable(currencyID string) *AppError {
	return New("PAY_001", fmt.Sprintf("Currency %q is not transferable", currencyID), http.StatusUnprocessableEntity)
}

func ErrSelfTransfer() *AppError {
	return New("PAY_002", "Cannot transfer to yourself", http.StatusBadRequest)
}

// ---- Ledger (LED) ----

func ErrPoisonedLedgerEntry(err error) *AppError {
	return Wrap("LED_001", "Ledger entry cannot be applied and was retired", http.StatusUnprocessableEntity, err)
}

// ---- System & storage (SYS) ----

func ErrStorageConnection(kind string, err error) *AppError {
	return Wrap("SYS_001", fmt.Sprintf("Cannot connect to %s storage backend", kind), http.StatusServiceUnavailable, err)
}

func ErrUnsupported(op string, kind string) *AppError {
	return New("SYS_002", fmt.Sprintf("%s is not supported by the %s backend", op, kind), http.StatusNotImplemented)
}

func ErrUnknownBackup(id string) *AppError {
	return New("SYS_003", fmt.Sprintf("No backup with id %q", id), http.StatusNotFound)
}

// ---- Rate limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// InternalError wraps an internal error as a SYS_000 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_000", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic bad-input error with a custom message.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
