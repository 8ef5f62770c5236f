// Package errors provides custom error types for the Patrimo API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}

	// ErrDataIntegrity signals that stored data violates an invariant the
	// read path depends on. It is always a bug or a corrupted row, never
	// a user mistake, so it maps to a 500.
	ErrDataIntegrity = &AppError{Code: "DATA_INTEGRITY", Message: "Stored data violates an integrity constraint", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Account errors.
var (
	ErrAccountNotFound      = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrDuplicateAccountName = &AppError{Code: "DUPLICATE_ACCOUNT_NAME", Message: "An account with this name already exists", StatusCode: http.StatusConflict}
)

// Asset errors.
var (
	ErrAssetNotFound      = &AppError{Code: "ASSET_NOT_FOUND", Message: "Asset not found", StatusCode: http.StatusNotFound}
	ErrAssetTypeNotFound  = &AppError{Code: "ASSET_TYPE_NOT_FOUND", Message: "Asset type not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCashAsset = &AppError{Code: "DUPLICATE_CASH_ASSET", Message: "This account already has a cash asset", StatusCode: http.StatusConflict}
	ErrDetailMismatch     = &AppError{Code: "DETAIL_MISMATCH", Message: "Asset details must match the asset category", StatusCode: http.StatusBadRequest}
	ErrInvestmentTarget   = &AppError{Code: "INVESTMENT_TARGET", Message: "Investment details require exactly one of listing_id or token_id", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
)

// Catalog errors.
var (
	ErrInstrumentNotFound  = &AppError{Code: "INSTRUMENT_NOT_FOUND", Message: "Instrument not found", StatusCode: http.StatusNotFound}
	ErrExchangeNotFound    = &AppError{Code: "EXCHANGE_NOT_FOUND", Message: "Exchange not found", StatusCode: http.StatusNotFound}
	ErrListingNotFound     = &AppError{Code: "LISTING_NOT_FOUND", Message: "Listing not found", StatusCode: http.StatusNotFound}
	ErrNetworkNotFound     = &AppError{Code: "NETWORK_NOT_FOUND", Message: "Network not found", StatusCode: http.StatusNotFound}
	ErrTokenNotFound       = &AppError{Code: "TOKEN_NOT_FOUND", Message: "Token not found", StatusCode: http.StatusNotFound}
	ErrPriceSourceNotFound = &AppError{Code: "PRICE_SOURCE_NOT_FOUND", Message: "Price source not found", StatusCode: http.StatusNotFound}
	ErrDuplicateExchange   = &AppError{Code: "DUPLICATE_EXCHANGE", Message: "An exchange with this MIC already exists", StatusCode: http.StatusConflict}
	ErrDuplicateListing    = &AppError{Code: "DUPLICATE_LISTING", Message: "This ticker is already listed on this exchange", StatusCode: http.StatusConflict}
	ErrDuplicateNetwork    = &AppError{Code: "DUPLICATE_NETWORK", Message: "A network with this code already exists", StatusCode: http.StatusConflict}
	ErrDuplicateToken      = &AppError{Code: "DUPLICATE_TOKEN", Message: "This token already exists on this network", StatusCode: http.StatusConflict}
	ErrDuplicateSource     = &AppError{Code: "DUPLICATE_SOURCE", Message: "A price source with this code already exists", StatusCode: http.StatusConflict}
)

// Quote errors.
var (
	ErrQuoteTarget = &AppError{Code: "QUOTE_TARGET", Message: "A quote must reference exactly one of instrument_id, listing_id, or token_id", StatusCode: http.StatusBadRequest}
)
