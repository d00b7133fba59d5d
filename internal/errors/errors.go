package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeBadRequest          ErrorType = "BAD_REQUEST"
	ErrorTypeUnauthorized        ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden           ErrorType = "FORBIDDEN"
	ErrorTypeNotFound            ErrorType = "NOT_FOUND"
	ErrorTypeInternalServerError ErrorType = "INTERNAL_SERVER_ERROR"

	// Pipeline taxonomy. Transport and parse errors from the provider or
	// the store are wrapped into one of these at the orchestrator boundary.
	ErrorTypeDailyLimitExceeded ErrorType = "DAILY_LIMIT_EXCEEDED"
	ErrorTypeProviderRateLimit  ErrorType = "RATE_LIMIT"
	ErrorTypeAuthentication     ErrorType = "AUTH_ERROR"
	ErrorTypePaymentRequired    ErrorType = "PAYMENT_REQUIRED"
	ErrorTypeNetwork            ErrorType = "NETWORK_ERROR"
	ErrorTypeExtraction         ErrorType = "EXTRACTION_ERROR"
	ErrorTypeEmbedding          ErrorType = "EMBEDDING_ERROR"
	ErrorTypeUnknown            ErrorType = "UNKNOWN_ERROR"
)

// CustomError represents a custom error with associated HTTP status code and type
type CustomError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Internal   error
}

// Error implements the error interface
func (e *CustomError) Error() string {
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Internal
}

// Retryable reports whether the orchestrator may retry the failed call.
// Auth and payment failures never recover on their own, so they fail fast.
func (e *CustomError) Retryable() bool {
	switch e.Type {
	case ErrorTypeAuthentication, ErrorTypePaymentRequired, ErrorTypeDailyLimitExceeded:
		return false
	default:
		return true
	}
}

func newError(errType ErrorType, message string, statusCode int, internal error) *CustomError {
	return &CustomError{
		Type:       errType,
		Message:    message,
		StatusCode: statusCode,
		Internal:   internal,
	}
}

// New400Error creates a new bad request error
func New400Error(message string) *CustomError {
	return newError(ErrorTypeBadRequest, message, http.StatusBadRequest, nil)
}

// New401Error creates a new unauthorized error
func New401Error() *CustomError {
	return newError(ErrorTypeUnauthorized, "Unauthorized access", http.StatusUnauthorized, nil)
}

// New403Error creates a new forbidden error
func New403Error() *CustomError {
	return newError(ErrorTypeForbidden, "Access forbidden", http.StatusForbidden, nil)
}

// New404Error creates a new not found error
func New404Error(message string) *CustomError {
	return newError(ErrorTypeNotFound, message, http.StatusNotFound, nil)
}

// New500Error creates a new internal server error
func New500Error(internal error) *CustomError {
	return newError(ErrorTypeInternalServerError, "An unexpected error occurred", http.StatusInternalServerError, internal)
}

// NewDailyLimitError is returned when a user has exhausted the day's quota.
// The message carries the reset countdown so the client can show it.
func NewDailyLimitError(message string) *CustomError {
	return newError(ErrorTypeDailyLimitExceeded, message, http.StatusTooManyRequests, nil)
}

// NewAuthError wraps a provider 401/403.
func NewAuthError(internal error) *CustomError {
	return newError(ErrorTypeAuthentication, "Provider rejected our credentials", http.StatusBadGateway, internal)
}

// NewPaymentRequiredError wraps a provider 402. Operator-visible: the
// account is out of credit and every request will fail until topped up.
func NewPaymentRequiredError(internal error) *CustomError {
	return newError(ErrorTypePaymentRequired, "Provider account requires payment", http.StatusBadGateway, internal)
}

// NewNetworkError wraps a provider 5xx or transport failure. Retryable.
func NewNetworkError(internal error) *CustomError {
	return newError(ErrorTypeNetwork, "Provider is temporarily unavailable, please retry", http.StatusBadGateway, internal)
}

// NewProviderRateLimitError wraps a provider 429. Retryable with backoff.
func NewProviderRateLimitError(internal error) *CustomError {
	return newError(ErrorTypeProviderRateLimit, "Provider rate limit hit", http.StatusTooManyRequests, internal)
}

// NewExtractionError marks a document whose text could not be extracted.
func NewExtractionError(message string, internal error) *CustomError {
	return newError(ErrorTypeExtraction, message, http.StatusUnprocessableEntity, internal)
}

// NewEmbeddingError aborts the current ingestion run.
func NewEmbeddingError(internal error) *CustomError {
	return newError(ErrorTypeEmbedding, "Failed to embed document chunks", http.StatusBadGateway, internal)
}

// NewUnknownProviderError wraps any unclassified provider failure.
func NewUnknownProviderError(internal error) *CustomError {
	return newError(ErrorTypeUnknown, "Unexpected provider error", http.StatusBadGateway, internal)
}

// HandleError handles the custom error and sends an appropriate JSON response
func HandleError(c *gin.Context, err error) {
	var customErr *CustomError
	var ok bool

	if customErr, ok = err.(*CustomError); !ok {
		customErr = New500Error(err)
	}

	// Log internal server errors
	if customErr.Type == ErrorTypeInternalServerError {
		log.Error().
			Err(customErr.Internal).
			Str("url", c.Request.URL.String()).
			Msg("Internal Server Error")
	}

	c.JSON(customErr.StatusCode, gin.H{
		"error": gin.H{
			"type":    customErr.Type,
			"message": customErr.Message,
		},
	})
}
