package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	if validationErr != nil {
		errorResp.Details = make(map[string]string)
		for _, err := range validationErr.(validator.ValidationErrors) {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}

// DecodeJSONBody decodes a single JSON object from the request body into dst.
// The body is capped at 1 MB, unknown fields are rejected, and trailing JSON
// values fail the request.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid request body")
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must only contain a single JSON object")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrTradeNotFound),
		errors.Is(err, models.ErrInvalidCode):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrAmountTooLarge),
		errors.Is(err, models.ErrInvalidParams),
		errors.Is(err, models.ErrSelfTrade),
		errors.Is(err, models.ErrBankNotCovered):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrTradeNotPending),
		errors.Is(err, models.ErrCodeExhausted),
		errors.Is(err, models.ErrAlreadyRedeemed):
		return http.StatusConflict
	case errors.Is(err, models.ErrForbidden),
		errors.Is(err, models.ErrNotTradeParty),
		errors.Is(err, models.ErrAccountBanned),
		errors.Is(err, models.ErrGameBanned):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
