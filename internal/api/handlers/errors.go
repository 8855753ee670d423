package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/repository"
)

// APIError is the body of every failed response, wrapped as {"error": ...}.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{target: domain.ErrInvalidHorizon, status: http.StatusBadRequest, code: "invalid_horizon", message: "forecast horizon is out of range"},
	{target: domain.ErrEmptyDataset, status: http.StatusUnprocessableEntity, code: "empty_dataset", message: "not enough data to build the report"},
	{target: domain.ErrUnknownSupplier, status: http.StatusUnprocessableEntity, code: "unknown_supplier", message: "a product references a supplier without a lead time"},
	{target: repository.ErrDatasetNotFound, status: http.StatusServiceUnavailable, code: "dataset_unavailable", message: "source datasets are not available"},
}

func abortWithError(c *gin.Context, status int, apiErr APIError) {
	c.AbortWithStatusJSON(status, gin.H{"error": apiErr})
}

// respondError maps engine and store errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			abortWithError(c, m.status, APIError{Code: m.code, Message: m.message, Details: err.Error()})
			return
		}
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("inventory: request failed")
	abortWithError(c, http.StatusInternalServerError, APIError{
		Code:    "internal_error",
		Message: "failed to build report",
		Details: err.Error(),
	})
}

func respondBadRequest(c *gin.Context, message string, err error) {
	apiErr := APIError{Code: "invalid_request", Message: message}
	if err != nil {
		apiErr.Details = err.Error()
	}
	abortWithError(c, http.StatusBadRequest, apiErr)
}
