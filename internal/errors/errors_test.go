package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetServiceErrorThroughWrapping(t *testing.T) {
	base := NotFound("post", "7")
	wrapped := fmt.Errorf("load: %w", base)

	se := GetServiceError(wrapped)
	if assert.NotNil(t, se) {
		assert.Equal(t, CodeNotFound, se.Code)
		assert.Equal(t, http.StatusNotFound, se.HTTPStatus)
	}
	assert.True(t, IsCode(wrapped, CodeNotFound))
	assert.False(t, IsCode(wrapped, CodeForbidden))
}

func TestHTTPStatusDefaultsToInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(Forbidden("nope")))
}

func TestInternalUnwraps(t *testing.T) {
	err := Internal("query failed", sql.ErrConnDone)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Contains(t, err.Error(), "query failed")
}

func TestRateLimitDetails(t *testing.T) {
	err := RateLimitExceeded(5, "1s")
	assert.Equal(t, http.StatusTooManyRequests, err.HTTPStatus)
	assert.Equal(t, 5, err.Details["limit"])
	assert.Equal(t, "1s", err.Details["window"])
}

func TestUnauthorizedDefaultMessage(t *testing.T) {
	assert.Equal(t, "authentication required", Unauthorized("").Message)
}
