package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodedErrors(t *testing.T) {
	err := E(CodeOutOfStock, "insufficient stock")

	assert.Equal(t, CodeOutOfStock, CodeOf(err))
	assert.Equal(t, "insufficient stock", MessageOf(err))
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
	assert.True(t, IsCode(err, CodeOutOfStock))
	assert.False(t, IsCode(err, CodeEmptyCart))
}

func TestCodedErrors_WrappedChain(t *testing.T) {
	cause := errors.New("row scan failed")
	err := fmt.Errorf("placing order: %w", Wrap(CodeInternal, "could not place order", cause))

	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Equal(t, "could not place order", MessageOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestCodedErrors_PlainErrorFallsBack(t *testing.T) {
	err := errors.New("pq: connection refused")

	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Equal(t, "internal server error", MessageOf(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}
