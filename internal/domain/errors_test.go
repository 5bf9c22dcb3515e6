package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, CodeOf(NotFound("x")))
	assert.Equal(t, http.StatusConflict, CodeOf(fmt.Errorf("wrap: %w", Conflict("dup"))))
	assert.Equal(t, http.StatusInternalServerError, CodeOf(errors.New("boom")))
}

func TestAppErrorMessage(t *testing.T) {
	cause := errors.New("db down")
	err := Internal("", cause)
	assert.Equal(t, "db down", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "missing", BadRequest("missing").Error())
}
