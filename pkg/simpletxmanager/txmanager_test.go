package simpletxmanager

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsSerializationFailure(t *testing.T) {
	pqErr := &pq.Error{Code: "40001"}
	errExecQuery := errors.New("storage: failed to execute query")

	assert.True(t, isSerializationFailure(pqErr))

	// Ошибка в том виде, в каком её оборачивают репозитории
	wrapped := fmt.Errorf("%w: Claim - execute update: %w", errExecQuery, pqErr)
	assert.True(t, isSerializationFailure(wrapped))

	assert.False(t, isSerializationFailure(errors.New("plain error")))
	assert.False(t, isSerializationFailure(&pq.Error{Code: "23505"}))
}
