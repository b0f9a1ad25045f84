package system

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	storeErr := NewStoreUnavailableError("find_one", errors.New("dial tcp: connection refused"))
	wrapped := fmt.Errorf("refresh: %w", ErrHeartbeatDeleted)

	assert.True(t, IsBadRequest(ErrInvalidGroupOrID))
	assert.True(t, IsPreconditionFailed(wrapped))
	assert.True(t, errors.Is(wrapped, ErrHeartbeatDeleted))
	assert.True(t, IsStoreUnavailable(storeErr))

	assert.False(t, IsBadRequest(errors.New("boom")))
	assert.False(t, IsStoreUnavailable(ErrHeartbeatDeleted))
}

func TestHeartbeatErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	storeErr := NewStoreUnavailableError("upsert", cause)

	assert.Equal(t, "heartbeat deleted", ErrHeartbeatDeleted.Error())
	assert.Equal(t, "store unavailable: upsert: connection refused", storeErr.Error())
	assert.True(t, errors.Is(storeErr, cause))

	assert.Equal(t, "invalid group or id", PublicMessage(ErrInvalidGroupOrID))
	assert.Equal(t, "store unavailable: upsert", PublicMessage(storeErr))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("nil pointer")))
}
