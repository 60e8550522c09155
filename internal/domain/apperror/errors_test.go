package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{name: "invalid input", err: InvalidInput("auth.init", "user id is required"), expected: KindInvalidInput},
		{name: "unauthenticated", err: Unauthenticated("meeting.create", "user not authenticated"), expected: KindUnauthenticated},
		{name: "upstream", err: Upstream("auth.status", cause), expected: KindUpstream},
		{name: "wrapped invalid input", err: fmt.Errorf("handler: %w", InvalidInput("op", "bad")), expected: KindInvalidInput},
		{name: "plain error", err: cause, expected: KindUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
			assert.True(t, Is(tt.err, tt.expected))
		})
	}
}

func TestUpstream_PreservesCause(t *testing.T) {
	cause := errors.New("timeout")
	err := Upstream("meeting.create", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "meeting.create: timeout", err.Error())
	assert.Nil(t, Upstream("noop", nil))
}

func TestIs_NilError(t *testing.T) {
	assert.False(t, Is(nil, KindUpstream))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "invalid_input", KindInvalidInput.String())
	assert.Equal(t, "unauthenticated", KindUnauthenticated.String())
	assert.Equal(t, "upstream", KindUpstream.String())
}
