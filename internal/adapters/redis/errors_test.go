package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		protocol    bool
		unavailable bool
		exhausted   bool
	}{
		{name: "pool timeout", err: errors.New("redis: connection pool timeout"), unavailable: true, exhausted: true},
		{name: "wrapped pool timeout", err: fmt.Errorf("set: %w", errors.New("redis: connection pool timeout")), unavailable: true, exhausted: true},
		{name: "unparsable reply", err: errors.New(`redis: can't parse "?bogus"`), protocol: true},
		{name: "unparsable int reply", err: errors.New(`redis: can't parse int reply: "x"`), protocol: true},
		{name: "connection reset", err: io.ErrUnexpectedEOF, unavailable: true},
		{name: "command deadline", err: context.DeadlineExceeded, unavailable: true},
		{name: "already classified", err: domain.ErrCacheProtocol, protocol: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			assert.Equal(t, tt.protocol, errors.Is(got, domain.ErrCacheProtocol))
			assert.Equal(t, tt.unavailable, errors.Is(got, domain.ErrCacheUnavailable))
			assert.Equal(t, tt.exhausted, errors.Is(got, domain.ErrPoolExhausted))
			assert.ErrorIs(t, got, tt.err)
		})
	}
	assert.NoError(t, classifyError(nil))
}
