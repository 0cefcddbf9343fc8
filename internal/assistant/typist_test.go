package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypistDelay(t *testing.T) {
	typ := NewTypist(time.Second, time.Second, fixedSource(250))
	assert.Equal(t, 1250*time.Millisecond, typ.Delay())

	assert.Equal(t, time.Duration(0), Typist{}.Delay())
	assert.Equal(t, 5*time.Millisecond, NewTypist(5*time.Millisecond, 0, nil).Delay())
}

func TestTypistWait(t *testing.T) {
	require.NoError(t, Typist{}.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, NewTypist(10*time.Millisecond, 0, nil).Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestTypistWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewTypist(time.Hour, 0, nil).Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
