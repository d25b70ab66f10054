package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointNoHooks(t *testing.T) {
	ec := NewContext(context.Background(), nil, nil)
	assert.NoError(t, ec.Checkpoint())
}

func TestCheckpointCancelHook(t *testing.T) {
	calls := 0
	ec := NewContext(context.Background(), nil, func() bool {
		calls++
		return calls > 1
	})

	require.NoError(t, ec.Checkpoint())
	assert.ErrorIs(t, ec.Checkpoint(), ErrCancelled)
}

func TestCheckpointContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ec := NewContext(ctx, nil, nil)

	require.NoError(t, ec.Checkpoint())
	cancel()
	assert.ErrorIs(t, ec.Checkpoint(), ErrCancelled)
}

func TestCheckpointNilContext(t *testing.T) {
	ec := NewContext(nil, nil, nil)
	assert.NoError(t, ec.Checkpoint())
}

func TestReportProgress(t *testing.T) {
	var got []float64
	ec := NewContext(context.Background(), func(v float64) {
		got = append(got, v)
	}, nil)

	ec.ReportProgress(-0.5) // clamped, first call passes the throttle
	ec.ReportProgress(1.5)  // terminal, always delivered
	ec.ReportProgress(2)    // terminal, always delivered

	require.Len(t, got, 3)
	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 1.0, got[1])
	assert.Equal(t, 1.0, got[2])
}

func TestReportProgressThrottled(t *testing.T) {
	calls := 0
	ec := NewContext(context.Background(), func(float64) { calls++ }, nil)

	// A tight loop of non-terminal reports must not fan out one call each.
	for i := 0; i < 10000; i++ {
		ec.ReportProgress(float64(i) / 10000)
	}
	assert.Less(t, calls, 100)
}

func TestReportProgressNoHook(t *testing.T) {
	ec := NewContext(context.Background(), nil, nil)
	assert.NotPanics(t, func() { ec.ReportProgress(0.5) })
}
