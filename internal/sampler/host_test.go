package sampler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystem_ReadsLocalHost(t *testing.T) {
	if testing.Short() {
		t.Skip("reads live host counters")
	}

	s := NewSystem()
	ctx := context.Background()

	cpu, err := s.CPUPercent(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cpu, 0.0)
	assert.LessOrEqual(t, cpu, 100.0)

	memPct, err := s.MemoryPercent(ctx)
	require.NoError(t, err)
	assert.Greater(t, memPct, 0.0)
	assert.LessOrEqual(t, memPct, 100.0)

	first, err := s.BytesReceived(ctx)
	require.NoError(t, err)
	second, err := s.BytesReceived(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, second, first)
}
