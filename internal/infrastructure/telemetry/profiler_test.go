package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/hexasamples/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(config.TelemetryConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresEndpoint(t *testing.T) {
	_, err := NewProfiler(config.TelemetryConfig{ProfilingEnabled: true}, zap.NewNop())
	assert.Error(t, err)
}

func TestDefaultProfileTypes(t *testing.T) {
	assert.Len(t, DefaultProfileTypes(), 10)
}

func TestWithProfilingLabels(t *testing.T) {
	long := strings.Repeat("x", MaxLabelValueLength+10)
	var got map[string]string

	WithProfilingLabels(context.Background(), map[string]string{
		ProfilingLabelRoute:  "/api/v1/sales-orders/:id",
		ProfilingLabelMethod: "GET",
		"order_id":           "b1d1",
		"empty":              " ",
		"long":               long,
	}, func(ctx context.Context) {
		got = map[string]string{}
		pprof.ForLabels(ctx, func(k, v string) bool {
			got[k] = v
			return true
		})
	})

	assert.Equal(t, "/api/v1/sales-orders/:id", got[ProfilingLabelRoute])
	assert.Equal(t, "GET", got[ProfilingLabelMethod])
	assert.NotContains(t, got, "order_id")
	assert.NotContains(t, got, "empty")
	assert.Len(t, got["long"], MaxLabelValueLength)
}

func TestWithProfilingLabels_NoLabels(t *testing.T) {
	called := false
	WithProfilingLabels(context.Background(), nil, func(context.Context) { called = true })
	assert.True(t, called)
}
