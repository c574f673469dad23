package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.AssistantTurns.WithLabelValues(OutcomeFallback).Inc()
	m.AssistantTurns.WithLabelValues(OutcomeFallback).Inc()
	m.AssistantTurns.WithLabelValues(OutcomeModel).Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AssistantTurns.WithLabelValues(OutcomeFallback)))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNop_DoesNotPanicOnDoubleCreate(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop()
		Nop()
	})
}
