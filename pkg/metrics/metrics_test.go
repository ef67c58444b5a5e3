package metrics_test

import (
	"strings"
	"testing"

	"github.com/njchilds90/termwise"
	"github.com/njchilds90/termwise/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserver_CountsEngineTransforms(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := metrics.New(reg)
	require.NoError(t, err)

	eng := termwise.NewEngine(termwise.WithObserver(obs))
	eq := termwise.Eq(termwise.MulOf(termwise.N(2), termwise.S("x")), termwise.N(4))

	_, err = eng.ApplyTerm(eq, termwise.OpDiv, termwise.N(2))
	require.NoError(t, err)
	_, err = eng.ApplyTerm(eq, termwise.OpDiv, termwise.N(0))
	require.Error(t, err)
	eng.Flip(eq)

	expected := `
# HELP termwise_transforms_total Equation transforms applied, by operation and result
# TYPE termwise_transforms_total counter
termwise_transforms_total{op="apply_term",result="error"} 1
termwise_transforms_total{op="apply_term",result="ok"} 1
termwise_transforms_total{op="flip",result="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "termwise_transforms_total"))
	n, err := testutil.GatherAndCount(reg, "termwise_transform_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)
	_, err = metrics.New(reg)
	assert.Error(t, err)
}
