package observability_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/seqsift/pkg/observability"
)

func TestNewPrometheusBridge(t *testing.T) {
	t.Parallel()

	bridge, err := observability.NewPrometheusBridge()
	require.NoError(t, err)
	require.NotNil(t, bridge)
	assert.NotNil(t, bridge.Handler())
}

func TestPrometheusBridge_HandlerServesRecordedMetrics(t *testing.T) {
	t.Parallel()

	bridge, err := observability.NewPrometheusBridge()
	require.NoError(t, err)

	pm, err := observability.NewPipelineMetrics(bridge.Meter("test"))
	require.NoError(t, err)

	pm.RecordLoad(context.Background(), observability.LoadStats{
		ReportBytes: 2048,
		Samples:     2,
		Values:      10,
	})

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()

	bridge.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "seqsift_reports_loaded")
}

func TestPrometheusBridge_IndependentRegistries(t *testing.T) {
	t.Parallel()

	first, err := observability.NewPrometheusBridge()
	require.NoError(t, err)

	second, err := observability.NewPrometheusBridge()
	require.NoError(t, err)

	// Creating instruments on both must not collide.
	_, err = observability.NewPipelineMetrics(first.Meter("test"))
	require.NoError(t, err)

	_, err = observability.NewPipelineMetrics(second.Meter("test"))
	require.NoError(t, err)
}

func TestPrometheusBridge_Shutdown(t *testing.T) {
	t.Parallel()

	bridge, err := observability.NewPrometheusBridge()
	require.NoError(t, err)

	require.NoError(t, bridge.Shutdown(context.Background()))
}
