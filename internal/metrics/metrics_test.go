package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, provider, outcome string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, ProviderRequests.WithLabelValues(provider, outcome).Write(&m))
	return m.GetCounter().GetValue()
}

func TestRecordProviderCall(t *testing.T) {
	before := counterValue(t, "metrics-test", "success")

	RecordProviderCall("metrics-test", "success", 150*time.Millisecond)

	require.Equal(t, before+1, counterValue(t, "metrics-test", "success"))
}
