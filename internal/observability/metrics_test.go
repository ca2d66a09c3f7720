package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics_IsolatedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("radar_test", reg)

	m.FeedRequests.WithLabelValues("dexscreener", "ok").Inc()
	m.FeedRequests.WithLabelValues("dexscreener", "rate_limited").Add(2)
	m.LedgerSize.Set(7)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedRequests.WithLabelValues("dexscreener", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FeedRequests.WithLabelValues("dexscreener", "rate_limited")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.LedgerSize))

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.PairsRejected.WithLabelValues("fdv"))
	RecordRejection("fdv")
	assert.Equal(t, before+1, testutil.ToFloat64(DefaultMetrics.PairsRejected.WithLabelValues("fdv")))

	UpdateState(3, 10, true)
	assert.Equal(t, 3.0, testutil.ToFloat64(DefaultMetrics.BackoffConsecutive))
	assert.Equal(t, 10.0, testutil.ToFloat64(DefaultMetrics.LedgerSize))
	assert.Equal(t, 1.0, testutil.ToFloat64(DefaultMetrics.WarmupActive))

	UpdateState(0, 10, false)
	assert.Equal(t, 0.0, testutil.ToFloat64(DefaultMetrics.WarmupActive))
}
