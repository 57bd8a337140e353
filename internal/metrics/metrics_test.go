package metrics_test

import (
	"testing"

	"dashseek/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestResolutionsTotalByOutcome(t *testing.T) {
	before := testutil.ToFloat64(metrics.ResolutionsTotal.WithLabelValues("NoRepresentation"))

	metrics.ResolutionsTotal.WithLabelValues("NoRepresentation").Inc()
	metrics.ResolutionsTotal.WithLabelValues("ok").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ResolutionsTotal.WithLabelValues("NoRepresentation")))
}

func TestManifestCacheGauge(t *testing.T) {
	metrics.ManifestCacheEntries.Set(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.ManifestCacheEntries))
	metrics.ManifestCacheEntries.Set(0)
}
