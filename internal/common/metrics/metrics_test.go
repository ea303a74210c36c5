// internal/common/metrics/metrics_test.go
package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveTurn(t *testing.T) {
	before := testutil.ToFloat64(DialogueTurns.WithLabelValues("weather", "context_fallback"))

	ObserveTurn("weather", "context_fallback", 0.6, 3*time.Millisecond)
	ObserveTurn("weather", "context_fallback", 0.6, time.Millisecond)

	after := testutil.ToFloat64(DialogueTurns.WithLabelValues("weather", "context_fallback"))
	assert.Equal(t, 2.0, after-before)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(DialogueTurnDuration), 1)
}

func TestObserveLookup(t *testing.T) {
	before := testutil.ToFloat64(LookupResults.WithLabelValues("ambiguous"))
	ObserveLookup("ambiguous")
	assert.Equal(t, 1.0, testutil.ToFloat64(LookupResults.WithLabelValues("ambiguous"))-before)
}
