package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveGeneration(t *testing.T) {
	before := testutil.ToFloat64(generationsTotal.WithLabelValues("plain", "chain"))
	ObserveGeneration("plain", "chain", 3*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(generationsTotal.WithLabelValues("plain", "chain")))
}

func TestObserveCache(t *testing.T) {
	hits := testutil.ToFloat64(chainCacheRequests.WithLabelValues("hit"))
	misses := testutil.ToFloat64(chainCacheRequests.WithLabelValues("miss"))

	ObserveCache(true)
	ObserveCache(false)
	ObserveCache(false)

	assert.Equal(t, hits+1, testutil.ToFloat64(chainCacheRequests.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(chainCacheRequests.WithLabelValues("miss")))
}

func TestObserveLearnAndBuild(t *testing.T) {
	stored := testutil.ToFloat64(messagesLearned.WithLabelValues("stored"))
	builds := testutil.ToFloat64(chainBuildsTotal)

	ObserveLearn("stored")
	ObserveChainBuild()

	assert.Equal(t, stored+1, testutil.ToFloat64(messagesLearned.WithLabelValues("stored")))
	assert.Equal(t, builds+1, testutil.ToFloat64(chainBuildsTotal))
}
