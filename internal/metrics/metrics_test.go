package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPromotionIncrementsLabeledCounter(t *testing.T) {
	c := StoragePromotions.WithLabelValues("Zero", "DenseReal")
	before := testutil.ToFloat64(c)

	Promotion("Zero", "DenseReal")
	Promotion("Zero", "DenseReal")

	assert.Equal(t, before+2, testutil.ToFloat64(c))
}

func TestCountersRegistered(t *testing.T) {
	before := testutil.ToFloat64(ZeroCollapses)
	ZeroCollapses.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ZeroCollapses))

	fold := ScaleFolds.WithLabelValues(FoldOutNorm)
	before = testutil.ToFloat64(fold)
	fold.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(fold))
}
