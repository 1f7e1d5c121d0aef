package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(PaymentsRecorded.WithLabelValues("cash"))
	PaymentsRecorded.WithLabelValues("cash").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PaymentsRecorded.WithLabelValues("cash")))

	beforeJoin := testutil.ToFloat64(OccupancyChanges.WithLabelValues(DirectionJoin))
	OccupancyChanges.WithLabelValues(DirectionJoin).Add(2)
	assert.Equal(t, beforeJoin+2, testutil.ToFloat64(OccupancyChanges.WithLabelValues(DirectionJoin)))
}
