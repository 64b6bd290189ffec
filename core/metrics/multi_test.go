package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type segOnly struct{ n int }

func (s *segOnly) RecordSegmentation(SegmentationEvent) error { s.n++; return nil }

type recordAll struct {
	segOnly
	visits, plans int
}

func (r *recordAll) RecordVisit(VisitEvent) error { r.visits++; return nil }
func (r *recordAll) RecordPlan(PlanEvent) error   { r.plans++; return nil }

func TestMultiSinkForwardsOptionalRecorders(t *testing.T) {
	a := &segOnly{}
	b := &recordAll{}
	m := NewMultiSink(a, b)

	require.NoError(t, m.RecordSegmentation(SegmentationEvent{ObservationID: "o"}))
	require.NoError(t, m.RecordVisit(VisitEvent{}))
	require.NoError(t, m.RecordPlan(PlanEvent{}))

	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
	assert.Equal(t, 1, b.visits)
	assert.Equal(t, 1, b.plans)
}
