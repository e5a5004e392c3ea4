package metrics

import (
	"testing"
	"time"

	"github.com/bodgit/qoiview/qoi"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := New()

	r.Observe(qoi.Result{Status: qoi.OK, Elapsed: 2 * time.Millisecond})
	r.Observe(qoi.Result{Status: qoi.OK, Elapsed: 4 * time.Millisecond})
	r.Observe(qoi.Result{Status: qoi.MalformedStream})

	s, err := r.Summary()
	require.NoError(t, err)

	assert.Equal(t, uint64(2), s.Decodes["ok"])
	assert.Equal(t, uint64(1), s.Decodes["malformed stream"])
	assert.Equal(t, uint64(2), s.Count)
	assert.InDelta(t, float64(6*time.Millisecond), float64(s.Total), float64(time.Microsecond))
	assert.InDelta(t, float64(3*time.Millisecond), float64(s.Mean), float64(time.Microsecond))
	assert.NotEmpty(t, s.Buckets)

	assert.Equal(t, 2, testutil.CollectAndCount(r.decodes))
}

func TestSummaryEmpty(t *testing.T) {
	s, err := New().Summary()
	require.NoError(t, err)
	assert.Zero(t, s.Count)
	assert.Zero(t, s.Mean)
	assert.Empty(t, s.Decodes)
}
