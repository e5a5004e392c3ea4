// Package metrics records decode timings on a private prometheus registry.
package metrics

import (
	"time"

	"github.com/bodgit/qoiview/qoi"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Recorder collects decode metrics.
type Recorder struct {
	registry *prometheus.Registry
	duration prometheus.Histogram
	decodes  *prometheus.CounterVec
}

// New returns a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "qoiview_decode_duration_seconds",
			Help:    "Histogram of successful image decode times",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		decodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qoiview_decodes_total",
			Help: "Total number of decodes by status",
		}, []string{"status"}),
	}
	r.registry.MustRegister(r.duration, r.decodes)
	return r
}

// Registry returns the registry the metrics are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records the outcome of a single decode.
func (r *Recorder) Observe(res qoi.Result) {
	r.decodes.WithLabelValues(res.Status.String()).Inc()
	if res.Status == qoi.OK {
		r.duration.Observe(res.Elapsed.Seconds())
	}
}

// Summary is a snapshot of the recorded metrics.
type Summary struct {
	Decodes map[string]uint64
	Count   uint64
	Total   time.Duration
	Mean    time.Duration
	Buckets map[float64]uint64
}

// Summary gathers the registry into a Summary.
func (r *Recorder) Summary() (Summary, error) {
	s := Summary{
		Decodes: make(map[string]uint64),
		Buckets: make(map[float64]uint64),
	}

	families, err := r.registry.Gather()
	if err != nil {
		return s, err
	}

	for _, f := range families {
		switch f.GetName() {
		case "qoiview_decodes_total":
			for _, m := range f.GetMetric() {
				s.Decodes[statusLabel(m)] = uint64(m.GetCounter().GetValue())
			}
		case "qoiview_decode_duration_seconds":
			for _, m := range f.GetMetric() {
				h := m.GetHistogram()
				s.Count = h.GetSampleCount()
				s.Total = time.Duration(h.GetSampleSum() * float64(time.Second))
				for _, b := range h.GetBucket() {
					s.Buckets[b.GetUpperBound()] = b.GetCumulativeCount()
				}
			}
		}
	}

	if s.Count > 0 {
		s.Mean = s.Total / time.Duration(s.Count)
	}

	return s, nil
}

func statusLabel(m *dto.Metric) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == "status" {
			return l.GetValue()
		}
	}
	return ""
}
