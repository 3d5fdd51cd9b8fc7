package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Video outcome labels
const (
	StatusSucceeded = "succeeded"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Metrics holds the counters of a generation run
type Metrics struct {
	// Video outcome counters
	VideosSucceeded atomic.Uint64
	VideosSkipped   atomic.Uint64
	VideosFailed    atomic.Uint64

	// Stream counters
	FramesProcessed atomic.Uint64
	RecordsWritten  atomic.Uint64

	// LastRunUnix is the unix time the last video finished
	LastRunUnix atomic.Int64

	videoSeconds prometheus.Histogram

	// Prometheus collectors
	registry *prometheus.Registry
}

// New creates a new Metrics instance with Prometheus collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.registerPrometheusMetrics()

	return m
}

// registerPrometheusMetrics registers all metrics with Prometheus
func (m *Metrics) registerPrometheusMetrics() {

	videos := []struct {
		status  string
		counter *atomic.Uint64
	}{
		{StatusSucceeded, &m.VideosSucceeded},
		{StatusSkipped, &m.VideosSkipped},
		{StatusFailed, &m.VideosFailed},
	}

	for _, v := range videos {
		counter := v.counter

		m.registry.MustRegister(prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name:        "draftgt_videos_total",
				Help:        "Total videos handled by outcome",
				ConstLabels: prometheus.Labels{"status": v.status},
			},
			func() float64 { return float64(counter.Load()) },
		))
	}

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "draftgt_frames_processed_total",
			Help: "Total video frames pulled through detection and tracking",
		},
		func() float64 { return float64(m.FramesProcessed.Load()) },
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "draftgt_annotation_records_total",
			Help: "Total annotation lines written",
		},
		func() float64 { return float64(m.RecordsWritten.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "draftgt_last_video_timestamp_seconds",
			Help: "Unix time the last video finished processing",
		},
		func() float64 { return float64(m.LastRunUnix.Load()) },
	))

	m.videoSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "draftgt_video_duration_seconds",
		Help:    "Wall time spent processing a single video",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	m.registry.MustRegister(m.videoSeconds)
}

// ObserveVideo records the outcome of one video
func (m *Metrics) ObserveVideo(status string, frames, records int, elapsed time.Duration) {

	switch status {
	case StatusSucceeded:
		m.VideosSucceeded.Add(1)
	case StatusSkipped:
		m.VideosSkipped.Add(1)
		return
	case StatusFailed:
		m.VideosFailed.Add(1)
	}

	m.FramesProcessed.Add(uint64(frames))

	// records of a failed video never reach a committed file
	if status == StatusSucceeded {
		m.RecordsWritten.Add(uint64(records))
	}

	m.LastRunUnix.Store(time.Now().Unix())
	m.videoSeconds.Observe(elapsed.Seconds())
}

// Registry returns the Prometheus registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the text exposition format to path,
// for pick up by the node exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
