package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the prometheus collectors a Storage exposes for operational
// monitoring of the commit pipeline (spec §5's commit lock is the one
// serialization point worth instrumenting: its latency and failure rate
// drive every write's throughput).
type metrics struct {
	commitsTotal     *prometheus.CounterVec
	commitDuration   prometheus.Histogram
	documentsIndexed prometheus.Counter
}

func newMetrics() *metrics {
	return &metrics{
		commitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strus_sub002",
			Name:      "commits_total",
			Help:      "Transactions committed, labeled by outcome.",
		}, []string{"outcome"}),
		commitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "strus_sub002",
			Name:      "commit_duration_seconds",
			Help:      "Wall-clock time spent holding the commit lock.",
			Buckets:   prometheus.DefBuckets,
		}),
		documentsIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "strus_sub002",
			Name:      "documents_indexed_total",
			Help:      "Documents assigned a new docno.",
		}),
	}
}

// Register registers every collector with reg, for callers that want the
// storage's metrics exposed on a /metrics endpoint.
func (m *metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.commitsTotal, m.commitDuration, m.documentsIndexed} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

type commitTimer struct {
	metrics *metrics
	start   time.Time
}

func (m *metrics) startCommit() *commitTimer {
	return &commitTimer{metrics: m, start: time.Now()}
}

func (t *commitTimer) observeSuccess() {
	t.metrics.commitDuration.Observe(time.Since(t.start).Seconds())
	t.metrics.commitsTotal.WithLabelValues("success").Inc()
}

func (t *commitTimer) observeFailure() {
	t.metrics.commitDuration.Observe(time.Since(t.start).Seconds())
	t.metrics.commitsTotal.WithLabelValues("failure").Inc()
}
