//go:build prometheus

package instrument

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "brink",
		Subsystem: "connections",
		Name:      "accepted_total",
	})
	connectionsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "brink",
		Subsystem: "connections",
		Name:      "closed_total",
	})
	requestsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brink",
		Subsystem: "requests",
		Name:      "served_total",
	}, []string{"status"})
	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "brink",
		Subsystem: "requests",
		Name:      "duration_seconds",
		Buckets:   prometheus.DefBuckets,
	})
	responseBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "brink",
		Subsystem: "requests",
		Name:      "response_bytes_total",
	})
	badRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "brink",
		Subsystem: "requests",
		Name:      "bad_requests_total",
	})
	chunkedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "brink",
		Subsystem: "requests",
		Name:      "chunked_requests_total",
	})
	chunkedResponses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "brink",
		Subsystem: "requests",
		Name:      "chunked_responses_total",
	})
)

// Prometheus reports connection and request lifecycle events as Prometheus
// metrics. It has no fields: state lives in the package-level collectors
// registered with promauto at init time, matching the teacher's
// buffer-pool metrics, which are likewise package-level globals rather than
// per-instance.
type Prometheus struct{}

func (Prometheus) ConnectionAccepted() { connectionsAccepted.Inc() }
func (Prometheus) ConnectionClosed()   { connectionsClosed.Inc() }

func (Prometheus) RequestServed(status int, bytesWritten int64, dur time.Duration) {
	requestsServed.WithLabelValues(strconv.Itoa(status)).Inc()
	requestDuration.Observe(dur.Seconds())
	responseBytes.Add(float64(bytesWritten))
}

func (Prometheus) BadRequest(error) { badRequests.Inc() }
func (Prometheus) ChunkedRequest()  { chunkedRequests.Inc() }
func (Prometheus) ChunkedResponse() { chunkedResponses.Inc() }
