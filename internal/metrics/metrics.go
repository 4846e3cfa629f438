package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"filevault/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultNamespace = "filevault"
	subsystemHTTP    = "http"
	subsystemLedger  = "ledger"
)

// Collector owns a private registry with request and ledger metrics
type Collector struct {
	namespace string
	registry  *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	versions       *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	bytesStored    prometheus.Counter
	bytesRetrieved prometheus.Counter
}

// NewCollector creates a collector and registers its metrics plus the Go
// runtime and process collectors.
func NewCollector(namespace string) *Collector {
	if strings.TrimSpace(namespace) == "" {
		namespace = defaultNamespace
	}
	c := &Collector{
		namespace: namespace,
		registry:  prometheus.NewRegistry(),
	}
	c.registerMetrics()
	return c
}

// Registry returns the prometheus registry managed by this collector
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request. route is the matched
// mux pattern so filenames never become label values.
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveVersion records a committed ledger append
func (c *Collector) ObserveVersion(op models.Operation, size int64) {
	c.versions.WithLabelValues(string(op)).Inc()
	if size > 0 {
		c.bytesStored.Add(float64(size))
	}
}

// ObserveRejected records a mutation the core refused, by reason
func (c *Collector) ObserveRejected(op, reason string) {
	c.rejected.WithLabelValues(op, reason).Inc()
}

// ObserveDownload records bytes served from the blob store
func (c *Collector) ObserveDownload(size int64) {
	if size > 0 {
		c.bytesRetrieved.Add(float64(size))
	}
}

// TrackLiveFiles exposes a gauge backed by fn, evaluated at scrape time
func (c *Collector) TrackLiveFiles(fn func() float64) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: c.namespace,
		Subsystem: subsystemLedger,
		Name:      "live_files",
		Help:      "Files whose latest version is not a delete marker.",
	}, fn))
}

func (c *Collector) registerMetrics() {
	c.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Subsystem: subsystemHTTP,
		Name:      "requests_total",
		Help:      "HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})

	c.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.namespace,
		Subsystem: subsystemHTTP,
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	c.versions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Subsystem: subsystemLedger,
		Name:      "versions_appended_total",
		Help:      "Version records committed to the ledger, by operation.",
	}, []string{"operation"})

	c.rejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Subsystem: subsystemLedger,
		Name:      "mutations_rejected_total",
		Help:      "Upload and delete calls that failed, by operation and reason.",
	}, []string{"operation", "reason"})

	c.bytesStored = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: c.namespace,
		Subsystem: subsystemLedger,
		Name:      "stored_bytes_total",
		Help:      "Content bytes written through committed versions.",
	})

	c.bytesRetrieved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: c.namespace,
		Subsystem: subsystemLedger,
		Name:      "retrieved_bytes_total",
		Help:      "Content bytes served by downloads.",
	})

	c.registry.MustRegister(
		c.requests,
		c.duration,
		c.versions,
		c.rejected,
		c.bytesStored,
		c.bytesRetrieved,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}
