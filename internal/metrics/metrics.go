// Package metrics exposes Prometheus counters for reminder delivery.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Failure reasons used as label values
const (
	ReasonMalformed    = "malformed_request"
	ReasonUserNotFound = "user_not_found"
	ReasonDispatch     = "dispatch_failed"
	ReasonTimeout      = "timeout"
	ReasonInternal     = "internal"
)

// Recorder is what the service layer reports to.
type Recorder interface {
	RecordSent()
	RecordFailure(reason string)
	RecordLookupLatency(d time.Duration)
	RecordDispatchLatency(d time.Duration)
	RecordHTTPStatus(statusCode int)
}

// Collector records reminder metrics into a Prometheus registry.
type Collector struct {
	sent            prometheus.Counter
	failed          *prometheus.CounterVec
	lookupLatency   prometheus.Histogram
	dispatchLatency prometheus.Histogram
	httpStatus      *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birthdays_reminders_sent_total",
			Help: "Reminder emails accepted by the provider.",
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "birthdays_reminders_failed_total",
			Help: "Reminder requests that failed, by reason.",
		}, []string{"reason"}),
		lookupLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "birthdays_lookup_latency_seconds",
			Help:    "Identity store lookup latency.",
			Buckets: prometheus.DefBuckets,
		}),
		dispatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "birthdays_dispatch_latency_seconds",
			Help:    "Email provider call latency.",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "birthdays_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.sent,
		c.failed,
		c.lookupLatency,
		c.dispatchLatency,
		c.httpStatus,
	)

	return c
}

// RecordSent counts a delivered reminder.
func (c *Collector) RecordSent() {
	c.sent.Inc()
}

// RecordFailure counts a failed reminder.
func (c *Collector) RecordFailure(reason string) {
	c.failed.WithLabelValues(reason).Inc()
}

// RecordLookupLatency observes one identity store lookup.
func (c *Collector) RecordLookupLatency(d time.Duration) {
	c.lookupLatency.Observe(d.Seconds())
}

// RecordDispatchLatency observes one provider call.
func (c *Collector) RecordDispatchLatency(d time.Duration) {
	c.dispatchLatency.Observe(d.Seconds())
}

// RecordHTTPStatus counts a response status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordSent()                         {}
func (Nop) RecordFailure(string)                {}
func (Nop) RecordLookupLatency(time.Duration)   {}
func (Nop) RecordDispatchLatency(time.Duration) {}
func (Nop) RecordHTTPStatus(int)                {}
