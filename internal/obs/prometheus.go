package obs

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yanun0323/logs"
)

const namespace = "trader"

var (
	ticksDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "ticks_total"),
		"Snapshots processed.", nil, nil)
	rejectedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "rejected_ticks_total"),
		"Snapshots rejected as malformed.", nil, nil)
	conversionsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "conversions_total"),
		"Absolute conversion amount requested.", nil, nil)
	ordersDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "orders_total"),
		"Orders emitted after the risk guard.", []string{"product"}, nil)
	skipsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "generator_skips_total"),
		"Ticks a generator was skipped on.", []string{"generator"}, nil)
	guardDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "guard_adjustments_total"),
		"Orders changed by the risk guard.", []string{"reason"}, nil)
	latencyDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "tick_latency_seconds"),
		"Tick processing latency.", []string{"stat"}, nil)
)

// Collector exports Metrics to Prometheus. Values are read at scrape time.
type Collector struct {
	metrics *Metrics
}

// NewCollector wraps m for registration.
func NewCollector(m *Metrics) *Collector {
	return &Collector{metrics: m}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- ticksDesc
	ch <- rejectedDesc
	ch <- conversionsDesc
	ch <- ordersDesc
	ch <- skipsDesc
	ch <- guardDesc
	ch <- latencyDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.metrics.Snapshot()

	ch <- prometheus.MustNewConstMetric(ticksDesc, prometheus.CounterValue, float64(s.Ticks))
	ch <- prometheus.MustNewConstMetric(rejectedDesc, prometheus.CounterValue, float64(s.RejectedTicks))
	ch <- prometheus.MustNewConstMetric(conversionsDesc, prometheus.CounterValue, float64(s.Conversions))
	for p, v := range s.Orders {
		ch <- prometheus.MustNewConstMetric(ordersDesc, prometheus.CounterValue, float64(v), p.String())
	}
	for g, v := range s.Skips {
		ch <- prometheus.MustNewConstMetric(skipsDesc, prometheus.CounterValue, float64(v), g)
	}
	for r, v := range s.GuardReasonCounts {
		ch <- prometheus.MustNewConstMetric(guardDesc, prometheus.CounterValue, float64(v), r.String())
	}
	if s.TickLatency.Count != 0 {
		ch <- prometheus.MustNewConstMetric(latencyDesc, prometheus.GaugeValue, s.TickLatency.Min.Seconds(), "min")
		ch <- prometheus.MustNewConstMetric(latencyDesc, prometheus.GaugeValue, s.TickLatency.Max.Seconds(), "max")
		ch <- prometheus.MustNewConstMetric(latencyDesc, prometheus.GaugeValue, s.TickLatency.Avg.Seconds(), "avg")
	}
}

// Handler returns an HTTP handler serving m on its own registry.
func Handler(m *Metrics) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(m))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Serve exposes m on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, m *Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(m))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Errorf("serve metrics, err: %+v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	return srv
}
