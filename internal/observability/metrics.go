package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ViewerCollector bundles Prometheus metrics for the viewer: mechanics
// pipeline activity, camera framing, and the HTTP surface. It satisfies the
// pipeline's metrics recorder interface.
type ViewerCollector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	Calculations      *prometheus.CounterVec
	CalculationSizes  prometheus.Histogram
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	StaleDrops        prometheus.Counter
	FramingRequests   prometheus.Counter
	SelectionsPaused  prometheus.Gauge
	LoadedObjectCount prometheus.Gauge
}

// NewViewerCollector registers viewer Prometheus metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewViewerCollector(reg prometheus.Registerer) (*ViewerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "viewer_http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by route, method, and status code.",
	}, []string{"route", "method", "code"})
	requests, err := registerCounterVec(reg, requests, "viewer_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "viewer_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route", "method"})
	durations, err = registerHistogramVec(reg, durations, "viewer_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	calculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "viewer_mechanics_calculations_total",
		Help: "Completed mechanics calculations, labeled by view mode.",
	}, []string{"mode"})
	calculations, err = registerCounterVec(reg, calculations, "viewer_mechanics_calculations_total")
	if err != nil {
		return nil, err
	}

	sizes, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "viewer_mechanics_calculation_objects",
		Help:    "Number of objects per completed mechanics calculation.",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
	}), "viewer_mechanics_calculation_objects")
	if err != nil {
		return nil, err
	}

	hits, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_mechanics_cache_hits_total",
		Help: "Mechanics requests served from the memoized cache.",
	}), "viewer_mechanics_cache_hits_total")
	if err != nil {
		return nil, err
	}
	misses, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_mechanics_cache_misses_total",
		Help: "Mechanics requests that required a fresh calculation.",
	}), "viewer_mechanics_cache_misses_total")
	if err != nil {
		return nil, err
	}
	drops, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_mechanics_stale_drops_total",
		Help: "Calculation results discarded because a newer generation superseded them.",
	}), "viewer_mechanics_stale_drops_total")
	if err != nil {
		return nil, err
	}
	framings, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_framing_requests_total",
		Help: "Camera framing computations performed.",
	}), "viewer_framing_requests_total")
	if err != nil {
		return nil, err
	}
	paused, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "viewer_time_paused",
		Help: "Whether simulation time is currently paused (1) or running (0).",
	}), "viewer_time_paused")
	if err != nil {
		return nil, err
	}
	loaded, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "viewer_loaded_objects",
		Help: "Number of objects in the currently loaded system.",
	}), "viewer_loaded_objects")
	if err != nil {
		return nil, err
	}

	return &ViewerCollector{
		gatherer:          gatherer,
		HTTPRequests:      requests,
		HTTPDurations:     durations,
		Calculations:      calculations,
		CalculationSizes:  sizes,
		CacheHits:         hits,
		CacheMisses:       misses,
		StaleDrops:        drops,
		FramingRequests:   framings,
		SelectionsPaused:  paused,
		LoadedObjectCount: loaded,
	}, nil
}

// CacheHit implements the pipeline metrics recorder.
func (c *ViewerCollector) CacheHit() {
	if c != nil && c.CacheHits != nil {
		c.CacheHits.Inc()
	}
}

// CacheMiss implements the pipeline metrics recorder.
func (c *ViewerCollector) CacheMiss() {
	if c != nil && c.CacheMisses != nil {
		c.CacheMisses.Inc()
	}
}

// StaleDrop implements the pipeline metrics recorder.
func (c *ViewerCollector) StaleDrop() {
	if c != nil && c.StaleDrops != nil {
		c.StaleDrops.Inc()
	}
}

// CalculationDone implements the pipeline metrics recorder.
func (c *ViewerCollector) CalculationDone(mode string, objects int) {
	if c == nil {
		return
	}
	if c.Calculations != nil {
		c.Calculations.WithLabelValues(mode).Inc()
	}
	if c.CalculationSizes != nil {
		c.CalculationSizes.Observe(float64(objects))
	}
}

// FramingDone records one camera framing computation.
func (c *ViewerCollector) FramingDone() {
	if c != nil && c.FramingRequests != nil {
		c.FramingRequests.Inc()
	}
}

// SetPaused mirrors the simulation pause state onto its gauge.
func (c *ViewerCollector) SetPaused(paused bool) {
	if c == nil || c.SelectionsPaused == nil {
		return
	}
	if paused {
		c.SelectionsPaused.Set(1)
	} else {
		c.SelectionsPaused.Set(0)
	}
}

// SetLoadedObjects mirrors the loaded system's object count onto its gauge.
func (c *ViewerCollector) SetLoadedObjects(n int) {
	if c != nil && c.LoadedObjectCount != nil {
		c.LoadedObjectCount.Set(float64(n))
	}
}

// Middleware records request counts and durations for mux-routed handlers.
func (c *ViewerCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		if c == nil {
			return
		}
		route := routeTemplate(r)
		if c.HTTPRequests != nil {
			c.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(sw.code)).Inc()
		}
		if c.HTTPDurations != nil {
			c.HTTPDurations.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		}
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ViewerCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// routeTemplate labels metrics with the mux route pattern rather than the raw
// URL, keeping cardinality bounded.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil && tmpl != "" {
			return tmpl
		}
	}
	return "unknown"
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
