// Package telemetry keeps in-process request and classifier metrics and
// serves them in the Prometheus text exposition format.
package telemetry

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ehr/radiologia/internal/platform/prediction"
)

// durationBuckets are histogram boundaries in seconds.
var durationBuckets = []float64{
	0.010, 0.025, 0.050, 0.100, 0.250, 0.500, 1.0, 2.5, 5.0, 10.0, 30.0,
}

// ---------------------------------------------------------------------------
// Histogram
// ---------------------------------------------------------------------------

// histogram stores non-cumulative bucket counts; export makes them
// cumulative.
type histogram struct {
	mu           sync.Mutex
	bucketCounts []int64
	count        int64
	sum          uint64 // math.Float64bits
}

func newHistogram() *histogram {
	return &histogram{bucketCounts: make([]int64, len(durationBuckets))}
}

func (h *histogram) observe(v float64) {
	atomic.AddInt64(&h.count, 1)
	for {
		old := atomic.LoadUint64(&h.sum)
		if atomic.CompareAndSwapUint64(&h.sum, old, math.Float64bits(math.Float64frombits(old)+v)) {
			break
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for i, b := range durationBuckets {
		if v <= b {
			h.bucketCounts[i]++
			return
		}
	}
}

func (h *histogram) cumulative() ([]int64, int64, float64) {
	h.mu.Lock()
	cum := make([]int64, len(h.bucketCounts))
	var running int64
	for i, c := range h.bucketCounts {
		running += c
		cum[i] = running
	}
	h.mu.Unlock()
	return cum, atomic.LoadInt64(&h.count), math.Float64frombits(atomic.LoadUint64(&h.sum))
}

// ---------------------------------------------------------------------------
// Labeled stores
// ---------------------------------------------------------------------------

// labelKey joins label values; values never contain "|".
func labelKey(values ...string) string {
	return strings.Join(values, "|")
}

type histogramStore struct {
	mu    sync.RWMutex
	items map[string]*histogram
}

func (s *histogramStore) get(key string) *histogram {
	s.mu.RLock()
	h, ok := s.items[key]
	s.mu.RUnlock()
	if ok {
		return h
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok = s.items[key]; !ok {
		h = newHistogram()
		s.items[key] = h
	}
	return h
}

func (s *histogramStore) keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type counterStore struct {
	mu    sync.RWMutex
	items map[string]*int64
}

func (s *counterStore) inc(key string) {
	s.mu.RLock()
	p, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		s.mu.Lock()
		if p, ok = s.items[key]; !ok {
			p = new(int64)
			s.items[key] = p
		}
		s.mu.Unlock()
	}
	atomic.AddInt64(p, 1)
}

func (s *counterStore) get(key string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.items[key]; ok {
		return atomic.LoadInt64(p)
	}
	return 0
}

func (s *counterStore) snapshot() ([]string, map[string]int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	vals := make(map[string]int64, len(s.items))
	for k, p := range s.items {
		keys = append(keys, k)
		vals[k] = atomic.LoadInt64(p)
	}
	sort.Strings(keys)
	return keys, vals
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

// Metrics holds every series the server exports.
type Metrics struct {
	requests        counterStore   // method|route|status
	requestDuration histogramStore // method|route
	activeRequests  int64

	predictions        counterStore // outcome
	predictionDuration histogramStore
}

func New() *Metrics {
	return &Metrics{
		requests:           counterStore{items: make(map[string]*int64)},
		requestDuration:    histogramStore{items: make(map[string]*histogram)},
		predictions:        counterStore{items: make(map[string]*int64)},
		predictionDuration: histogramStore{items: make(map[string]*histogram)},
	}
}

// RequestCount returns the number of finished requests for the series.
func (m *Metrics) RequestCount(method, route string, status int) int64 {
	return m.requests.get(labelKey(method, route, strconv.Itoa(status)))
}

// PredictionCount returns the number of classifier calls with outcome, one
// of "cancer", "not_cancer" or "unavailable".
func (m *Metrics) PredictionCount(outcome string) int64 {
	return m.predictions.get(outcome)
}

// Middleware records a counter and a duration histogram per route. The
// route is the registered pattern, so "/imagen/:id" is one series.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&m.activeRequests, 1)
			defer atomic.AddInt64(&m.activeRequests, -1)

			start := time.Now()
			err := next(c)
			elapsed := time.Since(start).Seconds()

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method

			m.requests.inc(labelKey(method, route, strconv.Itoa(status)))
			m.requestDuration.get(labelKey(method, route)).observe(elapsed)
			return err
		}
	}
}

// InstrumentPredictor counts and times every call made through p.
func (m *Metrics) InstrumentPredictor(p prediction.Predictor) prediction.Predictor {
	return &instrumentedPredictor{next: p, metrics: m}
}

type instrumentedPredictor struct {
	next    prediction.Predictor
	metrics *Metrics
}

func (p *instrumentedPredictor) Predict(ctx context.Context, image []byte) (prediction.Result, error) {
	start := time.Now()
	res, err := p.next.Predict(ctx, image)
	p.metrics.predictionDuration.get("").observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		p.metrics.predictions.inc("unavailable")
	case res.Label == prediction.LabelCancer:
		p.metrics.predictions.inc("cancer")
	default:
		p.metrics.predictions.inc("not_cancer")
	}
	return res, err
}

// ---------------------------------------------------------------------------
// Exposition
// ---------------------------------------------------------------------------

// Handler serves the text exposition format, normally at /metrics.
func (m *Metrics) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var b strings.Builder

		b.WriteString("# HELP http_requests_total Finished HTTP requests.\n")
		b.WriteString("# TYPE http_requests_total counter\n")
		keys, vals := m.requests.snapshot()
		for _, k := range keys {
			parts := strings.SplitN(k, "|", 3)
			fmt.Fprintf(&b, "http_requests_total{method=%q,route=%q,status_code=%q} %d\n",
				parts[0], parts[1], parts[2], vals[k])
		}
		b.WriteByte('\n')

		b.WriteString("# HELP http_request_duration_seconds Duration of HTTP requests in seconds.\n")
		b.WriteString("# TYPE http_request_duration_seconds histogram\n")
		for _, k := range m.requestDuration.keys() {
			parts := strings.SplitN(k, "|", 2)
			labels := fmt.Sprintf("method=%q,route=%q", parts[0], parts[1])
			writeHistogram(&b, "http_request_duration_seconds", labels, m.requestDuration.get(k))
		}
		b.WriteByte('\n')

		b.WriteString("# HELP http_active_requests Requests currently being served.\n")
		b.WriteString("# TYPE http_active_requests gauge\n")
		fmt.Fprintf(&b, "http_active_requests %d\n\n", atomic.LoadInt64(&m.activeRequests))

		b.WriteString("# HELP predictions_total Classifier calls by outcome.\n")
		b.WriteString("# TYPE predictions_total counter\n")
		keys, vals = m.predictions.snapshot()
		for _, k := range keys {
			fmt.Fprintf(&b, "predictions_total{outcome=%q} %d\n", k, vals[k])
		}
		b.WriteByte('\n')

		b.WriteString("# HELP prediction_duration_seconds Duration of classifier calls in seconds.\n")
		b.WriteString("# TYPE prediction_duration_seconds histogram\n")
		if len(m.predictionDuration.keys()) > 0 {
			writeHistogram(&b, "prediction_duration_seconds", "", m.predictionDuration.get(""))
		}

		return c.Blob(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
	}
}

func writeHistogram(b *strings.Builder, name, labels string, h *histogram) {
	cum, count, sum := h.cumulative()

	prefix, suffix := "", ""
	if labels != "" {
		prefix = labels + ","
		suffix = "{" + labels + "}"
	}
	for i, boundary := range durationBuckets {
		fmt.Fprintf(b, "%s_bucket{%sle=\"%g\"} %d\n", name, prefix, boundary, cum[i])
	}
	fmt.Fprintf(b, "%s_bucket{%sle=\"+Inf\"} %d\n", name, prefix, count)
	fmt.Fprintf(b, "%s_sum%s %g\n", name, suffix, sum)
	fmt.Fprintf(b, "%s_count%s %d\n", name, suffix, count)
}
