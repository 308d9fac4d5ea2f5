// Package prometheus records provider metrics with client_golang.
package prometheus

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-authprovider/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultDurationBuckets are in milliseconds; login waits on a person.
var DefaultDurationBuckets = []float64{5, 25, 100, 250, 1000, 5000, 30000, 120000}

type Config struct {
	Namespace string
	Buckets   []float64
	Registry  *prometheus.Registry
}

// Recorder lazily creates one vector per metric name. Label names are fixed
// by the first observation; later tags outside that set are dropped.
type Recorder struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*labeledCounter
	histograms map[string]*labeledHistogram
}

type labeledCounter struct {
	vec    *prometheus.CounterVec
	labels []string
}

type labeledHistogram struct {
	vec    *prometheus.HistogramVec
	labels []string
}

func NewRecorder(cfg Config) *Recorder {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = DefaultDurationBuckets
	}
	return &Recorder{
		namespace:  sanitizeName(cfg.Namespace),
		buckets:    append([]float64(nil), buckets...),
		registry:   registry,
		counters:   map[string]*labeledCounter{},
		histograms: map[string]*labeledHistogram{},
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the recorder's registry in the exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || value <= 0 {
		return
	}
	counter := r.counter(name, tags)
	if counter == nil {
		return
	}
	counter.vec.WithLabelValues(labelValues(counter.labels, tags)...).Add(float64(value))
}

func (r *Recorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil {
		return
	}
	histogram := r.histogram(name, tags)
	if histogram == nil {
		return
	}
	histogram.vec.WithLabelValues(labelValues(histogram.labels, tags)...).Observe(value)
}

func (r *Recorder) counter(name string, tags map[string]string) *labeledCounter {
	metricName := sanitizeName(name)
	if metricName == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.counters[metricName]; ok {
		return existing
	}
	labels := labelNames(tags)
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      metricName,
		Help:      "Counter " + name,
	}, labels)
	if err := r.registry.Register(vec); err != nil {
		return nil
	}
	entry := &labeledCounter{vec: vec, labels: labels}
	r.counters[metricName] = entry
	return entry
}

func (r *Recorder) histogram(name string, tags map[string]string) *labeledHistogram {
	metricName := sanitizeName(name)
	if metricName == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.histograms[metricName]; ok {
		return existing
	}
	labels := labelNames(tags)
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      metricName,
		Help:      "Histogram " + name,
		Buckets:   r.buckets,
	}, labels)
	if err := r.registry.Register(vec); err != nil {
		return nil
	}
	entry := &labeledHistogram{vec: vec, labels: labels}
	r.histograms[metricName] = entry
	return entry
}

func labelNames(tags map[string]string) []string {
	names := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for key := range tags {
		name := sanitizeName(key)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func labelValues(labels []string, tags map[string]string) []string {
	sanitized := make(map[string]string, len(tags))
	for key, value := range tags {
		sanitized[sanitizeName(key)] = value
	}
	values := make([]string, len(labels))
	for i, label := range labels {
		values[i] = sanitized[label]
	}
	return values
}

// sanitizeName maps dots and other separators to underscores so
// "authprovider.login.total" becomes "authprovider_login_total".
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(name))
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

var _ core.MetricsRecorder = (*Recorder)(nil)
