package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Minimal Prometheus text exposition. Series are written in label order so
// scrapes are stable.

type metricKind string

const (
	kindCounter metricKind = "counter"
	kindGauge   metricKind = "gauge"
)

type collector interface {
	WritePrometheus(w io.Writer) error
}

// Vec is a counter or gauge keyed by label values. A Vec with no label
// names is a single series.
type Vec struct {
	name   string
	help   string
	kind   metricKind
	labels []string
	mu     sync.RWMutex
	values map[string]float64
}

func NewCounterVec(name, help string, labels ...string) *Vec {
	return &Vec{name: name, help: help, kind: kindCounter, labels: labels, values: map[string]float64{}}
}

func NewGaugeVec(name, help string, labels ...string) *Vec {
	return &Vec{name: name, help: help, kind: kindGauge, labels: labels, values: map[string]float64{}}
}

func (v *Vec) Inc(values ...string) { v.Add(1, values...) }

func (v *Vec) Add(delta float64, values ...string) {
	if v == nil {
		return
	}
	key := labelString(v.labels, values)
	v.mu.Lock()
	v.values[key] += delta
	v.mu.Unlock()
}

func (v *Vec) Set(val float64, values ...string) {
	if v == nil {
		return
	}
	key := labelString(v.labels, values)
	v.mu.Lock()
	v.values[key] = val
	v.mu.Unlock()
}

func (v *Vec) Value(values ...string) float64 {
	if v == nil {
		return 0
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.values[labelString(v.labels, values)]
}

func (v *Vec) WritePrometheus(w io.Writer) error {
	if v == nil {
		return nil
	}
	if err := writeHeader(w, v.name, v.help, v.kind); err != nil {
		return err
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, k := range sortedKeys(v.values) {
		if _, err := fmt.Fprintf(w, "%s%s %g\n", v.name, k, v.values[k]); err != nil {
			return err
		}
	}
	return nil
}

type HistogramVec struct {
	name    string
	help    string
	labels  []string
	buckets []float64
	mu      sync.RWMutex
	series  map[string]*histogram
}

type histogram struct {
	counts []uint64 // cumulative; last slot is +Inf
	sum    float64
	total  uint64
}

func NewHistogramVec(name, help string, buckets []float64, labels ...string) *HistogramVec {
	if len(buckets) == 0 {
		buckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	}
	return &HistogramVec{name: name, help: help, labels: labels, buckets: buckets, series: map[string]*histogram{}}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	key := labelString(h.labels, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.series[key]
	if !ok {
		s = &histogram{counts: make([]uint64, len(h.buckets)+1)}
		h.series[key] = s
	}
	s.sum += v
	s.total++
	for i, b := range h.buckets {
		if v <= b {
			s.counts[i]++
		}
	}
	s.counts[len(h.buckets)]++
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name); err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	keys := make([]string, 0, len(h.series))
	for k := range h.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := h.series[k]
		for i, b := range h.buckets {
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, fmt.Sprintf("%g", b)), s.counts[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n%s_sum%s %g\n%s_count%s %d\n",
			h.name, withLe(k, "+Inf"), s.counts[len(h.buckets)],
			h.name, k, s.sum,
			h.name, k, s.total,
		); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(w io.Writer, name, help string, kind metricKind) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
	return err
}

func sortedKeys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func labelString(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		val := "unknown"
		if i < len(values) && values[i] != "" {
			val = values[i]
		}
		fmt.Fprintf(&b, "%s=%q", name, escapeLabel(val))
	}
	b.WriteByte('}')
	return b.String()
}

// escapeLabel prepares a value for %q, which adds the quoting and escapes.
func escapeLabel(v string) string {
	return strings.ToValidUTF8(v, "?")
}

func withLe(labels, le string) string {
	if labels == "" {
		return `{le="` + le + `"}`
	}
	return strings.TrimSuffix(labels, "}") + `,le="` + le + `"}`
}
