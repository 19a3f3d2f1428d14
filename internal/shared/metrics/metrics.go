package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeDegraded = "degraded"
)

var (
	pipelineRequests = newCounterVec()
	llmRetriesTotal  atomic.Uint64

	generationDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncRequest counts one pipeline operation with its outcome.
func IncRequest(op, outcome string) {
	pipelineRequests.Inc(op, outcome)
}

// IncLLMRetry counts a retried generation attempt.
func IncLLMRetry() {
	llmRetriesTotal.Add(1)
}

// ObserveGenerationMs records a generation latency in milliseconds.
func ObserveGenerationMs(value float64) {
	if value < 0 {
		value = 0
	}
	generationDuration.Observe(value)
}

// Since returns the milliseconds elapsed since start.
func Since(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounterVec(&buf, "pipeline_requests_total", "Pipeline operations by op and outcome", pipelineRequests.Snapshot())
	writeCounter(&buf, "llm_retries_total", "Generation attempts retried after transport errors", llmRetriesTotal.Load())
	writeHistogram(&buf, "generation_duration_ms", "Generation latency in milliseconds", generationDuration.Snapshot())
	return buf.String()
}

type labelPair struct {
	op      string
	outcome string
}

type counterVec struct {
	mu     sync.Mutex
	values map[labelPair]uint64
}

type counterSample struct {
	labels labelPair
	value  uint64
}

func newCounterVec() *counterVec {
	return &counterVec{values: make(map[labelPair]uint64)}
}

func (c *counterVec) Inc(op, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[labelPair{op: op, outcome: outcome}]++
}

func (c *counterVec) Snapshot() []counterSample {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]counterSample, 0, len(c.values))
	for k, v := range c.values {
		out = append(out, counterSample{labels: k, value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].labels.op != out[j].labels.op {
			return out[i].labels.op < out[j].labels.op
		}
		return out[i].labels.outcome < out[j].labels.outcome
	})
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in the first bucket that holds it; buckets are cumulated on render.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeCounterVec(buf *bytes.Buffer, name, help string, samples []counterSample) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	for _, s := range samples {
		fmt.Fprintf(buf, "%s{op=%q,outcome=%q} %d\n", name, s.labels.op, s.labels.outcome, s.value)
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
