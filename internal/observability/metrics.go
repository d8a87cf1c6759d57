package observability

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/vorhaben-backend/internal/platform/envutil"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

const namespace = "vorhaben"

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	llmRequests *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
	llmTokens   *prometheus.CounterVec

	batchRuns     *prometheus.CounterVec
	batchLatency  *prometheus.HistogramVec
	batchSections *prometheus.CounterVec
	edits         *prometheus.CounterVec
	editLatency   *prometheus.HistogramVec
	chatMessages  *prometheus.CounterVec

	aggregateOps       *prometheus.CounterVec
	aggregateLatency   *prometheus.HistogramVec
	aggregateConflicts *prometheus.CounterVec
	aggregateRetries   *prometheus.CounterVec

	styleCache *prometheus.CounterVec
	redisUp    prometheus.Gauge
	redisPing  prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics set when METRICS_ENABLED is on.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

// New returns a metrics set backed by its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := &Metrics{registry: reg}

	m.apiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "api_requests_total", Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	m.apiLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "api_request_duration_seconds", Help: "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	m.apiInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "api_inflight_requests", Help: "HTTP requests currently being served.",
	})

	m.llmRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "llm_requests_total", Help: "LLM completions by model, mode and status.",
	}, []string{"model", "mode", "status"})
	m.llmLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "llm_request_duration_seconds", Help: "LLM completion latency.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 45, 90, 180},
	}, []string{"model", "mode", "status"})
	m.llmTokens = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "llm_tokens_total", Help: "LLM tokens by model and direction.",
	}, []string{"model", "direction"})

	m.batchRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "generation_batches_total", Help: "Section generation batches by status.",
	}, []string{"status"})
	m.batchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "generation_batch_duration_seconds", Help: "Section generation batch latency.",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 240, 480},
	}, []string{"status"})
	m.batchSections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "generation_sections_total", Help: "Sections generated or failed.",
	}, []string{"status"})
	m.edits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "section_edits_total", Help: "Single-section edits by instruction kind and status.",
	}, []string{"kind", "status"})
	m.editLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "section_edit_duration_seconds", Help: "Single-section edit latency.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 90},
	}, []string{"kind"})
	m.chatMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "chat_messages_total", Help: "Assistant chat replies by kind.",
	}, []string{"kind"})

	m.aggregateOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "aggregate_operations_total", Help: "Aggregate writes by operation and status.",
	}, []string{"operation", "status"})
	m.aggregateLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "aggregate_operation_duration_seconds", Help: "Aggregate write latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})
	m.aggregateConflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "aggregate_conflicts_total", Help: "Optimistic concurrency conflicts.",
	}, []string{"operation"})
	m.aggregateRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "aggregate_retries_total", Help: "Aggregate write retries.",
	}, []string{"operation"})

	m.styleCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "style_cache_lookups_total", Help: "Style guide cache lookups by result.",
	}, []string{"result"})
	m.redisUp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "redis_up", Help: "1 when the last redis ping succeeded.",
	})
	m.redisPing = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "redis_ping_seconds", Help: "Latency of the last redis ping.",
	})

	for _, c := range []prometheus.Collector{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.batchRuns, m.batchLatency, m.batchSections, m.edits, m.editLatency, m.chatMessages,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.styleCache, m.redisUp, m.redisPing,
	} {
		reg.MustRegister(c)
	}
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method = orDefault(method, "UNKNOWN")
	route = orDefault(route, "unknown")
	status = orDefault(status, "0")
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLMRequest(model, mode, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = orDefault(model, "unknown")
	mode = orDefault(mode, "unknown")
	status = orDefault(status, "0")
	m.llmRequests.WithLabelValues(model, mode, status).Inc()
	if dur > 0 {
		m.llmLatency.WithLabelValues(model, mode, status).Observe(dur.Seconds())
	}
	if inputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

// ObserveBatch records one generation batch; generated and failed count sections.
func (m *Metrics) ObserveBatch(status string, generated, failed int, dur time.Duration) {
	if m == nil {
		return
	}
	status = orDefault(status, "unknown")
	m.batchRuns.WithLabelValues(status).Inc()
	m.batchLatency.WithLabelValues(status).Observe(dur.Seconds())
	if generated > 0 {
		m.batchSections.WithLabelValues("generated").Add(float64(generated))
	}
	if failed > 0 {
		m.batchSections.WithLabelValues("failed").Add(float64(failed))
	}
}

func (m *Metrics) ObserveEdit(kind, status string, dur time.Duration) {
	if m == nil {
		return
	}
	kind = orDefault(kind, "unknown")
	m.edits.WithLabelValues(kind, orDefault(status, "unknown")).Inc()
	m.editLatency.WithLabelValues(kind).Observe(dur.Seconds())
}

func (m *Metrics) IncChatMessage(kind string) {
	if m == nil {
		return
	}
	m.chatMessages.WithLabelValues(orDefault(kind, "unknown")).Inc()
}

func (m *Metrics) ObserveAggregateOperation(operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	operation = orDefault(operation, "unknown")
	status = orDefault(status, "unknown")
	m.aggregateOps.WithLabelValues(operation, status).Inc()
	m.aggregateLatency.WithLabelValues(operation, status).Observe(dur.Seconds())
}

func (m *Metrics) IncAggregateConflict(operation string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.WithLabelValues(orDefault(operation, "unknown")).Inc()
}

func (m *Metrics) IncAggregateRetry(operation string) {
	if m == nil {
		return
	}
	m.aggregateRetries.WithLabelValues(orDefault(operation, "unknown")).Inc()
}

// IncStyleCache counts style guide cache lookups ("hit", "miss", "error").
func (m *Metrics) IncStyleCache(result string) {
	if m == nil {
		return
	}
	m.styleCache.WithLabelValues(orDefault(result, "unknown")).Inc()
}

// RegisterDB exports database/sql pool stats for the gorm connection.
func (m *Metrics) RegisterDB(log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db stats unavailable", "error", err)
		}
		return
	}
	if err := m.registry.Register(collectors.NewDBStatsCollector(sqlDB, namespace)); err != nil && log != nil {
		log.Warn("metrics: db stats collector not registered", "error", err)
	}
}

// StartRedisCollector pings redis on an interval until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	interval := envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 15*time.Second)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
