package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portal"

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// session storage (postgres backend)
	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	LoginAttempts   *prometheus.CounterVec
	EpisodeDuration *prometheus.HistogramVec
	EpisodesActive  *prometheus.GaugeVec

	GenerationDuration *prometheus.HistogramVec
	GenerationResults  *prometheus.CounterVec

	SweptTotal *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "Storage operation latency (logical op, not raw SQL)",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "Storage errors by logical op and class.",
			},
			[]string{"op", "class"},
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "login_attempts_total",
				Help:      "Login attempts by role and result.",
			},
			[]string{"role", "result"}, // result=accepted|challenge_mismatch|invalid_credentials|busy
		),
		EpisodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "choreography",
				Name:      "episode_duration_seconds",
				Help:      "Login and logout choreography duration by kind and result.",
				Buckets:   []float64{0.5, 1, 1.5, 2, 2.5, 3, 4, 5, 7.5, 10},
			},
			[]string{"kind", "result"},
		),
		EpisodesActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "choreography",
				Name:      "episodes_active",
				Help:      "Login and logout episodes currently running.",
			},
			[]string{"kind"},
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "automation",
				Name:      "generation_duration_seconds",
				Help:      "Remote text generation latency by workflow and result.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
			[]string{"workflow", "result"},
		),
		GenerationResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "automation",
				Name:      "generation_results_total",
				Help:      "Workflow runs by workflow and result.",
			},
			[]string{"workflow", "result"}, // result=ok|empty|error
		),
		SweptTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sweeper",
				Name:      "removed_total",
				Help:      "Entries removed by the periodic sweeps.",
			},
			[]string{"target"},
		),
	}

	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.LoginAttempts, p.EpisodeDuration, p.EpisodesActive,
		p.GenerationDuration, p.GenerationResults,
		p.SweptTotal,
	)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only known after routing
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()

		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

func (p *Prom) ObserveLoginAttempt(role, result string) {
	p.LoginAttempts.WithLabelValues(role, result).Inc()
}

// EpisodeStarted and EpisodeEnded track choreography episodes; kind is
// "login" or "logout".
func (p *Prom) EpisodeStarted(kind string) {
	p.EpisodesActive.WithLabelValues(kind).Inc()
}

func (p *Prom) EpisodeEnded(kind, result string, d time.Duration) {
	p.EpisodesActive.WithLabelValues(kind).Dec()
	p.EpisodeDuration.WithLabelValues(kind, result).Observe(d.Seconds())
}

func (p *Prom) ObserveGeneration(workflowID, result string, d time.Duration) {
	p.GenerationResults.WithLabelValues(workflowID, result).Inc()
	p.GenerationDuration.WithLabelValues(workflowID, result).Observe(d.Seconds())
}

func (p *Prom) ObserveSweep(target string, removed int) {
	if removed > 0 {
		p.SweptTotal.WithLabelValues(target).Add(float64(removed))
	}
}
