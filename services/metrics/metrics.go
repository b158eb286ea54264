package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "billing_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	jobRuns    *prometheus.CounterVec
	jobLatency *prometheus.HistogramVec

	sharesGenerated  prometheus.Counter
	sharesRepriced   *prometheus.CounterVec
	notificationsOut *prometheus.CounterVec
)

// Init registers the billing collectors on reg, or on the default registerer when reg is nil.
func Init(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}

		jobRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "job_runs_total",
				Help: "Total scheduled job runs by job and result",
			},
			[]string{"job", "result"},
		)
		jobLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "job_duration_seconds",
				Help:    "Scheduled job duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"job", "result"},
		)
		sharesGenerated = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "shares_generated_total",
				Help: "Total shares created by the monthly generation",
			},
		)
		sharesRepriced = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "shares_repriced_total",
				Help: "Total shares re-priced by operation",
			},
			[]string{"operation"},
		)
		notificationsOut = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notifications_total",
				Help: "Total share notifications by result",
			},
			[]string{"result"},
		)

		reg.MustRegister(jobRuns, jobLatency, sharesGenerated, sharesRepriced, notificationsOut)
	})
}

// ObserveJob records a job run duration and result.
func ObserveJob(job string, err error, duration time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	if jobRuns != nil {
		jobRuns.WithLabelValues(job, result).Inc()
	}
	if jobLatency != nil {
		jobLatency.WithLabelValues(job, result).Observe(duration.Seconds())
	}
}

func AddSharesGenerated(count int) {
	if count <= 0 {
		return
	}
	if sharesGenerated != nil {
		sharesGenerated.Add(float64(count))
	}
}

func AddSharesRepriced(operation string, count int) {
	if count <= 0 {
		return
	}
	if operation == "" {
		operation = "unknown"
	}
	if sharesRepriced != nil {
		sharesRepriced.WithLabelValues(operation).Add(float64(count))
	}
}

func AddNotifications(sent, failed int) {
	if notificationsOut == nil {
		return
	}
	if sent > 0 {
		notificationsOut.WithLabelValues(ResultSuccess).Add(float64(sent))
	}
	if failed > 0 {
		notificationsOut.WithLabelValues(ResultError).Add(float64(failed))
	}
}
