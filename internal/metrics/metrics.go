// Package metrics exposes Prometheus metrics for triage runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mortgage-triage-go/internal/pipeline"
	"mortgage-triage-go/internal/types"
)

// Metrics holds Prometheus metrics for the triage pipeline.
type Metrics struct {
	TriagesTotal     *prometheus.CounterVec
	TriageDuration   prometheus.Histogram
	ReasonCodesTotal *prometheus.CounterVec
	EscalationsTotal prometheus.Counter
	ErrorsTotal      prometheus.Counter
	AmountsExtracted prometheus.Histogram
}

// New registers and returns triage metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TriagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_transcripts_total",
			Help: "Transcripts triaged by intent and risk level.",
		}, []string{"intent", "risk_level"}),
		TriageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "triage_duration_seconds",
			Help:    "Time to triage one transcript in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms .. ~0.8s
		}),
		ReasonCodesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_reason_codes_total",
			Help: "Reason codes emitted by code.",
		}, []string{"code"}),
		EscalationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triage_escalations_total",
			Help: "Transcripts flagged for escalation.",
		}),
		ErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triage_errors_total",
			Help: "Transcripts that could not be read or triaged.",
		}),
		AmountsExtracted: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "triage_amounts_extracted",
			Help:    "Monetary amounts found per transcript.",
			Buckets: prometheus.LinearBuckets(0, 1, 8), // 0 .. 7
		}),
	}

	reg.MustRegister(
		m.TriagesTotal,
		m.TriageDuration,
		m.ReasonCodesTotal,
		m.EscalationsTotal,
		m.ErrorsTotal,
		m.AmountsExtracted,
	)

	return m
}

// Hooks returns pipeline hooks that update the metrics.
func (m *Metrics) Hooks() pipeline.Hooks {
	return pipeline.Hooks{
		OnResult: func(res *types.TriageResult, took time.Duration) {
			m.TriagesTotal.WithLabelValues(res.Intent, string(res.RiskLevel)).Inc()
			m.TriageDuration.Observe(took.Seconds())
			for _, rc := range res.ReasonCodes {
				m.ReasonCodesTotal.WithLabelValues(rc.GetCode()).Inc()
			}
			if res.Escalate {
				m.EscalationsTotal.Inc()
			}
			m.AmountsExtracted.Observe(float64(len(res.Entities.Amounts)))
		},
		OnError: func(string, error) {
			m.ErrorsTotal.Inc()
		},
	}
}
