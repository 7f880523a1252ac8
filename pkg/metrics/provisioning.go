package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvisioningMetrics records counters for account provisioning flows.
type ProvisioningMetrics struct {
	duration       *prometheus.HistogramVec
	attempts       *prometheus.CounterVec
	repairs        *prometheus.CounterVec
	selfHeals      *prometheus.CounterVec
	fanoutFailures prometheus.Counter
	insertRetries  *prometheus.CounterVec
}

// NewProvisioningMetrics registers the provisioning metrics on the provided registerer.
func NewProvisioningMetrics(reg prometheus.Registerer) *ProvisioningMetrics {
	if reg == nil {
		return &ProvisioningMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provision_duration_seconds",
		Help:    "Duration of account provisioning runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"flow"})
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provision_attempts_total",
		Help: "Account provisioning attempts by flow and outcome.",
	}, []string{"flow", "outcome"})
	repairs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "profile_repairs_total",
		Help: "Elevated profile repair attempts by outcome.",
	}, []string{"outcome"})
	selfHeals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_self_heals_total",
		Help: "Login-time profile self-heal attempts by role and outcome.",
	}, []string{"role", "outcome"})
	fanoutFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_fanout_failures_total",
		Help: "Notification inserts that failed during assignment fan-out.",
	})
	insertRetries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "profile_insert_retries_total",
		Help: "Profile insert retries during provisioning by table.",
	}, []string{"table"})
	reg.MustRegister(duration, attempts, repairs, selfHeals, fanoutFailures, insertRetries)
	return &ProvisioningMetrics{
		duration:       duration,
		attempts:       attempts,
		repairs:        repairs,
		selfHeals:      selfHeals,
		fanoutFailures: fanoutFailures,
		insertRetries:  insertRetries,
	}
}

// ObserveDuration records the duration for the named provisioning flow.
func (p *ProvisioningMetrics) ObserveDuration(flow string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(flow)).Observe(duration.Seconds())
}

// IncAttempt increments the attempt counter for the named flow and outcome.
func (p *ProvisioningMetrics) IncAttempt(flow, outcome string) {
	if p == nil || p.attempts == nil {
		return
	}
	p.attempts.WithLabelValues(normalizeLabel(flow), normalizeLabel(outcome)).Inc()
}

// IncRepair increments the repair counter for the given outcome.
func (p *ProvisioningMetrics) IncRepair(outcome string) {
	if p == nil || p.repairs == nil {
		return
	}
	p.repairs.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncSelfHeal increments the login self-heal counter for the role and outcome.
func (p *ProvisioningMetrics) IncSelfHeal(role, outcome string) {
	if p == nil || p.selfHeals == nil {
		return
	}
	p.selfHeals.WithLabelValues(normalizeLabel(role), normalizeLabel(outcome)).Inc()
}

// IncFanoutFailure increments the notification fan-out failure counter.
func (p *ProvisioningMetrics) IncFanoutFailure() {
	if p == nil || p.fanoutFailures == nil {
		return
	}
	p.fanoutFailures.Inc()
}

// IncInsertRetry increments the retry counter for the named table.
func (p *ProvisioningMetrics) IncInsertRetry(table string) {
	if p == nil || p.insertRetries == nil {
		return
	}
	p.insertRetries.WithLabelValues(normalizeLabel(table)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
