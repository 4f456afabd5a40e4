package metrics

import (
	"strconv"
	"time"

	"github.com/Cloud-Foundations/customdomain/pkg/crypto/certbot"
	"github.com/prometheus/client_golang/prometheus"
)

func newRecorder() *Recorder {
	r := &Recorder{
		actionDuration: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       "customdomain_action_duration_seconds",
				Help:       "Duration of DNS and certificate actions",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"action"},
		),
		certificateActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customdomain_certificate_actions_total",
				Help: "Certificate actions by result and whether evidence was needed",
			},
			[]string{"action", "result", "evidence"},
		),
		dnsActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customdomain_dns_actions_total",
				Help: "DNS record actions by result",
			},
			[]string{"action", "result"},
		),
		registry: prometheus.NewRegistry(),
	}
	r.registry.MustRegister(r.actionDuration)
	r.registry.MustRegister(r.certificateActions)
	r.registry.MustRegister(r.dnsActions)
	return r
}

func resultLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func (r *Recorder) recordCertificateAction(action certbot.Action,
	result certbot.Result, err error, duration time.Duration) {
	label := resultLabel(err)
	if !result.Success {
		label = "failure"
	}
	r.certificateActions.WithLabelValues(string(action), label,
		strconv.FormatBool(result.NeedsEvidence)).Inc()
	r.actionDuration.WithLabelValues(string(action)).Observe(
		duration.Seconds())
}

func (r *Recorder) recordDNSAction(action string, err error,
	duration time.Duration) {
	r.dnsActions.WithLabelValues(action, resultLabel(err)).Inc()
	r.actionDuration.WithLabelValues(action).Observe(duration.Seconds())
}
