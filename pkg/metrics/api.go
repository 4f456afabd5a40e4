/*
Package metrics counts DNS and certificate actions and writes them to a file
in the Prometheus text format, for collection by the node exporter textfile
collector.
*/
package metrics

import (
	"time"

	"github.com/Cloud-Foundations/customdomain/pkg/crypto/certbot"
	"github.com/prometheus/client_golang/prometheus"
)

type Recorder struct {
	actionDuration     *prometheus.SummaryVec
	certificateActions *prometheus.CounterVec
	dnsActions         *prometheus.CounterVec
	registry           *prometheus.Registry
}

// New creates a *Recorder with its own registry.
func New() *Recorder {
	return newRecorder()
}

// RecordCertificateAction counts a certificate action with its result.
func (r *Recorder) RecordCertificateAction(action certbot.Action,
	result certbot.Result, err error, duration time.Duration) {
	r.recordCertificateAction(action, result, err, duration)
}

// RecordDNSAction counts a dns-manager action with its result.
func (r *Recorder) RecordDNSAction(action string, err error,
	duration time.Duration) {
	r.recordDNSAction(action, err, duration)
}

// WriteTextfile atomically writes the metrics to filename.
func (r *Recorder) WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, r.registry)
}
