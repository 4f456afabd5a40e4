package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Cloud-Foundations/customdomain/pkg/crypto/certbot"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDNSAction(t *testing.T) {
	r := New()
	r.RecordDNSAction("set_txt", nil, time.Second)
	r.RecordDNSAction("set_txt", nil, time.Second)
	r.RecordDNSAction("set_txt", errors.New("throttled"), time.Second)
	assert.Equal(t, 2.0, testutil.ToFloat64(
		r.dnsActions.WithLabelValues("set_txt", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		r.dnsActions.WithLabelValues("set_txt", "failure")))
}

func TestRecordCertificateAction(t *testing.T) {
	r := New()
	r.RecordCertificateAction(certbot.ActionAuto, certbot.Result{Success: true},
		nil, time.Minute)
	r.RecordCertificateAction(certbot.ActionAuto, certbot.Result{}, nil,
		time.Minute)
	assert.Equal(t, 1.0, testutil.ToFloat64(
		r.certificateActions.WithLabelValues("auto", "success", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		r.certificateActions.WithLabelValues("auto", "failure", "false")))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.RecordDNSAction("set_caa", nil, time.Millisecond)
	filename := filepath.Join(t.TempDir(), "customdomain.prom")
	require.NoError(t, r.WriteTextfile(filename))
	contents, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(contents),
		`customdomain_dns_actions_total{action="set_caa",result="success"} 1`),
		string(contents))
}
