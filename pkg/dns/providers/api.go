/*
Package providers selects and constructs DNS providers.

Auto-detection probes the environment for a credential signal of each kind,
in this order:
  route53: AWS_ACCESS_KEY_ID
  dnspod:  TENCENTCLOUD_SECRET_ID
The first kind whose signal is present wins. The environment is only read
through the LookupFunc passed in by the caller.
*/
package providers

import (
	"context"

	"github.com/Cloud-Foundations/Dominator/lib/log"
	"github.com/Cloud-Foundations/customdomain/pkg/crypto/certbot"
	"github.com/Cloud-Foundations/customdomain/pkg/dns"
	"github.com/Cloud-Foundations/customdomain/pkg/dns/dnspod"
	"github.com/Cloud-Foundations/customdomain/pkg/dns/route53"
)

const (
	KindDnspod  Kind = "dnspod"
	KindRoute53 Kind = "route53"
)

// Kinds lists the supported kinds in auto-detection order.
var Kinds = []Kind{KindRoute53, KindDnspod}

type Config struct {
	Dnspod  dnspod.Config  `yaml:"dnspod"`
	Route53 route53.Config `yaml:"route53"`
}

// CredentialsValidator is implemented by providers which can check their
// credentials with a cheap API call.
type CredentialsValidator interface {
	ValidateCredentials(ctx context.Context) error
}

type Kind string

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// CertbotCredentials returns the credentials files to write during setup
// for kind. Contents is nil when the raw secrets are not available.
func CertbotCredentials(kind Kind, lookup LookupFunc,
	homeDir string) ([]certbot.Credentials, error) {
	return certbotCredentials(kind, lookup, homeDir)
}

// CertbotPlugin returns the certbot plugin for kind.
func CertbotPlugin(kind Kind, homeDir string) (certbot.Plugin, error) {
	return certbotPlugin(kind, homeDir)
}

// Detect returns the first kind whose credential signal is present.
func Detect(lookup LookupFunc) (Kind, error) {
	return detect(lookup)
}

// New constructs a provider of the specified kind. DNSPod secrets are read
// using lookup.
func New(kind Kind, config Config, lookup LookupFunc,
	logger log.DebugLogger) (dns.Provider, error) {
	return newProvider(kind, config, lookup, logger)
}

// Select returns the explicitly named kind if not empty, else the detected
// kind.
func Select(explicit string, lookup LookupFunc) (Kind, error) {
	if explicit != "" {
		return parseKind(explicit)
	}
	return detect(lookup)
}
