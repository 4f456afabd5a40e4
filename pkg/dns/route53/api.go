/*
Package route53 implements a dns.Provider using AWS Route 53.

Route 53 has no per-record identifiers: a record set is keyed by name and type,
so records returned by ListRecords carry a synthetic "name:type" id and
deletion re-reads the record set to submit its exact current representation.

CAA records are managed only at the zone apex, by merging a list of required
issuers into the existing record set. Existing values are never removed.
*/
package route53

import (
	"context"

	"github.com/Cloud-Foundations/Dominator/lib/log"
	"github.com/Cloud-Foundations/customdomain/pkg/dns"
	"github.com/aws/aws-sdk-go/service/route53/route53iface"
)

// DefaultRequiredIssuers lists the CAs that are always authorised at the
// zone apex: Let's Encrypt and AWS Certificate Manager.
var DefaultRequiredIssuers = []string{
	"letsencrypt.org",
	"amazon.com",
	"amazontrust.com",
	"awstrust.com",
	"amazonaws.com",
}

type Config struct {
	AwsAssumeRoleArn string   `yaml:"aws_assume_role_arn"`
	AwsProfile       string   `yaml:"aws_profile"`
	RequiredIssuers  []string `yaml:"required_issuers"` // Default: see above.
	WaitForSync      bool     `yaml:"wait_for_sync"`
}

type Provider struct {
	awsService route53iface.Route53API
	config     Config
	logger     log.DebugLogger
	// Zone cache follows, valid for the lifetime of the Provider.
	zones     []dns.Zone          // Public zones first. nil: not yet listed.
	zoneNames map[string]string   // Key: zone ID, value: apex.
	resolved  map[string]dns.Zone // Key: normalised domain.
}

// New creates a *Provider using the default AWS credential chain, optionally
// with a named profile and an assumed role.
// The logger is used for logging messages.
func New(config Config, logger log.DebugLogger) (*Provider, error) {
	return newProvider(config, logger)
}

// NewWithService creates a *Provider which uses the specified Route 53 API.
func NewWithService(awsService route53iface.Route53API, config Config,
	logger log.DebugLogger) *Provider {
	return newProviderWithService(awsService, config, logger)
}

func (config *Config) SetDefaults() {
	config.setDefaults()
}

// CreateCAA merges the CAA value for caa and the required issuers into the
// CAA record set at the apex of the zone. caa.Name is only checked to be
// within the zone.
func (p *Provider) CreateCAA(ctx context.Context, zoneId string,
	caa dns.CAARecord) error {
	return p.createCAA(ctx, zoneId, caa)
}

// CreateRecord upserts a record set with the single value in record.
func (p *Provider) CreateRecord(ctx context.Context, zoneId string,
	record dns.Record) error {
	return p.createRecord(ctx, zoneId, record)
}

// DeleteRecord deletes the record set(s) identified by a "name:type" id.
func (p *Provider) DeleteRecord(ctx context.Context, zoneId,
	recordId string) error {
	return p.deleteRecord(ctx, zoneId, recordId)
}

func (p *Provider) ListRecords(ctx context.Context, zoneId, name string,
	recType dns.RecordType) ([]dns.Record, error) {
	return p.listRecords(ctx, zoneId, name, recType)
}

func (p *Provider) ResolveZone(ctx context.Context,
	domain string) (dns.Zone, error) {
	return p.resolveZone(ctx, domain)
}

// SetCaa replaces the generic CAA reconciliation with the apex merge
// performed by CreateCAA.
func (p *Provider) SetCaa(ctx context.Context, zoneId string,
	caa dns.CAARecord) error {
	return p.createCAA(ctx, zoneId, caa)
}

// ValidateCredentials makes a minimal API call to check the credentials.
func (p *Provider) ValidateCredentials(ctx context.Context) error {
	return p.validateCredentials(ctx)
}
