/*
Package dnspod implements a dns.Provider using Tencent Cloud DNSPod.

The zone id is the domain name registered with DNSPod and record ids are the
decimal DNSPod record ids. Convergence uses the generic reconciliation in the
dns package.
*/
package dnspod

import (
	"context"

	"github.com/Cloud-Foundations/Dominator/lib/log"
	"github.com/Cloud-Foundations/customdomain/pkg/dns"
	dnspod "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/dnspod/v20210323"
)

const (
	DefaultEndpoint   = "dnspod.tencentcloudapi.com"
	DefaultRecordLine = "默认"
	DefaultRegion     = "ap-guangzhou"
)

// API is the subset of *dnspod.Client used by the Provider.
type API interface {
	CreateRecord(request *dnspod.CreateRecordRequest) (
		*dnspod.CreateRecordResponse, error)
	DeleteRecord(request *dnspod.DeleteRecordRequest) (
		*dnspod.DeleteRecordResponse, error)
	DescribeDomainList(request *dnspod.DescribeDomainListRequest) (
		*dnspod.DescribeDomainListResponse, error)
	DescribeRecordList(request *dnspod.DescribeRecordListRequest) (
		*dnspod.DescribeRecordListResponse, error)
}

type Config struct {
	Endpoint   string `yaml:"endpoint"`    // Default: DefaultEndpoint.
	RecordLine string `yaml:"record_line"` // Default: DefaultRecordLine.
	Region     string `yaml:"region"`      // Default: DefaultRegion.
	SecretId   string `yaml:"-"`
	SecretKey  string `yaml:"-"`
}

type Provider struct {
	api    API
	config Config
	logger log.DebugLogger
	zones  []dns.Zone // nil: not yet listed.
}

// New creates a *Provider using the credentials in config.
func New(config Config, logger log.DebugLogger) (*Provider, error) {
	return newProvider(config, logger)
}

// NewWithAPI creates a *Provider which uses the specified API.
func NewWithAPI(api API, config Config, logger log.DebugLogger) *Provider {
	return newProviderWithAPI(api, config, logger)
}

func (config *Config) SetDefaults() {
	config.setDefaults()
}

// CreateCAA creates a CAA record. DNSPod stores each CAA value as a separate
// record.
func (p *Provider) CreateCAA(ctx context.Context, zoneId string,
	caa dns.CAARecord) error {
	return p.createCAA(ctx, zoneId, caa)
}

func (p *Provider) CreateRecord(ctx context.Context, zoneId string,
	record dns.Record) error {
	return p.createRecord(ctx, zoneId, record)
}

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

// ValidateCredentials lists a single domain to check the credentials.
func (p *Provider) ValidateCredentials(ctx context.Context) error {
	return p.validateCredentials(ctx)
}
