package dnspod

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Cloud-Foundations/Dominator/lib/log"
	"github.com/Cloud-Foundations/customdomain/pkg/dns"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	tcerrors "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/errors"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	dnspod "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/dnspod/v20210323"
)

const (
	apexSubDomain = "@"
	pageSize      = 100
	providerName  = "dnspod"

	codeNoRecords     = "ResourceNotFound.NoDataOfRecord"
	codeRecordExists  = "InvalidParameter.RecordExists"
	codeRecordIdWrong = "InvalidParameter.RecordIdInvalid"
)

func errorCode(err error) string {
	var sdkErr *tcerrors.TencentCloudSDKError
	if errors.As(err, &sdkErr) {
		return sdkErr.Code
	}
	return ""
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func uint64Value(value *uint64) uint64 {
	if value == nil {
		return 0
	}
	return *value
}

func providerError(op string, err error) error {
	return &dns.ProviderError{Provider: providerName, Op: op, Err: err}
}

func newProvider(config Config, logger log.DebugLogger) (*Provider, error) {
	config.setDefaults()
	if config.SecretId == "" || config.SecretKey == "" {
		return nil, errors.New("missing DNSPod credentials")
	}
	credential := common.NewCredential(config.SecretId, config.SecretKey)
	clientProfile := profile.NewClientProfile()
	clientProfile.HttpProfile.Endpoint = config.Endpoint
	client, err := dnspod.NewClient(credential, config.Region, clientProfile)
	if err != nil {
		return nil, fmt.Errorf("error creating DNSPod client: %s", err)
	}
	return newProviderWithAPI(client, config, logger), nil
}

func newProviderWithAPI(api API, config Config,
	logger log.DebugLogger) *Provider {
	config.setDefaults()
	return &Provider{api: api, config: config, logger: logger}
}

func (config *Config) setDefaults() {
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.RecordLine == "" {
		config.RecordLine = DefaultRecordLine
	}
	if config.Region == "" {
		config.Region = DefaultRegion
	}
}

// subDomain converts a fully qualified name into the host part DNSPod uses.
func subDomain(name, zone string) (string, error) {
	name = dns.NormalizeName(name)
	zone = dns.NormalizeName(zone)
	if name == zone {
		return apexSubDomain, nil
	}
	if !strings.HasSuffix(name, "."+zone) {
		return "", fmt.Errorf("%s is not within zone: %s", name, zone)
	}
	return strings.TrimSuffix(name, "."+zone), nil
}

func fullName(sub, zone string) string {
	if sub == "" || sub == apexSubDomain {
		return dns.NormalizeName(zone)
	}
	return dns.NormalizeName(sub + "." + zone)
}

func decodeRecord(item *dnspod.RecordListItem, zone string) dns.Record {
	record := dns.Record{
		Id:      strconv.FormatUint(uint64Value(item.RecordId), 10),
		Name:    fullName(stringValue(item.Name), zone),
		Type:    dns.RecordType(stringValue(item.Type)),
		Content: stringValue(item.Value),
		TTL:     uint32(uint64Value(item.TTL)),
	}
	if item.Line != nil {
		record.Extra = map[string]string{"line": *item.Line}
	}
	record.Values = []string{record.Content}
	switch record.Type {
	case dns.TypeCAA:
		if caa, err := dns.ParseCAAContent(record.Content); err == nil {
			caa.Name = record.Name
			caa.TTL = record.TTL
			record.CAA = &caa
		}
	case dns.TypeMX:
		if item.MX != nil {
			priority := uint16(*item.MX)
			record.Priority = &priority
		}
	case dns.TypeSRV:
		fields := strings.SplitN(record.Content, " ", 2)
		if len(fields) == 2 {
			if priority, err := strconv.ParseUint(fields[0], 10, 16); err == nil {
				value := uint16(priority)
				record.Priority = &value
				record.Content = fields[1]
			}
		}
	}
	return record
}

func (p *Provider) createCAA(ctx context.Context, zoneId string,
	caa dns.CAARecord) error {
	return p.createRecord(ctx, zoneId, dns.Record{
		Name:    caa.Name,
		Type:    dns.TypeCAA,
		Content: caa.Content(),
		TTL:     caa.TTL,
	})
}

func (p *Provider) createRecord(ctx context.Context, zoneId string,
	record dns.Record) error {
	if record.TTL < 1 {
		record.TTL = dns.DefaultTTL
	}
	if err := record.Validate(); err != nil {
		return err
	}
	sub, err := subDomain(record.Name, zoneId)
	if err != nil {
		return &dns.InvalidRecordError{Name: record.Name, Type: record.Type,
			Reason: err.Error()}
	}
	request := dnspod.NewCreateRecordRequest()
	request.Domain = common.StringPtr(zoneId)
	request.SubDomain = common.StringPtr(sub)
	request.RecordType = common.StringPtr(string(record.Type))
	request.RecordLine = common.StringPtr(p.config.RecordLine)
	request.TTL = common.Uint64Ptr(uint64(record.TTL))
	switch record.Type {
	case dns.TypeMX:
		request.MX = common.Uint64Ptr(uint64(*record.Priority))
		request.Value = common.StringPtr(record.Content)
	case dns.TypeSRV:
		request.Value = common.StringPtr(
			fmt.Sprintf("%d %s", *record.Priority, record.Content))
	default:
		request.Value = common.StringPtr(record.Content)
	}
	request.SetContext(ctx)
	p.logger.Printf("adding %s record for %s\n", record.Type, record.Name)
	response, err := p.api.CreateRecord(request)
	if err != nil {
		if errorCode(err) == codeRecordExists {
			p.logger.Printf("%s record for %s already exists\n",
				record.Type, record.Name)
			return nil
		}
		return providerError("CreateRecord", err)
	}
	if response != nil && response.Response != nil {
		p.logger.Debugf(1, "created record: %d\n",
			uint64Value(response.Response.RecordId))
	}
	return nil
}

func (p *Provider) deleteRecord(ctx context.Context, zoneId,
	recordId string) error {
	id, err := strconv.ParseUint(recordId, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid record id: %s", recordId)
	}
	request := dnspod.NewDeleteRecordRequest()
	request.Domain = common.StringPtr(zoneId)
	request.RecordId = common.Uint64Ptr(id)
	request.SetContext(ctx)
	p.logger.Printf("deleting record: %s\n", recordId)
	if _, err := p.api.DeleteRecord(request); err != nil {
		switch errorCode(err) {
		case codeNoRecords, codeRecordIdWrong:
			p.logger.Printf("record not found: %s, nothing to delete\n",
				recordId)
			return nil
		}
		return providerError("DeleteRecord", err)
	}
	return nil
}

func (p *Provider) listRecords(ctx context.Context, zoneId, name string,
	recType dns.RecordType) ([]dns.Record, error) {
	sub, err := subDomain(name, zoneId)
	if err != nil {
		return nil, err
	}
	p.logger.Debugf(1, "checking for existing %s records for %s\n",
		recType, name)
	name = dns.NormalizeName(name)
	records := make([]dns.Record, 0)
	for offset := uint64(0); ; offset += pageSize {
		request := dnspod.NewDescribeRecordListRequest()
		request.Domain = common.StringPtr(zoneId)
		request.Subdomain = common.StringPtr(sub)
		if recType != "" {
			request.RecordType = common.StringPtr(string(recType))
		}
		request.Offset = common.Uint64Ptr(offset)
		request.Limit = common.Uint64Ptr(pageSize)
		request.SetContext(ctx)
		response, err := p.api.DescribeRecordList(request)
		if err != nil {
			if errorCode(err) == codeNoRecords {
				break
			}
			return nil, providerError("DescribeRecordList", err)
		}
		if response == nil || response.Response == nil {
			break
		}
		items := response.Response.RecordList
		for _, item := range items {
			if item == nil {
				continue
			}
			record := decodeRecord(item, zoneId)
			if record.Name != name {
				continue
			}
			if recType != "" && record.Type != recType {
				continue
			}
			records = append(records, record)
		}
		if len(items) < pageSize {
			break
		}
	}
	return records, nil
}

func (p *Provider) listZones(ctx context.Context, limit int64) (
	[]dns.Zone, error) {
	var zones []dns.Zone
	for offset := int64(0); ; offset += limit {
		request := dnspod.NewDescribeDomainListRequest()
		request.Offset = common.Int64Ptr(offset)
		request.Limit = common.Int64Ptr(limit)
		request.SetContext(ctx)
		response, err := p.api.DescribeDomainList(request)
		if err != nil {
			return nil, providerError("DescribeDomainList", err)
		}
		if response == nil || response.Response == nil {
			break
		}
		items := response.Response.DomainList
		for _, item := range items {
			if item == nil || item.Name == nil {
				continue
			}
			zones = append(zones, dns.Zone{
				Id:   dns.NormalizeName(*item.Name),
				Name: dns.NormalizeName(*item.Name),
			})
		}
		if int64(len(items)) < limit || limit == 1 {
			break
		}
	}
	if zones == nil {
		zones = []dns.Zone{}
	}
	p.logger.Debugf(1, "listed %d domains\n", len(zones))
	return zones, nil
}

func (p *Provider) resolveZone(ctx context.Context, domain string) (
	dns.Zone, error) {
	domain = dns.NormalizeName(domain)
	if p.zones != nil {
		if zone, err := dns.SelectZone(p.zones, domain); err == nil {
			return zone, nil
		}
	}
	zones, err := p.listZones(ctx, pageSize)
	if err != nil {
		return dns.Zone{}, err
	}
	p.zones = zones
	zone, err := dns.SelectZone(zones, domain)
	if err != nil {
		return dns.Zone{}, err
	}
	p.logger.Debugf(0, "domain: %s is in zone: %s\n", domain, zone.Name)
	return zone, nil
}

func (p *Provider) validateCredentials(ctx context.Context) error {
	_, err := p.listZones(ctx, 1)
	return err
}
