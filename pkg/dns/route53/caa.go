package route53

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cloud-Foundations/customdomain/pkg/dns"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/route53"
)

func caaKey(caa dns.CAARecord) string {
	return fmt.Sprintf("%d %s %s", caa.Flags, strings.ToLower(caa.Tag),
		strings.ToLower(caa.Value))
}

// requiredValues returns the CAA values which must be present at the apex
// for caa. For an iodef request only the requested value is required.
func (p *Provider) requiredValues(caa dns.CAARecord) []dns.CAARecord {
	if caa.Tag == dns.TagIodef {
		return []dns.CAARecord{caa}
	}
	values := make([]dns.CAARecord, 0, len(p.config.RequiredIssuers)+1)
	for _, issuer := range p.config.RequiredIssuers {
		values = append(values, dns.CAARecord{Flags: caa.Flags, Tag: caa.Tag,
			Value: issuer})
	}
	return append(values, caa)
}

func (p *Provider) createCAA(ctx context.Context, zoneId string,
	caa dns.CAARecord) error {
	if caa.TTL < 1 {
		caa.TTL = dns.DefaultTTL
	}
	if err := caa.Validate(); err != nil {
		return &dns.InvalidRecordError{Name: caa.Name, Type: dns.TypeCAA,
			Reason: err.Error()}
	}
	apex, err := p.apexName(ctx, zoneId)
	if err != nil {
		return err
	}
	if caa.Name != "" && !dns.InZone(caa.Name, apex) {
		return &dns.InvalidRecordError{Name: caa.Name, Type: dns.TypeCAA,
			Reason: "not within zone: " + apex}
	}
	recordSets, err := p.listRecordSets(ctx, zoneId, apex, dns.TypeCAA)
	if err != nil {
		return err
	}
	ttl := int64(caa.TTL)
	var values []string
	present := make(map[string]struct{})
	for _, recordSet := range recordSets {
		if recordSet.TTL != nil {
			ttl = *recordSet.TTL
		}
		for _, resourceRecord := range recordSet.ResourceRecords {
			value := aws.StringValue(resourceRecord.Value)
			values = append(values, value)
			if parsed, err := dns.ParseCAAContent(value); err == nil {
				present[caaKey(parsed)] = struct{}{}
			} else {
				p.logger.Printf("ignoring unparsable CAA value at %s: %s\n",
					apex, value)
			}
		}
	}
	var added []string
	for _, required := range p.requiredValues(caa) {
		key := caaKey(required)
		if _, ok := present[key]; ok {
			continue
		}
		present[key] = struct{}{}
		added = append(added, required.Content())
	}
	if len(added) < 1 {
		if len(values) < 1 {
			return fmt.Errorf("refusing to write empty CAA record set for %s",
				apex)
		}
		p.logger.Debugf(0, "CAA record set for %s is complete\n", apex)
		return nil
	}
	values = append(values, added...)
	p.logger.Printf("adding CAA values: %s to %s\n", strings.Join(added, ", "),
		apex)
	resourceRecords := make([]*route53.ResourceRecord, 0, len(values))
	for _, value := range values {
		resourceRecords = append(resourceRecords,
			&route53.ResourceRecord{Value: aws.String(value)})
	}
	return p.submitChanges(ctx, zoneId, []*route53.Change{{
		Action: aws.String(route53.ChangeActionUpsert),
		ResourceRecordSet: &route53.ResourceRecordSet{
			Name:            aws.String(fqdn(apex)),
			ResourceRecords: resourceRecords,
			TTL:             aws.Int64(ttl),
			Type:            aws.String(string(dns.TypeCAA)),
		},
	}})
}
