package route53

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Cloud-Foundations/customdomain/pkg/dns"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/route53"
	miekgdns "github.com/miekg/dns"
)

const maxTXTChunk = 255

// decodeName converts a record set name as returned by Route 53 into
// normalised form. Route 53 escapes characters such as "*" as \ooo.
func decodeName(name string) string {
	if !strings.ContainsRune(name, '\\') {
		return dns.NormalizeName(name)
	}
	var builder strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] == '\\' && i+3 < len(name) {
			if ch, err := strconv.ParseUint(name[i+1:i+4], 8, 8); err == nil {
				builder.WriteByte(byte(ch))
				i += 3
				continue
			}
		}
		builder.WriteByte(name[i])
	}
	return dns.NormalizeName(builder.String())
}

// decodeTXT joins the quoted character strings of a TXT value. Route 53
// escapes bytes outside the printable range as \ooo (octal).
func decodeTXT(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || value[0] != '"' {
		return value
	}
	var builder strings.Builder
	inQuotes := false
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch == '\\' && i+1 < len(value):
			if i+3 < len(value) {
				octal, err := strconv.ParseUint(value[i+1:i+4], 8, 8)
				if err == nil {
					builder.WriteByte(byte(octal))
					i += 3
					continue
				}
			}
			i++
			builder.WriteByte(value[i])
		case ch == '"':
			inQuotes = !inQuotes
		case inQuotes:
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

func decodeRecordSet(recordSet *route53.ResourceRecordSet) dns.Record {
	name := decodeName(aws.StringValue(recordSet.Name))
	recType := dns.RecordType(aws.StringValue(recordSet.Type))
	record := dns.Record{
		Id:   aws.StringValue(recordSet.Name) + ":" + string(recType),
		Name: name,
		Type: recType,
		TTL:  dns.DefaultTTL,
	}
	if recordSet.TTL != nil {
		record.TTL = uint32(*recordSet.TTL)
	}
	for _, resourceRecord := range recordSet.ResourceRecords {
		value := aws.StringValue(resourceRecord.Value)
		if recType == dns.TypeTXT {
			value = decodeTXT(value)
		}
		record.Values = append(record.Values, value)
	}
	if len(record.Values) > 0 {
		record.Content = record.Values[0]
	} else if recordSet.AliasTarget != nil {
		record.Content = dns.NormalizeName(
			aws.StringValue(recordSet.AliasTarget.DNSName))
		record.Extra = map[string]string{
			"alias_hosted_zone_id": aws.StringValue(
				recordSet.AliasTarget.HostedZoneId),
		}
	}
	if recordSet.SetIdentifier != nil {
		if record.Extra == nil {
			record.Extra = make(map[string]string)
		}
		record.Extra["set_identifier"] = *recordSet.SetIdentifier
	}
	switch recType {
	case dns.TypeCAA:
		if caa, err := dns.ParseCAAContent(record.Content); err == nil {
			caa.Name = name
			caa.TTL = record.TTL
			record.CAA = &caa
		}
	case dns.TypeMX, dns.TypeSRV:
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

// encodeTXT quotes and escapes TXT content, splitting it into character
// strings of at most 255 bytes. Content which is already quoted is passed
// through.
func encodeTXT(content string) string {
	if len(content) >= 2 && content[0] == '"' &&
		content[len(content)-1] == '"' {
		return content
	}
	var chunks []string
	for len(content) > maxTXTChunk {
		chunks = append(chunks, content[:maxTXTChunk])
		content = content[maxTXTChunk:]
	}
	chunks = append(chunks, content)
	for index, chunk := range chunks {
		chunks[index] = `"` + escapeTXT(chunk) + `"`
	}
	return strings.Join(chunks, " ")
}

func escapeTXT(chunk string) string {
	var builder strings.Builder
	for i := 0; i < len(chunk); i++ {
		ch := chunk[i]
		switch {
		case ch == '"' || ch == '\\':
			builder.WriteByte('\\')
			builder.WriteByte(ch)
		case ch < ' ' || ch > '~':
			fmt.Fprintf(&builder, "\\%03o", ch)
		default:
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

func encodeValue(record dns.Record) string {
	switch record.Type {
	case dns.TypeTXT:
		return encodeTXT(record.Content)
	case dns.TypeMX, dns.TypeSRV:
		return fmt.Sprintf("%d %s", *record.Priority, record.Content)
	}
	return record.Content
}

func fqdn(name string) string {
	return miekgdns.Fqdn(dns.NormalizeName(name))
}

func (p *Provider) createRecord(ctx context.Context, zoneId string,
	record dns.Record) error {
	if record.TTL < 1 {
		record.TTL = dns.DefaultTTL
	}
	if err := record.Validate(); err != nil {
		return err
	}
	p.logger.Printf("adding %s record for %s\n", record.Type, record.Name)
	return p.submitChanges(ctx, zoneId, []*route53.Change{{
		Action: aws.String(route53.ChangeActionUpsert),
		ResourceRecordSet: &route53.ResourceRecordSet{
			Name: aws.String(fqdn(record.Name)),
			ResourceRecords: []*route53.ResourceRecord{
				{Value: aws.String(encodeValue(record))},
			},
			TTL:  aws.Int64(int64(record.TTL)),
			Type: aws.String(string(record.Type)),
		},
	}})
}

// deleteRecord re-reads the record set(s) so that the DELETE change carries
// the exact current values, as Route 53 requires.
func (p *Provider) deleteRecord(ctx context.Context, zoneId,
	recordId string) error {
	index := strings.LastIndexByte(recordId, ':')
	if index < 1 {
		return fmt.Errorf("invalid record id: %s", recordId)
	}
	name := recordId[:index]
	recType := dns.RecordType(recordId[index+1:])
	recordSets, err := p.listRecordSets(ctx, zoneId, name, recType)
	if err != nil {
		return err
	}
	if len(recordSets) < 1 {
		p.logger.Printf("record not found: %s, nothing to delete\n", recordId)
		return nil
	}
	changes := make([]*route53.Change, 0, len(recordSets))
	for _, recordSet := range recordSets {
		changes = append(changes, &route53.Change{
			Action:            aws.String(route53.ChangeActionDelete),
			ResourceRecordSet: recordSet,
		})
	}
	p.logger.Printf("deleting record: %s\n", recordId)
	return p.submitChanges(ctx, zoneId, changes)
}

func (p *Provider) listRecords(ctx context.Context, zoneId, name string,
	recType dns.RecordType) ([]dns.Record, error) {
	p.logger.Debugf(1, "checking for existing %s records for %s\n",
		recType, name)
	recordSets, err := p.listRecordSets(ctx, zoneId, name, recType)
	if err != nil {
		return nil, err
	}
	records := make([]dns.Record, 0, len(recordSets))
	for _, recordSet := range recordSets {
		records = append(records, decodeRecordSet(recordSet))
	}
	return records, nil
}

// listRecordSets reads every page of the zone and returns the record sets
// matching name and (if not empty) recType.
func (p *Provider) listRecordSets(ctx context.Context, zoneId, name string,
	recType dns.RecordType) ([]*route53.ResourceRecordSet, error) {
	name = decodeName(name)
	var recordSets []*route53.ResourceRecordSet
	err := p.awsService.ListResourceRecordSetsPagesWithContext(ctx,
		&route53.ListResourceRecordSetsInput{HostedZoneId: aws.String(zoneId)},
		func(page *route53.ListResourceRecordSetsOutput, lastPage bool) bool {
			for _, recordSet := range page.ResourceRecordSets {
				if decodeName(aws.StringValue(recordSet.Name)) != name {
					continue
				}
				if recType != "" &&
					aws.StringValue(recordSet.Type) != string(recType) {
					continue
				}
				recordSets = append(recordSets, recordSet)
			}
			return true
		})
	if err != nil {
		return nil, providerError("ListResourceRecordSets", err)
	}
	return recordSets, nil
}
