package dns

import (
	"context"
	"fmt"
)

// deleteRecords deletes the listed records in order, stopping at the first
// failure. There is no rollback.
func deleteRecords(ctx context.Context, p Provider, zoneId string,
	records []Record) error {
	deleted := make(map[string]struct{}, len(records))
	for _, record := range records {
		if record.Id == "" {
			return fmt.Errorf("existing %s record: %s has no id, cannot delete",
				record.Type, record.Name)
		}
		if _, ok := deleted[record.Id]; ok {
			continue
		}
		if err := p.DeleteRecord(ctx, zoneId, record.Id); err != nil {
			return fmt.Errorf("deleted %d of %d %s records at %s: %w",
				len(deleted), len(records), record.Type, record.Name, err)
		}
		deleted[record.Id] = struct{}{}
	}
	return nil
}

// replaceAll deletes every record with the same name and type as record and
// then creates record.
func replaceAll(ctx context.Context, p Provider, zoneId string,
	record Record) error {
	if record.TTL < 1 {
		record.TTL = DefaultTTL
	}
	if err := record.Validate(); err != nil {
		return err
	}
	existing, err := p.ListRecords(ctx, zoneId, record.Name, record.Type)
	if err != nil {
		return err
	}
	if err := deleteRecords(ctx, p, zoneId, existing); err != nil {
		return err
	}
	return p.CreateRecord(ctx, zoneId, record)
}

func setCaa(ctx context.Context, p Provider, zoneId string,
	caa CAARecord) error {
	if caa.TTL < 1 {
		caa.TTL = DefaultTTL
	}
	if err := caa.Validate(); err != nil {
		return &InvalidRecordError{Name: caa.Name, Type: TypeCAA,
			Reason: err.Error()}
	}
	existing, err := p.ListRecords(ctx, zoneId, caa.Name, TypeCAA)
	if err != nil {
		return err
	}
	var stale []Record
	for _, record := range existing {
		current := record.CAA
		if current == nil {
			parsed, err := parseCAAContent(record.Content)
			if err != nil {
				continue
			}
			current = &parsed
		}
		if current.Tag != caa.Tag {
			continue
		}
		if current.Value == caa.Value {
			return nil
		}
		stale = append(stale, record)
	}
	if err := deleteRecords(ctx, p, zoneId, stale); err != nil {
		return err
	}
	return p.CreateCAA(ctx, zoneId, caa)
}

func setCName(ctx context.Context, p Provider, zoneId, name, target string,
	ttl uint32, proxied bool) error {
	return replaceAll(ctx, p, zoneId, Record{
		Name:    name,
		Type:    TypeCNAME,
		Content: target,
		TTL:     ttl,
		Proxied: proxied,
	})
}

func setTxt(ctx context.Context, p Provider, zoneId, name, content string,
	ttl uint32) error {
	return replaceAll(ctx, p, zoneId, Record{
		Name:    name,
		Type:    TypeTXT,
		Content: content,
		TTL:     ttl,
	})
}
