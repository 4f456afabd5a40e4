package dns

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"
)

type fakeProvider struct {
	nextId      int
	records     map[string]Record
	creates     int
	deletes     int
	failDeletes int // Fail the deletes after this many succeeded (if > 0).
}

func newFakeProvider(records ...Record) *fakeProvider {
	p := &fakeProvider{records: make(map[string]Record)}
	for _, record := range records {
		p.add(record)
	}
	return p
}

func (p *fakeProvider) add(record Record) {
	p.nextId++
	record.Id = strconv.Itoa(p.nextId)
	if record.Type == TypeCAA && record.CAA == nil {
		if caa, err := parseCAAContent(record.Content); err == nil {
			record.CAA = &caa
		}
	}
	p.records[record.Id] = record
}

func (p *fakeProvider) ResolveZone(ctx context.Context,
	domain string) (Zone, error) {
	return selectZone([]Zone{{Id: "Z1", Name: "example.com"}}, domain)
}

func (p *fakeProvider) ListRecords(ctx context.Context, zoneId, name string,
	recType RecordType) ([]Record, error) {
	var records []Record
	for _, record := range p.records {
		if normalizeName(record.Name) != normalizeName(name) {
			continue
		}
		if recType != "" && record.Type != recType {
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Id < records[j].Id
	})
	return records, nil
}

func (p *fakeProvider) CreateRecord(ctx context.Context, zoneId string,
	record Record) error {
	p.creates++
	p.add(record)
	return nil
}

func (p *fakeProvider) DeleteRecord(ctx context.Context, zoneId,
	recordId string) error {
	if p.failDeletes > 0 && p.deletes >= p.failDeletes {
		return &ProviderError{Provider: "fake", Op: "delete",
			Err: errors.New("injected failure")}
	}
	p.deletes++
	delete(p.records, recordId)
	return nil
}

func (p *fakeProvider) CreateCAA(ctx context.Context, zoneId string,
	caa CAARecord) error {
	p.creates++
	p.add(Record{Name: caa.Name, Type: TypeCAA, Content: caa.Content(),
		TTL: caa.TTL, CAA: &caa})
	return nil
}

func (p *fakeProvider) contents(name string, recType RecordType) []string {
	records, _ := p.ListRecords(context.Background(), "Z1", name, recType)
	var contents []string
	for _, record := range records {
		contents = append(contents, record.Content)
	}
	sort.Strings(contents)
	return contents
}

type aliasOverride struct {
	*fakeProvider
	called bool
}

func (p *aliasOverride) SetAlias(ctx context.Context, zoneId, name,
	target string, ttl uint32, proxied bool) error {
	p.called = true
	return nil
}

func TestSetCNameIdempotent(t *testing.T) {
	p := newFakeProvider()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		err := SetCName(ctx, p, "Z1", "app.example.com", "gw.example.net", 0,
			false)
		if err != nil {
			t.Fatal(err)
		}
	}
	contents := p.contents("app.example.com", TypeCNAME)
	if len(contents) != 1 || contents[0] != "gw.example.net" {
		t.Fatalf("expected one CNAME to gw.example.net, got: %v", contents)
	}
	for _, record := range p.records {
		if record.TTL != DefaultTTL {
			t.Errorf("TTL: %d != default: %d", record.TTL, DefaultTTL)
		}
	}
}

func TestSetAliasReplacesAllExisting(t *testing.T) {
	p := newFakeProvider(
		Record{Name: "app.example.com", Type: TypeCNAME, Content: "a.net"},
		Record{Name: "app.example.com", Type: TypeCNAME, Content: "b.net"},
		Record{Name: "app.example.com", Type: TypeTXT, Content: "keep"},
	)
	err := SetAlias(context.Background(), p, "Z1", "app.example.com", "c.net",
		60, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.contents("app.example.com", TypeCNAME); len(got) != 1 ||
		got[0] != "c.net" {
		t.Errorf("CNAMEs: %v", got)
	}
	if got := p.contents("app.example.com", TypeTXT); len(got) != 1 {
		t.Errorf("TXT record was touched: %v", got)
	}
}

func TestSetAliasUsesOverride(t *testing.T) {
	p := &aliasOverride{fakeProvider: newFakeProvider()}
	err := SetAlias(context.Background(), p, "Z1", "app.example.com", "c.net",
		60, false)
	if err != nil {
		t.Fatal(err)
	}
	if !p.called {
		t.Error("override not called")
	}
	if p.creates != 0 {
		t.Error("generic logic ran despite override")
	}
}

func TestSetTxtReplacesValue(t *testing.T) {
	p := newFakeProvider()
	ctx := context.Background()
	if err := SetTxt(ctx, p, "Z1", "_acme.example.com", "one", 60); err != nil {
		t.Fatal(err)
	}
	if err := SetTxt(ctx, p, "Z1", "_acme.example.com", "two", 60); err != nil {
		t.Fatal(err)
	}
	got := p.contents("_acme.example.com", TypeTXT)
	if len(got) != 1 || got[0] != "two" {
		t.Fatalf("TXT records: %v", got)
	}
}

func TestSetTxtDeleteFailureAborts(t *testing.T) {
	p := newFakeProvider(
		Record{Name: "t.example.com", Type: TypeTXT, Content: "a"},
		Record{Name: "t.example.com", Type: TypeTXT, Content: "b"},
	)
	p.failDeletes = 1
	err := SetTxt(context.Background(), p, "Z1", "t.example.com", "c", 60)
	var providerError *ProviderError
	if !errors.As(err, &providerError) {
		t.Fatalf("expected ProviderError, got: %v", err)
	}
	if p.creates != 0 {
		t.Error("record created after failed delete")
	}
	if got := p.contents("t.example.com", TypeTXT); len(got) != 1 {
		t.Errorf("expected partial deletion to remain visible, got: %v", got)
	}
}

func TestInvalidRecordMakesNoCalls(t *testing.T) {
	p := newFakeProvider(
		Record{Name: "app.example.com", Type: TypeCNAME, Content: "a.net"})
	err := SetAlias(context.Background(), p, "Z1", "app.example.com",
		"not a host", 60, false)
	var invalid *InvalidRecordError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidRecordError, got: %v", err)
	}
	if p.deletes != 0 || p.creates != 0 {
		t.Error("provider was called for an invalid record")
	}
}

func TestSetCaaNoopWhenPresent(t *testing.T) {
	p := newFakeProvider(
		Record{Name: "example.com", Type: TypeCAA,
			Content: `0 issue "letsencrypt.org"`})
	err := SetCaa(context.Background(), p, "Z1", CAARecord{
		Name: "example.com", Tag: TagIssue, Value: "letsencrypt.org"})
	if err != nil {
		t.Fatal(err)
	}
	if p.creates != 0 || p.deletes != 0 {
		t.Errorf("expected no writes, got %d creates, %d deletes",
			p.creates, p.deletes)
	}
}

func TestSetCaaNoopWithIrregularSpacing(t *testing.T) {
	p := newFakeProvider(
		Record{Name: "example.com", Type: TypeCAA,
			Content: "0  issue\t\"letsencrypt.org\""})
	err := SetCaa(context.Background(), p, "Z1", CAARecord{
		Name: "example.com", Tag: TagIssue, Value: "letsencrypt.org"})
	if err != nil {
		t.Fatal(err)
	}
	if p.creates != 0 || p.deletes != 0 {
		t.Errorf("expected no writes, got %d creates, %d deletes",
			p.creates, p.deletes)
	}
	if got := p.contents("example.com", TypeCAA); len(got) != 1 {
		t.Errorf("CAA records: %v", got)
	}
}

func TestSetCaaReplacesOnlySameTag(t *testing.T) {
	p := newFakeProvider(
		Record{Name: "example.com", Type: TypeCAA, Content: `0 issue "a.org"`},
		Record{Name: "example.com", Type: TypeCAA,
			Content: `0 iodef "mailto:x@example.com"`},
	)
	err := SetCaa(context.Background(), p, "Z1", CAARecord{
		Name: "example.com", Tag: TagIssue, Value: "b.org"})
	if err != nil {
		t.Fatal(err)
	}
	got := p.contents("example.com", TypeCAA)
	expected := []string{`0 iodef "mailto:x@example.com"`, `0 issue "b.org"`}
	if len(got) != len(expected) {
		t.Fatalf("CAA records: %v", got)
	}
	for index := range expected {
		if got[index] != expected[index] {
			t.Errorf("CAA record: %s != expected: %s", got[index],
				expected[index])
		}
	}
}

func TestSetCaaRejectsBadTag(t *testing.T) {
	p := newFakeProvider()
	err := SetCaa(context.Background(), p, "Z1", CAARecord{
		Name: "example.com", Tag: "issuer", Value: "b.org"})
	if err == nil {
		t.Fatal("expected failure for unknown tag")
	}
	if p.creates != 0 {
		t.Error("record created")
	}
}
