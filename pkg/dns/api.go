/*
Package dns defines the generic record model and provider interface for
managing DNS records of custom domains, along with provider independent
reconciliation of alias, TXT and CAA records.

A backend only needs to implement the Provider interface. SetAlias, SetCName,
SetTxt and SetCaa then work for it unchanged. A backend may override any of
them by also implementing AliasSetter, TxtSetter or CaaSetter.
*/
package dns

import (
	"context"
	"errors"
)

const DefaultTTL = 60

type RecordType string

const (
	TypeA     RecordType = "A"
	TypeAAAA  RecordType = "AAAA"
	TypeCNAME RecordType = "CNAME"
	TypeTXT   RecordType = "TXT"
	TypeMX    RecordType = "MX"
	TypeNS    RecordType = "NS"
	TypeCAA   RecordType = "CAA"
	TypeSRV   RecordType = "SRV"
	TypePTR   RecordType = "PTR"
)

// CAA tags.
const (
	TagIssue     = "issue"
	TagIssueWild = "issuewild"
	TagIodef     = "iodef"
)

var ErrZoneNotFound = errors.New("zone not found")

// Record is a single DNS record. Name is a FQDN without a trailing dot.
type Record struct {
	Id       string // Provider assigned, possibly synthetic (e.g. "name:type").
	Name     string
	Type     RecordType
	Content  string
	TTL      uint32
	Proxied  bool
	Priority *uint16    // MX and SRV only.
	CAA      *CAARecord // Decoded content of CAA records.
	Values   []string   // All values when the provider groups them in a set.
	Extra    map[string]string
}

type CAARecord struct {
	Name  string
	Flags uint8
	Tag   string
	Value string
	TTL   uint32
}

// Zone is an authoritative zone: the provider identifier and its apex name.
type Zone struct {
	Id   string
	Name string
}

// Provider is the capability set every DNS backend must implement.
type Provider interface {
	// ResolveZone returns the zone whose apex is the longest suffix of (or
	// equal to) domain. A *ZoneNotFoundError is returned if there is none.
	ResolveZone(ctx context.Context, domain string) (Zone, error)

	// ListRecords returns all records named name, optionally restricted to
	// recType (the empty string matches all types). Pagination is drained.
	// No match yields an empty slice, not an error.
	ListRecords(ctx context.Context, zoneId, name string,
		recType RecordType) ([]Record, error)

	// CreateRecord creates (or replaces an identically keyed) record.
	CreateRecord(ctx context.Context, zoneId string, record Record) error

	// DeleteRecord deletes a record. A missing record is not an error.
	DeleteRecord(ctx context.Context, zoneId, recordId string) error

	// CreateCAA creates or updates a CAA record.
	CreateCAA(ctx context.Context, zoneId string, caa CAARecord) error
}

// AliasSetter may be implemented by a Provider to replace the default
// CNAME based SetAlias. Implementations must converge to exactly one alias
// record pointing at target.
type AliasSetter interface {
	SetAlias(ctx context.Context, zoneId, name, target string, ttl uint32,
		proxied bool) error
}

// TxtSetter may be implemented by a Provider to replace the default SetTxt.
type TxtSetter interface {
	SetTxt(ctx context.Context, zoneId, name, content string, ttl uint32) error
}

// CaaSetter may be implemented by a Provider to replace the default SetCaa.
type CaaSetter interface {
	SetCaa(ctx context.Context, zoneId string, caa CAARecord) error
}

// InvalidRecordError is returned when a record's type and content are not
// valid for each other. No provider call is made for such a record.
type InvalidRecordError struct {
	Name   string
	Type   RecordType
	Reason string
}

// ProviderError wraps a failure reported by a provider API or its transport.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

type ZoneNotFoundError struct {
	Domain string
}

// ParseCAAContent splits CAA record content in presentation format
// (flags tag "value") into a CAARecord. Name and TTL are left empty.
func ParseCAAContent(content string) (CAARecord, error) {
	return parseCAAContent(content)
}

// NormalizeName lower-cases name and strips a trailing dot.
func NormalizeName(name string) string {
	return normalizeName(name)
}

// InZone returns true if name is the apex or a subdomain of apex.
func InZone(name, apex string) bool {
	return inZone(name, apex)
}

// SelectZone implements the longest-suffix zone match over zones.
func SelectZone(zones []Zone, domain string) (Zone, error) {
	return selectZone(zones, domain)
}

// Content returns the CAA record in presentation format.
func (caa CAARecord) Content() string {
	return caa.content()
}

// Validate checks the CAA tag and value.
func (caa CAARecord) Validate() error {
	return caa.validate()
}

// Validate checks that the record type and content are consistent.
func (r Record) Validate() error {
	return r.validate()
}

// SetAlias converges name to a single alias record pointing at target. If p
// implements AliasSetter it is used, else SetCName is used.
func SetAlias(ctx context.Context, p Provider, zoneId, name, target string,
	ttl uint32, proxied bool) error {
	if setter, ok := p.(AliasSetter); ok {
		return setter.SetAlias(ctx, zoneId, name, target, ttl, proxied)
	}
	return setCName(ctx, p, zoneId, name, target, ttl, proxied)
}

// SetCName deletes every CNAME record at name and then creates one pointing
// at target. Deletion stops at the first failure; records already deleted
// stay deleted and the whole operation should be retried.
func SetCName(ctx context.Context, p Provider, zoneId, name, target string,
	ttl uint32, proxied bool) error {
	return setCName(ctx, p, zoneId, name, target, ttl, proxied)
}

// SetTxt converges name to a single TXT record with the given content using
// the same delete-all-then-create-one policy as SetCName, unless p implements
// TxtSetter.
func SetTxt(ctx context.Context, p Provider, zoneId, name, content string,
	ttl uint32) error {
	if setter, ok := p.(TxtSetter); ok {
		return setter.SetTxt(ctx, zoneId, name, content, ttl)
	}
	return setTxt(ctx, p, zoneId, name, content, ttl)
}

// SetCaa ensures a CAA record with caa.Tag and caa.Value exists at caa.Name.
// Only existing records with the same tag and a different value are deleted;
// records with other tags are left alone. Nothing is written if the exact
// tag/value pair is already present. If p implements CaaSetter it is used
// instead.
func SetCaa(ctx context.Context, p Provider, zoneId string,
	caa CAARecord) error {
	if setter, ok := p.(CaaSetter); ok {
		return setter.SetCaa(ctx, zoneId, caa)
	}
	return setCaa(ctx, p, zoneId, caa)
}

func (e *InvalidRecordError) Error() string {
	return e.error()
}

func (e *ProviderError) Error() string {
	return e.error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ZoneNotFoundError) Error() string {
	return "no zone found for domain: " + e.Domain
}

func (e *ZoneNotFoundError) Is(target error) bool {
	return target == ErrZoneNotFound
}
