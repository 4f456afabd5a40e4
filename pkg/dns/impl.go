package dns

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	miekgdns "github.com/miekg/dns"
)

var recordTypes = map[RecordType]struct{}{
	TypeA:     {},
	TypeAAAA:  {},
	TypeCNAME: {},
	TypeTXT:   {},
	TypeMX:    {},
	TypeNS:    {},
	TypeCAA:   {},
	TypeSRV:   {},
	TypePTR:   {},
}

var caaTags = map[string]struct{}{
	TagIssue:     {},
	TagIssueWild: {},
	TagIodef:     {},
}

func inZone(name, apex string) bool {
	name = normalizeName(name)
	apex = normalizeName(apex)
	return name == apex || strings.HasSuffix(name, "."+apex)
}

// isHostname allows a leading wildcard label and underscores (used by
// _acme-challenge style names). Labels may not begin or end with a hyphen.
func isHostname(name string) bool {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return false
	}
	if _, ok := miekgdns.IsDomainName(name); !ok {
		return false
	}
	for index, label := range miekgdns.SplitDomainName(name) {
		if label == "*" && index == 0 {
			continue
		}
		if label == "" || label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, ch := range label {
			switch {
			case ch >= 'a' && ch <= 'z':
			case ch >= 'A' && ch <= 'Z':
			case ch >= '0' && ch <= '9':
			case ch == '-' || ch == '_':
			default:
				return false
			}
		}
	}
	return true
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
}

func parseCAAContent(content string) (CAARecord, error) {
	rr, err := miekgdns.NewRR(". IN CAA " + content)
	if err != nil {
		return CAARecord{}, fmt.Errorf("malformed CAA content: %s: %s",
			content, err)
	}
	caa, ok := rr.(*miekgdns.CAA)
	if !ok || caa.Tag == "" {
		return CAARecord{}, fmt.Errorf("malformed CAA content: %s", content)
	}
	return CAARecord{
		Flags: caa.Flag,
		Tag:   strings.ToLower(caa.Tag),
		Value: caa.Value,
	}, nil
}

func selectZone(zones []Zone, domain string) (Zone, error) {
	domain = normalizeName(domain)
	var best Zone
	bestLength := -1
	for _, zone := range zones {
		apex := normalizeName(zone.Name)
		if domain != apex && !strings.HasSuffix(domain, "."+apex) {
			continue
		}
		if len(apex) > bestLength {
			best = zone
			bestLength = len(apex)
		}
	}
	if bestLength < 0 {
		return Zone{}, &ZoneNotFoundError{Domain: domain}
	}
	return best, nil
}

func (caa CAARecord) content() string {
	rr := &miekgdns.CAA{Flag: caa.Flags, Tag: caa.Tag, Value: caa.Value}
	return strings.TrimPrefix(rr.String(), rr.Hdr.String())
}

func (caa CAARecord) validate() error {
	if _, ok := caaTags[caa.Tag]; !ok {
		return fmt.Errorf("unsupported CAA tag: %s", caa.Tag)
	}
	if caa.Value == "" {
		return fmt.Errorf("empty CAA %s value", caa.Tag)
	}
	if strings.ContainsRune(caa.Value, '"') {
		return fmt.Errorf("CAA value contains a quote: %s", caa.Value)
	}
	if caa.Tag == TagIodef && !strings.HasPrefix(caa.Value, "mailto:") &&
		!strings.HasPrefix(caa.Value, "https://") &&
		!strings.HasPrefix(caa.Value, "http://") {
		return fmt.Errorf("iodef value must be a mailto: or http(s) URL: %s",
			caa.Value)
	}
	return nil
}

func (r Record) invalid(format string, v ...interface{}) error {
	return &InvalidRecordError{
		Name:   r.Name,
		Type:   r.Type,
		Reason: fmt.Sprintf(format, v...),
	}
}

func (r Record) validate() error {
	if !isHostname(r.Name) {
		return r.invalid("bad record name")
	}
	if _, ok := recordTypes[r.Type]; !ok {
		return r.invalid("unsupported record type")
	}
	if strings.TrimSpace(r.Content) == "" {
		return r.invalid("empty content")
	}
	switch r.Type {
	case TypeA:
		if ip := net.ParseIP(r.Content); ip == nil || ip.To4() == nil {
			return r.invalid("not an IPv4 address: %s", r.Content)
		}
	case TypeAAAA:
		if ip := net.ParseIP(r.Content); ip == nil || ip.To4() != nil {
			return r.invalid("not an IPv6 address: %s", r.Content)
		}
	case TypeCNAME, TypeNS, TypePTR:
		if !isHostname(r.Content) {
			return r.invalid("not a hostname: %s", r.Content)
		}
	case TypeMX:
		if r.Priority == nil {
			return r.invalid("missing priority")
		}
		if !isHostname(r.Content) {
			return r.invalid("not a hostname: %s", r.Content)
		}
	case TypeSRV:
		if r.Priority == nil {
			return r.invalid("missing priority")
		}
		fields := strings.Fields(r.Content)
		if len(fields) != 3 {
			return r.invalid("SRV content must be: weight port target")
		}
		for _, field := range fields[:2] {
			if _, err := strconv.ParseUint(field, 10, 16); err != nil {
				return r.invalid("bad SRV number: %s", field)
			}
		}
		if !isHostname(fields[2]) {
			return r.invalid("not a hostname: %s", fields[2])
		}
	case TypeCAA:
		caa, err := parseCAAContent(r.Content)
		if err != nil {
			return r.invalid("%s", err)
		}
		if err := caa.validate(); err != nil {
			return r.invalid("%s", err)
		}
	}
	return nil
}

func (e *InvalidRecordError) error() string {
	return fmt.Sprintf("invalid %s record: %s: %s", e.Type, e.Name, e.Reason)
}

func (e *ProviderError) error() string {
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Op, e.Err)
}
