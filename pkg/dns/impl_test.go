package dns

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectZoneLongestSuffix(t *testing.T) {
	zones := []Zone{
		{Id: "Z1", Name: "example.com."},
		{Id: "Z2", Name: "staging.example.com"},
		{Id: "Z3", Name: "other.org"},
	}
	zone, err := SelectZone(zones, "api.staging.example.com")
	require.NoError(t, err)
	assert.Equal(t, "Z2", zone.Id)
	zone, err = SelectZone(zones, "www.example.com")
	require.NoError(t, err)
	assert.Equal(t, "Z1", zone.Id)
	zone, err = SelectZone(zones, "Staging.Example.com.")
	require.NoError(t, err)
	assert.Equal(t, "Z2", zone.Id)
}

func TestSelectZoneRequiresLabelBoundary(t *testing.T) {
	zones := []Zone{{Id: "Z1", Name: "example.com"}}
	_, err := SelectZone(zones, "badexample.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrZoneNotFound))
	var notFound *ZoneNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "badexample.com", notFound.Domain)
}

func TestParseCAAContent(t *testing.T) {
	caa, err := ParseCAAContent(`128 issuewild "letsencrypt.org"`)
	require.NoError(t, err)
	assert.Equal(t, CAARecord{Flags: 128, Tag: TagIssueWild,
		Value: "letsencrypt.org"}, caa)
	_, err = ParseCAAContent("0 issue")
	assert.Error(t, err)
	_, err = ParseCAAContent(`256 issue "x.org"`)
	assert.Error(t, err)
	_, err = ParseCAAContent("")
	assert.Error(t, err)
}

func TestParseCAAContentWhitespace(t *testing.T) {
	expected := CAARecord{Tag: TagIssue, Value: "letsencrypt.org"}
	for _, content := range []string{
		"0  issue \"letsencrypt.org\"",
		"0\tissue\t\"letsencrypt.org\"",
		" 0 ISSUE \"letsencrypt.org\" ",
		"0 issue letsencrypt.org",
	} {
		caa, err := ParseCAAContent(content)
		require.NoError(t, err, content)
		assert.Equal(t, expected, caa, content)
	}
}

func TestCAAContentRoundTrip(t *testing.T) {
	caa := CAARecord{Flags: 0, Tag: TagIodef, Value: "mailto:ops@example.com"}
	assert.Equal(t, `0 iodef "mailto:ops@example.com"`, caa.Content())
	parsed, err := ParseCAAContent(caa.Content())
	require.NoError(t, err)
	assert.Equal(t, caa, parsed)
}

func TestRecordValidate(t *testing.T) {
	priority := uint16(10)
	valid := []Record{
		{Name: "example.com", Type: TypeA, Content: "192.0.2.1"},
		{Name: "example.com", Type: TypeAAAA, Content: "2001:db8::1"},
		{Name: "*.example.com", Type: TypeCNAME, Content: "lb.example.net."},
		{Name: "_acme-challenge.example.com", Type: TypeTXT,
			Content: "some token"},
		{Name: "example.com", Type: TypeMX, Content: "mx.example.com",
			Priority: &priority},
		{Name: "_sip._tcp.example.com", Type: TypeSRV,
			Content: "5 5060 sip.example.com", Priority: &priority},
		{Name: "example.com", Type: TypeCAA, Content: `0 issue "ca.org"`},
	}
	for _, record := range valid {
		assert.NoError(t, record.Validate(), "%s %s", record.Type,
			record.Content)
	}
	invalid := []Record{
		{Name: "example.com", Type: TypeA, Content: "2001:db8::1"},
		{Name: "example.com", Type: TypeAAAA, Content: "192.0.2.1"},
		{Name: "example.com", Type: TypeCNAME, Content: "bad host"},
		{Name: "example.com", Type: TypeTXT, Content: " "},
		{Name: "example.com", Type: TypeMX, Content: "mx.example.com"},
		{Name: "example.com", Type: TypeCAA, Content: `0 policy "x"`},
		{Name: "bad name.com", Type: TypeA, Content: "192.0.2.1"},
		{Name: "example.com", Type: "SPF", Content: "v=spf1"},
	}
	for _, record := range invalid {
		err := record.Validate()
		var invalidErr *InvalidRecordError
		assert.True(t, errors.As(err, &invalidErr), "%s %q", record.Type,
			record.Content)
	}
}

func TestIsHostname(t *testing.T) {
	for _, name := range []string{
		"example.com",
		"example.com.",
		"*.example.com",
		"_acme-challenge.www.example.com",
		"xn--bcher-kva.example",
	} {
		assert.True(t, isHostname(name), name)
	}
	for _, name := range []string{
		"",
		"-bad-.example.com",
		"bad-.example.com",
		"www.*.example.com",
		"a..example.com",
		"bad host.example.com",
		strings.Repeat("a", 64) + ".example.com",
	} {
		assert.False(t, isHostname(name), name)
	}
}

func TestProviderErrorUnwraps(t *testing.T) {
	cause := errors.New("throttled")
	err := error(&ProviderError{Provider: "route53", Op: "list", Err: cause})
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "route53: list: throttled", err.Error())
}
