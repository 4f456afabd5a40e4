package providers

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Cloud-Foundations/Dominator/lib/log/testlogger"
	"github.com/Cloud-Foundations/customdomain/pkg/configerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}

func TestDetectOrder(t *testing.T) {
	kind, err := Detect(makeLookup(map[string]string{
		"AWS_ACCESS_KEY_ID":      "AKIA",
		"TENCENTCLOUD_SECRET_ID": "id",
	}))
	require.NoError(t, err)
	assert.Equal(t, KindRoute53, kind)
	kind, err = Detect(makeLookup(map[string]string{
		"TENCENTCLOUD_SECRET_ID": "id",
	}))
	require.NoError(t, err)
	assert.Equal(t, KindDnspod, kind)
	_, err = Detect(makeLookup(nil))
	var configErr *configerror.Error
	assert.True(t, errors.As(err, &configErr))
}

func TestSelectExplicitWins(t *testing.T) {
	lookup := makeLookup(map[string]string{"AWS_ACCESS_KEY_ID": "AKIA"})
	kind, err := Select("DNSPod", lookup)
	require.NoError(t, err)
	assert.Equal(t, KindDnspod, kind)
	_, err = Select("cloudflare", lookup)
	var configErr *configerror.Error
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, "unsupported DNS provider: cloudflare", configErr.Reason)
	kind, err = Select("", lookup)
	require.NoError(t, err)
	assert.Equal(t, KindRoute53, kind)
}

func TestCertbotPlugins(t *testing.T) {
	plugin, err := CertbotPlugin(KindRoute53, "/root")
	require.NoError(t, err)
	assert.Equal(t, "dns-route53", plugin.Name)
	assert.Empty(t, plugin.CredentialsFile)
	plugin, err = CertbotPlugin(KindDnspod, "/root")
	require.NoError(t, err)
	assert.Equal(t, "/root/.secrets/certbot/tencentcloud.ini",
		plugin.CredentialsFile)
	_, err = CertbotPlugin(Kind("other"), "/root")
	assert.Error(t, err)
}

func TestRoute53Credentials(t *testing.T) {
	home := t.TempDir()
	credentials, err := CertbotCredentials(KindRoute53, makeLookup(
		map[string]string{
			"AWS_ACCESS_KEY_ID":     "AKIA",
			"AWS_SECRET_ACCESS_KEY": "secret",
			"AWS_SESSION_TOKEN":     "token",
		}), home)
	require.NoError(t, err)
	require.Len(t, credentials, 1)
	assert.Equal(t, filepath.Join(home, ".aws", "credentials"),
		credentials[0].Path)
	assert.Equal(t, "[default]\naws_access_key_id = AKIA\n"+
		"aws_secret_access_key = secret\naws_session_token = token\n",
		string(credentials[0].Contents))
}

func TestCredentialsWithoutSecrets(t *testing.T) {
	credentials, err := CertbotCredentials(KindRoute53, makeLookup(
		map[string]string{"AWS_ACCESS_KEY_ID": "AKIA"}), "/root")
	require.NoError(t, err)
	assert.Nil(t, credentials[0].Contents)
	credentials, err = CertbotCredentials(KindDnspod, makeLookup(nil), "/root")
	require.NoError(t, err)
	assert.Nil(t, credentials[0].Contents)
}

func TestDnspodCredentials(t *testing.T) {
	credentials, err := CertbotCredentials(KindDnspod, makeLookup(
		map[string]string{
			"TENCENTCLOUD_SECRET_ID":  "id",
			"TENCENTCLOUD_SECRET_KEY": "key",
		}), "/home/user")
	require.NoError(t, err)
	assert.Equal(t, "/home/user/.secrets/certbot/tencentcloud.ini",
		credentials[0].Path)
	assert.Equal(t, "dns_tencentcloud_secret_id = id\n"+
		"dns_tencentcloud_secret_key = key\n",
		string(credentials[0].Contents))
}

func TestNewDnspodRequiresSecrets(t *testing.T) {
	_, err := New(KindDnspod, Config{}, makeLookup(nil), testlogger.New(t))
	assert.Error(t, err)
	provider, err := New(KindDnspod, Config{}, makeLookup(map[string]string{
		"TENCENTCLOUD_SECRET_ID":  "id",
		"TENCENTCLOUD_SECRET_KEY": "key",
	}), testlogger.New(t))
	require.NoError(t, err)
	_, ok := provider.(CredentialsValidator)
	assert.True(t, ok)
}
