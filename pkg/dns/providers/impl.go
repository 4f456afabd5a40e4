package providers

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Cloud-Foundations/Dominator/lib/log"
	"github.com/Cloud-Foundations/customdomain/pkg/configerror"
	"github.com/Cloud-Foundations/customdomain/pkg/crypto/certbot"
	"github.com/Cloud-Foundations/customdomain/pkg/dns"
	"github.com/Cloud-Foundations/customdomain/pkg/dns/dnspod"
	"github.com/Cloud-Foundations/customdomain/pkg/dns/route53"
)

var detectEnv = map[Kind]string{
	KindDnspod:  "TENCENTCLOUD_SECRET_ID",
	KindRoute53: "AWS_ACCESS_KEY_ID",
}

func lookupValue(lookup LookupFunc, key string) string {
	if value, ok := lookup(key); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func parseKind(s string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := detectEnv[kind]; !ok {
		return "", configerror.New("unsupported DNS provider: %s", s)
	}
	return kind, nil
}

func suitable(kind Kind, lookup LookupFunc) bool {
	key, ok := detectEnv[kind]
	if !ok {
		return false
	}
	_, ok = lookup(key)
	return ok
}

func detect(lookup LookupFunc) (Kind, error) {
	for _, kind := range Kinds {
		if suitable(kind, lookup) {
			return kind, nil
		}
	}
	return "", configerror.New(
		"unable to detect DNS provider: none of AWS_ACCESS_KEY_ID, TENCENTCLOUD_SECRET_ID set")
}

func newProvider(kind Kind, config Config, lookup LookupFunc,
	logger log.DebugLogger) (dns.Provider, error) {
	switch kind {
	case KindDnspod:
		config.Dnspod.SecretId = lookupValue(lookup, "TENCENTCLOUD_SECRET_ID")
		config.Dnspod.SecretKey = lookupValue(lookup, "TENCENTCLOUD_SECRET_KEY")
		provider, err := dnspod.New(config.Dnspod, logger)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case KindRoute53:
		provider, err := route53.New(config.Route53, logger)
		if err != nil {
			return nil, err
		}
		return provider, nil
	}
	return nil, fmt.Errorf("unsupported DNS provider: %s", kind)
}

func certbotPlugin(kind Kind, homeDir string) (certbot.Plugin, error) {
	switch kind {
	case KindDnspod:
		return certbot.Plugin{
			CredentialsFile: filepath.Join(homeDir, ".secrets", "certbot",
				"tencentcloud.ini"),
			Name:               "dns-tencentcloud",
			Package:            "certbot-dns-tencentcloud",
			PropagationSeconds: 60,
		}, nil
	case KindRoute53:
		return certbot.Plugin{
			Name:               "dns-route53",
			Package:            "certbot-dns-route53==5.1.0",
			PropagationSeconds: 30,
		}, nil
	}
	return certbot.Plugin{}, configerror.New(
		"no certbot plugin for DNS provider: %s", kind)
}

func certbotCredentials(kind Kind, lookup LookupFunc,
	homeDir string) ([]certbot.Credentials, error) {
	switch kind {
	case KindDnspod:
		return []certbot.Credentials{dnspodCredentials(lookup, homeDir)}, nil
	case KindRoute53:
		return []certbot.Credentials{route53Credentials(lookup, homeDir)}, nil
	}
	return nil, configerror.New(
		"no credentials mapping for DNS provider: %s", kind)
}

func dnspodCredentials(lookup LookupFunc,
	homeDir string) certbot.Credentials {
	credentials := certbot.Credentials{
		Path: filepath.Join(homeDir, ".secrets", "certbot", "tencentcloud.ini"),
	}
	secretId := lookupValue(lookup, "TENCENTCLOUD_SECRET_ID")
	secretKey := lookupValue(lookup, "TENCENTCLOUD_SECRET_KEY")
	if secretId == "" || secretKey == "" {
		return credentials
	}
	buffer := &bytes.Buffer{}
	fmt.Fprintf(buffer, "dns_tencentcloud_secret_id = %s\n", secretId)
	fmt.Fprintf(buffer, "dns_tencentcloud_secret_key = %s\n", secretKey)
	credentials.Contents = buffer.Bytes()
	return credentials
}

func route53Credentials(lookup LookupFunc,
	homeDir string) certbot.Credentials {
	credentials := certbot.Credentials{
		Path: filepath.Join(homeDir, ".aws", "credentials"),
	}
	accessKey := lookupValue(lookup, "AWS_ACCESS_KEY_ID")
	secretKey := lookupValue(lookup, "AWS_SECRET_ACCESS_KEY")
	if accessKey == "" || secretKey == "" {
		return credentials
	}
	buffer := &bytes.Buffer{}
	fmt.Fprintln(buffer, "[default]")
	fmt.Fprintf(buffer, "aws_access_key_id = %s\n", accessKey)
	fmt.Fprintf(buffer, "aws_secret_access_key = %s\n", secretKey)
	if token := lookupValue(lookup, "AWS_SESSION_TOKEN"); token != "" {
		fmt.Fprintf(buffer, "aws_session_token = %s\n", token)
	}
	credentials.Contents = buffer.Bytes()
	return credentials
}
