/*
Package config reads the optional YAML configuration file shared by the
dns-manager and certman commands.

Example:
  provider: route53
  route53:
    aws_profile: dns-admin
    wait_for_sync: true
  certbot:
    propagation_seconds: 45
  metrics_file: /var/lib/node_exporter/customdomain.prom
*/
package config

import (
	"flag"

	"github.com/Cloud-Foundations/customdomain/pkg/crypto/certbot"
	"github.com/Cloud-Foundations/customdomain/pkg/dns/providers"
)

type Config struct {
	Certbot          certbot.Config `yaml:"certbot"`
	MetricsFile      string         `yaml:"metrics_file"`
	Provider         string         `yaml:"provider"` // Default: auto-detect.
	providers.Config `yaml:",inline"`
}

// Load reads the configuration from filename, which must have a .yml or
// .yaml extension. If filename is empty the default configuration is
// returned.
func Load(filename string) (*Config, error) {
	return load(filename)
}

// ParseFlags parses arguments with flagSet, allowing flags to follow
// positional arguments (such as the action word). Afterwards flagSet.Args()
// holds only the positional arguments.
func ParseFlags(flagSet *flag.FlagSet, arguments []string) error {
	return parseFlags(flagSet, arguments)
}

func (c *Config) SetDefaults() {
	c.setDefaults()
}
