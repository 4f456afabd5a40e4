package config

import (
	"flag"
	"io"

	"github.com/Cloud-Foundations/Dominator/lib/decoders"
	"gopkg.in/yaml.v2"
)

func init() {
	decoders.RegisterDecoder(".yaml", yamlDecoderGenerator)
	decoders.RegisterDecoder(".yml", yamlDecoderGenerator)
}

func yamlDecoderGenerator(r io.Reader) decoders.Decoder {
	return yaml.NewDecoder(r)
}

func load(filename string) (*Config, error) {
	config := &Config{}
	if filename != "" {
		if err := decoders.DecodeFile(filename, config); err != nil {
			return nil, err
		}
	}
	config.setDefaults()
	return config, nil
}

func (c *Config) setDefaults() {
	c.Certbot.SetDefaults()
	c.Dnspod.SetDefaults()
	c.Route53.SetDefaults()
}

func parseFlags(flagSet *flag.FlagSet, arguments []string) error {
	var positional []string
	for {
		if err := flagSet.Parse(arguments); err != nil {
			return err
		}
		arguments = flagSet.Args()
		if len(arguments) < 1 {
			break
		}
		positional = append(positional, arguments[0])
		arguments = arguments[1:]
	}
	return flagSet.Parse(positional)
}
