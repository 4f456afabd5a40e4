package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/Cloud-Foundations/Dominator/lib/log"
	"github.com/Cloud-Foundations/customdomain/pkg/dns"
	"github.com/Cloud-Foundations/customdomain/pkg/dns/providers"
)

type actionFunc func(ctx context.Context, provider dns.Provider, zoneId string,
	logger log.DebugLogger) error

var errNoDomain = errors.New("no -domain specified")

func getProvider(logger log.DebugLogger) (dns.Provider, error) {
	explicit := *providerName
	if explicit == "" {
		explicit = cfgData.Provider
	}
	kind, err := providers.Select(explicit, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	logger.Debugf(0, "using %s provider\n", kind)
	return providers.New(kind, cfgData.Config, os.LookupEnv, logger)
}

func getZoneId(ctx context.Context, provider dns.Provider) (string, error) {
	if *zoneId != "" {
		return *zoneId, nil
	}
	zone, err := provider.ResolveZone(ctx, *domain)
	if err != nil {
		return "", err
	}
	return zone.Id, nil
}

// runAction validates the common flags, resolves the zone and runs action,
// recording the outcome under name.
func runAction(name string, action actionFunc, logger log.DebugLogger) error {
	if *domain == "" {
		return errNoDomain
	}
	provider, err := getProvider(logger)
	if err != nil {
		return err
	}
	ctx := context.Background()
	startTime := time.Now()
	zoneId, err := getZoneId(ctx, provider)
	if err == nil {
		err = action(ctx, provider, zoneId, logger)
	}
	recorder.RecordDNSAction(name, err, time.Since(startTime))
	return err
}
