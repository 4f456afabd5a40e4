package main

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Cloud-Foundations/Dominator/lib/log"
	"github.com/Cloud-Foundations/customdomain/pkg/dns"
	"github.com/Cloud-Foundations/customdomain/pkg/dns/providers"
)

var errNoContent = errors.New("no -content specified")

func checkTTL(ttl uint) (uint32, error) {
	if ttl < 1 || ttl > math.MaxInt32 {
		return 0, fmt.Errorf("-ttl: %d out of range", ttl)
	}
	return uint32(ttl), nil
}

func checkCredentialsSubcommand(args []string, logger log.DebugLogger) error {
	provider, err := getProvider(logger)
	if err != nil {
		return err
	}
	validator, ok := provider.(providers.CredentialsValidator)
	if !ok {
		return errors.New("provider cannot validate credentials")
	}
	if err := validator.ValidateCredentials(context.Background()); err != nil {
		return err
	}
	logger.Println("credentials are valid")
	return nil
}

func getZoneIdSubcommand(args []string, logger log.DebugLogger) error {
	return runAction("get_zone_id",
		func(ctx context.Context, provider dns.Provider, zoneId string,
			logger log.DebugLogger) error {
			fmt.Println(zoneId)
			return nil
		},
		logger)
}

func setAliasSubcommand(args []string, logger log.DebugLogger) error {
	if *content == "" {
		return errNoContent
	}
	recordTTL, err := checkTTL(*ttl)
	if err != nil {
		return err
	}
	return runAction("set_alias",
		func(ctx context.Context, provider dns.Provider, zoneId string,
			logger log.DebugLogger) error {
			err := dns.SetAlias(ctx, provider, zoneId, *domain, *content,
				recordTTL, *proxied)
			if err != nil {
				return err
			}
			logger.Printf("%s now aliases %s\n", *domain, *content)
			return nil
		},
		logger)
}

func setCaaSubcommand(args []string, logger log.DebugLogger) error {
	if *caaTag == "" || *caaValue == "" {
		return errors.New("set_caa requires -caa-tag and -caa-value")
	}
	if *caaFlags > 255 {
		return fmt.Errorf("-caa-flags: %d out of range", *caaFlags)
	}
	recordTTL, err := checkTTL(*ttl)
	if err != nil {
		return err
	}
	caa := dns.CAARecord{
		Name:  *domain,
		Flags: uint8(*caaFlags),
		Tag:   *caaTag,
		Value: *caaValue,
		TTL:   recordTTL,
	}
	if err := caa.Validate(); err != nil {
		return err
	}
	return runAction("set_caa",
		func(ctx context.Context, provider dns.Provider, zoneId string,
			logger log.DebugLogger) error {
			if err := dns.SetCaa(ctx, provider, zoneId, caa); err != nil {
				return err
			}
			logger.Printf("%s has CAA %s\n", *domain, caa.Content())
			return nil
		},
		logger)
}

// set_cname is kept as a synonym of set_alias.
func setCNameSubcommand(args []string, logger log.DebugLogger) error {
	return setAliasSubcommand(args, logger)
}

func setTxtSubcommand(args []string, logger log.DebugLogger) error {
	if *content == "" {
		return errNoContent
	}
	recordTTL, err := checkTTL(*ttl)
	if err != nil {
		return err
	}
	return runAction("set_txt",
		func(ctx context.Context, provider dns.Provider, zoneId string,
			logger log.DebugLogger) error {
			err := dns.SetTxt(ctx, provider, zoneId, *domain, *content,
				recordTTL)
			if err != nil {
				return err
			}
			logger.Printf("%s TXT set\n", *domain)
			return nil
		},
		logger)
}
