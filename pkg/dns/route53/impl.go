package route53

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Cloud-Foundations/Dominator/lib/log"
	"github.com/Cloud-Foundations/customdomain/pkg/dns"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials/stscreds"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/route53"
	"github.com/aws/aws-sdk-go/service/route53/route53iface"
)

const (
	providerName = "route53"
	waitTimeout  = time.Minute * 2
)

func awsCreateSession(config Config) (*session.Session, error) {
	var awsSession *session.Session
	var err error
	if config.AwsProfile == "" {
		awsSession, err = session.NewSession(&aws.Config{})
	} else {
		awsSession, err = session.NewSessionWithOptions(session.Options{
			Profile: config.AwsProfile,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("error creating session: %s", err)
	}
	if awsSession == nil {
		return nil, errors.New("awsSession == nil")
	}
	if config.AwsAssumeRoleArn == "" {
		return awsSession, nil
	}
	creds := stscreds.NewCredentials(awsSession, config.AwsAssumeRoleArn)
	assumedSession, err := session.NewSession(&aws.Config{Credentials: creds})
	if err != nil {
		return nil, fmt.Errorf("error creating assumed role session: %s", err)
	}
	if assumedSession == nil {
		return nil, errors.New("assumedSession == nil")
	}
	return assumedSession, nil
}

func newProvider(config Config, logger log.DebugLogger) (*Provider, error) {
	awsSession, err := awsCreateSession(config)
	if err != nil {
		return nil, err
	}
	return newProviderWithService(route53.New(awsSession), config, logger), nil
}

func newProviderWithService(awsService route53iface.Route53API, config Config,
	logger log.DebugLogger) *Provider {
	if config.RequiredIssuers == nil {
		config.RequiredIssuers = DefaultRequiredIssuers
	}
	return &Provider{
		awsService: awsService,
		config:     config,
		logger:     logger,
		zoneNames:  make(map[string]string),
		resolved:   make(map[string]dns.Zone),
	}
}

func providerError(op string, err error) error {
	return &dns.ProviderError{Provider: providerName, Op: op, Err: err}
}

// trimZoneId converts "/hostedzone/Z123" to "Z123".
func trimZoneId(id string) string {
	return id[strings.LastIndexByte(id, '/')+1:]
}

func waitForChange(ctx context.Context, awsService route53iface.Route53API,
	id *string, logger log.DebugLogger) error {
	waitCtx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()
	input := &route53.GetChangeInput{Id: id}
	err := awsService.WaitUntilResourceRecordSetsChangedWithContext(waitCtx,
		input)
	if err == nil || ctx.Err() != nil || waitCtx.Err() == nil {
		return err
	}
	output, err := awsService.GetChangeWithContext(ctx, input)
	if err != nil {
		logger.Printf("timed out waiting for change: %s, hoping for the best, error from GetChange(): %s\n",
			*id, err)
		return nil
	}
	logger.Printf(
		"timed out waiting for change: %s, hoping for the best, status: %s\n",
		*id, aws.StringValue(output.ChangeInfo.Status))
	return nil
}

func (config *Config) setDefaults() {
	if config.RequiredIssuers == nil {
		config.RequiredIssuers = DefaultRequiredIssuers
	}
}

func (p *Provider) apexName(ctx context.Context, zoneId string) (
	string, error) {
	if name, ok := p.zoneNames[zoneId]; ok {
		return name, nil
	}
	output, err := p.awsService.GetHostedZoneWithContext(ctx,
		&route53.GetHostedZoneInput{Id: aws.String(zoneId)})
	if err != nil {
		return "", providerError("GetHostedZone", err)
	}
	name := dns.NormalizeName(aws.StringValue(output.HostedZone.Name))
	p.zoneNames[zoneId] = name
	return name, nil
}

func (p *Provider) listZones(ctx context.Context) ([]dns.Zone, error) {
	var publicZones, privateZones []dns.Zone
	err := p.awsService.ListHostedZonesPagesWithContext(ctx,
		&route53.ListHostedZonesInput{},
		func(page *route53.ListHostedZonesOutput, lastPage bool) bool {
			for _, hostedZone := range page.HostedZones {
				zone := dns.Zone{
					Id:   trimZoneId(aws.StringValue(hostedZone.Id)),
					Name: dns.NormalizeName(aws.StringValue(hostedZone.Name)),
				}
				if hostedZone.Config != nil &&
					aws.BoolValue(hostedZone.Config.PrivateZone) {
					privateZones = append(privateZones, zone)
				} else {
					publicZones = append(publicZones, zone)
				}
			}
			return true
		})
	if err != nil {
		return nil, providerError("ListHostedZones", err)
	}
	zones := append(publicZones, privateZones...)
	if zones == nil {
		zones = []dns.Zone{}
	}
	p.logger.Debugf(1, "listed %d hosted zones\n", len(zones))
	return zones, nil
}

func (p *Provider) resolveZone(ctx context.Context, domain string) (
	dns.Zone, error) {
	domain = dns.NormalizeName(domain)
	if zone, ok := p.resolved[domain]; ok {
		return zone, nil
	}
	if p.zones != nil {
		if zone, err := dns.SelectZone(p.zones, domain); err == nil {
			p.resolved[domain] = zone
			return zone, nil
		}
		p.logger.Debugf(1, "%s is outside the cached zones, refreshing\n",
			domain)
	}
	zones, err := p.listZones(ctx)
	if err != nil {
		return dns.Zone{}, err
	}
	p.zones = zones
	p.resolved = make(map[string]dns.Zone)
	for _, zone := range zones {
		if _, ok := p.zoneNames[zone.Id]; !ok {
			p.zoneNames[zone.Id] = zone.Name
		}
	}
	zone, err := dns.SelectZone(zones, domain)
	if err != nil {
		return dns.Zone{}, err
	}
	p.logger.Debugf(0, "domain: %s is in hosted zone: %s (%s)\n",
		domain, zone.Name, zone.Id)
	p.resolved[domain] = zone
	return zone, nil
}

// submitChanges applies a change batch, optionally waiting for it to sync.
func (p *Provider) submitChanges(ctx context.Context, zoneId string,
	changes []*route53.Change) error {
	output, err := p.awsService.ChangeResourceRecordSetsWithContext(ctx,
		&route53.ChangeResourceRecordSetsInput{
			ChangeBatch:  &route53.ChangeBatch{Changes: changes},
			HostedZoneId: aws.String(zoneId),
		})
	if err != nil {
		return providerError("ChangeResourceRecordSets", err)
	}
	if output.ChangeInfo == nil {
		return providerError("ChangeResourceRecordSets",
			errors.New("no change info returned"))
	}
	switch status := aws.StringValue(output.ChangeInfo.Status); status {
	case route53.ChangeStatusPending, route53.ChangeStatusInsync:
	default:
		return providerError("ChangeResourceRecordSets",
			fmt.Errorf("unexpected change status: %s", status))
	}
	if !p.config.WaitForSync {
		return nil
	}
	p.logger.Debugf(1, "waiting for change: %s to complete\n",
		aws.StringValue(output.ChangeInfo.Id))
	err = waitForChange(ctx, p.awsService, output.ChangeInfo.Id, p.logger)
	if err != nil {
		return providerError("WaitUntilResourceRecordSetsChanged", err)
	}
	p.logger.Debugf(1, "change: %s completed\n",
		aws.StringValue(output.ChangeInfo.Id))
	return nil
}

func (p *Provider) validateCredentials(ctx context.Context) error {
	_, err := p.awsService.ListHostedZonesWithContext(ctx,
		&route53.ListHostedZonesInput{MaxItems: aws.String("1")})
	if err != nil {
		return providerError("ListHostedZones", err)
	}
	return nil
}
