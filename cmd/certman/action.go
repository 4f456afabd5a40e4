package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Cloud-Foundations/Dominator/lib/format"
	"github.com/Cloud-Foundations/Dominator/lib/log"
	"github.com/Cloud-Foundations/customdomain/pkg/config"
	"github.com/Cloud-Foundations/customdomain/pkg/crypto/certbot"
	"github.com/Cloud-Foundations/customdomain/pkg/dns/providers"
	"github.com/Cloud-Foundations/customdomain/pkg/metrics"
)

func makeParams(cfgData *config.Config,
	logger log.DebugLogger) (certbot.Params, error) {
	explicit := *providerName
	if explicit == "" {
		explicit = cfgData.Provider
	}
	kind, err := providers.Select(explicit, os.LookupEnv)
	if err != nil {
		return certbot.Params{}, err
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return certbot.Params{}, err
	}
	plugin, err := providers.CertbotPlugin(kind, homeDir)
	if err != nil {
		return certbot.Params{}, err
	}
	credentials, err := providers.CertbotCredentials(kind, os.LookupEnv,
		homeDir)
	if err != nil {
		return certbot.Params{}, err
	}
	contactEmail := *email
	if contactEmail == "" {
		contactEmail = os.Getenv("CERTBOT_EMAIL")
	}
	logger.Debugf(0, "using %s plugin for %s provider\n", plugin.Name, kind)
	return certbot.Params{
		Config:      cfgData.Certbot,
		Credentials: credentials,
		Domain:      *domain,
		Email:       contactEmail,
		Logger:      logger,
		Plugin:      plugin,
		VirtualEnv:  os.Getenv("VIRTUAL_ENV"),
	}, nil
}

func runAction(action certbot.Action,
	logger log.DebugLogger) (certbot.Result, error) {
	cfgData, err := config.Load(*configFile)
	if err != nil {
		return certbot.Result{}, err
	}
	params, err := makeParams(cfgData, logger)
	if err != nil {
		return certbot.Result{}, err
	}
	if *metricsFile == "" {
		*metricsFile = cfgData.MetricsFile
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()
	recorder := metrics.New()
	startTime := time.Now()
	result, err := certbot.New(params).Run(ctx, action)
	timeTaken := time.Since(startTime)
	recorder.RecordCertificateAction(action, result, err, timeTaken)
	if err == nil {
		logger.Printf("%s finished in %s, evidence needed: %t\n",
			action, format.Duration(timeTaken), result.NeedsEvidence)
	}
	if *metricsFile != "" {
		if err := recorder.WriteTextfile(*metricsFile); err != nil {
			logger.Println(err)
		}
	}
	return result, err
}
