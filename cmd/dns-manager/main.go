package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Cloud-Foundations/Dominator/lib/flags/commands"
	"github.com/Cloud-Foundations/Dominator/lib/flags/loadflags"
	"github.com/Cloud-Foundations/Dominator/lib/log/cmdlogger"
	"github.com/Cloud-Foundations/customdomain/pkg/config"
	"github.com/Cloud-Foundations/customdomain/pkg/dns"
	"github.com/Cloud-Foundations/customdomain/pkg/metrics"
)

var (
	caaFlags = flag.Uint("caa-flags", 0, "Flags byte for set_caa")
	caaTag   = flag.String("caa-tag", "",
		"CAA property tag for set_caa (issue, issuewild or iodef)")
	caaValue   = flag.String("caa-value", "", "CAA property value for set_caa")
	configFile = flag.String("configFile", "",
		"Name of optional YAML file containing configuration")
	content = flag.String("content", "",
		"Target or text content for set_alias, set_cname and set_txt")
	domain      = flag.String("domain", "", "Fully qualified record name")
	metricsFile = flag.String("metricsFile", "",
		"Name of file to write Prometheus metrics to (textfile format)")
	providerName = flag.String("provider", "",
		"DNS provider (route53 or dnspod). Default: detect from environment")
	proxied = flag.Bool("proxied", false,
		"Request provider proxying for set_alias (if supported)")
	ttl    = flag.Uint("ttl", dns.DefaultTTL, "TTL (seconds) of created records")
	zoneId = flag.String("zone-id", "",
		"Zone identifier. If specified, zone discovery is skipped")

	cfgData  *config.Config
	recorder *metrics.Recorder
)

func printUsage() {
	w := flag.CommandLine.Output()
	fmt.Fprintln(w, "Usage: dns-manager [flags...] command [flags...]")
	fmt.Fprintln(w, "Common flags:")
	flag.PrintDefaults()
	fmt.Fprintln(w, "Commands:")
	commands.PrintCommands(w, subcommands)
}

var subcommands = []commands.Command{
	{Command: "check_credentials", Args: "", MinArgs: 0, MaxArgs: 0, CmdFunc: checkCredentialsSubcommand},
	{Command: "get_zone_id", Args: "", MinArgs: 0, MaxArgs: 0, CmdFunc: getZoneIdSubcommand},
	{Command: "set_alias", Args: "", MinArgs: 0, MaxArgs: 0, CmdFunc: setAliasSubcommand},
	{Command: "set_caa", Args: "", MinArgs: 0, MaxArgs: 0, CmdFunc: setCaaSubcommand},
	{Command: "set_cname", Args: "", MinArgs: 0, MaxArgs: 0, CmdFunc: setCNameSubcommand},
	{Command: "set_txt", Args: "", MinArgs: 0, MaxArgs: 0, CmdFunc: setTxtSubcommand},
}

func doMain() int {
	if err := loadflags.LoadForCli("dns-manager"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	flag.Usage = printUsage
	if err := config.ParseFlags(flag.CommandLine, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := cmdlogger.New()
	var err error
	if cfgData, err = config.Load(*configFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *metricsFile == "" {
		*metricsFile = cfgData.MetricsFile
	}
	recorder = metrics.New()
	ret := commands.RunCommands(subcommands, printUsage, logger)
	if *metricsFile != "" {
		if err := recorder.WriteTextfile(*metricsFile); err != nil {
			logger.Println(err)
		}
	}
	return ret
}

func main() {
	os.Exit(doMain())
}
