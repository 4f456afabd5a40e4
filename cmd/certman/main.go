package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Cloud-Foundations/Dominator/lib/flags/loadflags"
	"github.com/Cloud-Foundations/Dominator/lib/log/cmdlogger"
	"github.com/Cloud-Foundations/customdomain/pkg/config"
	"github.com/Cloud-Foundations/customdomain/pkg/crypto/certbot"
)

const exitUsage = 3

var (
	configFile = flag.String("configFile", "",
		"Name of optional YAML file containing configuration")
	domain = flag.String("domain", "",
		"Domain to obtain or renew a certificate for")
	email = flag.String("email", "",
		"Contact email for obtain (default: $CERTBOT_EMAIL)")
	metricsFile = flag.String("metricsFile", "",
		"Name of file to write Prometheus metrics to (textfile format)")
	providerName = flag.String("provider", "",
		"DNS provider (route53 or dnspod). Default: detect from environment")
)

func printUsage() {
	w := flag.CommandLine.Output()
	fmt.Fprintln(w, "Usage: certman [flags...] action [flags...]")
	fmt.Fprintln(w, "Common flags:")
	flag.PrintDefaults()
	fmt.Fprintln(w, "Actions:")
	fmt.Fprintln(w, "  setup   install the DNS plugin and write its credentials")
	fmt.Fprintln(w, "  obtain  obtain a new certificate for -domain")
	fmt.Fprintln(w, "  renew   renew certificates which are due")
	fmt.Fprintln(w, "  auto    renew if a certificate for -domain exists, else obtain")
	fmt.Fprintln(w, "Exit status:")
	fmt.Fprintln(w, "  0  certificate obtained or renewed")
	fmt.Fprintln(w, "  2  nothing was due for renewal")
	fmt.Fprintln(w, "  1  failure")
}

func doMain() int {
	if err := loadflags.LoadForCli("certman"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	flag.Usage = printUsage
	if err := config.ParseFlags(flag.CommandLine, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	if flag.NArg() != 1 {
		printUsage()
		return exitUsage
	}
	action, err := certbot.ParseAction(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage()
		return exitUsage
	}
	logger := cmdlogger.New()
	result, err := runAction(action, logger)
	if err != nil {
		logger.Println(err)
	}
	return result.ExitCode()
}

func main() {
	os.Exit(doMain())
}
