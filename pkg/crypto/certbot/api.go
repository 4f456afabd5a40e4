/*
Package certbot drives the certificate lifecycle for one domain using the
certbot tool and a DNS-01 plugin.

The Manager decides between obtaining a new certificate and renewing an
existing one, and reports whether the certificate state changed (whether
evidence should be produced for the action). Certificates are never read or
written directly: existence is a check for the live fullchain.pem file.
*/
package certbot

import (
	"context"

	"github.com/Cloud-Foundations/Dominator/lib/log"
	"github.com/Cloud-Foundations/customdomain/pkg/configerror"
)

const (
	ActionAuto   Action = "auto"
	ActionObtain Action = "obtain"
	ActionRenew  Action = "renew"
	ActionSetup  Action = "setup"

	DefaultCertRoot = "/etc/letsencrypt"
	DefaultCommand  = "certbot"

	// NoRenewalsSignal appears in the renew output when no certificate was
	// due for renewal.
	NoRenewalsSignal = "No renewals were attempted"
)

type Action string

type Config struct {
	CertRoot           string `yaml:"cert_root"`           // Default: /etc/letsencrypt
	Command            string `yaml:"command"`             // Default: certbot
	PropagationSeconds uint   `yaml:"propagation_seconds"` // Default: per plugin
}

// ConfigurationError is returned for missing or invalid inputs. It is
// detected before the tool is run and is not worth retrying.
type ConfigurationError = configerror.Error

// Credentials is a credentials file to materialise during setup. If Contents
// is nil no raw secrets were available and nothing is written.
type Credentials struct {
	Contents []byte
	Path     string
}

type Manager struct {
	params Params
}

type Output struct {
	ExitCode int
	Stderr   string
	Stdout   string
}

type Params struct {
	Config      Config
	Credentials []Credentials
	Domain      string
	Email       string
	Logger      log.DebugLogger
	Plugin      Plugin
	Runner      Runner // Default: ExecRunner.
	VirtualEnv  string // If set, $VirtualEnv/bin/pip is preferred.
}

// Plugin describes the certbot DNS plugin for a DNS provider.
type Plugin struct {
	CredentialsFile    string // Passed to certbot only if the file exists.
	Name               string // Example: "dns-route53".
	Package            string // The pip requirement to install.
	PropagationSeconds uint
}

// Result is the outcome of an action: whether it succeeded and whether the
// certificate changed.
type Result struct {
	NeedsEvidence bool
	Success       bool
}

// Runner runs a command and captures its output. A non-zero exit status is
// reported in Output.ExitCode; an error means the command could not be run.
type Runner interface {
	Run(ctx context.Context, args []string) (Output, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Logger log.DebugLogger
}

// ToolError is returned when certbot or pip exits with a non-zero status.
type ToolError struct {
	Command  string
	ExitCode int
	Output   string
}

// New creates a *Manager. Missing inputs which are needed by an action are
// reported when that action is performed.
func New(params Params) *Manager {
	return newManager(params)
}

// ParseAction converts a string to an Action.
func ParseAction(s string) (Action, error) {
	return parseAction(s)
}

func (config *Config) SetDefaults() {
	config.setDefaults()
}

func (r ExecRunner) Run(ctx context.Context, args []string) (Output, error) {
	return r.run(ctx, args)
}

// Auto renews the certificate if it exists, else obtains it.
func (m *Manager) Auto(ctx context.Context) (Result, error) {
	return m.auto(ctx)
}

// BuildCommand returns the certbot command line for a certbot subcommand
// ("certonly" or "renew").
func (m *Manager) BuildCommand(subcommand string) ([]string, error) {
	return m.buildCommand(subcommand)
}

// CertificateExists returns true if the live certificate for the domain is
// present.
func (m *Manager) CertificateExists() bool {
	return m.certificateExists()
}

// CertificatePath returns the path of the live certificate for the domain.
func (m *Manager) CertificatePath() string {
	return m.certificatePath()
}

// Obtain requests a new certificate. Success always needs evidence.
func (m *Manager) Obtain(ctx context.Context) (Result, error) {
	return m.obtain(ctx)
}

// Renew renews all certificates which are due. Evidence is needed unless
// certbot reports that no renewals were attempted.
func (m *Manager) Renew(ctx context.Context) (Result, error) {
	return m.renew(ctx)
}

// Run performs the specified action. A successful setup needs evidence, so
// that it maps to exit status 0.
func (m *Manager) Run(ctx context.Context, action Action) (Result, error) {
	return m.runAction(ctx, action)
}

// Setup installs the plugin and writes any credentials files which do not
// exist yet. Existing files are never replaced.
func (m *Manager) Setup(ctx context.Context) error {
	return m.setup(ctx)
}

// ExitCode maps the result to the process exit status: 0 if evidence is
// needed, 2 if the action succeeded without a change and 1 on failure.
func (r Result) ExitCode() int {
	return r.exitCode()
}

func (e *ToolError) Error() string {
	return e.error()
}
