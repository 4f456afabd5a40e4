package certbot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Cloud-Foundations/Dominator/lib/format"
	"github.com/Cloud-Foundations/customdomain/pkg/configerror"
)

const (
	exitEvidence   = 0
	exitFailure    = 1
	exitNoEvidence = 2
)

func configurationError(reason string, v ...interface{}) error {
	return configerror.New(reason, v...)
}

func newManager(params Params) *Manager {
	params.Config.setDefaults()
	if params.Runner == nil {
		params.Runner = ExecRunner{Logger: params.Logger}
	}
	return &Manager{params: params}
}

func parseAction(s string) (Action, error) {
	switch action := Action(strings.ToLower(s)); action {
	case ActionAuto, ActionObtain, ActionRenew, ActionSetup:
		return action, nil
	}
	return "", configurationError("invalid action: %s", s)
}

func (config *Config) setDefaults() {
	if config.CertRoot == "" {
		config.CertRoot = DefaultCertRoot
	}
	if config.Command == "" {
		config.Command = DefaultCommand
	}
}

func (r Result) exitCode() int {
	if !r.Success {
		return exitFailure
	}
	if r.NeedsEvidence {
		return exitEvidence
	}
	return exitNoEvidence
}

func (e *ToolError) error() string {
	output := strings.TrimSpace(e.Output)
	if output == "" {
		return fmt.Sprintf("%s exited with status: %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with status: %d: %s",
		e.Command, e.ExitCode, output)
}

func (m *Manager) auto(ctx context.Context) (Result, error) {
	if err := m.checkDomain(); err != nil {
		return Result{}, err
	}
	if m.certificateExists() {
		m.params.Logger.Debugf(0, "certificate: %s exists\n",
			m.certificatePath())
		return m.renew(ctx)
	}
	return m.obtain(ctx)
}

func (m *Manager) buildCommand(subcommand string) ([]string, error) {
	plugin := m.params.Plugin
	if plugin.Name == "" {
		return nil, configurationError("no certbot plugin configured")
	}
	propagationSeconds := plugin.PropagationSeconds
	if m.params.Config.PropagationSeconds > 0 {
		propagationSeconds = m.params.Config.PropagationSeconds
	}
	args := []string{
		m.params.Config.Command,
		subcommand,
		"--" + plugin.Name,
		"--" + plugin.Name + "-propagation-seconds",
		strconv.FormatUint(uint64(propagationSeconds), 10),
		"--non-interactive",
	}
	if plugin.CredentialsFile != "" {
		if _, err := os.Stat(plugin.CredentialsFile); err == nil {
			args = append(args, "--"+plugin.Name+"-credentials",
				plugin.CredentialsFile)
		}
	}
	if subcommand == "certonly" {
		if m.params.Email == "" {
			return nil, configurationError("email is required to obtain a certificate")
		}
		args = append(args, "--email", m.params.Email, "--agree-tos",
			"--no-eff-email", "-d", m.params.Domain)
	}
	return args, nil
}

func (m *Manager) certificateExists() bool {
	if fi, err := os.Stat(m.certificatePath()); err != nil {
		return false
	} else {
		return fi.Mode().IsRegular()
	}
}

func (m *Manager) certificatePath() string {
	return filepath.Join(m.params.Config.CertRoot, "live", m.params.Domain,
		"fullchain.pem")
}

func (m *Manager) checkDomain() error {
	domain := m.params.Domain
	if domain == "" {
		return configurationError("domain is required for certificate operations")
	}
	if strings.ContainsAny(domain, `/\`) || strings.HasPrefix(domain, ".") {
		return configurationError("invalid domain: %s", domain)
	}
	return nil
}

func (m *Manager) obtain(ctx context.Context) (Result, error) {
	if err := m.checkDomain(); err != nil {
		return Result{}, err
	}
	args, err := m.buildCommand("certonly")
	if err != nil {
		return Result{}, err
	}
	m.params.Logger.Printf("obtaining new certificate for: %s\n",
		m.params.Domain)
	if _, err := m.runTool(ctx, args); err != nil {
		return Result{}, err
	}
	m.params.Logger.Printf("certificate obtained for: %s\n", m.params.Domain)
	return Result{NeedsEvidence: true, Success: true}, nil
}

func (m *Manager) renew(ctx context.Context) (Result, error) {
	args, err := m.buildCommand("renew")
	if err != nil {
		return Result{}, err
	}
	m.params.Logger.Println("renewing certificates")
	output, err := m.runTool(ctx, args)
	if err != nil {
		return Result{}, err
	}
	if strings.Contains(output.Stdout, NoRenewalsSignal) {
		m.params.Logger.Println("no certificates need renewal")
		return Result{Success: true}, nil
	}
	m.params.Logger.Println("certificates renewed")
	return Result{NeedsEvidence: true, Success: true}, nil
}

func (m *Manager) runAction(ctx context.Context, action Action) (
	Result, error) {
	switch action {
	case ActionAuto:
		return m.auto(ctx)
	case ActionObtain:
		return m.obtain(ctx)
	case ActionRenew:
		if err := m.checkDomain(); err != nil {
			return Result{}, err
		}
		return m.renew(ctx)
	case ActionSetup:
		if err := m.setup(ctx); err != nil {
			return Result{}, err
		}
		return Result{NeedsEvidence: true, Success: true}, nil
	}
	return Result{}, configurationError("invalid action: %s", action)
}

// runTool runs a command, converting a non-zero exit status into a
// *ToolError carrying the captured standard error.
func (m *Manager) runTool(ctx context.Context, args []string) (Output, error) {
	startTime := time.Now()
	output, err := m.params.Runner.Run(ctx, args)
	if err != nil {
		return output, fmt.Errorf("error running %s: %s", args[0], err)
	}
	m.params.Logger.Debugf(0, "%s %s exited with status: %d after %s\n",
		args[0], args[1], output.ExitCode,
		format.Duration(time.Since(startTime)))
	if output.ExitCode != 0 {
		return output, &ToolError{
			Command:  strings.Join(args[:2], " "),
			ExitCode: output.ExitCode,
			Output:   output.Stderr,
		}
	}
	return output, nil
}
