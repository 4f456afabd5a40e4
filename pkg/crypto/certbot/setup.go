package certbot

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	credentialsDirPerms  = 0700
	credentialsFilePerms = 0600
)

func (r ExecRunner) run(ctx context.Context, args []string) (Output, error) {
	if len(args) < 1 {
		return Output{}, errors.New("no command")
	}
	if r.Logger != nil {
		r.Logger.Debugf(1, "running: %s\n", strings.Join(args, " "))
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	output := Output{Stderr: stderr.String(), Stdout: stdout.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return output, err
		}
		output.ExitCode = exitErr.ExitCode()
	}
	return output, nil
}

// writeCredentials creates path with mode 0600 if it does not exist.
// Returns true if the file was written.
func writeCredentials(path string, contents []byte) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), credentialsDirPerms); err != nil {
		return false, err
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL,
		credentialsFilePerms)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := file.Write(contents); err != nil {
		file.Close()
		os.Remove(path)
		return false, err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return false, err
	}
	return true, nil
}

func (m *Manager) installPlugin(ctx context.Context) error {
	pkg := m.params.Plugin.Package
	if pkg == "" {
		return configurationError("no certbot package defined for plugin: %s",
			m.params.Plugin.Name)
	}
	m.params.Logger.Printf("installing certbot plugin: %s\n", pkg)
	if _, err := m.runTool(ctx, []string{m.pipCommand(), "install", pkg}); err != nil {
		return err
	}
	m.params.Logger.Printf("installed: %s\n", pkg)
	return nil
}

func (m *Manager) pipCommand() string {
	if m.params.VirtualEnv != "" {
		pip := filepath.Join(m.params.VirtualEnv, "bin", "pip")
		if _, err := os.Stat(pip); err == nil {
			return pip
		}
	}
	return "pip"
}

func (m *Manager) setup(ctx context.Context) error {
	if err := m.installPlugin(ctx); err != nil {
		return err
	}
	for _, credentials := range m.params.Credentials {
		if credentials.Contents == nil {
			m.params.Logger.Debugf(0,
				"no secrets available for: %s, not writing\n", credentials.Path)
			continue
		}
		written, err := writeCredentials(credentials.Path, credentials.Contents)
		if err != nil {
			return err
		}
		if written {
			m.params.Logger.Printf("wrote credentials file: %s\n",
				credentials.Path)
		} else {
			m.params.Logger.Printf("credentials file: %s exists, not replacing\n",
				credentials.Path)
		}
	}
	return nil
}
