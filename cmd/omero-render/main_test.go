package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ome/omero-cli-render/internal/config"
	"github.com/ome/omero-cli-render/internal/omero"
	"github.com/ome/omero-cli-render/internal/testsupport"
)

var errTest = errors.New("induced failure")

type cliTestEnv struct {
	gateway *testsupport.FakeGateway
	ctx     *commandContext
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	server := ""
	session := ""
	// Point at a path that does not exist so defaults are used.
	configPath := filepath.Join(t.TempDir(), "config.toml")
	ctx := newCommandContext(&server, &session, &configPath)

	gateway := testsupport.NewFakeGateway()
	ctx.dialGateway = func(*config.Config) (omero.Gateway, error) {
		return gateway, nil
	}
	return &cliTestEnv{gateway: gateway, ctx: ctx}
}

// runCommand executes one subcommand with captured output.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSpecFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write spec file: %v", err)
	}
	return path
}
