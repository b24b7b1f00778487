package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backline/backline/internal/services"
	"github.com/backline/backline/internal/shared"
	tu "github.com/backline/backline/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			registry := services.NewRegistry(config, httpClient)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Platforms:  registry,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.platforms != registry {
				t.Error("expected platform registry to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config")
			}
			if runner.logger == nil {
				t.Error("expected default logger")
			}
			if runner.output != os.Stdout {
				t.Error("expected stdout output")
			}
			if runner.platforms == nil {
				t.Error("expected default registry")
			}
		})
	})

	t.Run("register returns all top-level commands", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "serve", "sync", "connections", "notify", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("expected command %q at position %d, got %q", name, i, commands[i].Name)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("pretty output", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected write to succeed, got %v", err)
			}
			if !strings.Contains(output.String(), "\"key\": \"value\"") {
				t.Errorf("expected indented JSON, got %q", output.String())
			}
		})

		t.Run("write failure surfaces", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected error from failing writer")
			}
		})
	})

	t.Run("Setup", func(t *testing.T) {
		t.Run("creates config file and database", func(t *testing.T) {
			dir := t.TempDir()
			wd := tu.MustGetwd(t)
			tu.MustChdir(t, dir)
			defer tu.MustChdir(t, wd)

			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Value: "config.toml"},
				},
				Action: runner.Setup,
			}

			if err := cmd.Run(context.Background(), []string{"setup"}); err != nil {
				t.Fatalf("expected setup to succeed, got %v", err)
			}

			tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
			tu.AssertFileExists(t, filepath.Join(dir, runner.config.Database.Path))
		})
	})
}
