// Where: internal/command/app_test.go
// What: Tests for CLI run behavior.
// Why: Ensure command routing remains stable.
package command

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunNoArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	code := Run(nil, Dependencies{Out: &out})
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	for _, want := range []string{"deploy", "package", "init"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("usage missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunVersionCommand(t *testing.T) {
	var out bytes.Buffer
	code := Run([]string{"version"}, Dependencies{Out: &out})
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(out.String()) == "" {
		t.Fatalf("expected version output")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	code := Run([]string{"frobnicate"}, Dependencies{Out: &out})
	if code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "✗") {
		t.Fatalf("expected error output:\n%s", out.String())
	}
}

func TestRunParseErrorMissingEnvValue(t *testing.T) {
	var out bytes.Buffer
	code := Run([]string{"deploy", "-e"}, Dependencies{Out: &out})
	if code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "expects a value") {
		t.Fatalf("expected friendly parse message:\n%s", out.String())
	}
}

func TestRunDeployRoutesToInputResolution(t *testing.T) {
	pinEnv(t)
	dir := t.TempDir()
	var out bytes.Buffer
	deps := Dependencies{
		Out:        &out,
		ProjectDir: func() (string, error) { return dir, nil },
	}

	code := Run([]string{"deploy"}, deps)
	if code != 1 {
		t.Fatalf("exit code = %d, output:\n%s", code, out.String())
	}
	if !strings.Contains(out.String(), "function name is required") {
		t.Fatalf("expected name resolution error:\n%s", out.String())
	}
}

func TestCommandName(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bare command", []string{"deploy"}, "deploy"},
		{"global flag with value", []string{"-e", "prod", "deploy"}, "deploy"},
		{"long flag with value", []string{"--env", "prod", "package"}, "package"},
		{"value-less flag skipped", []string{"--skip-install", "package"}, "package"},
		{"region flag consumed", []string{"-r", "us-east-1", "deploy"}, "deploy"},
		{"flags only", []string{"-e", "prod"}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := commandName(tt.args); got != tt.want {
				t.Fatalf("commandName(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}
