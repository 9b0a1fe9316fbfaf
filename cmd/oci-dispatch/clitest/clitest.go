// Package clitest sets up an isolated environment for command tests.
package clitest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/root"
)

// Env points the config at a temp script directory holding tasksYAML and
// returns that directory. No env file is read and no database is used.
func Env(t *testing.T, tasksYAML string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.yaml")
	if err := os.WriteFile(path, []byte(tasksYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DISPATCH_ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("SCRIPT_DIR", dir)
	t.Setenv("TASKS_FILE", path)
	t.Setenv("RECORD_RUNS", "false")
	t.Setenv("METRICS_TEXTFILE", "")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

// At fixes root.Now for the duration of the test.
func At(t *testing.T, now time.Time) {
	t.Helper()
	prev := root.Now
	root.Now = func() time.Time { return now }
	t.Cleanup(func() { root.Now = prev })
}

// Run executes cmd with args and returns what it wrote to stdout.
func Run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// Lines returns the non-empty lines of the file name in dir.
func Lines(t *testing.T, dir, name string) []string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	return strings.Fields(string(b))
}
