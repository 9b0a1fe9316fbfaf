package task

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func TestFailure_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	var err error = &Failure{Task: "lb_list.py", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	var f *Failure
	if !errors.As(err, &f) || f.Task != "lb_list.py" {
		t.Errorf("expected Failure for lb_list.py, got %+v", f)
	}
	if !strings.Contains(err.Error(), "lb_list.py") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestFunc(t *testing.T) {
	called := false
	tk := Of("noop", func(ctx context.Context) error {
		called = true
		return nil
	})
	if tk.Name() != "noop" {
		t.Errorf("Name: got %q", tk.Name())
	}
	if err := tk.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !called {
		t.Error("function was not called")
	}
}

func TestTemplate_Bind(t *testing.T) {
	tpl := Template{
		Name:    "insert_usage.py",
		Program: "python3",
		Args:    []string{"insert_usage.py", "{date}", "{unknown}"},
		Dir:     "/opt/collectors",
		Env:     []string{"OCI_REGION=ap-seoul-1"},
	}
	c := tpl.Bind(map[string]string{"date": "2025-01-01"})

	if c.Name() != "insert_usage.py" {
		t.Errorf("Name: got %q", c.Name())
	}
	want := []string{"insert_usage.py", "2025-01-01", "{unknown}"}
	if strings.Join(c.Args, ",") != strings.Join(want, ",") {
		t.Errorf("Args: got %v, want %v", c.Args, want)
	}
	if c.Dir != "/opt/collectors" || len(c.Env) != 1 {
		t.Errorf("unexpected command: %+v", c)
	}
	if tpl.Args[1] != "{date}" {
		t.Error("Bind must not modify the template")
	}
}

func TestCommand_Run(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	var out bytes.Buffer
	c := &Command{
		Program: "sh",
		Args:    []string{"-c", "echo $GREETING"},
		Env:     []string{"GREETING=hello"},
		Stdout:  &out,
	}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out.String()) != "hello" {
		t.Errorf("unexpected output: %q", out.String())
	}
	if c.Name() != "sh" {
		t.Errorf("Name should default to program, got %q", c.Name())
	}
}

func TestCommand_Run_ExitStatus(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	var stderr bytes.Buffer
	c := &Command{Program: "sh", Args: []string{"-c", "exit 3"}, Stderr: &stderr}
	err := c.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status 3") {
		t.Errorf("expected exit status in error, got %v", err)
	}
}

func TestCommand_Run_MissingProgram(t *testing.T) {
	c := &Command{TaskName: "missing", Program: "/nonexistent/program"}
	if err := c.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing program")
	}
}
