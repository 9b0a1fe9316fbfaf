package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command runs an external program, typically one of the collector scripts
// (e.g. "python3 instance_list.py"). Output goes to Stdout/Stderr, defaulting to the process's own.
type Command struct {
	TaskName string
	Program  string
	Args     []string
	Dir      string
	// Env is appended to the current process environment.
	Env []string

	Stdout io.Writer
	Stderr io.Writer
}

func (c *Command) Name() string {
	if c.TaskName != "" {
		return c.TaskName
	}
	return c.Program
}

// Run blocks until the program exits. A non-zero exit status is returned as an error carrying the code.
func (c *Command) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdout = c.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = c.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with status %d", c.String(), exitErr.ExitCode())
		}
		return fmt.Errorf("%s: %w", c.String(), err)
	}
	return nil
}

func (c *Command) String() string {
	return strings.TrimSpace(c.Program + " " + strings.Join(c.Args, " "))
}

// Template is a Command whose arguments may contain {placeholders},
// filled in per invocation (e.g. {date} for the usage script).
type Template struct {
	Name    string
	Program string
	Args    []string
	Dir     string
	Env     []string
}

// Bind returns a Command with every {key} in Args replaced by vars[key].
// Unknown placeholders are left as-is.
func (t Template) Bind(vars map[string]string) *Command {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		for k, v := range vars {
			a = strings.ReplaceAll(a, "{"+k+"}", v)
		}
		args[i] = a
	}
	name := t.Name
	if name == "" {
		name = t.Program
	}
	return &Command{
		TaskName: name,
		Program:  t.Program,
		Args:     args,
		Dir:      t.Dir,
		Env:      append([]string(nil), t.Env...),
	}
}
