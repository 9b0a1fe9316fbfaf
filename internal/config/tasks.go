package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	yaml "go.yaml.in/yaml/v3"

	"github.com/crucial707/oci-dispatch/internal/cadence"
)

// TaskFile describes what the dispatcher runs and when.
//
// Example:
//
//	groups:
//	  - name: inventory
//	    cadence: every:5
//	    tasks:
//	      - script: instance_list.py
//	  - name: usage
//	    cadence: daily:01:00
//	    tasks:
//	      - script: insert_usage.py
//	        args: ["{yesterday}"]
//	usage:
//	  script: insert_usage.py
//	  args: ["{date}"]
type TaskFile struct {
	Groups []GroupSpec `yaml:"groups"`
	// Usage is the per-date task used by backfill and insert-usage. Its args
	// must reference {date}.
	Usage TaskSpec `yaml:"usage"`
}

// GroupSpec is one cadence and its ordered tasks.
type GroupSpec struct {
	Name    string     `yaml:"name"`
	Cadence string     `yaml:"cadence"`
	Tasks   []TaskSpec `yaml:"tasks"`
}

// TaskSpec is one external command. Script is run with the configured Python
// interpreter; Program runs any other executable.
type TaskSpec struct {
	Name    string   `yaml:"name,omitempty"`
	Script  string   `yaml:"script,omitempty"`
	Program string   `yaml:"program,omitempty"`
	Args    []string `yaml:"args,omitempty"`
	Env     []string `yaml:"env,omitempty"`
}

// DisplayName is Name, or the script/program when Name is empty.
func (t TaskSpec) DisplayName() string {
	switch {
	case t.Name != "":
		return t.Name
	case t.Script != "":
		return t.Script
	}
	return t.Program
}

// DefaultTaskFile is the schedule used when no TASKS_FILE is configured.
func DefaultTaskFile() TaskFile {
	scripts := func(names ...string) []TaskSpec {
		out := make([]TaskSpec, 0, len(names))
		for _, n := range names {
			out = append(out, TaskSpec{Script: n})
		}
		return out
	}
	return TaskFile{
		Groups: []GroupSpec{
			{Name: "every-minute", Cadence: "tick", Tasks: scripts("adb_list.py")},
			{Name: "inventory", Cadence: "every:5", Tasks: scripts(
				"instance_list.py",
				"instance_volume.py",
				"dbcs_backup.py",
				"dbcs_list.py",
				"filesystem_list.py",
				"lb_list.py",
				"adb_backup.py",
			)},
			{Name: "usage", Cadence: "daily:01:00", Tasks: []TaskSpec{
				{Script: "insert_usage.py", Args: []string{"{yesterday}"}},
			}},
		},
		Usage: TaskSpec{Script: "insert_usage.py", Args: []string{"{date}"}},
	}
}

// LoadTaskFile returns DefaultTaskFile when path is empty, otherwise the parsed file.
func LoadTaskFile(path string) (TaskFile, error) {
	if path == "" {
		return DefaultTaskFile(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return TaskFile{}, fmt.Errorf("open tasks file: %w", err)
	}
	defer f.Close()
	tf, err := ParseTaskFile(f)
	if err != nil {
		return TaskFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return tf, nil
}

// ParseTaskFile decodes and validates a YAML task file. Unknown keys are rejected.
// A file without a usage section keeps the default usage task.
func ParseTaskFile(r io.Reader) (TaskFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return TaskFile{}, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var tf TaskFile
	if err := dec.Decode(&tf); err != nil && !errors.Is(err, io.EOF) {
		return TaskFile{}, fmt.Errorf("yaml decode: %w", err)
	}
	if tf.Usage.Script == "" && tf.Usage.Program == "" {
		tf.Usage = DefaultTaskFile().Usage
	}
	if err := tf.Validate(); err != nil {
		return TaskFile{}, err
	}
	return tf, nil
}

// Validate checks every group has a name, a parseable cadence, and at least one task.
func (tf TaskFile) Validate() error {
	var errs []error
	seen := make(map[string]bool)
	for i, g := range tf.Groups {
		if g.Name == "" {
			errs = append(errs, fmt.Errorf("groups[%d]: name is required", i))
		} else if seen[g.Name] {
			errs = append(errs, fmt.Errorf("groups[%d]: duplicate name %q", i, g.Name))
		}
		seen[g.Name] = true
		if _, err := cadence.Parse(g.Cadence); err != nil {
			errs = append(errs, fmt.Errorf("groups[%d]: %w", i, err))
		}
		if len(g.Tasks) == 0 {
			errs = append(errs, fmt.Errorf("groups[%d]: at least one task is required", i))
		}
		for j, t := range g.Tasks {
			if err := t.validate(); err != nil {
				errs = append(errs, fmt.Errorf("groups[%d].tasks[%d]: %w", i, j, err))
			}
		}
	}
	if err := tf.Usage.validate(); err != nil {
		errs = append(errs, fmt.Errorf("usage: %w", err))
	} else if !strings.Contains(strings.Join(tf.Usage.Args, " "), "{date}") {
		errs = append(errs, errors.New("usage: args must contain {date}"))
	}
	return errors.Join(errs...)
}

func (t TaskSpec) validate() error {
	if (t.Script == "") == (t.Program == "") {
		return errors.New("exactly one of script or program is required")
	}
	return nil
}
