package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AnatoleLucet/sigstore/gantt"
)

// chartFile is the YAML layout read by every command.
type chartFile struct {
	gantt.Config `yaml:",inline"`

	Commands []commandSpec `yaml:"commands,omitempty"`
}

// commandSpec is one scripted command, the fields used depend on the action.
type commandSpec struct {
	Action   gantt.Action `yaml:"action"`
	ID       int          `yaml:"id,omitempty"`
	Days     int          `yaml:"days,omitempty"`
	Toggle   bool         `yaml:"toggle,omitempty"`
	Task     *gantt.Task  `yaml:"task,omitempty"`
	Text     *string      `yaml:"text,omitempty"`
	Start    *time.Time   `yaml:"start,omitempty"`
	End      *time.Time   `yaml:"end,omitempty"`
	Duration *int         `yaml:"duration,omitempty"`
	Progress *int         `yaml:"progress,omitempty"`
}

func readChart(path string) (*chartFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chart: %w", err)
	}

	var f chartFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse chart %s: %w", path, err)
	}
	return &f, nil
}

func (c commandSpec) payload() (any, error) {
	switch c.Action {
	case gantt.ActionAddTask:
		if c.Task == nil {
			return nil, fmt.Errorf("%s: missing task", c.Action)
		}
		task := *c.Task
		return gantt.AddTask{Task: &task}, nil
	case gantt.ActionUpdateTask:
		return gantt.UpdateTask{ID: c.ID, Patch: gantt.TaskPatch{
			Text:     c.Text,
			Start:    c.Start,
			End:      c.End,
			Duration: c.Duration,
			Progress: c.Progress,
		}}, nil
	case gantt.ActionDeleteTask:
		return gantt.DeleteTask{ID: c.ID}, nil
	case gantt.ActionMoveTask:
		return gantt.MoveTask{ID: c.ID, Days: c.Days}, nil
	case gantt.ActionSelectTask:
		return gantt.SelectTask{ID: c.ID, Toggle: c.Toggle}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", c.Action)
	}
}

// openChart reads path and builds the store with the configured options.
func openChart(path string) (*gantt.Gantt, *chartFile, error) {
	f, err := readChart(path)
	if err != nil {
		return nil, nil, err
	}
	if err := applyOverrides(&f.Config); err != nil {
		return nil, nil, err
	}

	opts, err := storeOptions()
	if err != nil {
		return nil, nil, err
	}

	g, err := gantt.New(f.Config, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("build chart: %w", err)
	}
	return g, f, nil
}
