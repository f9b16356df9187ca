// Package scenarios runs YAML-described coordinator scenarios: a sequence of
// inbound messages and job operations, checked against the expected end state
// of the stores. Each .yaml file in this directory is one scenario.
package scenarios

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MessageDef is one inbound message. Payload holds a structured body that is
// re-encoded as JSON before delivery; Raw carries a verbatim body for
// malformed-payload cases.
type MessageDef struct {
	Topic   string         `yaml:"topic"`
	Payload map[string]any `yaml:"payload,omitempty"`
	Raw     string         `yaml:"raw,omitempty"`
}

// Body returns the wire payload for the message.
func (m MessageDef) Body() ([]byte, error) {
	if m.Raw != "" {
		return []byte(m.Raw), nil
	}
	return json.Marshal(m.Payload)
}

// ResponseDef is a job response synthesized after the job is created, since
// job identifiers are only known at runtime.
type ResponseDef struct {
	Vehicle string `yaml:"vehicle"`
	Status  string `yaml:"status"`
	Message string `yaml:"message,omitempty"`
}

// JobDef describes a job to create and the responses its targets send back.
// Status, when set, is the expected job status once all responses are in.
type JobDef struct {
	Type      string         `yaml:"type"`
	Targets   []string       `yaml:"targets"`
	Params    map[string]any `yaml:"params,omitempty"`
	Responses []ResponseDef  `yaml:"responses,omitempty"`
	Status    string         `yaml:"status,omitempty"`
}

// Expected is the end state asserted after all messages and jobs ran.
type Expected struct {
	Vehicles       int `yaml:"vehicles"`
	Infrastructure int `yaml:"infrastructure"`
	Emergencies    int `yaml:"emergencies"`
	Drops          int `yaml:"drops"`
	Assignments    int `yaml:"assignments"`
}

// Scenario is one self-contained coordinator exercise.
type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	HistorySize int          `yaml:"history_size,omitempty"`
	Messages    []MessageDef `yaml:"messages"`
	Jobs        []JobDef     `yaml:"jobs,omitempty"`
	Expected    Expected     `yaml:"expected"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	return &sc, nil
}
