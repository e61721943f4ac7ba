// Package testutil provides shared test helpers for calc tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ScenariosDir is the scenarios directory relative to the module root.
const ScenariosDir = "testdata/scenarios"

// Scenario is one conformance case loaded from a scenario.json file.
type Scenario struct {
	// Cmd is a calc command line without the program name, for example
	// ["run", "main.calc", "--keep-going"].
	Cmd    []string       `json:"cmd"`
	Meta   *ScenarioMeta  `json:"meta,omitempty"`
	Expect ExpectedResult `json:"expect"`
}

// ScenarioMeta holds optional scenario metadata.
type ScenarioMeta struct {
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ExpectedResult describes the expected outcome of running a scenario.
type ExpectedResult struct {
	ExitCode int `json:"exitCode"`

	// StdoutJSONLines holds one JSON subset per printed result line.
	StdoutJSONLines []json.RawMessage `json:"stdoutJsonLines,omitempty"`

	StdoutText     *string `json:"stdoutText,omitempty"`
	StdoutContains string  `json:"stdoutContains,omitempty"`

	// StderrJSONSubset lists diagnostics that must appear on stderr.
	StderrJSONSubset json.RawMessage `json:"stderrJsonSubset,omitempty"`
	StderrContains   string          `json:"stderrContains,omitempty"`

	// Bindings is the expected environment after a run.
	Bindings map[string]int32 `json:"bindings,omitempty"`
}

// Flag reports whether the scenario command carries the given flag.
func (s *Scenario) Flag(name string) bool {
	for _, arg := range s.Cmd {
		if arg == name {
			return true
		}
	}
	return false
}

// LoadScenario loads a scenario from a directory containing scenario.json.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.json"))
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	if len(s.Cmd) == 0 {
		return nil, fmt.Errorf("%s: empty cmd", dir)
	}
	return &s, nil
}

// ListScenarios returns all scenario directories under root, sorted by name.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), "scenario.json")); err == nil {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ReadProgramFile reads the program file named by the second cmd element.
func ReadProgramFile(scenarioDir string, cmd []string) (string, string, error) {
	if len(cmd) < 2 {
		return "", "", fmt.Errorf("cmd %v names no program file", cmd)
	}
	filename := cmd[1]
	source, err := os.ReadFile(filepath.Join(scenarioDir, filename))
	if err != nil {
		return "", "", err
	}
	return string(source), filename, nil
}

// IsSubset reports whether expected is contained in actual. Both are decoded
// JSON values. Objects match when every expected key matches; arrays match
// element-wise over the expected prefix.
func IsSubset(expected, actual any) bool {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range e {
			av, exists := a[k]
			if !exists || !IsSubset(ev, av) {
				return false
			}
		}
		return true
	case []any:
		a, ok := actual.([]any)
		if !ok || len(e) > len(a) {
			return false
		}
		for i, ev := range e {
			if !IsSubset(ev, a[i]) {
				return false
			}
		}
		return true
	default:
		return expected == actual
	}
}
