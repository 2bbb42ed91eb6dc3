// Package testkit provides a JSON-scenario-driven testing framework for
// event listeners.
//
// Each scenario is a JSON file that describes:
//   - The event to dispatch (name, subject, arguments)
//   - The listeners expected to run, in order
//   - Whether propagation should end stopped, or the dispatch should fail
//   - The arguments the listeners should leave behind
//   - Mock listeners to add for the duration of the scenario
//
// Scenario files live next to your *_test.go files:
//
//	testdata/
//	  user_created.json
//	  order_placed_stopped.json
//
// Example _test.go:
//
//	func TestListeners(t *testing.T) {
//	    tracer := trace.New()
//	    bus := event.NewBus(tracer.Options()...)
//	    app.Register(bus)
//	    testkit.RunDir(t, bus, tracer, "testdata")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ─── Schema ───────────────────────────────────────────────────────────────────

// Scenario describes a single dispatch test case loaded from a JSON file.
type Scenario struct {
	// Meta
	Name        string `json:"name"`
	Description string `json:"description"`

	// Dispatch
	Event     string         `json:"event"`     // e.g. user.created
	Subject   any            `json:"subject"`   // GenericEvent subject
	Arguments map[string]any `json:"arguments"` // GenericEvent arguments

	// Assertions
	ExpectedCalls     []string       `json:"expectedCalls"`     // listener descriptions, in call order
	ExpectStopped     bool           `json:"expectStopped"`     // propagation stopped at the end
	ExpectedError     string         `json:"expectedError"`     // substring of the dispatch error
	ExpectedArguments map[string]any `json:"expectedArguments"` // compared after JSON normalisation

	// Mock listeners, added before the dispatch and removed after.
	MockListeners []MockStep `json:"mockListeners"`
}

// MockStep adds one MockListener to the bus for a scenario.
type MockStep struct {
	Name     string `json:"name"`
	Event    string `json:"event"` // defaults to the scenario event
	Priority int    `json:"priority"`

	// Stop makes the mock stop propagation.
	Stop bool `json:"stop"`

	// Error, when set, is returned by the mock.
	Error string `json:"error"`

	// ExpectCalled fails the scenario if the mock did not run.
	ExpectCalled bool `json:"expectCalled"`
}

// ─── Loading ──────────────────────────────────────────────────────────────────

// LoadScenario reads and validates a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}
	return &s, nil
}

// validate performs basic sanity checks on the loaded scenario.
func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Event == "" {
		return fmt.Errorf("event is required")
	}
	for i := range s.MockListeners {
		step := &s.MockListeners[i]
		if step.Name == "" {
			return fmt.Errorf("mockListeners[%d].name is required", i)
		}
		if step.Event == "" {
			step.Event = s.Event
		}
	}
	return nil
}

// LoadAllFromDir loads every *.json file in dir as a Scenario.
// Files that fail to parse are collected as errors, not panicked.
func LoadAllFromDir(dir string) ([]*Scenario, []error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		return nil, []error{fmt.Errorf("testkit: no scenario files found in %q", dir)}
	}

	var (
		scenarios []*Scenario
		errs      []error
	)
	for _, path := range entries {
		s, err := LoadScenario(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, errs
}
