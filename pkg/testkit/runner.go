package testkit

// Run() executes a single scenario against a bus.
// RunDir() discovers all *.json files in a directory and runs them as subtests.

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/kashvi-events/pkg/event"
	"github.com/shashiranjanraj/kashvi-events/pkg/event/trace"
)

// ─── Public API ───────────────────────────────────────────────────────────────

// Run executes a single scenario from a JSON file against bus. tracer must
// be the one installed on bus with tracer.Options().
//
// Lifecycle per scenario:
//  1. Load the scenario JSON file.
//  2. Add the scenario's mock listeners.
//  3. Reset the tracer.
//  4. Dispatch a GenericEvent built from subject and arguments.
//  5. Assert the error, the propagation flag and the traced calls.
//  6. Assert the arguments left on the event.
//  7. Verify mock listeners expected to run did run, and remove them.
func Run(t *testing.T, bus *event.Bus, tracer *trace.Tracer, scenarioPath string) {
	t.Helper()

	s, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", scenarioPath, err)
	}

	t.Run(s.Name, func(t *testing.T) {
		runScenario(t, bus, tracer, s)
	})
}

// RunDir discovers every *.json file in dir and runs each as a t.Run subtest.
// Scenario files that fail to parse are reported as test failures (not fatal).
func RunDir(t *testing.T, bus *event.Bus, tracer *trace.Tracer, dir string) {
	t.Helper()

	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("testkit: no scenario files found in %q", dir)
	}

	for _, path := range entries {
		s, err := LoadScenario(path)
		if err != nil {
			t.Errorf("testkit: load %q: %v", path, err)
			continue
		}

		t.Run(s.Name, func(t *testing.T) {
			runScenario(t, bus, tracer, s)
		})
	}
}

// ─── Internal execution ───────────────────────────────────────────────────────

func runScenario(t *testing.T, bus *event.Bus, tracer *trace.Tracer, s *Scenario) {
	t.Helper()

	// ── 1. Mock listeners ─────────────────────────────────────────────────

	mocks := make([]*MockListener, len(s.MockListeners))
	for i, step := range s.MockListeners {
		mocks[i] = newStepListener(step)
		bus.AddListener(step.Event, mocks[i], step.Priority)
	}
	defer func() {
		for i, step := range s.MockListeners {
			bus.RemoveListener(step.Event, mocks[i])
		}
	}()

	// ── 2. Dispatch ───────────────────────────────────────────────────────

	tracer.Reset()
	e := event.NewGenericEvent(s.Subject, event.ArgumentsOf(s.Arguments))
	_, err := bus.Dispatch(s.Event, e)

	// ── 3. Outcome ────────────────────────────────────────────────────────

	if s.ExpectedError != "" {
		if assert.Error(t, err, "[%s] expected the dispatch to fail", s.Name) {
			assert.Contains(t, err.Error(), s.ExpectedError, "[%s] dispatch error mismatch", s.Name)
		}
	} else {
		assert.NoError(t, err, "[%s] dispatch failed", s.Name)
	}
	assert.Equal(t, s.ExpectStopped, e.IsPropagationStopped(), "[%s] propagation flag mismatch", s.Name)

	if s.ExpectedCalls != nil {
		AssertTraced(t, tracer, s.ExpectedCalls...)
	}

	// ── 4. Arguments ──────────────────────────────────────────────────────

	AssertArguments(t, s, s.ExpectedArguments, e)

	// ── 5. Mocks ──────────────────────────────────────────────────────────

	for i, step := range s.MockListeners {
		if step.ExpectCalled {
			assert.NotZero(t, mocks[i].WasCalled(), "[%s] mock %q was never called", s.Name, step.Name)
		}
	}
}

// ─── Debug helpers ────────────────────────────────────────────────────────────

// DumpScenario prints a human-readable summary of the scenario to stdout.
// Useful during test development to inspect what was loaded.
func DumpScenario(s *Scenario) {
	fmt.Printf("Scenario: %s\n", s.Name)
	fmt.Printf("  dispatch %s (subject=%v)\n", s.Event, s.Subject)
	fmt.Printf("  expectedCalls: %v  stopped: %v  error: %q\n", s.ExpectedCalls, s.ExpectStopped, s.ExpectedError)
	for i, step := range s.MockListeners {
		fmt.Printf("  mockListener[%d]: name=%s  event=%s  priority=%d  stop=%v\n",
			i, step.Name, step.Event, step.Priority, step.Stop)
	}
}
