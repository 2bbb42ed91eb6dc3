package testkit

import (
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/shashiranjanraj/kashvi-events/pkg/event"
)

// ─── MockListener: testify-backed listener ────────────────────────────────────

// MockListener is a testify/mock-backed event.Handler. It records every call
// so testify assertions work naturally:
//
//	m := testkit.NewMockListener("audit")
//	bus.AddListener("user.created", m, 0)
//	bus.Dispatch("user.created", nil)
//	m.AssertCalled(t, "HandleEvent", mock.Anything, "user.created")
type MockListener struct {
	mock.Mock

	name  string
	mu    sync.Mutex
	calls int
}

// NewMockListener creates a MockListener pre-configured to return nil on
// any call.
func NewMockListener(name string) *MockListener {
	m := &MockListener{name: name}
	m.On("HandleEvent", mock.Anything, mock.Anything).Return(nil)
	return m
}

// newStepListener builds the mock described by a scenario step.
func newStepListener(step MockStep) *MockListener {
	m := &MockListener{name: step.Name}

	call := m.On("HandleEvent", mock.Anything, mock.Anything)
	if step.Stop {
		call = call.Run(func(args mock.Arguments) {
			args.Get(0).(event.Event).StopPropagation()
		})
	}
	if step.Error != "" {
		call.Return(errors.New(step.Error))
	} else {
		call.Return(nil)
	}
	return m
}

// HandleEvent records the call via testify and returns the configured value.
func (m *MockListener) HandleEvent(e event.Event, name string, _ event.Dispatcher) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	args := m.Called(e, name)
	if args.Get(0) == nil {
		return nil
	}
	return args.Error(0)
}

// String is the description used in traces and scenario expectations.
func (m *MockListener) String() string { return "mock::" + m.name }

// WasCalled returns how many times HandleEvent was called since the last Reset.
func (m *MockListener) WasCalled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Reset clears testify call records and the call counter. Expectations are
// kept.
func (m *MockListener) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = 0
	m.Calls = nil // clear testify history
}
