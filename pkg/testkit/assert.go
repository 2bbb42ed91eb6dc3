package testkit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-events/pkg/event"
	"github.com/shashiranjanraj/kashvi-events/pkg/event/trace"
)

// AssertCalls checks the tags recorded by r, in order.
func AssertCalls(t *testing.T, r *Recorder, tags ...string) {
	t.Helper()
	if len(tags) == 0 {
		assert.Empty(t, r.Calls(), "expected no probe to run")
		return
	}
	assert.Equal(t, tags, r.Calls(), "probe call order mismatch")
}

// AssertListenerOrder checks that d returns exactly listeners for name, in
// call order.
func AssertListenerOrder(t *testing.T, d event.Dispatcher, name string, listeners ...any) {
	t.Helper()
	if listeners == nil {
		listeners = []any{}
	}
	assert.Equal(t, listeners, d.Listeners(name), "[%s] listener order mismatch", name)
}

// AssertTraced checks the listener descriptions recorded by tracer, in order.
func AssertTraced(t *testing.T, tracer *trace.Tracer, expected ...string) {
	t.Helper()
	got := make([]string, 0, len(expected))
	for _, c := range tracer.Called() {
		got = append(got, c.Listener)
	}
	if len(expected) == 0 {
		assert.Empty(t, got, "expected no listener to run")
		return
	}
	assert.Equal(t, expected, got, "traced listener order mismatch")
}

// AssertArguments deep-compares the arguments of e against expected after
// normalising both through JSON, so integer widths never matter.
func AssertArguments(t *testing.T, scenario *Scenario, expected map[string]any, e *event.GenericEvent) {
	t.Helper()
	if len(expected) == 0 {
		return
	}

	actual := make(map[string]any, e.Arguments().Len())
	for k, v := range e.All() {
		if _, ok := expected[k]; ok {
			actual[k] = v.Interface()
		}
	}

	assert.Equal(t, normalizeJSON(t, scenario, expected), normalizeJSON(t, scenario, actual),
		"[%s] arguments mismatch", scenario.Name)
}

func normalizeJSON(t *testing.T, scenario *Scenario, v any) any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err, "[%s] arguments are not JSON-encodable", scenario.Name)

	var out any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}
