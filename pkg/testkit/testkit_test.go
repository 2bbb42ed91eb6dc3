package testkit_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-events/pkg/event"
	"github.com/shashiranjanraj/kashvi-events/pkg/event/trace"
	"github.com/shashiranjanraj/kashvi-events/pkg/logger"
	"github.com/shashiranjanraj/kashvi-events/pkg/testkit"
)

func newTracedBus() (*event.Bus, *trace.Tracer) {
	tracer := trace.New(trace.WithLogger(logger.Discard()))
	bus := event.NewBus(append(tracer.Options(), event.WithLogger(logger.Discard()))...)
	return bus, tracer
}

func TestRunDir(t *testing.T) {
	bus, tracer := newTracedBus()
	rec := testkit.NewRecorder()

	bus.AddListener("user.created", rec.Probe("welcome"), 10)
	bus.AddListener("user.created", rec.Probe("stats"), 0)

	testkit.RunDir(t, bus, tracer, "testdata")

	// Mock listeners are gone once their scenario ends.
	assert.Len(t, bus.Listeners("user.created"), 2)
}

func TestLoadScenario_Validation(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0644))
		return p
	}

	_, err := testkit.LoadScenario(write("noname.json", `{"event": "x"}`))
	assert.ErrorContains(t, err, "name is required")

	_, err = testkit.LoadScenario(write("noevent.json", `{"name": "n"}`))
	assert.ErrorContains(t, err, "event is required")

	_, err = testkit.LoadScenario(write("bad.json", `{`))
	assert.ErrorContains(t, err, "parse")

	s, err := testkit.LoadScenario(write("ok.json", `{"name": "n", "event": "x", "mockListeners": [{"name": "m"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "x", s.MockListeners[0].Event, "mock event defaults to the scenario event")
}

func TestLoadAllFromDir(t *testing.T) {
	scenarios, errs := testkit.LoadAllFromDir("testdata")
	assert.Empty(t, errs)
	assert.Len(t, scenarios, 3)

	_, errs = testkit.LoadAllFromDir(t.TempDir())
	assert.Len(t, errs, 1)
}

func TestRecorder(t *testing.T) {
	bus, _ := newTracedBus()
	rec := testkit.NewRecorder()
	boom := errors.New("boom")

	first := rec.Probe("first")
	bus.AddListener("x", first, 10)
	bus.AddListener("x", rec.Probe("second").Failing(boom), 5)
	bus.AddListener("x", rec.Probe("third"), 0)

	testkit.AssertListenerOrder(t, bus, "none")

	_, err := bus.Dispatch("x", nil)
	assert.ErrorIs(t, err, boom)
	testkit.AssertCalls(t, rec, "first", "second")

	rec.Reset()
	testkit.AssertCalls(t, rec)
	assert.Equal(t, "probe::first", event.Describe(first))
}

func TestMockListener(t *testing.T) {
	bus, tracer := newTracedBus()
	m := testkit.NewMockListener("audit")
	bus.AddListener("user.created", m, 0)

	_, err := bus.Dispatch("user.created", nil)
	require.NoError(t, err)

	m.AssertCalled(t, "HandleEvent", mock.Anything, "user.created")
	assert.Equal(t, 1, m.WasCalled())
	testkit.AssertTraced(t, tracer, "mock::audit")

	m.Reset()
	assert.Zero(t, m.WasCalled())
	m.AssertNotCalled(t, "HandleEvent", mock.Anything, "user.created")
}
