package testkit

import "github.com/shashiranjanraj/kashvi-events/pkg/event"

// Recorder collects the tags of the probes it hands out, in call order.
//
//	rec := testkit.NewRecorder()
//	bus.AddListener("x", rec.Probe("first"), 10)
//	bus.AddListener("x", rec.Probe("second").Stopping(), 0)
type Recorder struct {
	calls []string
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Probe returns a new listener recording tag. Every call returns a distinct
// listener, even for the same tag.
func (r *Recorder) Probe(tag string) *Probe {
	return &Probe{rec: r, Tag: tag}
}

// Calls returns the recorded tags.
func (r *Recorder) Calls() []string {
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Reset forgets the recorded calls.
func (r *Recorder) Reset() { r.calls = nil }

// Probe is a listener that reports to its Recorder.
type Probe struct {
	rec *Recorder
	Tag string

	stop bool
	err  error
}

// Stopping makes the probe stop propagation after recording.
func (p *Probe) Stopping() *Probe {
	p.stop = true
	return p
}

// Failing makes the probe return err after recording.
func (p *Probe) Failing(err error) *Probe {
	p.err = err
	return p
}

// HandleEvent implements event.Handler.
func (p *Probe) HandleEvent(e event.Event, _ string, _ event.Dispatcher) error {
	p.rec.calls = append(p.rec.calls, p.Tag)
	if p.stop {
		e.StopPropagation()
	}
	return p.err
}

func (p *Probe) String() string { return "probe::" + p.Tag }
