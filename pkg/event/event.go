package event

// Event is the payload passed through a dispatch. Custom events embed
// BaseEvent to satisfy it:
//
//	type OrderPlaced struct {
//	    event.BaseEvent
//	    OrderID uint
//	}
type Event interface {
	Name() string
	SetName(name string)

	StopPropagation()
	IsPropagationStopped() bool

	// Dispatcher is only valid while the event is being dispatched.
	Dispatcher() Dispatcher
	SetDispatcher(d Dispatcher)
}

// BaseEvent is the bare event: a name, a propagation flag and the
// dispatcher currently delivering it.
type BaseEvent struct {
	name       string
	stopped    bool
	dispatcher Dispatcher
}

// NewEvent returns an empty event, as created by Dispatch when none is given.
func NewEvent() *BaseEvent {
	return &BaseEvent{}
}

func (e *BaseEvent) Name() string        { return e.name }
func (e *BaseEvent) SetName(name string) { e.name = name }

// StopPropagation prevents lower-priority listeners from running for the
// current dispatch.
func (e *BaseEvent) StopPropagation() { e.stopped = true }

func (e *BaseEvent) IsPropagationStopped() bool { return e.stopped }

func (e *BaseEvent) Dispatcher() Dispatcher     { return e.dispatcher }
func (e *BaseEvent) SetDispatcher(d Dispatcher) { e.dispatcher = d }
