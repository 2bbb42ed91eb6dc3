package event

import "iter"

// GenericEvent carries a subject and named arguments for listeners that do
// not warrant their own event type.
//
//	e := event.NewGenericEvent(user, nil)
//	e.SetArgument("source", "signup")
//	bus.Dispatch("user.created", e)
type GenericEvent struct {
	BaseEvent

	subject any
	args    *Arguments
}

// NewGenericEvent creates an event for subject. A nil args starts empty.
func NewGenericEvent(subject any, args *Arguments) *GenericEvent {
	if args == nil {
		args = NewArguments()
	}
	return &GenericEvent{subject: subject, args: args}
}

func (e *GenericEvent) Subject() any { return e.subject }

// Argument returns the value stored under key or an *ArgumentNotFoundError.
func (e *GenericEvent) Argument(key string) (Value, error) {
	v, ok := e.args.Get(key)
	if !ok {
		return Value{}, &ArgumentNotFoundError{Event: e.Name(), Key: key}
	}
	return v, nil
}

// SetArgument stores x under key, converted with ValueOf.
func (e *GenericEvent) SetArgument(key string, x any) {
	e.args.Set(key, x)
}

func (e *GenericEvent) HasArgument(key string) bool {
	return e.args.Has(key)
}

// UnsetArgument removes key; a missing key is ignored.
func (e *GenericEvent) UnsetArgument(key string) {
	e.args.Delete(key)
}

// SetArguments replaces the whole argument map.
func (e *GenericEvent) SetArguments(args *Arguments) {
	if args == nil {
		args = NewArguments()
	}
	e.args = args
}

// Arguments returns the live argument map, not a copy.
func (e *GenericEvent) Arguments() *Arguments {
	return e.args
}

// All iterates the arguments in insertion order, observing changes made
// while iterating.
func (e *GenericEvent) All() iter.Seq2[string, Value] {
	return e.args.All()
}
