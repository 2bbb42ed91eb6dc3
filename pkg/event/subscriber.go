package event

import (
	"fmt"
	"reflect"
	"sort"

	"go.uber.org/multierr"
)

// Subscriber declares a batch of listeners. SubscribedEvents must be free
// of side effects: it is called on both AddSubscriber and RemoveSubscriber.
//
// Each value of the descriptor map is one of
//
//	"OnCreated"                              method, priority 0
//	[]any{"OnCreated", 5}                    method and priority
//	[]any{"OnCreated"}                       method, priority 0
//	[]any{[]any{"Audit", -10}, "OnCreated"}  several of the above
//
// Subscription, []Subscription and []string are accepted as well. Other
// shapes are skipped. Methods must be exported.
type Subscriber interface {
	SubscribedEvents() map[string]any
}

// Subscription is one normalized descriptor entry.
type Subscription struct {
	Event    string
	Method   string
	Priority int
}

// Normalize expands the descriptor of s, skipping unsupported shapes.
func Normalize(s Subscriber) []Subscription {
	subs, _ := Inspect(s)
	return subs
}

// Inspect expands the descriptor of s like Normalize and also reports every
// skipped entry as a *DescriptorError, combined with multierr.
func Inspect(s Subscriber) ([]Subscription, error) {
	desc := s.SubscribedEvents()

	names := make([]string, 0, len(desc))
	for name := range desc {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		out  []Subscription
		errs error
	)
	for _, name := range names {
		subs, ok := normalizeValue(name, desc[name])
		if !ok {
			errs = multierr.Append(errs, &DescriptorError{
				Subscriber: fmt.Sprintf("%T", s),
				Event:      name,
				Value:      desc[name],
			})
			continue
		}
		out = append(out, subs...)
	}
	return out, errs
}

func normalizeValue(name string, v any) ([]Subscription, bool) {
	switch x := v.(type) {
	case string:
		return []Subscription{{Event: name, Method: x}}, x != ""
	case Subscription:
		x.Event = name
		return []Subscription{x}, x.Method != ""
	case []Subscription:
		out := make([]Subscription, 0, len(x))
		for _, sub := range x {
			if sub.Method == "" {
				return nil, false
			}
			sub.Event = name
			out = append(out, sub)
		}
		return out, true
	case []string:
		out := make([]Subscription, 0, len(x))
		for _, m := range x {
			if m == "" {
				return nil, false
			}
			out = append(out, Subscription{Event: name, Method: m})
		}
		return out, true
	case []any:
		if sub, ok := normalizePair(name, x); ok {
			return []Subscription{sub}, true
		}
		out := make([]Subscription, 0, len(x))
		for _, el := range x {
			var (
				sub Subscription
				ok  bool
			)
			switch el := el.(type) {
			case string:
				sub, ok = Subscription{Event: name, Method: el}, el != ""
			case []any:
				sub, ok = normalizePair(name, el)
			case Subscription:
				el.Event = name
				sub, ok = el, el.Method != ""
			}
			if !ok {
				return nil, false
			}
			out = append(out, sub)
		}
		return out, true
	}
	return nil, false
}

// normalizePair accepts {method} and {method, priority}.
func normalizePair(name string, x []any) (Subscription, bool) {
	if len(x) == 0 || len(x) > 2 {
		return Subscription{}, false
	}
	method, ok := x[0].(string)
	if !ok || method == "" {
		return Subscription{}, false
	}
	sub := Subscription{Event: name, Method: method}
	if len(x) == 2 {
		p, ok := toInt(x[1])
		if !ok {
			return Subscription{}, false
		}
		sub.Priority = p
	}
	return sub, true
}

func toInt(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true
	}
	return 0, false
}

// AddSubscriber registers every listener declared by s. Each listener is
// Bind(s, method).
func (b *Bus) AddSubscriber(s Subscriber) {
	subs, err := Inspect(s)
	if err != nil {
		b.log.Debug("event: skipped subscriber descriptor entries",
			"subscriber", fmt.Sprintf("%T", s),
			"error", err,
		)
	}
	for _, sub := range subs {
		b.AddListener(sub.Event, Bind(s, sub.Method), sub.Priority)
	}
}

// RemoveSubscriber removes the listeners AddSubscriber registered for s.
func (b *Bus) RemoveSubscriber(s Subscriber) {
	for _, sub := range Normalize(s) {
		b.RemoveListener(sub.Event, Bind(s, sub.Method))
	}
}
