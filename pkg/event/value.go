package event

import (
	"fmt"
	"iter"
	"math"
	"reflect"
	"sort"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
	KindRef
)

var kindNames = [...]string{"null", "bool", "int", "float", "string", "list", "map", "ref"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a closed tagged variant used for GenericEvent arguments.
// The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	m    *Arguments
	ref  any
}

func Null() Value { return Value{} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Int(i int64) Value { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }
func Map(a *Arguments) Value { return Value{kind: KindMap, m: a} }
func Ref(v any) Value { return Value{kind: KindRef, ref: v} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// ValueOf converts a Go value into a Value. Scalars map onto their kind,
// []any and map[string]any are converted recursively (map keys sorted),
// anything else becomes an opaque reference.
func ValueOf(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Float(t)
	case []Value:
		return List(t...)
	case []any:
		out := make([]Value, len(t))
		for i, e := range t {
			out[i] = ValueOf(e)
		}
		return List(out...)
	case []string:
		out := make([]Value, len(t))
		for i, e := range t {
			out[i] = String(e)
		}
		return List(out...)
	case *Arguments:
		return Map(t)
	case map[string]any:
		return Map(ArgumentsOf(t))
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return Int(int64(u))
		}
		return Float(float64(rv.Uint()))
	case reflect.Float32:
		return Float(rv.Float())
	}
	return Ref(x)
}

func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }
func (v Value) List() ([]Value, bool) { return v.list, v.kind == KindList }
func (v Value) Map() (*Arguments, bool) { return v.m, v.kind == KindMap }
func (v Value) Ref() (any, bool) { return v.ref, v.kind == KindRef }

// Interface converts v back to a plain Go value. Maps become
// map[string]any and lose their ordering.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		if v.m == nil {
			return map[string]any{}
		}
		out := make(map[string]any, v.m.Len())
		for k, e := range v.m.All() {
			out[k] = e.Interface()
		}
		return out
	case KindRef:
		return v.ref
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return strconv.Quote(v.s)
	case KindMap, KindList:
		return fmt.Sprintf("%v", v.Interface())
	}
	return fmt.Sprint(v.Interface())
}

// Arguments is an insertion-ordered mapping from string keys to Values.
// It is not safe for concurrent use.
type Arguments struct {
	om *orderedmap.OrderedMap[string, Value]
}

// NewArguments returns an empty argument map.
func NewArguments() *Arguments {
	return &Arguments{om: orderedmap.New[string, Value]()}
}

// ArgumentsOf builds an argument map from m with keys in sorted order,
// since Go maps carry no order of their own.
func ArgumentsOf(m map[string]any) *Arguments {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	a := NewArguments()
	for _, k := range keys {
		a.Set(k, m[k])
	}
	return a
}

func (a *Arguments) Get(key string) (Value, bool) { return a.om.Get(key) }

// Set stores x under key, converting it with ValueOf. An existing key keeps
// its position.
func (a *Arguments) Set(key string, x any) { a.om.Set(key, ValueOf(x)) }

func (a *Arguments) Has(key string) bool {
	_, ok := a.om.Get(key)
	return ok
}

// Delete removes key. Missing keys are ignored.
func (a *Arguments) Delete(key string) { a.om.Delete(key) }

func (a *Arguments) Len() int { return a.om.Len() }

// Keys returns the keys in insertion order.
func (a *Arguments) Keys() []string {
	keys := make([]string, 0, a.om.Len())
	for p := a.om.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// All iterates the live map in insertion order. Entries added during the
// iteration are visited, entries deleted before they are reached are not.
// Each key is yielded at most once.
func (a *Arguments) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		seen := make(map[string]struct{}, a.om.Len())
		p := a.om.Oldest()
		for p != nil {
			next := p.Next()
			seen[p.Key] = struct{}{}
			if !yield(p.Key, p.Value) {
				return
			}
			switch {
			case a.om.GetPair(p.Key) == p:
				p = p.Next()
			case next != nil && a.om.GetPair(next.Key) == next:
				p = next
			default:
				// p and its successor are gone; resume at the first key not yet visited.
				p = a.om.Oldest()
				for p != nil {
					if _, ok := seen[p.Key]; !ok {
						break
					}
					p = p.Next()
				}
			}
		}
	}
}
