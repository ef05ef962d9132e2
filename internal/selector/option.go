package selector

import (
	"strconv"

	"github.com/google/uuid"
)

// Value is the string-or-number payload of an Option.
type Value struct {
	text    string
	number  float64
	numeric bool
}

func StringValue(s string) Value {
	return Value{text: s}
}

func NumberValue(n float64) Value {
	return Value{number: n, numeric: true}
}

func (v Value) IsNumber() bool {
	return v.numeric
}

func (v Value) Number() float64 {
	return v.number
}

// String renders the value the way it is persisted and printed. Numbers use
// the shortest representation, so NumberValue(2) prints "2".
func (v Value) String() string {
	if v.numeric {
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	}
	return v.text
}

// Option is a labeled selectable value. Selection compares *Option pointers,
// so hosts must hand the same pointers back on every render.
type Option struct {
	Label string
	Value Value
}

// Options builds a stable slice of option pointers from labels and values.
func Options(pairs ...Option) []*Option {
	out := make([]*Option, 0, len(pairs))
	for i := range pairs {
		o := pairs[i]
		out = append(out, &o)
	}
	return out
}

// IndexOf returns the position of o in list by pointer identity, or -1.
func IndexOf(list []*Option, o *Option) int {
	if o == nil {
		return -1
	}
	for i, it := range list {
		if it == o {
			return i
		}
	}
	return -1
}

// FindByValue returns the option whose value renders as v. It is used to map
// persisted values back onto the host's own option pointers.
func FindByValue(list []*Option, v string) *Option {
	for _, it := range list {
		if it != nil && it.Value.String() == v {
			return it
		}
	}
	return nil
}

// ID names a selector's container. Key events addressed to another ID are ignored.
type ID string

func NewID() ID {
	return ID(uuid.NewString())
}
