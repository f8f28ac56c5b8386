// Package jsonvalue wraps arbitrarily shaped JSON payloads parsed by sonic's
// ast package. Object members keep their source order, which the
// field-scanning heuristics depend on.
package jsonvalue

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
)

type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

var ErrInvalidJSON = errors.New("invalid JSON")

type Member struct {
	Key   string
	Value Value
}

// Value is a fully loaded ast.Node. The zero Value is Null.
type Value struct {
	node *ast.Node
}

func Parse(data []byte) (Value, error) {
	if !sonic.Valid(data) {
		return Value{}, ErrInvalidJSON
	}
	root, err := sonic.Get(data)
	if err != nil {
		return Value{}, err
	}
	if err := root.LoadAll(); err != nil {
		return Value{}, err
	}
	return Value{node: &root}, nil
}

func (v Value) Kind() Kind {
	if v.node == nil {
		return Null
	}
	switch v.node.TypeSafe() {
	case ast.V_TRUE, ast.V_FALSE:
		return Bool
	case ast.V_NUMBER:
		return Number
	case ast.V_STRING:
		return String
	case ast.V_ARRAY:
		return Array
	case ast.V_OBJECT:
		return Object
	}
	return Null
}

func (v Value) IsNull() bool   { return v.Kind() == Null }
func (v Value) Exists() bool   { return v.Kind() != Null }
func (v Value) IsObject() bool { return v.Kind() == Object }
func (v Value) IsArray() bool  { return v.Kind() == Array }

func (v Value) BoolValue() bool {
	if v.Kind() != Bool {
		return false
	}
	b, _ := v.node.Bool()
	return b
}

// Members lists object members in source order.
func (v Value) Members() (members []Member) {
	if v.Kind() != Object {
		return nil
	}
	v.node.ForEach(func(path ast.Sequence, n *ast.Node) bool {
		members = append(members, Member{Key: *path.Key, Value: Value{node: n}})
		return true
	})
	return
}

func (v Value) Items() (items []Value) {
	if v.Kind() != Array {
		return nil
	}
	v.node.ForEach(func(_ ast.Sequence, n *ast.Node) bool {
		items = append(items, Value{node: n})
		return true
	})
	return
}

func (v Value) Len() int {
	switch v.Kind() {
	case Array, Object:
		n, _ := v.node.Len()
		return n
	}
	return 0
}

// Field returns the first member named key, or a Null value.
func (v Value) Field(key string) Value {
	for _, m := range v.Members() {
		if m.Key == key {
			return m.Value
		}
	}
	return Value{}
}

// Get walks a path of object keys.
func (v Value) Get(path ...string) Value {
	cur := v
	for _, key := range path {
		if cur.Kind() != Object {
			return Value{}
		}
		cur = cur.Field(key)
	}
	return cur
}

// Text renders scalars as strings; containers and null yield "".
func (v Value) Text() string {
	switch v.Kind() {
	case String, Number, Bool:
		s, _ := v.node.String()
		return s
	}
	return ""
}

var intPat = regexp.MustCompile(`-?\d+`)

// Int returns the first integer found in a number or string value.
func (v Value) Int() (int64, bool) {
	switch v.Kind() {
	case Number:
		text := v.Text()
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return int64(f), true
		}
	case String:
		if m := intPat.FindString(v.Text()); m != "" {
			if n, err := strconv.ParseInt(m, 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// FindString searches objects up to maxDepth levels below v for the first key
// matching pattern whose value is a non-blank string. Members of an object are
// checked before descending into its children.
func (v Value) FindString(pattern *regexp.Regexp, maxDepth int) (string, bool) {
	return v.findString(pattern, 0, maxDepth)
}

func (v Value) findString(pattern *regexp.Regexp, depth, maxDepth int) (string, bool) {
	if depth > maxDepth {
		return "", false
	}
	switch v.Kind() {
	case Object:
		members := v.Members()
		for _, m := range members {
			if m.Value.Kind() == String && pattern.MatchString(m.Key) {
				if s := strings.TrimSpace(m.Value.Text()); s != "" {
					return s, true
				}
			}
		}
		for _, m := range members {
			if s, ok := m.Value.findString(pattern, depth+1, maxDepth); ok {
				return s, true
			}
		}
	case Array:
		for _, item := range v.Items() {
			if s, ok := item.findString(pattern, depth+1, maxDepth); ok {
				return s, true
			}
		}
	}
	return "", false
}
