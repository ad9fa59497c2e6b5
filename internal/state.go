package internal

import (
	"maps"
	"slices"
	"strings"
)

// State is a namespace of fields. Plain map[string]any values are nested
// objects traversed key by key, anything else is an opaque leaf.
type State struct {
	root *object

	// every field by dotted name, nested objects included
	fields map[string]*Field
}

type object struct {
	path  string
	field *Field // nil for the root

	leaves  map[string]*Field
	objects map[string]*object
}

func NewState() *State {
	return &State{
		root:   newObject("", nil),
		fields: make(map[string]*Field),
	}
}

func newObject(path string, field *Field) *object {
	return &object{
		path:    path,
		field:   field,
		leaves:  make(map[string]*Field),
		objects: make(map[string]*object),
	}
}

// Set applies a partial update and returns the names of the fields that changed.
// A nested object's name comes before the names of its changed leaves.
func (s *State) Set(partial map[string]any) []string {
	var changed []string
	s.root.set(s, partial, &changed)
	return changed
}

// Snapshot returns the current values, nested objects as fresh maps.
func (s *State) Snapshot() map[string]any {
	return s.root.snapshot()
}

func (s *State) Fields() map[string]*Field {
	return maps.Clone(s.fields)
}

func (s *State) Field(name string) (*Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Value returns the current value of a (dotted) field, nil if unknown.
func (s *State) Value(name string) any {
	if f, ok := s.fields[name]; ok {
		return f.Value()
	}
	return nil
}

func (o *object) set(s *State, partial map[string]any, changed *[]string) bool {
	dirty := false

	for _, key := range slices.Sorted(maps.Keys(partial)) {
		value := partial[key]
		name := joinPath(o.path, key)

		if nested, ok := value.(map[string]any); ok {
			child, created := o.object(s, key, name)

			var sub []string
			if child.set(s, nested, &sub) || created {
				child.field.force(child.snapshot())
				*changed = append(*changed, name)
				*changed = append(*changed, sub...)
				dirty = true
			}
			continue
		}

		if o.leaf(s, key, name).Set(value) {
			*changed = append(*changed, name)
			dirty = true
		}
	}

	return dirty
}

// object returns the nested object under key, converting a leaf in place if needed.
func (o *object) object(s *State, key, name string) (*object, bool) {
	if child, ok := o.objects[key]; ok {
		return child, false
	}

	field, ok := o.leaves[key]
	if ok {
		delete(o.leaves, key)
	} else {
		field = NewField(name, nil)
		s.fields[name] = field
	}

	child := newObject(name, field)
	o.objects[key] = child
	return child, true
}

// leaf returns the leaf field under key, replacing a nested object wholesale if needed.
func (o *object) leaf(s *State, key, name string) *Field {
	if field, ok := o.leaves[key]; ok {
		return field
	}

	if child, ok := o.objects[key]; ok {
		child.forget(s)
		delete(o.objects, key)
		o.leaves[key] = child.field
		return child.field
	}

	field := NewField(name, nil)
	o.leaves[key] = field
	s.fields[name] = field
	return field
}

// forget drops the descendants of o from the flat field index.
func (o *object) forget(s *State) {
	for _, f := range o.leaves {
		delete(s.fields, f.name)
	}
	for _, child := range o.objects {
		child.forget(s)
		delete(s.fields, child.path)
	}
}

func (o *object) snapshot() map[string]any {
	out := make(map[string]any, len(o.leaves)+len(o.objects))
	for key, f := range o.leaves {
		out[key] = f.Value()
	}
	for key, child := range o.objects {
		out[key] = child.snapshot()
	}
	return out
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// Ensure returns the field at a dotted name, creating empty objects and the leaf as needed.
func (s *State) Ensure(name string) *Field {
	if f, ok := s.fields[name]; ok {
		return f
	}

	o := s.root
	keys := strings.Split(name, ".")
	for _, key := range keys[:len(keys)-1] {
		o, _ = o.object(s, key, joinPath(o.path, key))
	}

	key := keys[len(keys)-1]
	return o.leaf(s, key, joinPath(o.path, key))
}
