package shape

import "github.com/matzehuels/cadlayout/pkg/observable"

// Set is an ordered aggregate of shapes. A change to any member marks the
// set as having unsaved changes and is re-published to the set's
// subscribers.
type Set struct {
	shapes  []*Shape
	subs    map[*Shape]observable.Subscription
	dirty   bool
	changes observable.Subject[Change]
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{subs: make(map[*Shape]observable.Subscription)}
}

// Add appends s. Adding a shape twice is a no-op.
func (set *Set) Add(s *Shape) {
	if _, ok := set.subs[s]; ok {
		return
	}
	set.shapes = append(set.shapes, s)
	set.subs[s] = s.Subscribe(set.memberChanged)
	set.dirty = true
}

// Remove drops s and stops listening to it.
func (set *Set) Remove(s *Shape) {
	id, ok := set.subs[s]
	if !ok {
		return
	}
	s.Unsubscribe(id)
	delete(set.subs, s)
	for i, m := range set.shapes {
		if m == s {
			set.shapes = append(set.shapes[:i], set.shapes[i+1:]...)
			break
		}
	}
	set.dirty = true
}

func (set *Set) memberChanged(c Change) {
	set.dirty = true
	set.changes.Notify(c)
}

// Subscribe registers fn for changes of any member.
func (set *Set) Subscribe(fn func(Change)) observable.Subscription {
	return set.changes.Subscribe(fn)
}

// Unsubscribe removes a listener registered with Subscribe.
func (set *Set) Unsubscribe(id observable.Subscription) {
	set.changes.Unsubscribe(id)
}

// Len returns the number of shapes.
func (set *Set) Len() int { return len(set.shapes) }

// Shapes returns the members in insertion order.
func (set *Set) Shapes() []*Shape {
	out := make([]*Shape, len(set.shapes))
	copy(out, set.shapes)
	return out
}

// Drawable returns the members that have coordinates and a valid size.
func (set *Set) Drawable() []*Shape {
	var out []*Shape
	for _, s := range set.shapes {
		if s.IsDrawable() {
			out = append(out, s)
		}
	}
	return out
}

// HasUnsavedChanges reports whether the set or any member changed since
// MarkSaved.
func (set *Set) HasUnsavedChanges() bool { return set.dirty }

// MarkSaved clears the flag on the set and on every member.
func (set *Set) MarkSaved() {
	set.dirty = false
	for _, s := range set.shapes {
		s.MarkSaved()
	}
}
