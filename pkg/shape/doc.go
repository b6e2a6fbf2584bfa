// Package shape models the procedural shapes placed on the canvas next to an
// inserted drawing.
//
// # Variants
//
// A [Shape] carries a [Geometry], one of:
//
//   - [Circle]: Radius
//   - [Rectangle]: Length (x) and Height (y)
//   - [RoundedRectangle]: Length, Height and corner Radius
//   - [Slot]: a rounded rectangle whose Radius is always Height/2
//
// Each variant carries only its own fields. Setters that do not apply to the
// current variant return [ErrNotApplicable].
//
// # Change Notification
//
// Every mutation marks the shape as having unsaved changes and notifies
// subscribers synchronously with a [Change]. A [Set] subscribes to its
// members, so a change on any member also dirties the set:
//
//	set := shape.NewSet()
//	c := shape.New("hole", shape.Circle{Radius: 10})
//	set.Add(c)
//	set.MarkSaved()
//	c.SetCoordinates(50, 50)
//	set.HasUnsavedChanges() // true
package shape
