package shape

import (
	"fmt"
	"math"
	"strings"
)

// SlotTolerance is the allowed difference between a slot's radius and half
// its height.
const SlotTolerance = 1e-4

// MinCornerRadius is the smallest corner radius a RoundedRectangle accepts.
const MinCornerRadius = 0.01

// Kind names a geometry variant.
type Kind int

const (
	KindCircle Kind = iota
	KindRectangle
	KindRoundedRectangle
	KindSlot
)

var kindNames = [...]string{
	KindCircle:           "circle",
	KindRectangle:        "rectangle",
	KindRoundedRectangle: "rounded_rectangle",
	KindSlot:             "slot",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts the names returned by Kind.String, case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown shape kind: %q", s)
}

// Geometry is the sizing of a shape. The set of implementations is closed.
type Geometry interface {
	Kind() Kind
	// IsSized reports whether the sizing is positive and consistent.
	IsSized() bool
	// halfExtent returns half the width and half the height of the shape.
	halfExtent() (hx, hy float64)
}

// Circle is sized by its radius.
type Circle struct {
	Radius float64
}

func (Circle) Kind() Kind      { return KindCircle }
func (c Circle) IsSized() bool { return c.Radius > 0 }
func (c Circle) halfExtent() (float64, float64) {
	return c.Radius, c.Radius
}

// Rectangle is sized by its length along X and height along Y.
type Rectangle struct {
	Length, Height float64
}

func (Rectangle) Kind() Kind      { return KindRectangle }
func (r Rectangle) IsSized() bool { return r.Length > 0 && r.Height > 0 }
func (r Rectangle) halfExtent() (float64, float64) {
	return r.Length / 2, r.Height / 2
}

// RoundedRectangle is a rectangle with circular corners.
type RoundedRectangle struct {
	Length, Height, Radius float64
}

func (RoundedRectangle) Kind() Kind { return KindRoundedRectangle }
func (r RoundedRectangle) IsSized() bool {
	return r.Length > 0 && r.Height > 0 && r.Radius >= MinCornerRadius
}
func (r RoundedRectangle) halfExtent() (float64, float64) {
	return r.Length / 2, r.Height / 2
}

// Slot is a rounded rectangle with fully rounded ends. Build one with NewSlot
// so that Radius starts at Height/2.
type Slot struct {
	Length, Height, Radius float64
}

// NewSlot returns a slot with Radius = height/2.
func NewSlot(length, height float64) Slot {
	return Slot{Length: length, Height: height, Radius: height / 2}
}

func (Slot) Kind() Kind { return KindSlot }
func (s Slot) IsSized() bool {
	return s.Length > 0 && RadiusIsHalfHeight(s.Height, s.Radius)
}
func (s Slot) halfExtent() (float64, float64) {
	return s.Length / 2, s.Height / 2
}

// RadiusIsHalfHeight reports whether radius equals height/2 within
// SlotTolerance. Non-positive inputs never match.
func RadiusIsHalfHeight(height, radius float64) bool {
	if height <= 0 || radius <= 0 {
		return false
	}
	return math.Abs(radius-height/2) <= SlotTolerance
}

// Ensure all variants implement Geometry.
var (
	_ Geometry = Circle{}
	_ Geometry = Rectangle{}
	_ Geometry = RoundedRectangle{}
	_ Geometry = Slot{}
)
