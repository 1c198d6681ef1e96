// Package snake sweeps a constant rectangular cross section along a
// chain of straight runs and circular arcs ("snake line"). The battery
// holder uses it to lay out the printed flexible spring contact.
package snake

import (
	"fmt"
	"math"

	sdfx "github.com/deadsy/sdfx/sdf"
	"github.com/soypat/flexbatt/shapes"
	"github.com/soypat/sdf"
	form3 "github.com/soypat/sdf/form3/must3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// overlap is the extra material placed at every segment junction so the
// union of adjoining segments shares volume instead of a coincident face.
const overlap = 0.02

// Segment is one step of a path. Turn is in degrees: zero means a
// straight run of length Value, nonzero means a circular arc of radius
// Value turning through Turn degrees, positive to the left.
type Segment struct {
	Turn  float64
	Value float64
}

// Path is an ordered chain of segments evaluated left to right. The path
// starts at the origin heading along +x in the xy plane.
type Path []Segment

// validate reports the first malformed segment of the path.
func (p Path) validate() error {
	if len(p) == 0 {
		return fmt.Errorf("snake: empty path")
	}
	for i, seg := range p {
		switch {
		case seg.Turn == 0 && seg.Value < 0:
			return fmt.Errorf("snake: segment %d: straight run length %g < 0", i, seg.Value)
		case seg.Turn != 0 && seg.Value <= 0:
			return fmt.Errorf("snake: segment %d: arc radius %g <= 0", i, seg.Value)
		case math.Abs(seg.Turn) > 360:
			return fmt.Errorf("snake: segment %d: turn %g exceeds a full revolution", i, seg.Turn)
		}
	}
	return nil
}

// End returns the position and heading (radians) of the frame obtained by
// composing every segment of the path, starting from the origin heading
// along +x.
func (p Path) End() (pos r2.Vec, heading float64) {
	for _, seg := range p {
		pos, heading = seg.advance(pos, heading)
	}
	return pos, heading
}

// advance composes one segment onto the frame (pos, heading).
func (s Segment) advance(pos r2.Vec, heading float64) (r2.Vec, float64) {
	if s.Turn == 0 {
		sin, cos := math.Sincos(heading)
		return pos.Add(r2.Scale(s.Value, r2.Vec{X: cos, Y: sin})), heading
	}
	c := s.center(pos, heading)
	a := sdfx.DtoR(s.Turn)
	// Rotate pos about c by the turn angle.
	v := pos.Sub(c)
	sin, cos := math.Sincos(a)
	v = r2.Vec{X: cos*v.X - sin*v.Y, Y: sin*v.X + cos*v.Y}
	return c.Add(v), heading + a
}

// center returns the arc center of a turning segment entered at pos with
// the given heading. Positive turns place the center on the left of the
// travel direction, negative turns on the right.
func (s Segment) center(pos r2.Vec, heading float64) r2.Vec {
	side := 1.0
	if s.Turn < 0 {
		side = -1
	}
	sin, cos := math.Sincos(heading)
	normal := r2.Vec{X: -sin, Y: cos} // left of travel
	return pos.Add(r2.Scale(side*s.Value, normal))
}

// Sweep evaluates the path into a single connected ribbon solid of the
// given width and extrusion height. The ribbon is centered on the path
// and on z=0; its z extent is [-height/2, height/2].
//
// Straight runs become boxes, turns become annular wedges, and a thin
// connector patch at every junction keeps the union volumetrically
// overlapping so downstream meshing never sees coincident faces. A
// (Turn=0, Value=0) segment emits only its patch and acts as a joint.
func Sweep(p Path, width, height float64) (sdf.SDF3, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("snake: nonpositive ribbon section %gx%g", width, height)
	}
	for i, seg := range p {
		if seg.Turn != 0 && seg.Value <= width/2 {
			return nil, fmt.Errorf("snake: segment %d: arc radius %g does not clear ribbon width %g", i, seg.Value, width)
		}
	}
	var (
		solids  []sdf.SDF3
		pos     r2.Vec
		heading float64
	)
	for _, seg := range p {
		solids = append(solids, patch(pos, heading, width, height))
		if body := seg.solid(pos, heading, width, height); body != nil {
			solids = append(solids, body)
		}
		pos, heading = seg.advance(pos, heading)
	}
	// Closing patch covers the far end of the last segment.
	solids = append(solids, patch(pos, heading, width, height))
	return sdf.Union3D(solids...), nil
}

// solid returns the body of one segment placed in world coordinates, or
// nil for a zero-length straight run.
func (s Segment) solid(pos r2.Vec, heading float64, width, height float64) sdf.SDF3 {
	if s.Turn == 0 {
		if s.Value == 0 {
			return nil
		}
		box := form3.Box(r3.Vec{X: s.Value + 2*overlap, Y: width, Z: height}, 0)
		m := sdf.Translate3D(r3.Vec{X: pos.X, Y: pos.Y}).
			Mul(sdf.RotateZ(heading)).
			Mul(sdf.Translate3D(r3.Vec{X: s.Value / 2}))
		return sdf.Transform3D(box, m)
	}
	c := s.center(pos, heading)
	// Angle of the ray center->pos, where the wedge begins.
	phi := sdfx.RtoD(math.Atan2(pos.Y-c.Y, pos.X-c.X))
	a1, a2 := phi, phi+s.Turn
	if s.Turn < 0 {
		a1, a2 = a2, a1
	}
	wedge := shapes.Arc(s.Value-width/2, s.Value+width/2, height, a1, a2)
	return sdf.Transform3D(wedge, sdf.Translate3D(r3.Vec{X: c.X, Y: c.Y}))
}

// patch returns the junction connector: a sliver of ribbon section
// straddling the junction point perpendicular to the travel direction.
func patch(pos r2.Vec, heading float64, width, height float64) sdf.SDF3 {
	box := form3.Box(r3.Vec{X: 2 * overlap, Y: width, Z: height}, 0)
	m := sdf.Translate3D(r3.Vec{X: pos.X, Y: pos.Y}).Mul(sdf.RotateZ(heading))
	return sdf.Transform3D(box, m)
}
