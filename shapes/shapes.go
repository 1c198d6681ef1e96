// Package shapes implements the primitive solid builders the battery
// holder generator needs beyond what the sdf kernel ships: chamfered
// boxes, annular wedges, hexagonal channels, capsule bosses and
// polarity engraving glyphs.
//
// Constructors follow the must3 convention: they panic on degenerate
// parameters. Callers validate dimensions up front or recover at a
// package boundary.
package shapes

import (
	"fmt"
	"math"

	sdfx "github.com/deadsy/sdfx/sdf"
	"github.com/soypat/sdf"
	form2 "github.com/soypat/sdf/form2/must2"
	form3 "github.com/soypat/sdf/form3/must3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const sqrtHalf = 0.7071067811865476

// chamferedBox is a box with all 12 edges chamfered at 45 degrees.
type chamferedBox struct {
	half r3.Vec  // half size
	cham float64 // chamfer depth measured along each axis
	bb   r3.Box
}

// ChamferedBox returns a box of the given size with every edge chamfered
// by d. The solid equals the convex hull of three boxes each shrunk by 2d
// along two of the three axes; in distance form that is the box cut by the
// twelve 45 degree edge planes. ChamferedBox panics if d < 0 or if d is
// not smaller than half the smallest box dimension.
func ChamferedBox(size r3.Vec, d float64) sdf.SDF3 {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		panic("size <= 0")
	}
	if d < 0 {
		panic("chamfer < 0")
	}
	if 2*d >= math.Min(size.X, math.Min(size.Y, size.Z)) {
		panic("chamfer >= half of smallest dimension")
	}
	half := r3.Scale(0.5, size)
	return &chamferedBox{
		half: half,
		cham: d,
		bb:   r3.Box{Min: r3.Scale(-1, half), Max: half},
	}
}

// ChamferedBoxErr is the error-returning form of ChamferedBox for
// callers working with unvalidated dimensions.
func ChamferedBoxErr(size r3.Vec, d float64) (s sdf.SDF3, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = fmt.Errorf("shapes: chamfered box: %v", a)
		}
	}()
	return ChamferedBox(size, d), nil
}

// Evaluate returns the minimum distance to the chamfered box.
func (s *chamferedBox) Evaluate(p r3.Vec) float64 {
	d := sdfBox3d(p, s.half)
	q := r3.Vec{X: math.Abs(p.X), Y: math.Abs(p.Y), Z: math.Abs(p.Z)}
	// 45 degree chamfer planes, one family per pair of axes.
	exy := (q.X + q.Y - (s.half.X + s.half.Y - s.cham)) * sqrtHalf
	eyz := (q.Y + q.Z - (s.half.Y + s.half.Z - s.cham)) * sqrtHalf
	exz := (q.X + q.Z - (s.half.X + s.half.Z - s.cham)) * sqrtHalf
	return math.Max(d, math.Max(exy, math.Max(eyz, exz)))
}

// Bounds returns the bounding box of the chamfered box.
func (s *chamferedBox) Bounds() r3.Box {
	return s.bb
}

// arc is a solid annular wedge about the z axis.
type arc struct {
	rmid, rhalf float64 // annulus midline radius and half thickness
	hhalf       float64 // half height
	span        float64 // a2-a1 in degrees
	full        bool    // span covers the whole circle
	s1, c1      float64 // sin/cos of a1
	s2, c2      float64 // sin/cos of a2
	bb          r3.Box
}

// Arc returns the annular wedge bounded by inner radius r1, outer radius
// r2 and height h, spanning from angle a1 to a2 in degrees, a2 > a1.
//
// The wedge region between the two bounding half planes is an
// intersection for spans up to 180 degrees and a union beyond that: a
// reflex wedge cannot be carved by intersecting two half planes. Getting
// this split wrong produces a too-thin wedge for reflex spans.
func Arc(r1, r2, h, a1, a2 float64) sdf.SDF3 {
	switch {
	case r1 < 0:
		panic("inner radius < 0")
	case r2 <= r1:
		panic("outer radius <= inner radius")
	case h <= 0:
		panic("height <= 0")
	case a2 <= a1:
		panic("empty angular span")
	}
	s := arc{
		rmid:  0.5 * (r1 + r2),
		rhalf: 0.5 * (r2 - r1),
		hhalf: 0.5 * h,
		span:  a2 - a1,
		full:  a2-a1 >= 360,
	}
	s.s1, s.c1 = math.Sincos(sdfx.DtoR(a1))
	s.s2, s.c2 = math.Sincos(sdfx.DtoR(a2))
	d := r3.Vec{X: r2, Y: r2, Z: 0.5 * h}
	s.bb = r3.Box{Min: r3.Scale(-1, d), Max: d}
	return &s
}

// Evaluate returns the minimum distance to the annular wedge.
func (s *arc) Evaluate(p r3.Vec) float64 {
	rho := math.Hypot(p.X, p.Y)
	ring := sdfBox2d(r2.Vec{X: rho - s.rmid, Y: p.Z}, r2.Vec{X: s.rhalf, Y: s.hhalf})
	if s.full {
		return ring
	}
	// Signed distances to the half planes bounding the wedge. Each is
	// negative on the kept side of its boundary ray.
	d1 := s.s1*p.X - s.c1*p.Y
	d2 := -(s.s2*p.X - s.c2*p.Y)
	var wedge float64
	if s.span <= 180 {
		wedge = math.Max(d1, d2) // intersect the half planes
	} else {
		wedge = math.Min(d1, d2) // union, De Morgan split for reflex spans
	}
	return math.Max(ring, wedge)
}

// Bounds returns the bounding box of the annular wedge.
func (s *arc) Bounds() r3.Box {
	return s.bb
}

// capsule is the convex hull of two equal spheres.
type capsule struct {
	a, b   r3.Vec
	ab     r3.Vec  // b-a
	abLen2 float64 // |b-a|^2
	radius float64
	bb     r3.Box
}

// Boss returns the convex hull of two spheres of radius r centered on p0
// and p1. It is used as a wire anchoring bulge on compartment end walls.
func Boss(p0, p1 r3.Vec, r float64) sdf.SDF3 {
	if r <= 0 {
		panic("radius <= 0")
	}
	ab := p1.Sub(p0)
	e := r3.Vec{X: r, Y: r, Z: r}
	bb := r3.Box{
		Min: minElem(p0, p1).Sub(e),
		Max: maxElem(p0, p1).Add(e),
	}
	return &capsule{a: p0, b: p1, ab: ab, abLen2: r3.Norm2(ab), radius: r, bb: bb}
}

// Evaluate returns the minimum distance to the capsule.
func (s *capsule) Evaluate(p r3.Vec) float64 {
	pa := p.Sub(s.a)
	t := 0.0
	if s.abLen2 > 0 {
		t = clamp(pa.Dot(s.ab)/s.abLen2, 0, 1)
	}
	return r3.Norm(pa.Sub(r3.Scale(t, s.ab))) - s.radius
}

// Bounds returns the bounding box of the capsule.
func (s *capsule) Bounds() r3.Box {
	return s.bb
}

// HexChannel returns a hexagonal prism of circumradius r and length l
// with its axis along z. Horizontal wire channels print without support
// when cut with a hexagonal instead of a circular section.
func HexChannel(r, l float64) sdf.SDF3 {
	if r <= 0 || l <= 0 {
		panic("hex channel dimension <= 0")
	}
	return sdf.Extrude3D(form2.Polygon(form2.Nagon(6, r)), l)
}

// MinusGlyph returns a bar of length l and stroke width sw engraved to
// the given depth, footprint in the xy plane and centered at the origin.
func MinusGlyph(l, sw, depth float64) sdf.SDF3 {
	return form3.Box(r3.Vec{X: l, Y: sw, Z: depth}, 0)
}

// PlusGlyph returns a cross with arm length l and stroke width sw
// engraved to the given depth.
func PlusGlyph(l, sw, depth float64) sdf.SDF3 {
	return sdf.Union3D(
		form3.Box(r3.Vec{X: l, Y: sw, Z: depth}, 0),
		form3.Box(r3.Vec{X: sw, Y: l, Z: depth}, 0),
	)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func minElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

func maxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

func sdfBox2d(p, s r2.Vec) float64 {
	p = r2.Vec{X: math.Abs(p.X), Y: math.Abs(p.Y)}
	d := r2.Sub(p, s)
	k := s.Y - s.X
	if d.X > 0 && d.Y > 0 {
		return r2.Norm(d)
	}
	if p.Y-p.X > k {
		return d.Y
	}
	return d.X
}

func sdfBox3d(p, s r3.Vec) float64 {
	d := r3.Vec{X: math.Abs(p.X) - s.X, Y: math.Abs(p.Y) - s.Y, Z: math.Abs(p.Z) - s.Z}
	if d.X > 0 && d.Y > 0 && d.Z > 0 {
		return r3.Norm(d)
	}
	if d.X > 0 && d.Y > 0 {
		return math.Hypot(d.X, d.Y)
	}
	if d.X > 0 && d.Z > 0 {
		return math.Hypot(d.X, d.Z)
	}
	if d.Y > 0 && d.Z > 0 {
		return math.Hypot(d.Y, d.Z)
	}
	return math.Max(d.X, math.Max(d.Y, d.Z))
}
