package holder

import (
	"fmt"
	"math"

	"github.com/soypat/flexbatt/shapes"
	"github.com/soypat/flexbatt/snake"
	"github.com/soypat/sdf"
	form2 "github.com/soypat/sdf/form2/must2"
	form3 "github.com/soypat/sdf/form3/must3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// overshoot is how far cutting tools extend past the wall they must
// fully penetrate, so boolean subtractions never leave a zero-thickness
// skin on a boundary face.
const overshoot = 1.0

// shortCell is the per-cell length below which both polarity symbols
// move to the same side wall.
const shortCell = 42.0

// SpringPath returns the path specification of the printed spring
// contact: a straight base run, two opposed coils, a reverse coil, and a
// 90 degree return that faces the cell's minus pole. ch and el follow
// the compartment's chamfer and extra spring length; sr is the base run
// and coil is the transverse coil span.
func SpringPath(sr, ch, el, coil float64) snake.Path {
	return snake.Path{
		{Turn: 0, Value: sr + ch + el},
		{Turn: 180, Value: coil / 4},
		{Turn: 0, Value: el},
		{Turn: 180, Value: coil / 12},
		{Turn: 0, Value: el / 2},
		{Turn: -180, Value: coil / 12},
		{Turn: 0, Value: 1 + el/2},
		{Turn: 90, Value: coil / 5},
		{Turn: 0, Value: coil / 3},
	}
}

// Compartment builds compartment i of an array of n, centered on its own
// cavity with the floor at z=0..wz and the length axis along x. The
// result contains the compartment body with every feature cut, plus the
// two external contact bulges unioned in last so internal cuts can never
// carve them.
func Compartment(k Params, i, n int) (s sdf.SDF3, err error) {
	if i < 0 || n < 1 || i >= n {
		return nil, fmt.Errorf("holder: compartment index %d outside array of %d", i, n)
	}
	v, err := k.derive()
	if err != nil {
		return nil, err
	}
	defer func() {
		if a := recover(); a != nil {
			err = fmt.Errorf("holder: compartment %d of %d: %v", i, n, a)
		}
	}()

	c := composer{k: k, v: v, i: i, n: n}
	c.sharedLo = i > 0
	c.sharedHi = i < n-1
	c.yLo = -(k.Diameter/2 + v.w)
	c.yHi = k.Diameter/2 + v.w
	if c.sharedLo {
		c.yLo += v.ws / 2
	}
	if c.sharedHi {
		c.yHi -= v.ws / 2
	}

	body := c.shell()
	for _, cut := range c.cavityCuts() {
		body = sdf.Difference3D(body, cut)
	}
	body = sdf.Union3D(body, c.springs())
	for _, cut := range c.featureCuts() {
		body = sdf.Difference3D(body, cut)
	}
	// Bulges last: they are wire anchors and must survive every cut.
	bulges := c.bulges()
	return sdf.Union3D(body, bulges[0], bulges[1]), nil
}

// composer carries the derived dimensions and array position through the
// construction steps.
type composer struct {
	k        Params
	v        derived
	i, n     int
	sharedLo bool
	sharedHi bool
	yLo, yHi float64 // outer wall faces on the array axis
}

// shell is the outer chamfered box, shared walls pre-thinned, corners
// rounded by a vertical cylindrical profile.
func (c *composer) shell() sdf.SDF3 {
	v := c.v
	sy := c.yHi - c.yLo
	box := shapes.ChamferedBox(r3.Vec{X: v.sx, Y: sy, Z: v.hz}, v.ch)
	// Round the four vertical corners.
	round := sdf.Extrude3D(form2.Box(r2.Vec{X: v.sx, Y: sy}, v.w/2), v.hz+2*overshoot)
	s := sdf.Intersect3D(box, round)
	return sdf.Transform3D(s, sdf.Translate3D(r3.Vec{Y: (c.yLo + c.yHi) / 2, Z: v.hz / 2}))
}

// cavityCuts returns the subtractions that hollow the compartment:
// per-cell stepped cavities, the spring seat slot and the side relief
// bore.
func (c *composer) cavityCuts() []sdf.SDF3 {
	k, v := c.k, c.v
	m := k.CellsPerCompartment
	hcav := v.hz - v.wz + overshoot
	zc := v.wz + hcav/2
	var cuts []sdf.SDF3

	for j := 0; j < m; j++ {
		x0 := -v.l/2 + float64(j)*v.lc
		mid := x0 + v.lc/2
		// Opening narrowed by the retention rib overhang on both sides.
		opening := k.Diameter - 2*k.Overhang
		if k.Overhang <= 0 {
			opening = k.Diameter
		}
		cuts = append(cuts, boxAt(v.lc, opening, hcav, mid, 0, zc))
		// Full width between the quarter points: ribs only grip near the
		// cell ends.
		cuts = append(cuts, boxAt(v.lc/2, k.Diameter, hcav, mid, 0, zc))
		// The open end has no rib at all so the cell can tilt in.
		openEnd := x0 + v.lc/8
		if k.Deepen < 0 {
			openEnd = x0 + v.lc - v.lc/8
		}
		cuts = append(cuts, boxAt(v.lc/4, k.Diameter, hcav, openEnd, 0, zc))
	}

	// Spring seat: thin full-height slot straddling the minus-pole end of
	// the cavity, sized to receive the ribbon base.
	seat := c.springRibbon() + 0.1
	cuts = append(cuts, boxAt(seat, k.Diameter, hcav, -v.l/2, 0, zc))

	// Side relief: a bore along the cell axis giving the cell its
	// positional float plus clearance, dipping into walls and floor.
	var bore sdf.SDF3 = form3.Cylinder(v.l, k.Diameter/2+k.Clearance, 0)
	bore = sdf.Transform3D(bore, sdf.Translate3D(r3.Vec{Z: v.wz + k.Diameter/2}).Mul(sdf.RotateY(math.Pi/2)))
	cuts = append(cuts, bore)
	return cuts
}

// springRibbon is the spring cross-section width: two extrusion lines.
func (c *composer) springRibbon() float64 {
	return 2 * c.k.ExtrusionWidth
}

// springs returns the pair of mirrored spring contacts seated at the
// minus-pole end.
func (c *composer) springs() sdf.SDF3 {
	k, v := c.k, c.v
	path := SpringPath(v.sr, v.ch, k.ExtraSpring, v.d)
	h := k.HeightFrac*k.Diameter - 0.3
	ribbon, err := snake.Sweep(path, c.springRibbon(), h)
	if err != nil {
		panic(err) // recovered by Compartment
	}
	// The sweep starts at the origin heading +x; rotate the base run onto
	// the minus wall and sink the ribbon slightly into the floor.
	zc := v.wz - 0.2 + h/2
	m := sdf.Translate3D(r3.Vec{X: -v.l / 2, Z: zc}).Mul(sdf.RotateZ(-math.Pi / 2))
	a := sdf.Transform3D(ribbon, m)
	b := sdf.Transform3D(a, sdf.Scale3D(r3.Vec{X: 1, Y: -1, Z: 1}))
	return sdf.Union3D(a, b)
}

// featureCuts returns every subtraction performed after the springs are
// in place: contact windows, wire channels, grip relief, screw holes,
// pass-through slots and polarity engravings.
func (c *composer) featureCuts() []sdf.SDF3 {
	k, v := c.k, c.v
	var cuts []sdf.SDF3

	// Contact windows through the minus end wall, either side of the
	// spring anchor, for the external wire contacts.
	zm := v.wz + k.HeightFrac*k.Diameter/2
	wh := 0.4 * k.HeightFrac * k.Diameter
	for _, sy := range []float64{-1, 1} {
		cuts = append(cuts, boxAt(v.w+2*overshoot, 1.5*v.ws, wh, -(v.l/2 + v.w/4), sy*2*v.ws, zm))
	}

	// Longitudinal wire channel bored along the floor, open at both ends.
	var long sdf.SDF3 = form3.Cylinder(v.sx+2*overshoot, k.ExtrusionWidth, 0)
	long = sdf.Transform3D(long, sdf.Translate3D(r3.Vec{Z: v.wz}).Mul(sdf.RotateY(math.Pi/2)))
	cuts = append(cuts, long)

	// Transverse hexagonal channels through the floor.
	span := c.yHi - c.yLo + 2*overshoot
	for _, f := range k.XChannels {
		hex := shapes.HexChannel(1.5, span)
		m := sdf.Translate3D(r3.Vec{X: (f - 0.5) * v.l, Y: (c.yLo + c.yHi) / 2, Z: v.wz}).Mul(sdf.RotateX(math.Pi / 2))
		cuts = append(cuts, sdf.Transform3D(hex, m))
	}

	cuts = append(cuts, c.gripRelief()...)

	// Stepped screw holes under the centers of the first and last cells.
	for _, sx := range []float64{-1, 1} {
		xh := sx * (v.l/2 - v.lc/2)
		drill := form3.Cylinder(v.wz+2*overshoot, k.ScrewHoleDiameter/2, 0)
		cuts = append(cuts, sdf.Transform3D(drill, sdf.Translate3D(r3.Vec{X: xh, Z: v.wz / 2})))
		sink := form3.Cone(k.ScrewHoleDiameter/2, k.ScrewHoleDiameter, k.ScrewHoleDiameter/2, 0)
		cuts = append(cuts, sdf.Transform3D(sink, sdf.Translate3D(r3.Vec{X: xh, Z: k.ScrewHoleDiameter / 4})))
	}

	// Wire pass-through slots near each pole, through the side walls so
	// jumper wires reach the neighbor compartment.
	for _, sx := range []float64{-1, 1} {
		xp := sx * (v.l/2 - v.lc/4)
		cuts = append(cuts, boxAt(3, span, 2.5, xp, (c.yLo+c.yHi)/2, v.wz+1.25))
	}

	cuts = append(cuts, c.engravings()...)
	return cuts
}

// gripRelief returns the cylindrical scoops that widen each cell's open
// end so the cell levers in past the retention ribs. Conical chamfer
// caps are added only where the scoop meets a true array end wall.
func (c *composer) gripRelief() []sdf.SDF3 {
	k, v := c.k, c.v
	if k.Deepen == 0 {
		return nil
	}
	rr := k.DeepenFrac * v.lc
	depth := math.Abs(k.Deepen)
	span := c.yHi - c.yLo + 2*overshoot
	yc := (c.yLo + c.yHi) / 2
	zc := v.hz + rr - depth
	var cuts []sdf.SDF3
	for j := 0; j < k.CellsPerCompartment; j++ {
		x0 := -v.l/2 + float64(j)*v.lc
		xr := x0
		if k.Deepen < 0 {
			xr = x0 + v.lc
		}
		scoop := form3.Cylinder(span, rr, 0)
		m := sdf.Translate3D(r3.Vec{X: xr, Y: yc, Z: zc}).Mul(sdf.RotateX(math.Pi / 2))
		cuts = append(cuts, sdf.Transform3D(scoop, m))
		if !c.sharedLo {
			cuts = append(cuts, reliefCap(rr, xr, c.yLo, zc, 1))
		}
		if !c.sharedHi {
			cuts = append(cuts, reliefCap(rr, xr, c.yHi, zc, -1))
		}
	}
	return cuts
}

// reliefCap is the conical chamfer where a grip scoop exits an array end
// wall. dir is +1 when the cone opens toward +y.
func reliefCap(rr, x, y, z, dir float64) sdf.SDF3 {
	h := rr / 4
	cone := form3.Cone(h, rr+h, rr, 0)
	m := sdf.Translate3D(r3.Vec{X: x, Y: y + dir*h/2, Z: z}).Mul(sdf.RotateX(dir * math.Pi / 2))
	return sdf.Transform3D(cone, m)
}

// engravings returns the shallow polarity symbols cut into the side wall
// top faces at each cell midpoint.
func (c *composer) engravings() []sdf.SDF3 {
	k, v := c.k, c.v
	const glyph, stroke = 3.0, 0.8
	depth := 4 * k.ExtrusionHeight // half engraved, half overshoot
	flip := k.AlternateLabels && c.i%2 == 1

	// Wall band centers on either side of the cavity.
	yPlus := (k.Diameter/2 + c.yHi) / 2
	yMinus := (c.yLo - k.Diameter/2) / 2
	if flip {
		yPlus, yMinus = yMinus, yPlus
	}
	zc := v.hz // glyph centered on the rim: engraves depth/2

	var cuts []sdf.SDF3
	for j := 0; j < k.CellsPerCompartment; j++ {
		mid := -v.l/2 + (float64(j)+0.5)*v.lc
		minus := shapes.MinusGlyph(glyph, stroke, depth)
		plus := shapes.PlusGlyph(glyph, stroke, depth)
		if v.lc < shortCell {
			// Short cells: both symbols on the same wall, either side of
			// the midpoint.
			cuts = append(cuts,
				sdf.Transform3D(minus, sdf.Translate3D(r3.Vec{X: mid - 1.5*glyph, Y: yPlus, Z: zc})),
				sdf.Transform3D(plus, sdf.Translate3D(r3.Vec{X: mid + 1.5*glyph, Y: yPlus, Z: zc})))
			continue
		}
		cuts = append(cuts,
			sdf.Transform3D(minus, sdf.Translate3D(r3.Vec{X: mid, Y: yPlus, Z: zc})),
			sdf.Transform3D(plus, sdf.Translate3D(r3.Vec{X: mid, Y: yMinus, Z: zc})))
	}
	return cuts
}

// bulges returns the two external wire anchoring bosses, one per pole,
// each the hull of two spheres sunk half a radius into the end wall.
func (c *composer) bulges() [2]sdf.SDF3 {
	k, v := c.k, c.v
	const rb = 1.5
	zm := v.wz + k.HeightFrac*k.Diameter/2
	var out [2]sdf.SDF3
	for pole, sx := range []float64{-1, 1} {
		xb := sx * (v.sx/2 + rb/2)
		out[pole] = shapes.Boss(
			r3.Vec{X: xb, Z: zm - 2},
			r3.Vec{X: xb, Z: zm + 2},
			rb,
		)
	}
	return out
}

// boxAt is a box of size (x,y,z) centered at (cx,cy,cz).
func boxAt(x, y, z, cx, cy, cz float64) sdf.SDF3 {
	b := form3.Box(r3.Vec{X: x, Y: y, Z: z}, 0)
	return sdf.Transform3D(b, sdf.Translate3D(r3.Vec{X: cx, Y: cy, Z: cz}))
}
