// Package holder composes battery compartment solids: the chamfered
// shell, cell cavities, the printed flexible spring, wire channels,
// screw holes and polarity engravings, and arrays compartments into a
// complete holder body.
package holder

import (
	"fmt"
	"math"
)

// Params are the immutable dimensional parameters of one compartment.
// All lengths are millimetres. The zero value is not usable; callers
// obtain populated values from the preset policy layer.
type Params struct {
	// CellsPerCompartment is the number of cells held end to end.
	CellsPerCompartment int
	// CellLength and Diameter describe the nominal cell.
	CellLength float64
	Diameter   float64
	// HeightFrac is the wall height as a fraction of cell diameter.
	HeightFrac float64
	// ScrewHoleDiameter sizes the mounting holes in the floor.
	ScrewHoleDiameter float64
	// Clearance is the extra diametral clearance of the cavity bore.
	Clearance float64
	// Overhang is the retention rib overhang gripping the cell.
	Overhang float64
	// ExtraSpring lengthens the spring's straight runs.
	ExtraSpring float64
	// XChannels lists transverse wire channel positions as fractions of
	// the corrected total length.
	XChannels []float64
	// Deepen is the grip-deepening scoop depth; its sign selects which
	// cell boundary is the open end. Zero disables the relief.
	Deepen float64
	// DeepenFrac is the scoop radius as a fraction of per-cell length.
	DeepenFrac float64
	// LengthCorrection adds spring headroom to the nominal stack length.
	LengthCorrection float64
	// AlternateLabels mirrors polarity engravings on odd compartments.
	AlternateLabels bool
	// ExtrusionWidth and ExtrusionHeight are the printing line
	// dimensions every derived wall thickness is a multiple of.
	ExtrusionWidth  float64
	ExtrusionHeight float64
}

// derived are the quantities computed from Params that the composer
// works in.
type derived struct {
	w  float64 // case wall thickness
	ws float64 // spring wall thickness
	wz float64 // bottom wall thickness
	ch float64 // edge chamfer
	l  float64 // corrected total length, m*cellLength + correction
	lc float64 // corrected per-cell length
	d  float64 // spring coil span, diameter + 2w - 2ws - 0.7
	sr float64 // spring base run, from cell diameter
	hz float64 // shell height
	sy float64 // full shell width without shared-wall thinning
	sx float64 // shell length
}

// derive computes and validates the derived quantities. Malformed
// parameter combinations fail here, before any geometry exists.
func (k Params) derive() (derived, error) {
	m := k.CellsPerCompartment
	if m < 1 {
		return derived{}, fmt.Errorf("holder: cells per compartment %d < 1", m)
	}
	if k.Diameter <= 0 || k.CellLength <= 0 {
		return derived{}, fmt.Errorf("holder: nonpositive cell size %gx%g", k.Diameter, k.CellLength)
	}
	if k.ExtrusionWidth <= 0 || k.ExtrusionHeight <= 0 {
		return derived{}, fmt.Errorf("holder: nonpositive extrusion %gx%g", k.ExtrusionWidth, k.ExtrusionHeight)
	}
	if k.HeightFrac <= 0 || k.HeightFrac > 1 {
		return derived{}, fmt.Errorf("holder: height fraction %g outside (0,1]", k.HeightFrac)
	}
	var v derived
	v.w = wallWidths(m) * k.ExtrusionWidth
	v.ws = 2 * k.ExtrusionWidth
	v.wz = 4 * k.ExtrusionHeight
	v.ch = 2 * k.ExtrusionHeight
	v.l = float64(m)*k.CellLength + k.LengthCorrection
	v.lc = v.l / float64(m)
	if v.lc <= 0 {
		return derived{}, fmt.Errorf("holder: corrected per-cell length %g <= 0 (length correction %g)", v.lc, k.LengthCorrection)
	}
	v.d = k.Diameter + 2*v.w - 2*v.ws - 0.7
	if v.d <= 0 {
		return derived{}, fmt.Errorf("holder: spring coil span %g <= 0", v.d)
	}
	v.sr = k.Diameter / 4
	v.hz = k.HeightFrac*k.Diameter + v.wz + v.ch
	v.sx = v.l + v.w
	v.sy = k.Diameter + 2*v.w
	if 2*v.ch >= math.Min(v.sx, math.Min(v.sy, v.hz)) {
		return derived{}, fmt.Errorf("holder: chamfer %g not below half of smallest shell dimension", v.ch)
	}
	for _, f := range k.XChannels {
		if f <= 0 || f >= 1 {
			return derived{}, fmt.Errorf("holder: transverse channel position %g outside (0,1)", f)
		}
	}
	return v, nil
}

// wallWidths returns the case wall thickness in extrusion widths. Longer
// cell stacks lever harder on the walls and get thicker ones.
func wallWidths(m int) float64 {
	n := 3 + m
	if n > 6 {
		n = 6
	}
	return float64(n)
}

// Pitch returns the compartment-to-compartment spacing of an array built
// from these parameters: adjacent compartments share one thinned wall.
func (k Params) Pitch() (float64, error) {
	v, err := k.derive()
	if err != nil {
		return 0, err
	}
	return k.Diameter + 2*v.w - v.ws, nil
}
