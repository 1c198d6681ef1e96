// Package flexbatt generates printable battery holders with flexing
// printed spring contacts. A holder is described by a battery type, the
// number of side by side compartments and the number of cells chained
// end to end inside each compartment; Generate turns that description
// into signed distance solids ready for meshing.
package flexbatt

import (
	"fmt"

	"github.com/soypat/flexbatt/holder"
	"github.com/soypat/sdf"
)

// Config holds printer calibration shared by every holder. Wall widths,
// floor heights and the spring ribbon are all expressed in multiples of
// these two numbers.
type Config struct {
	ExtrusionWidth  float64
	ExtrusionHeight float64
}

// DefaultConfig matches a 0.4mm nozzle printing 0.25mm layers.
func DefaultConfig() Config {
	return Config{ExtrusionWidth: 0.56, ExtrusionHeight: 0.25}
}

// Request describes one holder to generate.
type Request struct {
	Type                BatteryType
	Compartments        int // side by side rows, 1 to 20
	CellsPerCompartment int // cells chained in series per row, 1 to 10
	// AlternateRowLabels mirrors the polarity engraving on odd rows for
	// holders wired in a serpentine series.
	AlternateRowLabels bool
}

// Validate rejects requests outside the supported envelope.
func (r Request) Validate() error {
	if _, err := Lookup(r.Type); err != nil {
		return err
	}
	if r.Compartments < 1 || r.Compartments > 20 {
		return fmt.Errorf("flexbatt: %d compartments, want 1 to 20", r.Compartments)
	}
	if r.CellsPerCompartment < 1 || r.CellsPerCompartment > 10 {
		return fmt.Errorf("flexbatt: %d cells per compartment, want 1 to 10", r.CellsPerCompartment)
	}
	return nil
}

// Holder is a generated battery holder. The zero value is not useful;
// obtain one from Generate.
type Holder struct {
	req   Request
	par   holder.Params
	parts []sdf.SDF3
}

// Generate validates the request, applies the per-type ergonomics policy
// and builds every compartment of the holder.
func Generate(cfg Config, req Request) (*Holder, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if cfg.ExtrusionWidth <= 0 || cfg.ExtrusionHeight <= 0 {
		return nil, fmt.Errorf("flexbatt: nonpositive extrusion calibration %+v", cfg)
	}
	par, err := ParamsFor(cfg, req)
	if err != nil {
		return nil, err
	}
	parts, err := holder.Array(par, req.Compartments)
	if err != nil {
		return nil, err
	}
	return &Holder{req: req, par: par, parts: parts}, nil
}

// ParamsFor resolves a request against the preset table and the
// ergonomics policy into fully populated build parameters.
func ParamsFor(cfg Config, req Request) (holder.Params, error) {
	p, err := Lookup(req.Type)
	if err != nil {
		return holder.Params{}, err
	}
	m := req.CellsPerCompartment
	deepen, df, oh := ergonomics(req.Type, m, cfg)
	xc := make([]float64, m)
	for j := range xc {
		xc[j] = (float64(j) + 0.5) / float64(m)
	}
	return holder.Params{
		CellsPerCompartment: m,
		CellLength:          p.Length,
		Diameter:            p.Diameter,
		HeightFrac:          p.HeightFrac,
		ScrewHoleDiameter:   p.ScrewHoleD,
		Clearance:           p.Clearance,
		Overhang:            oh,
		ExtraSpring:         0,
		XChannels:           xc,
		Deepen:              deepen,
		DeepenFrac:          df,
		LengthCorrection:    p.LengthCorrection,
		AlternateLabels:     req.AlternateRowLabels,
		ExtrusionWidth:      cfg.ExtrusionWidth,
		ExtrusionHeight:     cfg.ExtrusionHeight,
	}, nil
}

// ergonomics decides how much of the rim above each cell's open end is
// scooped away. Single cell compartments keep a full rim: the cell is
// levered against the spring instead. The wide lithium formats get a
// shallower but relatively wider scoop.
func ergonomics(t BatteryType, m int, cfg Config) (deepen, df, oh float64) {
	if m == 1 {
		return 0, 1, 0
	}
	oh = cfg.ExtrusionWidth
	switch t {
	case Li18650, Li18650P, Li26650:
		return 0.7, 0.30, oh
	default:
		return 0.6, 0.35, oh
	}
}

// Solid returns the holder fused into a single printable body.
func (h *Holder) Solid() sdf.SDF3 {
	return holder.Union(h.parts)
}

// CompartmentSolids returns the compartments separately, index ordered
// along the array axis, for split printing.
func (h *Holder) CompartmentSolids() []sdf.SDF3 {
	out := make([]sdf.SDF3, len(h.parts))
	copy(out, h.parts)
	return out
}

// Params returns the resolved build parameters of the holder.
func (h *Holder) Params() holder.Params { return h.par }

// Request returns the request the holder was generated from.
func (h *Holder) Request() Request { return h.req }

// Pitch is the center to center spacing of neighboring compartments.
func (h *Holder) Pitch() float64 {
	p, _ := h.par.Pitch() // params already validated by Generate
	return p
}
