package flexbatt_test

import (
	"testing"

	"github.com/soypat/flexbatt"
	"github.com/soypat/flexbatt/mesh"
	"github.com/stretchr/testify/require"
)

func TestParamsForPolicy(t *testing.T) {
	cfg := flexbatt.DefaultConfig()
	for _, tc := range []struct {
		typ            flexbatt.BatteryType
		m              int
		deepen, df, oh float64
	}{
		// A lone cell is levered out against its spring: full rim.
		{flexbatt.AA, 1, 0, 1, 0},
		{flexbatt.Li18650, 1, 0, 1, 0},
		{flexbatt.D, 1, 0, 1, 0},
		// Chained cells need the rim scoop and retention ribs.
		{flexbatt.AAA, 2, 0.6, 0.35, 0.56},
		{flexbatt.AA, 3, 0.6, 0.35, 0.56},
		{flexbatt.CR123A, 2, 0.6, 0.35, 0.56},
		// Wide lithium formats get the shallower, relatively wider scoop.
		{flexbatt.Li18650, 2, 0.7, 0.30, 0.56},
		{flexbatt.Li18650P, 3, 0.7, 0.30, 0.56},
		{flexbatt.Li26650, 2, 0.7, 0.30, 0.56},
	} {
		req := flexbatt.Request{Type: tc.typ, Compartments: 1, CellsPerCompartment: tc.m}
		p, err := flexbatt.ParamsFor(cfg, req)
		require.NoError(t, err, "%s m=%d", tc.typ, tc.m)
		require.Equal(t, tc.deepen, p.Deepen, "%s m=%d deepen", tc.typ, tc.m)
		require.Equal(t, tc.df, p.DeepenFrac, "%s m=%d deepen fraction", tc.typ, tc.m)
		require.Equal(t, tc.oh, p.Overhang, "%s m=%d overhang", tc.typ, tc.m)
	}
}

func TestParamsForChannels(t *testing.T) {
	cfg := flexbatt.DefaultConfig()
	p, err := flexbatt.ParamsFor(cfg, flexbatt.Request{
		Type: flexbatt.AA, Compartments: 1, CellsPerCompartment: 3,
	})
	require.NoError(t, err)
	// One transverse channel under each cell midpoint.
	require.Equal(t, []float64{0.5 / 3, 1.5 / 3, 2.5 / 3}, p.XChannels)
}

func TestRequestValidate(t *testing.T) {
	valid := flexbatt.Request{Type: flexbatt.AA, Compartments: 1, CellsPerCompartment: 1}
	require.NoError(t, valid.Validate())

	for name, req := range map[string]flexbatt.Request{
		"unknown type":      {Type: "AAAA", Compartments: 1, CellsPerCompartment: 1},
		"zero compartments": {Type: flexbatt.AA, Compartments: 0, CellsPerCompartment: 1},
		"too many rows":     {Type: flexbatt.AA, Compartments: 21, CellsPerCompartment: 1},
		"zero cells":        {Type: flexbatt.AA, Compartments: 1, CellsPerCompartment: 0},
		"too many cells":    {Type: flexbatt.AA, Compartments: 1, CellsPerCompartment: 11},
	} {
		require.Error(t, req.Validate(), name)
	}

	// Boundary values are in.
	require.NoError(t, flexbatt.Request{Type: flexbatt.D, Compartments: 20, CellsPerCompartment: 10}.Validate())
}

func TestTypesLookup(t *testing.T) {
	for _, typ := range flexbatt.Types() {
		p, err := flexbatt.Lookup(typ)
		require.NoError(t, err)
		require.Greater(t, p.Length, p.Diameter, "%s should be longer than wide", typ)
		require.Greater(t, p.ScrewHoleD, 0.0, typ)
	}
	_, err := flexbatt.Lookup("PP3")
	require.Error(t, err)
}

func TestGenerate(t *testing.T) {
	h, err := flexbatt.Generate(flexbatt.DefaultConfig(), flexbatt.Request{
		Type: flexbatt.AA, Compartments: 2, CellsPerCompartment: 1,
	})
	require.NoError(t, err)
	require.Len(t, h.CompartmentSolids(), 2)
	require.Greater(t, h.Pitch(), 14.5, "pitch must exceed the cell diameter")
	require.NotNil(t, h.Solid())
	require.Equal(t, 50.0, h.Params().CellLength)

	_, err = flexbatt.Generate(flexbatt.Config{}, flexbatt.Request{
		Type: flexbatt.AA, Compartments: 1, CellsPerCompartment: 1,
	})
	require.Error(t, err, "zero extrusion calibration")
}

// TestGenerateEnvelope sweeps every battery type across the supported
// request ranges. Solid construction is cheap without meshing, so the
// whole envelope is exercised: a preset whose derivation degenerates
// for some cell count (a spring arc radius falling inside the ribbon,
// a negative coil span) fails here and nowhere else.
func TestGenerateEnvelope(t *testing.T) {
	cfg := flexbatt.DefaultConfig()
	for _, typ := range flexbatt.Types() {
		for m := 1; m <= 10; m++ {
			for _, n := range []int{1, 2, 20} {
				h, err := flexbatt.Generate(cfg, flexbatt.Request{
					Type:                typ,
					Compartments:        n,
					CellsPerCompartment: m,
					AlternateRowLabels:  n > 1,
				})
				if err != nil {
					t.Fatalf("%s m=%d n=%d: %v", typ, m, n, err)
				}
				if got := len(h.CompartmentSolids()); got != n {
					t.Fatalf("%s m=%d n=%d: %d compartments", typ, m, n, got)
				}
				p, _ := flexbatt.Lookup(typ)
				if h.Pitch() <= p.Diameter {
					t.Fatalf("%s m=%d n=%d: pitch %g not beyond diameter %g", typ, m, n, h.Pitch(), p.Diameter)
				}
			}
		}
	}
}

// TestGenerateDeterministic renders the same request twice and expects
// identical meshes: holder generation has no hidden state.
func TestGenerateDeterministic(t *testing.T) {
	if testing.Short() {
		t.Skip("meshing a full holder is slow")
	}
	gen := func() *mesh.Mesh {
		h, err := flexbatt.Generate(flexbatt.DefaultConfig(), flexbatt.Request{
			Type: flexbatt.CR123A, Compartments: 1, CellsPerCompartment: 1,
		})
		require.NoError(t, err)
		m, err := mesh.FromSDF(h.Solid(), 100)
		require.NoError(t, err)
		return m
	}
	a, b := gen(), gen()
	require.Equal(t, len(a.Triangles), len(b.Triangles))
	require.InEpsilon(t, a.Volume(), b.Volume(), 1e-9)
}
