package flexbatt

import "fmt"

// BatteryType names a supported cylindrical cell format.
type BatteryType string

// Supported cell formats. The protected 18650 variant accounts for the
// longer protected cells sold with an integrated PCB.
const (
	AAA      BatteryType = "AAA"
	AA       BatteryType = "AA"
	C        BatteryType = "C"
	D        BatteryType = "D"
	Li18650  BatteryType = "18650"
	Li18650P BatteryType = "18650P"
	Li26650  BatteryType = "26650"
	CR123A   BatteryType = "CR123A"
)

// Preset is the measured geometry of one cell format. Lengths are
// nominal cell lengths in millimeters; LengthCorrection absorbs the
// printed spring's compressed thickness so the cell sits snug.
type Preset struct {
	Length           float64
	Diameter         float64
	HeightFrac       float64 // fraction of the diameter enclosed by the walls
	ScrewHoleD       float64
	Clearance        float64
	LengthCorrection float64
}

var presets = map[BatteryType]Preset{
	AAA:      {Length: 44.5, Diameter: 10.5, HeightFrac: 0.75, ScrewHoleD: 2.5, Clearance: 0.30, LengthCorrection: 1.5},
	AA:       {Length: 50.0, Diameter: 14.5, HeightFrac: 0.75, ScrewHoleD: 3.0, Clearance: 0.30, LengthCorrection: 1.6},
	C:        {Length: 50.0, Diameter: 26.2, HeightFrac: 0.75, ScrewHoleD: 3.0, Clearance: 0.30, LengthCorrection: 1.7},
	D:        {Length: 61.5, Diameter: 34.2, HeightFrac: 0.75, ScrewHoleD: 3.0, Clearance: 0.30, LengthCorrection: 1.8},
	Li18650:  {Length: 65.2, Diameter: 18.4, HeightFrac: 0.75, ScrewHoleD: 3.0, Clearance: 0.28, LengthCorrection: 1.6},
	Li18650P: {Length: 67.5, Diameter: 18.6, HeightFrac: 0.75, ScrewHoleD: 3.0, Clearance: 0.28, LengthCorrection: 1.6},
	Li26650:  {Length: 65.3, Diameter: 26.5, HeightFrac: 0.75, ScrewHoleD: 3.0, Clearance: 0.28, LengthCorrection: 1.8},
	CR123A:   {Length: 34.5, Diameter: 16.7, HeightFrac: 0.75, ScrewHoleD: 2.5, Clearance: 0.30, LengthCorrection: 1.4},
}

// Types returns the supported battery types in a stable order.
func Types() []BatteryType {
	return []BatteryType{AAA, AA, C, D, Li18650, Li18650P, Li26650, CR123A}
}

// Lookup returns the preset for a battery type.
func Lookup(t BatteryType) (Preset, error) {
	p, ok := presets[t]
	if !ok {
		return Preset{}, fmt.Errorf("flexbatt: unknown battery type %q", t)
	}
	return p, nil
}
