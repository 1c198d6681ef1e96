package snake_test

import (
	"math"
	"testing"

	"github.com/soypat/flexbatt/mesh"
	"github.com/soypat/flexbatt/snake"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestPathEnd(t *testing.T) {
	const tol = 1e-12
	for _, tc := range []struct {
		name    string
		path    snake.Path
		x, y    float64
		heading float64
	}{
		{
			name: "straight",
			path: snake.Path{{Turn: 0, Value: 10}},
			x:    10, y: 0, heading: 0,
		},
		{
			name: "left quarter",
			path: snake.Path{{Turn: 0, Value: 10}, {Turn: 90, Value: 5}},
			x:    15, y: 5, heading: math.Pi / 2,
		},
		{
			name: "right quarter",
			path: snake.Path{{Turn: -90, Value: 5}},
			x:    5, y: -5, heading: -math.Pi / 2,
		},
		{
			name: "u turn",
			path: snake.Path{{Turn: 180, Value: 5}},
			x:    0, y: 10, heading: math.Pi,
		},
		{
			name: "full circle",
			path: snake.Path{{Turn: 360, Value: 5}},
			x:    0, y: 0, heading: 2 * math.Pi,
		},
		{
			name: "joint only",
			path: snake.Path{{Turn: 0, Value: 0}},
			x:    0, y: 0, heading: 0,
		},
	} {
		pos, heading := tc.path.End()
		if !scalar.EqualWithinAbs(pos.X, tc.x, tol) ||
			!scalar.EqualWithinAbs(pos.Y, tc.y, tol) ||
			!scalar.EqualWithinAbs(heading, tc.heading, tol) {
			t.Errorf("%s: end (%g,%g)@%g, want (%g,%g)@%g",
				tc.name, pos.X, pos.Y, heading, tc.x, tc.y, tc.heading)
		}
	}
}

func TestSweepValidation(t *testing.T) {
	for _, tc := range []struct {
		name          string
		path          snake.Path
		width, height float64
	}{
		{name: "empty path", path: snake.Path{}, width: 1, height: 1},
		{name: "negative run", path: snake.Path{{Turn: 0, Value: -1}}, width: 1, height: 1},
		{name: "zero radius", path: snake.Path{{Turn: 90, Value: 0}}, width: 1, height: 1},
		{name: "over full turn", path: snake.Path{{Turn: 400, Value: 5}}, width: 1, height: 1},
		{name: "radius inside ribbon", path: snake.Path{{Turn: 90, Value: 0.4}}, width: 1, height: 1},
		{name: "zero width", path: snake.Path{{Turn: 0, Value: 5}}, width: 0, height: 1},
		{name: "zero height", path: snake.Path{{Turn: 0, Value: 5}}, width: 1, height: 0},
	} {
		if _, err := snake.Sweep(tc.path, tc.width, tc.height); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestSweepContainsPath(t *testing.T) {
	p := snake.Path{{Turn: 0, Value: 10}, {Turn: 180, Value: 5}, {Turn: 0, Value: 10}}
	s, err := snake.Sweep(p, 1, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	// Centerline points of each segment lie inside the ribbon.
	for _, pt := range []r3.Vec{
		{},                 // start
		{X: 5},             // mid first run
		{X: 15, Y: 5},      // arc apex
		{X: 10, Y: 10},     // start of return run
		{X: 5, Y: 10},      // mid return run
		{X: 0, Y: 10},      // end
	} {
		if d := s.Evaluate(pt); d >= 0 {
			t.Errorf("point %+v outside swept ribbon: %g", pt, d)
		}
	}
	end, _ := p.End()
	if d := s.Evaluate(r3.Vec{X: end.X, Y: end.Y}); d >= 0 {
		t.Errorf("computed end outside ribbon: %g", d)
	}
	// The hole of the u-turn stays open.
	if d := s.Evaluate(r3.Vec{X: 13, Y: 5}); d <= 0 {
		t.Errorf("inside u-turn hole: %g", d)
	}
}

// TestSweepConnected meshes a multi segment sweep and checks it forms a
// single watertight shell, the property the junction patches exist for.
func TestSweepConnected(t *testing.T) {
	p := snake.Path{
		{Turn: 0, Value: 8},
		{Turn: 180, Value: 3},
		{Turn: 0, Value: 4},
		{Turn: -180, Value: 2},
		{Turn: 90, Value: 2},
		{Turn: 0, Value: 3},
	}
	s, err := snake.Sweep(p, 1.1, 2)
	if err != nil {
		t.Fatal(err)
	}
	m, err := mesh.FromSDF(s, 120)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Components(); got != 1 {
		t.Errorf("%d shells, want 1 connected ribbon", got)
	}
	if !m.Watertight() {
		t.Error("swept ribbon mesh is not watertight")
	}
}
