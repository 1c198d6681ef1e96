package holder

import (
	"fmt"

	"github.com/soypat/sdf"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// Array builds n compartments side by side along the y axis, shared
// interior walls thinned to the spring wall width so neighbors fuse into
// a single printable block. Compartments are constructed concurrently;
// the returned slice is index ordered, compartment 0 at the lowest y.
func Array(k Params, n int) ([]sdf.SDF3, error) {
	if n < 1 {
		return nil, fmt.Errorf("holder: array size %d, need at least 1", n)
	}
	pitch, err := k.Pitch()
	if err != nil {
		return nil, err
	}
	out := make([]sdf.SDF3, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			s, err := Compartment(k, i, n)
			if err != nil {
				return err
			}
			out[i] = sdf.Transform3D(s, sdf.Translate3D(r3.Vec{Y: float64(i) * pitch}))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Union fuses the compartments of an array into one solid.
func Union(parts []sdf.SDF3) sdf.SDF3 {
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return parts[0]
	}
	return sdf.Union3D(parts...)
}
