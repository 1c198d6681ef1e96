// Package mesh converts signed distance solids into triangle meshes and
// computes the mesh properties the generator's checks rely on: enclosed
// volume, connected component count and watertightness.
package mesh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/sdf"
	"github.com/soypat/sdf/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is one mesh facet with counterclockwise winding seen from
// outside the solid.
type Triangle [3]r3.Vec

// Normal returns the non unit outward facet normal.
func (t Triangle) Normal() r3.Vec {
	e1 := r3.Sub(t[1], t[0])
	e2 := r3.Sub(t[2], t[0])
	return r3.Cross(e1, e2)
}

// Mesh is a triangle soup with helpers for the generator's geometric
// checks. Meshes come from FromSDF or Decode.
type Mesh struct {
	Triangles []Triangle
}

// FromSDF meshes a solid with a marching cubes octree at the given cell
// resolution. The triangles are round tripped through the STL encoding
// so every analysis sees exactly what a slicer would see.
func FromSDF(s sdf.SDF3, cells int) (*Mesh, error) {
	if s == nil {
		return nil, errors.New("mesh: nil solid")
	}
	if cells < 2 {
		return nil, fmt.Errorf("mesh: %d cells, need at least 2", cells)
	}
	model, err := render.RenderAll(render.NewOctreeRenderer(s, cells))
	if err != nil {
		return nil, fmt.Errorf("mesh: render: %w", err)
	}
	var buf bytes.Buffer
	if err := render.WriteSTL(&buf, model); err != nil {
		return nil, fmt.Errorf("mesh: encode: %w", err)
	}
	return Decode(&buf)
}

// stlHeader is the fixed 84 byte binary STL prelude.
type stlHeader struct {
	_     [80]uint8
	Count uint32
}

// Decode reads a binary STL stream. Facets with non finite coordinates
// are rejected; stored normals are ignored in favor of the winding.
func Decode(r io.Reader) (*Mesh, error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("mesh: STL header: %w", err)
	}
	if header.Count == 0 {
		return nil, errors.New("mesh: STL header claims 0 triangles")
	}
	m := &Mesh{Triangles: make([]Triangle, 0, header.Count)}
	var buf [50]byte
	for i := 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("mesh: triangle %d of %d: %w", i+1, header.Count, err)
		}
		var t Triangle
		for v := 0; v < 3; v++ {
			f := get3F32(buf[12+12*v:])
			if bad3F32(f) {
				return nil, fmt.Errorf("mesh: triangle %d has inf/NaN vertex", i+1)
			}
			t[v] = r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
		}
		m.Triangles = append(m.Triangles, t)
	}
	return m, nil
}

func get3F32(b []byte) (f [3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
	return f
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

// Volume returns the volume enclosed by the mesh via the divergence
// theorem. The result is only meaningful for a closed mesh with
// consistent winding.
func (m *Mesh) Volume() float64 {
	var v float64
	for _, t := range m.Triangles {
		// Signed volume of the tetrahedron (origin, t0, t1, t2).
		v += r3.Dot(t[0], r3.Cross(t[1], t[2])) / 6
	}
	return math.Abs(v)
}

// Bounds returns the axis aligned bounding box of the mesh vertices.
func (m *Mesh) Bounds() r3.Box {
	const inf = math.MaxFloat64
	lo := r3.Vec{X: inf, Y: inf, Z: inf}
	hi := r3.Vec{X: -inf, Y: -inf, Z: -inf}
	for _, t := range m.Triangles {
		for _, v := range t {
			lo.X = math.Min(lo.X, v.X)
			lo.Y = math.Min(lo.Y, v.Y)
			lo.Z = math.Min(lo.Z, v.Z)
			hi.X = math.Max(hi.X, v.X)
			hi.Y = math.Max(hi.Y, v.Y)
			hi.Z = math.Max(hi.Z, v.Z)
		}
	}
	return r3.Box{Min: lo, Max: hi}
}

// weldScale quantizes vertex coordinates when welding so that float
// jitter across shared edges does not split vertices.
const weldScale = 1e4

type weldKey [3]int64

func weld(v r3.Vec) weldKey {
	return weldKey{
		int64(math.Round(v.X * weldScale)),
		int64(math.Round(v.Y * weldScale)),
		int64(math.Round(v.Z * weldScale)),
	}
}

// Components counts the connected shells of the mesh. Triangles sharing
// a welded vertex belong to the same shell.
func (m *Mesh) Components() int {
	verts := make(map[weldKey]int)
	id := func(v r3.Vec) int {
		k := weld(v)
		if i, ok := verts[k]; ok {
			return i
		}
		i := len(verts)
		verts[k] = i
		return i
	}
	uf := newUnionFind()
	for _, t := range m.Triangles {
		a, b, c := id(t[0]), id(t[1]), id(t[2])
		uf.union(a, b)
		uf.union(b, c)
	}
	roots := make(map[int]struct{})
	for i := 0; i < len(verts); i++ {
		roots[uf.find(i)] = struct{}{}
	}
	return len(roots)
}

// Watertight reports whether every edge of the welded mesh is shared by
// an even number of facets.
func (m *Mesh) Watertight() bool {
	type edge [2]weldKey
	parity := make(map[edge]bool)
	for _, t := range m.Triangles {
		k := [3]weldKey{weld(t[0]), weld(t[1]), weld(t[2])}
		for i := 0; i < 3; i++ {
			a, b := k[i], k[(i+1)%3]
			if keyLess(b, a) {
				a, b = b, a
			}
			e := edge{a, b}
			parity[e] = !parity[e]
		}
	}
	for _, odd := range parity {
		if odd {
			return false
		}
	}
	return true
}

func keyLess(a, b weldKey) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// unionFind is a path halving union find over dense integer ids.
type unionFind struct {
	parent []int
}

func newUnionFind() *unionFind { return &unionFind{} }

func (u *unionFind) grow(n int) {
	for len(u.parent) <= n {
		u.parent = append(u.parent, len(u.parent))
	}
}

func (u *unionFind) find(x int) int {
	u.grow(x)
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}
