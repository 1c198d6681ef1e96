package main

import (
	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

// Preview images are rendered supersampled and downscaled for cheap
// antialiasing.
const (
	previewWidth  = 1024
	previewHeight = 576
	superSample   = 2
)

type viewConfig struct {
	lookat r3.Vec // point the camera looks at
	up     r3.Vec
	eyepos r3.Vec
	near   float64
	far    float64
}

// defaultView looks down on the holder from a front quarter so both the
// cavity and the polarity engravings are visible.
var defaultView = viewConfig{
	up:     r3.Vec{Z: 1},
	eyepos: r3.Vec{X: 1.8, Y: -1.8, Z: 1.6},
	near:   1,
	far:    10,
}

// stlToPNG loads an STL file and renders a shaded PNG preview of it.
func stlToPNG(stlName, pngName string, view viewConfig) error {
	m, err := fauxgl.LoadSTL(stlName)
	if err != nil {
		return err
	}
	const fovy = 30 // vertical field of view, degrees
	var (
		eye    = fauxgl.V(view.eyepos.X, view.eyepos.Y, view.eyepos.Z)
		center = fauxgl.V(view.lookat.X, view.lookat.Y, view.lookat.Z)
		up     = fauxgl.V(view.up.X, view.up.Y, view.up.Z)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
	)
	// Normalize the model so the fixed camera frames any holder size.
	m.BiUnitCube()
	w, h := previewWidth*superSample, previewHeight*superSample
	ctx := fauxgl.NewContext(w, h)
	ctx.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(previewWidth) / float64(previewHeight)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.near, view.far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor("#468966")
	ctx.Shader = shader
	ctx.DrawMesh(m)
	img := resize.Resize(previewWidth, previewHeight, ctx.Image(), resize.Bilinear)
	return fauxgl.SavePNG(pngName, img)
}
