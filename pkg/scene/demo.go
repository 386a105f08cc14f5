package scene

import (
	"github.com/glint-render/glint/pkg/core"
	"github.com/glint-render/glint/pkg/geometry"
	"github.com/glint-render/glint/pkg/material"
)

// NewDemoScene builds the default interactive scene: a diffuse sphere and
// a metallic sphere over a diffuse ground plane, under a blue-to-white
// skydome.
func NewDemoScene() *Scene {
	sky := NewSkydome(core.NewVec3(0.5, 0.75, 1.0), core.NewVec3(1, 1, 1))
	s := NewScene(sky)

	camera := NewPinholeCamera(0.036, 0.050) // Full-frame sensor, 50mm lens
	camera.Transform.SetPosition(core.NewVec3(0, 0, 0))
	camera.Transform.Changed(true) // Fresh scene, nothing accumulated yet
	s.SetCamera(camera)

	ground := material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5))
	matte := material.NewDiffuse(core.NewVec3(0.7, 0.3, 0.3))
	mirror := material.NewMetallic(core.NewVec3(0.8, 0.8, 0.9), 0.05)

	s.Add(geometry.NewSphere(core.NewVec3(-0.25, 0, -1), 0.2, matte))
	s.Add(geometry.NewSphere(core.NewVec3(0.25, 0, -1), 0.2, mirror))
	s.Add(geometry.NewPlane(core.NewVec3(0, -0.2, 0), core.NewVec3(0, 1, 0), ground))

	return s
}
