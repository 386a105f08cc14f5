// Package scene provides the scene description consumed by the tracer: a
// container of intersectables with a camera and sky environment, and the
// linear-traversal spatial structure over it.
package scene

import "github.com/glint-render/glint/pkg/core"

// Scene is a collection of intersectables plus the camera and sky
// environment used to render them.
type Scene struct {
	camera core.Camera
	sky    core.SkyEnvironment
	shapes []core.Intersectable
}

// NewScene creates an empty scene with the given sky environment
func NewScene(sky core.SkyEnvironment) *Scene {
	return &Scene{sky: sky}
}

// SetCamera sets the scene's camera
func (s *Scene) SetCamera(camera core.Camera) {
	s.camera = camera
}

// Camera implements core.Scene
func (s *Scene) Camera() core.Camera {
	return s.camera
}

// Sky implements core.Scene
func (s *Scene) Sky() core.SkyEnvironment {
	return s.sky
}

// Add appends an intersectable to the scene
func (s *Scene) Add(shape core.Intersectable) {
	s.shapes = append(s.shapes, shape)
}

// Shapes returns the scene's intersectables
func (s *Scene) Shapes() []core.Intersectable {
	return s.shapes
}
