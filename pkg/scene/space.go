package scene

import (
	"github.com/glint-render/glint/pkg/core"
)

// LinearSpace is the simplest spatial structure: traversal tests every
// intersectable in the scene and keeps the nearest hit. Build snapshots
// the scene's shape list so traversal does not race with scene edits.
type LinearSpace struct {
	scene  *Scene
	shapes []core.Intersectable
	ready  bool
}

// NewLinearSpace creates a space over the given scene
func NewLinearSpace(scene *Scene) *LinearSpace {
	return &LinearSpace{scene: scene}
}

// Scene implements core.Space
func (ls *LinearSpace) Scene() core.Scene {
	return ls.scene
}

// Ready implements core.Space
func (ls *LinearSpace) Ready() bool {
	return ls.ready
}

// Build implements core.Space by classifying the scene's intersectables
func (ls *LinearSpace) Build() {
	ls.shapes = append(ls.shapes[:0], ls.scene.Shapes()...)
	ls.ready = true
}

// Invalidate forces the next Build to re-snapshot the scene, e.g. after
// shapes were added or removed.
func (ls *LinearSpace) Invalidate() {
	ls.ready = false
}

// Traverse implements core.Space, returning the nearest intersection
// within [tMin, tMax] if any.
func (ls *LinearSpace) Traverse(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool) {
	var closest *core.HitRecord
	closestSoFar := tMax

	for _, shape := range ls.shapes {
		if hit, ok := shape.Hit(ray, tMin, closestSoFar); ok {
			closest = hit
			closestSoFar = hit.T
		}
	}

	return closest, closest != nil
}
