package server

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"

	"github.com/glint-render/glint/pkg/core"
)

// displayGamma matches the gamma the viewer page expects
const displayGamma = 2.0

// snapshotToImage converts a linear-space snapshot into a display-ready
// RGBA image with gamma correction and clamping.
func snapshotToImage(pixels []core.Vec3, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := pixels[y*width+x].Clamp(0.0, 1.0).GammaCorrect(displayGamma)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(255 * c.X),
				G: uint8(255 * c.Y),
				B: uint8(255 * c.Z),
				A: 255,
			})
		}
	}

	return img
}

// encodePNGBase64 encodes an image as a base64 PNG string for embedding
// in SSE events.
func encodePNGBase64(img *image.RGBA) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
