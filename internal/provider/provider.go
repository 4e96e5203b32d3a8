package provider

import (
	"context"
	"errors"
	"image"
)

// ErrUnavailable is wrapped by provider errors that a retry later may cure.
var ErrUnavailable = errors.New("face provider unavailable")

// FaceDetector localizes faces in a decoded image.
// Implementations never embed or compare faces: they only report where faces are.
type FaceDetector interface {
	// DetectFaces returns every candidate face found in the image.
	// An empty slice (not an error) means no face was found.
	DetectFaces(ctx context.Context, img image.Image) ([]DetectedFace, error)
}

// DetectedFace represents a detected face in the image
type DetectedFace struct {
	BoundingBox BoundingBox `json:"bounding_box"`
	Confidence  float64     `json:"confidence"`
}

// BoundingBox represents the face area in pixels, relative to the image origin
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns width × height of the box
func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}

// FromRelative converts a box expressed as fractions of the image size into pixels
func FromRelative(left, top, width, height float64, bounds image.Rectangle) BoundingBox {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	return BoundingBox{
		X:      left * w,
		Y:      top * h,
		Width:  width * w,
		Height: height * h,
	}
}
