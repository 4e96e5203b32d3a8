package recognition

import (
	"image"
	"image/draw"
	"math"

	"github.com/saturnino-fabrica-de-software/facegate/internal/provider"
)

// FaceRegion is one localized face: its pixels, its box in image coordinates
// and the detector confidence.
type FaceRegion struct {
	Image      image.Image
	Box        image.Rectangle
	Confidence float64
}

// Area returns the bounding box area in pixels.
func (r FaceRegion) Area() int {
	return r.Box.Dx() * r.Box.Dy()
}

// SelectPrimaryFace returns the region with the largest bounding box.
// The first region wins ties. Returns nil when regions is empty.
func SelectPrimaryFace(regions []FaceRegion) *FaceRegion {
	if len(regions) == 0 {
		return nil
	}

	best := 0
	for i := 1; i < len(regions); i++ {
		if regions[i].Area() > regions[best].Area() {
			best = i
		}
	}
	return &regions[best]
}

// cropRegions turns raw detections into FaceRegions.
// Boxes are clamped to the image bounds; detections that end up empty are dropped.
func cropRegions(img image.Image, faces []provider.DetectedFace) []FaceRegion {
	bounds := img.Bounds()
	regions := make([]FaceRegion, 0, len(faces))

	for _, face := range faces {
		box, ok := clampBox(face.BoundingBox, bounds)
		if !ok {
			continue
		}

		regions = append(regions, FaceRegion{
			Image:      crop(img, box),
			Box:        box,
			Confidence: clamp01(face.Confidence),
		})
	}

	return regions
}

// clampBox converts a pixel box relative to the image origin into an absolute
// rectangle inside bounds: x and y are floored at zero, width and height are cut
// at the image edge.
func clampBox(b provider.BoundingBox, bounds image.Rectangle) (image.Rectangle, bool) {
	if math.IsNaN(b.X) || math.IsNaN(b.Y) || math.IsNaN(b.Width) || math.IsNaN(b.Height) {
		return image.Rectangle{}, false
	}

	x := max(0, int(b.X))
	y := max(0, int(b.Y))
	w := min(int(b.Width), bounds.Dx()-x)
	h := min(int(b.Height), bounds.Dy()-y)

	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}

	minPt := bounds.Min.Add(image.Pt(x, y))
	return image.Rectangle{Min: minPt, Max: minPt.Add(image.Pt(w, h))}, true
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// crop returns the pixels of img inside box, sharing memory when the image supports it.
func crop(img image.Image, box image.Rectangle) image.Image {
	if si, ok := img.(subImager); ok {
		return si.SubImage(box)
	}

	dst := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Draw(dst, dst.Bounds(), img, box.Min, draw.Src)
	return dst
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
