package extractor

import (
	"image"

	"github.com/saturnino-fabrica-de-software/facegate/internal/imaging"
)

// DefaultInputSize is the square input side of the VGG-style backbone.
const DefaultInputSize = 224

// ImageNet channel means in BGR order, as subtracted by caffe-style preprocessing.
var bgrMean = [3]float32{103.939, 116.779, 123.68}

// Preprocess resizes face to size x size and returns an NHWC float32 tensor in
// BGR channel order with the ImageNet means subtracted. Pixel values are not scaled.
func Preprocess(face image.Image, size int) []float32 {
	if size <= 0 {
		size = DefaultInputSize
	}

	resized := imaging.Resize(face, size, size)
	out := make([]float32, 0, size*size*3)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			i := resized.PixOffset(x, y)
			r := float32(resized.Pix[i])
			g := float32(resized.Pix[i+1])
			b := float32(resized.Pix[i+2])
			out = append(out, b-bgrMean[0], g-bgrMean[1], r-bgrMean[2])
		}
	}
	return out
}
