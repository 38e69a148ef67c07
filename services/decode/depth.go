package decode

import (
	"gesture-logger/models"
)

// DepthIntensity maps one depth sample to a display intensity. Samples
// outside [minDepth, maxDepth] are black. When maxDepth < 256 the byte
// mapping factor is zero and every sample is black.
func DepthIntensity(depth, minDepth, maxDepth uint16) byte {
	mapDepthToByte := int(maxDepth) / 256
	return depthIntensity(depth, minDepth, maxDepth, mapDepthToByte)
}

func depthIntensity(depth, minDepth, maxDepth uint16, mapDepthToByte int) byte {
	if mapDepthToByte == 0 || depth < minDepth || depth > maxDepth {
		return 0
	}
	v := int(depth) / mapDepthToByte
	if v > 255 {
		return 255
	}
	return byte(v)
}

// DepthDecoder converts depth frames into grayscale BGRA pixels.
type DepthDecoder struct {
	target  models.FrameDescription
	samples []uint16
	pixels  []byte
}

// NewDepthDecoder allocates scratch buffers for target.
func NewDepthDecoder(target models.FrameDescription) *DepthDecoder {
	return &DepthDecoder{
		target:  target,
		samples: make([]uint16, target.LengthInPixels()),
		pixels:  make([]byte, target.DisplayBytes()),
	}
}

// Target returns the display geometry the decoder was sized for.
func (d *DepthDecoder) Target() models.FrameDescription { return d.target }

// Decode converts f using its reliable distance range. It returns false on
// a nil frame or a geometry mismatch.
func (d *DepthDecoder) Decode(f *models.DepthFrame) ([]byte, bool) {
	if f == nil || !matches(f.Description, len(d.samples), d.target) {
		return nil, false
	}
	if f.CopyFrameDataToArray(d.samples) != len(d.samples) {
		return nil, false
	}

	minDepth, maxDepth := f.MinReliableDistance, f.MaxReliableDistance
	mapDepthToByte := int(maxDepth) / 256

	px := 0
	for _, s := range d.samples {
		intensity := depthIntensity(s, minDepth, maxDepth, mapDepthToByte)
		d.pixels[px] = intensity
		d.pixels[px+1] = intensity
		d.pixels[px+2] = intensity
		d.pixels[px+3] = 255
		px += models.BytesPerPixel
	}
	return d.pixels, true
}
