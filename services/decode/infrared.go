package decode

import (
	"gesture-logger/models"
)

// infraredSourceMax is the largest value an infrared sample can take.
const infraredSourceMax = float32(65535)

// InfraredParams shapes infrared intensities into the displayable range.
type InfraredParams struct {
	// SceneAverage is the expected mean normalized intensity of the scene.
	SceneAverage float32
	// SceneStdDevs is the number of standard deviations above the average mapped to full white.
	SceneStdDevs float32
	// OutputMin and OutputMax bound the normalized intensity before byte conversion.
	OutputMin float32
	OutputMax float32
	// Adaptive replaces SceneAverage with the measured mean of each frame.
	Adaptive bool
}

// DefaultInfraredParams returns the tuning for an indoor scene.
func DefaultInfraredParams() InfraredParams {
	return InfraredParams{
		SceneAverage: 0.08,
		SceneStdDevs: 3.0,
		OutputMin:    0.01,
		OutputMax:    1.0,
	}
}

// InfraredIntensity maps one raw sample to a display intensity using a fixed scene average.
func InfraredIntensity(sample uint16, p InfraredParams) byte {
	return infraredIntensity(sample, p.SceneAverage*p.SceneStdDevs, p.OutputMin, p.OutputMax)
}

func infraredIntensity(sample uint16, scale, outMin, outMax float32) byte {
	ratio := float32(sample) / infraredSourceMax
	ratio /= scale
	if ratio > outMax {
		ratio = outMax
	}
	if ratio < outMin {
		ratio = outMin
	}
	// truncation, not rounding: 0.01 maps to 2
	return byte(ratio * 255.0)
}

// InfraredDecoder converts infrared frames into BGRA pixels sized for one display target.
type InfraredDecoder struct {
	target  models.FrameDescription
	params  InfraredParams
	samples []uint16
	pixels  []byte
	stats   []float64
}

// NewInfraredDecoder allocates scratch buffers for target.
func NewInfraredDecoder(target models.FrameDescription, params InfraredParams) *InfraredDecoder {
	d := &InfraredDecoder{
		target:  target,
		params:  params,
		samples: make([]uint16, target.LengthInPixels()),
		pixels:  make([]byte, target.DisplayBytes()),
	}
	if params.Adaptive {
		d.stats = make([]float64, target.LengthInPixels())
	}
	return d
}

// Target returns the display geometry the decoder was sized for.
func (d *InfraredDecoder) Target() models.FrameDescription { return d.target }

// Decode converts f into the decoder's pixel buffer. It returns false without
// touching the buffer when f is nil or its geometry does not match the target.
func (d *InfraredDecoder) Decode(f *models.InfraredFrame) ([]byte, bool) {
	if f == nil || !matches(f.Description, len(d.samples), d.target) {
		return nil, false
	}
	if f.CopyFrameDataToArray(d.samples) != len(d.samples) {
		return nil, false
	}

	scale := d.params.SceneAverage * d.params.SceneStdDevs
	if d.params.Adaptive {
		if mean, _ := SceneStatistics(d.samples, d.stats); mean > 0 {
			scale = float32(mean) * d.params.SceneStdDevs
		}
	}

	px := 0
	for _, s := range d.samples {
		intensity := infraredIntensity(s, scale, d.params.OutputMin, d.params.OutputMax)
		d.pixels[px] = intensity   // blue
		d.pixels[px+1] = intensity // green
		d.pixels[px+2] = intensity // red
		d.pixels[px+3] = 255       // alpha
		px += models.BytesPerPixel
	}
	return d.pixels, true
}

// matches reports whether a frame fits both the scratch buffer and the display bitmap.
func matches(desc models.FrameDescription, scratchLen int, target models.FrameDescription) bool {
	return desc.LengthInPixels() == scratchLen &&
		desc.Width == target.Width &&
		desc.Height == target.Height
}
