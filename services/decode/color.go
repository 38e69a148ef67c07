package decode

import (
	"gesture-logger/models"
	"gesture-logger/utils"
)

// ColorDecoder copies color frames into a BGRA buffer sized for the display.
type ColorDecoder struct {
	target models.FrameDescription
	pixels []byte
}

func NewColorDecoder(target models.FrameDescription) *ColorDecoder {
	return &ColorDecoder{
		target: target,
		pixels: make([]byte, target.DisplayBytes()),
	}
}

// Target returns the display geometry the decoder was sized for.
func (d *ColorDecoder) Target() models.FrameDescription { return d.target }

// Decode writes f into the pixel buffer, converting from the frame's raw
// format when it is not already BGRA.
func (d *ColorDecoder) Decode(f *models.ColorFrame) ([]byte, bool) {
	if f == nil || f.Description.Width != d.target.Width || f.Description.Height != d.target.Height {
		return nil, false
	}
	if f.RawFormat == models.ImageFormatBGRA {
		if f.CopyRawFrameData(d.pixels) != len(d.pixels) {
			return nil, false
		}
		return d.pixels, true
	}
	if err := f.CopyConvertedFrameData(d.pixels, models.ImageFormatBGRA); err != nil {
		utils.L().Debug("color decode: %v", err)
		return nil, false
	}
	return d.pixels, true
}
