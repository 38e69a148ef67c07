package decode

import (
	"gesture-logger/models"
	"gesture-logger/utils"
)

// DepthSpaceMapper projects every color pixel into depth space.
type DepthSpaceMapper interface {
	MapColorFrameToDepthSpace(depth []uint16, out []models.DepthSpacePoint) error
}

// BodyMasker produces a color image in which every pixel not covered by a
// tracked body is zeroed.
type BodyMasker struct {
	mapper DepthSpaceMapper
	color  models.FrameDescription
	points []models.DepthSpacePoint
	pixels []byte
}

// NewBodyMasker allocates the color→depth point table and pixel buffer for colorDesc.
func NewBodyMasker(mapper DepthSpaceMapper, colorDesc models.FrameDescription) *BodyMasker {
	return &BodyMasker{
		mapper: mapper,
		color:  colorDesc,
		points: make([]models.DepthSpacePoint, colorDesc.LengthInPixels()),
		pixels: make([]byte, colorDesc.DisplayBytes()),
	}
}

// Target returns the display geometry the masker was sized for.
func (m *BodyMasker) Target() models.FrameDescription { return m.color }

// Compose maps color to depth space, converts the color frame and masks out
// background pixels. All three frames are required; any missing frame, size
// mismatch or mapping failure aborts with false.
func (m *BodyMasker) Compose(depth *models.DepthFrame, color *models.ColorFrame, bodyIndex *models.BodyIndexFrame) ([]byte, bool) {
	if depth == nil || color == nil || bodyIndex == nil {
		return nil, false
	}
	if color.Description != m.color {
		return nil, false
	}
	if err := m.mapper.MapColorFrameToDepthSpace(depth.Data, m.points); err != nil {
		utils.L().Debug("body mask: map color to depth: %v", err)
		return nil, false
	}
	if err := color.CopyConvertedFrameData(m.pixels, models.ImageFormatBGRA); err != nil {
		utils.L().Debug("body mask: convert color: %v", err)
		return nil, false
	}

	MaskNonBodyPixels(m.points, bodyIndex.Data, depth.Description.Width, depth.Description.Height, m.pixels)
	return m.pixels, true
}

// MaskNonBodyPixels zeroes every 4-byte pixel whose mapped depth point is the
// sentinel, falls outside the depth image, or lands on a body-index value of
// NoBody. points and pixels are co-indexed: pixel i is pixels[4i:4i+4].
func MaskNonBodyPixels(points []models.DepthSpacePoint, bodyIndex []byte, depthWidth, depthHeight int, pixels []byte) {
	n := len(points)
	if max := len(pixels) / models.BytesPerPixel; max < n {
		n = max
	}
	w, h := float32(depthWidth), float32(depthHeight)

	for i := 0; i < n; i++ {
		p := points[i]
		if p.IsValid() {
			// Conversion truncates toward zero, so anything in (-1, w) lands in range.
			fx, fy := p.X+0.5, p.Y+0.5
			if fx > -1 && fx < w && fy > -1 && fy < h {
				depthIndex := int(fy)*depthWidth + int(fx)
				if depthIndex < len(bodyIndex) && bodyIndex[depthIndex] != models.NoBody {
					continue
				}
			}
		}
		o := i * models.BytesPerPixel
		pixels[o] = 0
		pixels[o+1] = 0
		pixels[o+2] = 0
		pixels[o+3] = 0
	}
}
