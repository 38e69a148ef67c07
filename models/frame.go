package models

import "math"

// SourceKind identifies one modality of the multi-source reader.
type SourceKind int

const (
	SourceInfrared SourceKind = iota
	SourceColor
	SourceDepth
	SourceBodyIndex
	SourceBody
)

var sourceNames = map[SourceKind]string{
	SourceInfrared:  "infrared",
	SourceColor:     "color",
	SourceDepth:     "depth",
	SourceBodyIndex: "body_index",
	SourceBody:      "body",
}

func (s SourceKind) String() string {
	if n, ok := sourceNames[s]; ok {
		return n
	}
	return "unknown"
}

// BytesPerPixel is the size of one BGRA32 display pixel.
const BytesPerPixel = 4

// FrameDescription is the fixed geometry of a frame source.
type FrameDescription struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LengthInPixels returns Width*Height.
func (d FrameDescription) LengthInPixels() int { return d.Width * d.Height }

// DisplayBytes returns the size of a BGRA32 buffer covering the frame.
func (d FrameDescription) DisplayBytes() int { return d.LengthInPixels() * BytesPerPixel }

// ImageFormat is the packing of raw color data.
type ImageFormat int

const (
	ImageFormatBGRA ImageFormat = iota
	ImageFormatRGBA
	ImageFormatYUY2
)

// BytesPerPixel returns the raw bytes per pixel of the format.
func (f ImageFormat) BytesPerPixel() int {
	if f == ImageFormatYUY2 {
		return 2
	}
	return 4
}

func (f ImageFormat) String() string {
	switch f {
	case ImageFormatBGRA:
		return "BGRA"
	case ImageFormatRGBA:
		return "RGBA"
	case ImageFormatYUY2:
		return "YUY2"
	}
	return "unknown"
}

// ParseImageFormat maps a config string to an ImageFormat.
func ParseImageFormat(s string) (ImageFormat, bool) {
	switch s {
	case "BGRA", "bgra":
		return ImageFormatBGRA, true
	case "RGBA", "rgba":
		return ImageFormatRGBA, true
	case "YUY2", "yuy2":
		return ImageFormatYUY2, true
	}
	return ImageFormatBGRA, false
}

// DepthSpacePoint is a (possibly fractional) pixel coordinate in the depth image.
type DepthSpacePoint struct {
	X float32
	Y float32
}

// InvalidDepthSpacePoint is the sentinel for a color pixel with no depth counterpart.
var InvalidDepthSpacePoint = DepthSpacePoint{
	X: float32(math.Inf(-1)),
	Y: float32(math.Inf(-1)),
}

// IsValid reports whether neither coordinate is the -inf sentinel.
func (p DepthSpacePoint) IsValid() bool {
	return !math.IsInf(float64(p.X), -1) && !math.IsInf(float64(p.Y), -1)
}

// CameraSpacePoint is a 3-D position in metres relative to the sensor.
type CameraSpacePoint struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}
