package models

import "sync"

// releaser returns a frame's buffers to the sensor exactly once.
type releaser struct {
	once sync.Once
	fn   func()
}

// Release hands the frame back to the sensor. Safe to call more than once.
func (r *releaser) Release() {
	r.once.Do(func() {
		if r.fn != nil {
			r.fn()
		}
	})
}

// InfraredFrame holds 16-bit infrared intensities.
type InfraredFrame struct {
	Description FrameDescription
	Data        []uint16
	releaser
}

func NewInfraredFrame(desc FrameDescription, data []uint16, release func()) *InfraredFrame {
	return &InfraredFrame{Description: desc, Data: data, releaser: releaser{fn: release}}
}

// CopyFrameDataToArray copies the samples into dst and returns the count copied.
func (f *InfraredFrame) CopyFrameDataToArray(dst []uint16) int {
	return copy(dst, f.Data)
}

// DepthFrame holds 16-bit depth samples in millimetres.
type DepthFrame struct {
	Description         FrameDescription
	Data                []uint16
	MinReliableDistance uint16
	MaxReliableDistance uint16
	releaser
}

func NewDepthFrame(desc FrameDescription, data []uint16, minMM, maxMM uint16, release func()) *DepthFrame {
	return &DepthFrame{
		Description:         desc,
		Data:                data,
		MinReliableDistance: minMM,
		MaxReliableDistance: maxMM,
		releaser:            releaser{fn: release},
	}
}

// CopyFrameDataToArray copies the samples into dst and returns the count copied.
func (f *DepthFrame) CopyFrameDataToArray(dst []uint16) int {
	return copy(dst, f.Data)
}

// ColorFrame holds packed color data in the sensor's raw format.
type ColorFrame struct {
	Description FrameDescription
	RawFormat   ImageFormat
	Raw         []byte
	releaser
}

func NewColorFrame(desc FrameDescription, format ImageFormat, raw []byte, release func()) *ColorFrame {
	return &ColorFrame{Description: desc, RawFormat: format, Raw: raw, releaser: releaser{fn: release}}
}

// BodyIndexFrame maps each depth pixel to a body slot (0-5) or 0xFF for none.
type BodyIndexFrame struct {
	Description FrameDescription
	Data        []byte
	releaser
}

// NoBody is the body-index value of a pixel that belongs to no tracked body.
const NoBody byte = 0xFF

func NewBodyIndexFrame(desc FrameDescription, data []byte, release func()) *BodyIndexFrame {
	return &BodyIndexFrame{Description: desc, Data: data, releaser: releaser{fn: release}}
}

// BodyFrame holds the fixed array of BodyCount body slots.
type BodyFrame struct {
	Bodies [BodyCount]Body
	releaser
}

func NewBodyFrame(bodies [BodyCount]Body, release func()) *BodyFrame {
	return &BodyFrame{Bodies: bodies, releaser: releaser{fn: release}}
}

// GetAndRefreshBodyData copies the body slots into dst and returns the count copied.
func (f *BodyFrame) GetAndRefreshBodyData(dst []Body) int {
	return copy(dst, f.Bodies[:])
}

// BodyCount returns the number of body slots in the frame.
func (f *BodyFrame) BodyCount() int { return BodyCount }
