package ingest

import (
	"gesture-logger/models"
)

// Sensor is a multi-source depth camera: one arrival stream carrying infrared,
// color, depth, body-index and body frames that are acquired on demand.
type Sensor interface {
	Open() error
	Close() error
	IsAvailable() bool

	// Arrivals delivers one event per captured frame set. The channel is
	// closed when the sensor is closed.
	Arrivals() <-chan FrameArrival

	// AvailabilityChanged reports connect/disconnect transitions.
	AvailabilityChanged() <-chan bool

	CoordinateMapper() CoordinateMapper
	FrameDescription(kind models.SourceKind) models.FrameDescription
	BodyCount() int

	// OpenGestureSource opens the classifier stream for one body slot.
	OpenGestureSource(slot int) (GestureSource, error)
}

// FrameArrival is a notification that a frame set is ready.
type FrameArrival interface {
	// AcquireFrame returns nil when the frame set has already expired.
	AcquireFrame() MultiSourceFrame
}

// MultiSourceFrame gives access to each modality of one frame set. Every
// Acquire call returns nil when that modality is unavailable; a non-nil
// frame must be released by the caller.
type MultiSourceFrame interface {
	AcquireBodyFrame() *models.BodyFrame
	AcquireInfraredFrame() *models.InfraredFrame
	AcquireColorFrame() *models.ColorFrame
	AcquireDepthFrame() *models.DepthFrame
	AcquireBodyIndexFrame() *models.BodyIndexFrame
}

// CoordinateMapper projects between camera, color and depth spaces.
type CoordinateMapper interface {
	// MapColorFrameToDepthSpace fills out (one entry per color pixel) with the
	// matching depth-space point, or models.InvalidDepthSpacePoint.
	MapColorFrameToDepthSpace(depth []uint16, out []models.DepthSpacePoint) error

	MapCameraPointToDepthSpace(p models.CameraSpacePoint) models.DepthSpacePoint
}

// GestureSource is a per-body gesture classifier stream.
type GestureSource interface {
	SetTrackingID(id uint64)
	SetPaused(paused bool)
	Results() <-chan models.GestureResult
	Close() error
}
