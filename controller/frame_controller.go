package controller

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gesture-logger/models"
	"gesture-logger/services/decode"
	"gesture-logger/services/ingest"
	"gesture-logger/utils"
)

// Display receives everything the frame pipeline renders.
type Display interface {
	Resize(w, h int)
	Present(pixels []byte)
	PresentBodies(bodies []models.BodyOverlay)
	SetStatus(status string)
	SetElapsed(d time.Duration)
}

// Recorder accepts log requests for tracked slots.
type Recorder interface {
	Log(slot, participant int, trackingID uint64)
	Elapsed() time.Duration
}

// FrameSource is the part of a sensor the frame controller reads geometry and
// projections from.
type FrameSource interface {
	FrameDescription(kind models.SourceKind) models.FrameDescription
	CoordinateMapper() ingest.CoordinateMapper
}

// FrameStats is a snapshot of the frame controller's counters.
type FrameStats struct {
	Processed   uint64 // arrivals with an acquirable frame set
	Skipped     uint64 // expired arrivals
	Presents    uint64
	Rebinds     uint64
	LogRequests uint64
	ModeSwaps   uint64
}

// FrameController runs the per-arrival pipeline: body tracking, detector
// rebinding and logging on every arrival, then the active display mode.
// Arrivals and mode switches never overlap.
type FrameController struct {
	mu sync.Mutex

	source   FrameSource
	mapper   ingest.CoordinateMapper
	display  Display
	tracker  *BodyTracker
	gestures *GesturePool
	recorder Recorder
	irParams decode.InfraredParams

	mode     models.DisplayMode
	infrared *decode.InfraredDecoder
	depth    *decode.DepthDecoder
	color    *decode.ColorDecoder
	masker   *decode.BodyMasker

	bodies   []models.Body // body slots of the current arrival, nil when its body frame was missing
	overlays []models.BodyOverlay

	done chan struct{}

	processed   uint64
	skipped     uint64
	presents    uint64
	rebinds     uint64
	logRequests uint64
	modeSwaps   uint64
}

// NewFrameController wires the pipeline and allocates buffers for mode.
func NewFrameController(source FrameSource, display Display, tracker *BodyTracker, gestures *GesturePool,
	recorder Recorder, irParams decode.InfraredParams, mode models.DisplayMode) (*FrameController, error) {
	fc := &FrameController{
		source:   source,
		mapper:   source.CoordinateMapper(),
		display:  display,
		tracker:  tracker,
		gestures: gestures,
		recorder: recorder,
		irParams: irParams,
		overlays: make([]models.BodyOverlay, 0, models.BodyCount),
		done:     make(chan struct{}),
	}
	if err := fc.SetDisplayMode(mode); err != nil {
		return nil, err
	}
	return fc, nil
}

// SetDisplayMode drops the previous mode's buffers, allocates the new mode's
// and resizes the display.
func (fc *FrameController) SetDisplayMode(mode models.DisplayMode) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var (
		desc     models.FrameDescription
		infrared *decode.InfraredDecoder
		depth    *decode.DepthDecoder
		color    *decode.ColorDecoder
		masker   *decode.BodyMasker
	)
	switch mode {
	case models.DisplayInfrared:
		desc = fc.source.FrameDescription(models.SourceInfrared)
		infrared = decode.NewInfraredDecoder(desc, fc.irParams)
	case models.DisplayColor:
		desc = fc.source.FrameDescription(models.SourceColor)
		color = decode.NewColorDecoder(desc)
	case models.DisplayDepth:
		desc = fc.source.FrameDescription(models.SourceDepth)
		depth = decode.NewDepthDecoder(desc)
	case models.DisplayBodyMask:
		desc = fc.source.FrameDescription(models.SourceColor)
		masker = decode.NewBodyMasker(fc.mapper, desc)
	case models.DisplayBodyJoints:
		desc = fc.source.FrameDescription(models.SourceDepth)
	default:
		return fmt.Errorf("unknown display mode %d", mode)
	}

	fc.mode = mode
	fc.infrared, fc.depth, fc.color, fc.masker = infrared, depth, color, masker
	fc.display.Resize(desc.Width, desc.Height)
	atomic.AddUint64(&fc.modeSwaps, 1)
	utils.L().Info("display mode: %s (%dx%d)", mode, desc.Width, desc.Height)
	return nil
}

// DisplayMode returns the active mode.
func (fc *FrameController) DisplayMode() models.DisplayMode {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.mode
}

// Start consumes arrivals until ctx is cancelled or the channel is closed.
func (fc *FrameController) Start(ctx context.Context, arrivals <-chan ingest.FrameArrival) {
	go func() {
		defer close(fc.done)
		for {
			select {
			case <-ctx.Done():
				utils.L().Info("frame controller stopped")
				return
			case a, ok := <-arrivals:
				if !ok {
					utils.L().Info("frame controller: arrival stream closed")
					return
				}
				fc.ProcessArrival(a)
			}
		}
	}()
	utils.L().Info("frame controller started  (mode=%s)", fc.DisplayMode())
}

// Done is closed when the goroutine launched by Start exits.
func (fc *FrameController) Done() <-chan struct{} { return fc.done }

// ProcessArrival runs the pipeline for one arrival. It returns false when
// the arrival had already expired.
func (fc *FrameController) ProcessArrival(a ingest.FrameArrival) bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	frame := a.AcquireFrame()
	if frame == nil {
		atomic.AddUint64(&fc.skipped, 1)
		return false
	}
	atomic.AddUint64(&fc.processed, 1)

	fc.processBodies(frame)

	switch fc.mode {
	case models.DisplayInfrared:
		fc.showInfrared(frame)
	case models.DisplayColor:
		fc.showColor(frame)
	case models.DisplayDepth:
		fc.showDepth(frame)
	case models.DisplayBodyMask:
		fc.showBodyMask(frame)
	case models.DisplayBodyJoints:
		fc.showBodyJoints()
	}
	return true
}

// processBodies updates the tracker, rebinds detectors and queues a log
// record for every slot whose detector is bound to the slot's cached id.
func (fc *FrameController) processBodies(frame ingest.MultiSourceFrame) {
	fc.bodies = nil

	body := frame.AcquireBodyFrame()
	if body == nil {
		return
	}
	defer body.Release()

	fc.bodies = fc.tracker.Update(body)
	if n := fc.gestures.Rebind(fc.bodies); n > 0 {
		atomic.AddUint64(&fc.rebinds, uint64(n))
	}

	for slot := range fc.bodies {
		id := fc.gestures.Detector(slot).TrackingID()
		if !fc.tracker.Matches(slot, id) {
			continue
		}
		fc.recorder.Log(slot, fc.tracker.Participant(slot), id)
		atomic.AddUint64(&fc.logRequests, 1)
	}

	fc.display.SetElapsed(fc.recorder.Elapsed())
}

func (fc *FrameController) present(px []byte, ok bool) {
	if !ok {
		return
	}
	fc.display.Present(px)
	atomic.AddUint64(&fc.presents, 1)
}

func (fc *FrameController) showInfrared(frame ingest.MultiSourceFrame) {
	f := frame.AcquireInfraredFrame()
	if f == nil {
		return
	}
	defer f.Release()
	fc.present(fc.infrared.Decode(f))
}

func (fc *FrameController) showColor(frame ingest.MultiSourceFrame) {
	f := frame.AcquireColorFrame()
	if f == nil {
		return
	}
	defer f.Release()
	fc.present(fc.color.Decode(f))
}

func (fc *FrameController) showDepth(frame ingest.MultiSourceFrame) {
	f := frame.AcquireDepthFrame()
	if f == nil {
		return
	}
	defer f.Release()
	fc.present(fc.depth.Decode(f))
}

// showBodyMask needs depth, color and body-index together; a partial set is
// released without presenting.
func (fc *FrameController) showBodyMask(frame ingest.MultiSourceFrame) {
	depth := frame.AcquireDepthFrame()
	if depth == nil {
		return
	}
	defer depth.Release()

	color := frame.AcquireColorFrame()
	if color == nil {
		return
	}
	defer color.Release()

	bodyIndex := frame.AcquireBodyIndexFrame()
	if bodyIndex == nil {
		return
	}
	defer bodyIndex.Release()

	fc.present(fc.masker.Compose(depth, color, bodyIndex))
}

// showBodyJoints projects the joints of every tracked body into depth space.
func (fc *FrameController) showBodyJoints() {
	if fc.bodies == nil {
		return
	}
	fc.overlays = fc.overlays[:0]
	for slot := range fc.bodies {
		b := &fc.bodies[slot]
		if !b.IsTracked {
			continue
		}
		o := models.BodyOverlay{Slot: slot, TrackingID: b.TrackingID}
		for j, joint := range b.Joints {
			p := joint.Position
			// joints behind the sensor plane project from 0.1 m
			if p.Z < 0 {
				p.Z = 0.1
			}
			o.Joints[j] = models.OverlayJoint{
				Point:         fc.mapper.MapCameraPointToDepthSpace(p),
				TrackingState: joint.TrackingState,
			}
		}
		fc.overlays = append(fc.overlays, o)
	}
	fc.display.PresentBodies(fc.overlays)
	atomic.AddUint64(&fc.presents, 1)
}

// Stats returns the controller's counters.
func (fc *FrameController) Stats() FrameStats {
	return FrameStats{
		Processed:   atomic.LoadUint64(&fc.processed),
		Skipped:     atomic.LoadUint64(&fc.skipped),
		Presents:    atomic.LoadUint64(&fc.presents),
		Rebinds:     atomic.LoadUint64(&fc.rebinds),
		LogRequests: atomic.LoadUint64(&fc.logRequests),
		ModeSwaps:   atomic.LoadUint64(&fc.modeSwaps),
	}
}
