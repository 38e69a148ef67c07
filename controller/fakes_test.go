package controller

import (
	"sync"
	"time"

	"gesture-logger/models"
	"gesture-logger/services/ingest"
)

// ─── gesture sources ────────────────────────────────────────────────────

type fakeSource struct {
	mu         sync.Mutex
	trackingID uint64
	paused     bool
	results    chan models.GestureResult
	closeOnce  sync.Once
}

func newFakeSource() *fakeSource {
	return &fakeSource{results: make(chan models.GestureResult, 64), paused: true}
}

func (s *fakeSource) SetTrackingID(id uint64) {
	s.mu.Lock()
	s.trackingID = id
	s.mu.Unlock()
}

func (s *fakeSource) SetPaused(p bool) {
	s.mu.Lock()
	s.paused = p
	s.mu.Unlock()
}

func (s *fakeSource) Results() <-chan models.GestureResult { return s.results }

func (s *fakeSource) Close() error {
	s.closeOnce.Do(func() { close(s.results) })
	return nil
}

type fakeOpener struct {
	sources [models.BodyCount]*fakeSource
}

func newFakeOpener() *fakeOpener {
	o := &fakeOpener{}
	for i := range o.sources {
		o.sources[i] = newFakeSource()
	}
	return o
}

func (o *fakeOpener) OpenGestureSource(slot int) (ingest.GestureSource, error) {
	return o.sources[slot], nil
}

// ─── display and recorder ───────────────────────────────────────────────

type fakeDisplay struct {
	mu       sync.Mutex
	w, h     int
	presents [][]byte
	bodies   [][]models.BodyOverlay
	status   string
	elapsed  time.Duration
}

func (d *fakeDisplay) Resize(w, h int) {
	d.mu.Lock()
	d.w, d.h = w, h
	d.mu.Unlock()
}

func (d *fakeDisplay) Present(px []byte) {
	d.mu.Lock()
	d.presents = append(d.presents, append([]byte(nil), px...))
	d.mu.Unlock()
}

func (d *fakeDisplay) PresentBodies(b []models.BodyOverlay) {
	d.mu.Lock()
	d.bodies = append(d.bodies, append([]models.BodyOverlay(nil), b...))
	d.mu.Unlock()
}

func (d *fakeDisplay) SetStatus(s string) {
	d.mu.Lock()
	d.status = s
	d.mu.Unlock()
}

func (d *fakeDisplay) SetElapsed(e time.Duration) {
	d.mu.Lock()
	d.elapsed = e
	d.mu.Unlock()
}

func (d *fakeDisplay) Status() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

type logCall struct {
	Slot, Participant int
	TrackingID        uint64
}

type fakeRecorder struct {
	calls   []logCall
	elapsed time.Duration
}

func (r *fakeRecorder) Log(slot, participant int, id uint64) {
	r.calls = append(r.calls, logCall{slot, participant, id})
}

func (r *fakeRecorder) Elapsed() time.Duration { return r.elapsed }

// ─── frames ─────────────────────────────────────────────────────────────

var (
	testDepthDesc = models.FrameDescription{Width: 8, Height: 6}
	testColorDesc = models.FrameDescription{Width: 12, Height: 6}
)

type fakeFrameSource struct {
	mapper *ingest.SimulatedMapper
}

func newFakeFrameSource() *fakeFrameSource {
	return &fakeFrameSource{mapper: ingest.NewSimulatedMapper(testDepthDesc, testColorDesc)}
}

func (s *fakeFrameSource) FrameDescription(kind models.SourceKind) models.FrameDescription {
	if kind == models.SourceColor {
		return testColorDesc
	}
	return testDepthDesc
}

func (s *fakeFrameSource) CoordinateMapper() ingest.CoordinateMapper { return s.mapper }

// fakeFrame hands out prepared frames and counts acquisitions and releases.
type fakeFrame struct {
	bodies    *[models.BodyCount]models.Body
	noIR      bool
	noDepth   bool
	noColor   bool
	noIndex   bool
	acquired  int
	released  int
	acquireMu sync.Mutex
}

func (f *fakeFrame) release() {
	f.acquireMu.Lock()
	f.released++
	f.acquireMu.Unlock()
}

func (f *fakeFrame) took() {
	f.acquireMu.Lock()
	f.acquired++
	f.acquireMu.Unlock()
}

func (f *fakeFrame) AcquireBodyFrame() *models.BodyFrame {
	if f.bodies == nil {
		return nil
	}
	f.took()
	return models.NewBodyFrame(*f.bodies, f.release)
}

func (f *fakeFrame) AcquireInfraredFrame() *models.InfraredFrame {
	if f.noIR {
		return nil
	}
	f.took()
	return models.NewInfraredFrame(testDepthDesc, make([]uint16, testDepthDesc.LengthInPixels()), f.release)
}

func (f *fakeFrame) AcquireDepthFrame() *models.DepthFrame {
	if f.noDepth {
		return nil
	}
	f.took()
	data := make([]uint16, testDepthDesc.LengthInPixels())
	for i := range data {
		data[i] = 2000
	}
	return models.NewDepthFrame(testDepthDesc, data, 500, 4500, f.release)
}

func (f *fakeFrame) AcquireColorFrame() *models.ColorFrame {
	if f.noColor {
		return nil
	}
	f.took()
	raw := make([]byte, testColorDesc.DisplayBytes())
	for i := range raw {
		raw[i] = 200
	}
	return models.NewColorFrame(testColorDesc, models.ImageFormatBGRA, raw, f.release)
}

func (f *fakeFrame) AcquireBodyIndexFrame() *models.BodyIndexFrame {
	if f.noIndex {
		return nil
	}
	f.took()
	idx := make([]byte, testDepthDesc.LengthInPixels())
	for i := range idx {
		idx[i] = models.NoBody
	}
	idx[len(idx)/2+testDepthDesc.Width/2] = 0
	return models.NewBodyIndexFrame(testDepthDesc, idx, f.release)
}

type fakeArrival struct {
	frame *fakeFrame // nil means expired
}

func (a fakeArrival) AcquireFrame() ingest.MultiSourceFrame {
	if a.frame == nil {
		return nil
	}
	return a.frame
}

// bodiesWith returns body slots where each listed slot is tracked with the given id.
func bodiesWith(ids map[int]uint64) *[models.BodyCount]models.Body {
	var b [models.BodyCount]models.Body
	for slot, id := range ids {
		b[slot].TrackingID = id
		b[slot].IsTracked = true
		for j := range b[slot].Joints {
			b[slot].Joints[j] = models.Joint{
				Type:          models.JointType(j),
				Position:      models.CameraSpacePoint{X: 0, Y: 0, Z: 2},
				TrackingState: models.Tracked,
			}
		}
	}
	return &b
}
