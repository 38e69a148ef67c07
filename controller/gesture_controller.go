package controller

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"gesture-logger/models"
	"gesture-logger/services/ingest"
	"gesture-logger/utils"
)

// DetectorState is the binding state of one gesture detector.
type DetectorState int

const (
	Unbound DetectorState = iota
	BoundActive
	BoundPaused
)

func (s DetectorState) String() string {
	switch s {
	case BoundActive:
		return "bound_active"
	case BoundPaused:
		return "bound_paused"
	}
	return "unbound"
}

// GestureDetector binds one classifier stream to the body in one slot and
// filters its results: only results for the bound id, while active, pass.
type GestureDetector struct {
	slot   int
	source ingest.GestureSource

	mu         sync.Mutex
	trackingID uint64
	paused     bool
	latest     map[string]models.GestureResult

	accepted uint64
	rejected uint64
}

func newGestureDetector(slot int, source ingest.GestureSource) *GestureDetector {
	source.SetTrackingID(0)
	source.SetPaused(true)
	return &GestureDetector{
		slot:   slot,
		source: source,
		paused: true,
		latest: make(map[string]models.GestureResult, models.GestureCount),
	}
}

// Bind points the detector at id. An id of 0 unbinds and pauses it. Binding
// the id already held does nothing and returns false.
func (d *GestureDetector) Bind(id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id == d.trackingID {
		return false
	}
	d.trackingID = id
	d.paused = id == 0
	d.source.SetTrackingID(id)
	d.source.SetPaused(d.paused)
	return true
}

// SetPaused overrides the pause flag of a bound detector. Unbound detectors stay paused.
func (d *GestureDetector) SetPaused(paused bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.trackingID == 0 {
		paused = true
	}
	d.paused = paused
	d.source.SetPaused(paused)
}

func (d *GestureDetector) TrackingID() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.trackingID
}

func (d *GestureDetector) State() DetectorState {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.trackingID == 0:
		return Unbound
	case d.paused:
		return BoundPaused
	}
	return BoundActive
}

// Latest returns the most recent accepted result per gesture.
func (d *GestureDetector) Latest() map[string]models.GestureResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]models.GestureResult, len(d.latest))
	for k, v := range d.latest {
		out[k] = v
	}
	return out
}

// accept records r if the detector is bound to r's body and not paused.
func (d *GestureDetector) accept(r models.GestureResult) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.trackingID == 0 || d.paused || r.TrackingID != d.trackingID {
		d.rejected++
		return false
	}
	if err := r.Validate(); err != nil {
		d.rejected++
		utils.L().Debug("gesture detector %d: %v", d.slot, err)
		return false
	}
	d.latest[r.Name] = r
	d.accepted++
	return true
}

func (d *GestureDetector) run(ctx context.Context, onResult func(models.GestureResult)) {
	results := d.source.Results()
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-results:
			if !ok {
				return
			}
			if d.accept(r) {
				onResult(r)
			}
		}
	}
}

// GestureSourceOpener opens the classifier stream of a body slot.
type GestureSourceOpener interface {
	OpenGestureSource(slot int) (ingest.GestureSource, error)
}

// GesturePool owns one detector per body slot and feeds accepted results
// into the shared feature map.
type GesturePool struct {
	detectors [models.BodyCount]*GestureDetector
	features  *models.FeatureMap
	wg        sync.WaitGroup
	closeOnce sync.Once

	rebinds uint64
}

// NewGesturePool opens a classifier stream for every slot.
func NewGesturePool(opener GestureSourceOpener, features *models.FeatureMap) (*GesturePool, error) {
	p := &GesturePool{features: features}
	for slot := range p.detectors {
		src, err := opener.OpenGestureSource(slot)
		if err != nil {
			p.closeSources()
			return nil, fmt.Errorf("open gesture source %d: %w", slot, err)
		}
		p.detectors[slot] = newGestureDetector(slot, src)
	}
	return p, nil
}

// Start launches one result reader per detector until ctx is cancelled.
func (p *GesturePool) Start(ctx context.Context) {
	for _, d := range p.detectors {
		p.wg.Add(1)
		go func(d *GestureDetector) {
			defer p.wg.Done()
			d.run(ctx, p.onResult)
		}(d)
	}
	utils.L().Info("gesture pool started  (detectors=%d)", len(p.detectors))
}

func (p *GesturePool) onResult(r models.GestureResult) {
	if !p.features.Set(r.Name, r.Confidence) {
		utils.L().Debug("gesture pool: ignoring unknown gesture %q", r.Name)
	}
}

// Rebind binds every detector to the tracking id of its slot's body and
// returns the number of detectors whose binding changed.
func (p *GesturePool) Rebind(bodies []models.Body) int {
	n := 0
	for slot := 0; slot < len(bodies) && slot < len(p.detectors); slot++ {
		if p.detectors[slot].Bind(bodies[slot].TrackingID) {
			n++
		}
	}
	atomic.AddUint64(&p.rebinds, uint64(n))
	return n
}

// Detector returns the detector of slot.
func (p *GesturePool) Detector(slot int) *GestureDetector {
	return p.detectors[slot]
}

// Close shuts every classifier stream and waits for the readers.
func (p *GesturePool) Close() error {
	p.closeOnce.Do(p.closeSources)
	p.wg.Wait()
	return nil
}

func (p *GesturePool) closeSources() {
	for _, d := range p.detectors {
		if d == nil {
			continue
		}
		if err := d.source.Close(); err != nil {
			utils.L().Warn("gesture pool: close source %d: %v", d.slot, err)
		}
	}
}

// Stats returns (rebinds, accepted, rejected) totals.
func (p *GesturePool) Stats() (uint64, uint64, uint64) {
	var accepted, rejected uint64
	for _, d := range p.detectors {
		d.mu.Lock()
		accepted += d.accepted
		rejected += d.rejected
		d.mu.Unlock()
	}
	return atomic.LoadUint64(&p.rebinds), accepted, rejected
}
