package ingest

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"gesture-logger/models"
	"gesture-logger/utils"
)

// SimulatedGestureSource emits one result per label at a fixed rate while it
// is bound to a tracking id and not paused. Confidences follow slow sine
// waves whose phase depends on the tracking id.
type SimulatedGestureSource struct {
	slot     int
	labels   []string
	interval time.Duration

	trackingID atomic.Uint64
	paused     atomic.Bool

	results   chan models.GestureResult
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	emitted uint64
	dropped uint64
}

// NewSimulatedGestureSource starts the source's emitter goroutine.
func NewSimulatedGestureSource(slot int, labels []string, rateHz int) *SimulatedGestureSource {
	if rateHz <= 0 {
		rateHz = 15
	}
	ctx, cancel := context.WithCancel(context.Background())
	g := &SimulatedGestureSource{
		slot:     slot,
		labels:   labels,
		interval: time.Second / time.Duration(rateHz),
		results:  make(chan models.GestureResult, 2*len(labels)),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	g.paused.Store(true)
	go g.run(ctx)
	return g
}

func (g *SimulatedGestureSource) SetTrackingID(id uint64)              { g.trackingID.Store(id) }
func (g *SimulatedGestureSource) SetPaused(paused bool)                { g.paused.Store(paused) }
func (g *SimulatedGestureSource) Results() <-chan models.GestureResult { return g.results }

// Close stops the emitter and closes the results channel.
func (g *SimulatedGestureSource) Close() error {
	g.closeOnce.Do(func() {
		g.cancel()
		<-g.done
		close(g.results)
	})
	return nil
}

// Stats returns (emitted, dropped) result counts atomically.
func (g *SimulatedGestureSource) Stats() (uint64, uint64) {
	return atomic.LoadUint64(&g.emitted), atomic.LoadUint64(&g.dropped)
}

func (g *SimulatedGestureSource) run(ctx context.Context) {
	defer close(g.done)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			e, d := g.Stats()
			utils.L().Debug("gesture source %d stopped  (emitted=%d, dropped=%d)", g.slot, e, d)
			return
		case <-ticker.C:
			id := g.trackingID.Load()
			if id == 0 || g.paused.Load() {
				continue
			}
			t := time.Since(start).Seconds()
			for i, name := range g.labels {
				select {
				case g.results <- SimulatedResult(name, i, id, t):
					atomic.AddUint64(&g.emitted, 1)
				default:
					atomic.AddUint64(&g.dropped, 1)
				}
			}
		}
	}
}

// SimulatedResult computes the classifier output for gesture i of body id at t seconds.
func SimulatedResult(name string, i int, id uint64, t float64) models.GestureResult {
	phase := float64(id%97)/97*2*math.Pi + float64(i)
	omega := 0.3 + 0.07*float64(i)
	conf := float32(0.5 + 0.5*math.Sin(omega*t+phase))
	r := models.GestureResult{
		Name:       name,
		TrackingID: id,
		Detected:   conf > 0.6,
		Confidence: conf,
	}
	// every fourth gesture is continuous and reports progress
	if i%4 == 0 {
		r.HasProgress = true
		r.Progress = float32(0.5 + 0.5*math.Cos(omega*t+phase))
	}
	return r
}
