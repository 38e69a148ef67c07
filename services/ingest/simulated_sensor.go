package ingest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"gesture-logger/models"
	"gesture-logger/utils"
)

// ErrSensorClosed is returned when opening a sensor that has already been closed.
var ErrSensorClosed = errors.New("sensor closed")

// SimulatedSensor generates multi-source frame sets from a synthetic scene.
// Arrivals are pushed into a buffered channel without blocking the capture
// goroutine; frames are rendered only when a consumer acquires them.
type SimulatedSensor struct {
	cfg         *utils.SensorsConfig
	descs       map[models.SourceKind]models.FrameDescription
	colorFormat models.ImageFormat
	minReliable uint16
	maxReliable uint16
	expireAfter uint64
	dropRates   map[models.SourceKind]float64
	labels      []string

	mapper *SimulatedMapper
	scene  *Scene

	infraredPool  *FramePool[[]uint16]
	depthPool     *FramePool[[]uint16]
	colorPool     *FramePool[[]byte]
	bodyIndexPool *FramePool[[]byte]
	bodyPool      *FramePool[*[models.BodyCount]models.Body]

	arrivals     chan FrameArrival
	availability chan bool

	rngMu sync.Mutex
	rng   *rand.Rand

	// raster cache: one rendering per sequence number
	paintMu   sync.Mutex
	raster    *sceneRaster
	rasterSeq uint64

	seq    atomic.Uint64
	mu     sync.Mutex
	state  int // 0 new, 1 open, 2 closed
	cancel context.CancelFunc
	done   chan struct{}

	produced    uint64
	dropped     uint64 // arrivals the consumer was too slow to take
	expired     uint64
	unavailable uint64 // acquisitions refused by the drop rate
	starved     uint64 // acquisitions refused because the pool was empty
}

// NewSimulatedSensor builds the sensor, its frame pools and the scene.
func NewSimulatedSensor(cfg *utils.SensorsConfig) (*SimulatedSensor, error) {
	sc := cfg.Sensors
	format, ok := models.ParseImageFormat(sc.Color.Format)
	if !ok {
		return nil, fmt.Errorf("simulated sensor: unsupported color format %q", sc.Color.Format)
	}
	if sc.Depth.MaxReliableMM > 0xFFFF {
		return nil, fmt.Errorf("simulated sensor: max reliable depth %d out of range", sc.Depth.MaxReliableMM)
	}

	s := &SimulatedSensor{
		cfg: cfg,
		descs: map[models.SourceKind]models.FrameDescription{
			models.SourceInfrared:  {Width: sc.Infrared.Width, Height: sc.Infrared.Height},
			models.SourceColor:     {Width: sc.Color.Width, Height: sc.Color.Height},
			models.SourceDepth:     {Width: sc.Depth.Width, Height: sc.Depth.Height},
			models.SourceBodyIndex: {Width: sc.BodyIndex.Width, Height: sc.BodyIndex.Height},
		},
		colorFormat: format,
		minReliable: uint16(sc.Depth.MinReliableMM),
		maxReliable: uint16(sc.Depth.MaxReliableMM),
		dropRates: map[models.SourceKind]float64{
			models.SourceInfrared:  sc.Infrared.DropRate,
			models.SourceColor:     sc.Color.DropRate,
			models.SourceDepth:     sc.Depth.DropRate,
			models.SourceBodyIndex: sc.BodyIndex.DropRate,
			models.SourceBody:      sc.Body.DropRate,
		},
		labels:       cfg.Gestures.Labels,
		rng:          rand.New(rand.NewSource(cfg.Simulation.Seed)),
		availability: make(chan bool, 4),
		done:         make(chan struct{}),
	}
	if sc.ExpireAfter > 0 {
		s.expireAfter = uint64(sc.ExpireAfter)
	}
	if len(s.labels) == 0 {
		s.labels = models.KnownGestures[:]
	}
	buf := sc.ChannelBuffer
	if buf <= 0 {
		buf = 8
	}
	s.arrivals = make(chan FrameArrival, buf)

	depth := s.descs[models.SourceDepth]
	s.mapper = NewSimulatedMapper(depth, s.descs[models.SourceColor])
	s.scene = NewScene(cfg.Simulation.Participants, cfg.Simulation.Seed, sc.FPS)
	s.raster = newSceneRaster(depth)

	n := sc.FramePoolSize
	ir, ci, bi := s.descs[models.SourceInfrared], s.descs[models.SourceColor], s.descs[models.SourceBodyIndex]
	s.infraredPool = NewFramePool(n, func() []uint16 { return make([]uint16, ir.LengthInPixels()) })
	s.depthPool = NewFramePool(n, func() []uint16 { return make([]uint16, depth.LengthInPixels()) })
	s.colorPool = NewFramePool(n, func() []byte { return make([]byte, ci.LengthInPixels()*format.BytesPerPixel()) })
	s.bodyIndexPool = NewFramePool(n, func() []byte { return make([]byte, bi.LengthInPixels()) })
	s.bodyPool = NewFramePool(n, func() *[models.BodyCount]models.Body { return new([models.BodyCount]models.Body) })
	return s, nil
}

// Open starts the capture goroutine and reports the sensor available.
func (s *SimulatedSensor) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case 1:
		return nil
	case 2:
		return ErrSensorClosed
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.state = 1
	go s.run(ctx)
	s.notify(true)

	utils.L().Info("simulated sensor opened  (fps=%d, buffer=%d, pool=%d, participants=%d)",
		s.cfg.Sensors.FPS, cap(s.arrivals), s.cfg.Sensors.FramePoolSize, s.cfg.Simulation.Participants)
	return nil
}

// Close stops the capture goroutine and closes the arrival channel.
func (s *SimulatedSensor) Close() error {
	s.mu.Lock()
	if s.state != 1 {
		s.state = 2
		s.mu.Unlock()
		return nil
	}
	s.state = 2
	s.cancel()
	s.mu.Unlock()

	<-s.done
	s.notify(false)
	return nil
}

// IsAvailable reports whether the sensor is open.
func (s *SimulatedSensor) IsAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == 1
}

func (s *SimulatedSensor) Arrivals() <-chan FrameArrival      { return s.arrivals }
func (s *SimulatedSensor) AvailabilityChanged() <-chan bool   { return s.availability }
func (s *SimulatedSensor) CoordinateMapper() CoordinateMapper { return s.mapper }
func (s *SimulatedSensor) BodyCount() int                     { return models.BodyCount }

// FrameDescription returns the geometry of one modality. Body frames have none.
func (s *SimulatedSensor) FrameDescription(kind models.SourceKind) models.FrameDescription {
	return s.descs[kind]
}

// OpenGestureSource opens a classifier stream for slot, initially unbound and paused.
func (s *SimulatedSensor) OpenGestureSource(slot int) (GestureSource, error) {
	if slot < 0 || slot >= models.BodyCount {
		return nil, fmt.Errorf("gesture source: slot %d out of range", slot)
	}
	return NewSimulatedGestureSource(slot, s.labels, s.cfg.Gestures.ResultRateHz), nil
}

func (s *SimulatedSensor) notify(available bool) {
	select {
	case s.availability <- available:
	default:
	}
}

func (s *SimulatedSensor) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.arrivals)

	interval := time.Second / time.Duration(s.cfg.Sensors.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p, d := s.Stats()
			utils.L().Info("simulated sensor stopped  (produced=%d, dropped=%d, expired=%d)",
				p, d, atomic.LoadUint64(&s.expired))
			return
		case <-ticker.C:
			a := &arrival{sensor: s, bodies: s.scene.Step()}
			a.seq = s.seq.Add(1)

			// Non-blocking send: a slow consumer loses arrivals instead of
			// stalling capture.
			select {
			case s.arrivals <- a:
				atomic.AddUint64(&s.produced, 1)
			default:
				atomic.AddUint64(&s.dropped, 1)
				utils.L().Debug("sensor: dropped arrival %d (consumer too slow)", a.seq)
			}
		}
	}
}

// drop rolls the modality's drop rate.
func (s *SimulatedSensor) drop(kind models.SourceKind) bool {
	rate := s.dropRates[kind]
	if rate <= 0 {
		return false
	}
	s.rngMu.Lock()
	hit := s.rng.Float64() < rate
	s.rngMu.Unlock()
	if hit {
		atomic.AddUint64(&s.unavailable, 1)
	}
	return hit
}

// withRaster renders the arrival's scene once and hands it to fn under the paint lock.
func (s *SimulatedSensor) withRaster(a *arrival, fn func(*sceneRaster)) {
	s.paintMu.Lock()
	defer s.paintMu.Unlock()
	if s.rasterSeq != a.seq {
		s.raster.render(&a.bodies, s.mapper)
		s.rasterSeq = a.seq
	}
	fn(s.raster)
}

// Stats returns (produced, dropped) arrival counts atomically.
func (s *SimulatedSensor) Stats() (uint64, uint64) {
	return atomic.LoadUint64(&s.produced), atomic.LoadUint64(&s.dropped)
}

// FrameStats returns counts of expired arrivals and of acquisitions that
// returned nil because of the drop rate or an exhausted pool.
func (s *SimulatedSensor) FrameStats() (expired, unavailable, starved uint64) {
	return atomic.LoadUint64(&s.expired), atomic.LoadUint64(&s.unavailable), atomic.LoadUint64(&s.starved)
}

// PoolAvailable returns the number of free buffers for kind.
func (s *SimulatedSensor) PoolAvailable(kind models.SourceKind) int {
	switch kind {
	case models.SourceInfrared:
		return s.infraredPool.Available()
	case models.SourceColor:
		return s.colorPool.Available()
	case models.SourceDepth:
		return s.depthPool.Available()
	case models.SourceBodyIndex:
		return s.bodyIndexPool.Available()
	case models.SourceBody:
		return s.bodyPool.Available()
	}
	return 0
}

// Tick advances the scene once and returns the arrival without going through
// the channel. Used to drive the sensor step by step.
func (s *SimulatedSensor) Tick() FrameArrival {
	a := &arrival{sensor: s, bodies: s.scene.Step()}
	a.seq = s.seq.Add(1)
	return a
}
