package ingest

import (
	"math"
	"math/rand"
	"sync"

	"gesture-logger/models"
)

// skeleton is a standing pose in metres relative to SpineBase.
var skeleton = [models.JointCount]models.CameraSpacePoint{
	models.SpineBase:     {X: 0, Y: 0, Z: 0},
	models.SpineMid:      {X: 0, Y: 0.30, Z: 0},
	models.Neck:          {X: 0, Y: 0.60, Z: 0},
	models.Head:          {X: 0, Y: 0.75, Z: 0},
	models.ShoulderLeft:  {X: -0.18, Y: 0.52, Z: 0},
	models.ElbowLeft:     {X: -0.22, Y: 0.25, Z: 0},
	models.WristLeft:     {X: -0.24, Y: 0.02, Z: 0},
	models.HandLeft:      {X: -0.25, Y: -0.05, Z: 0},
	models.ShoulderRight: {X: 0.18, Y: 0.52, Z: 0},
	models.ElbowRight:    {X: 0.22, Y: 0.25, Z: 0},
	models.WristRight:    {X: 0.24, Y: 0.02, Z: 0},
	models.HandRight:     {X: 0.25, Y: -0.05, Z: 0},
	models.HipLeft:       {X: -0.09, Y: -0.02, Z: 0},
	models.KneeLeft:      {X: -0.10, Y: -0.42, Z: 0},
	models.AnkleLeft:     {X: -0.10, Y: -0.80, Z: 0},
	models.FootLeft:      {X: -0.10, Y: -0.85, Z: -0.10},
	models.HipRight:      {X: 0.09, Y: -0.02, Z: 0},
	models.KneeRight:     {X: 0.10, Y: -0.42, Z: 0},
	models.AnkleRight:    {X: 0.10, Y: -0.80, Z: 0},
	models.FootRight:     {X: 0.10, Y: -0.85, Z: -0.10},
	models.SpineShoulder: {X: 0, Y: 0.52, Z: 0},
	models.HandTipLeft:   {X: -0.26, Y: -0.13, Z: 0},
	models.ThumbLeft:     {X: -0.22, Y: -0.07, Z: -0.03},
	models.HandTipRight:  {X: 0.26, Y: -0.13, Z: 0},
	models.ThumbRight:    {X: 0.22, Y: -0.07, Z: -0.03},
}

// trackingIDs hands out the next tracking id. Ids are never reused.
type trackingIDs struct {
	id uint64
	sync.Mutex
}

func (g *trackingIDs) next() uint64 {
	g.Lock()
	defer g.Unlock()
	g.id++
	return g.id
}

type sceneSlot struct {
	trackingID uint64
	present    bool
	toggleAt   uint64 // tick at which presence flips
	phase      float64
}

// Scene animates participants walking in and out of the sensor's body slots.
// Every entry gets a fresh tracking id.
type Scene struct {
	mu    sync.Mutex
	rng   *rand.Rand
	ids   trackingIDs
	fps   int
	tick  uint64
	slots [models.BodyCount]sceneSlot
}

// NewScene creates a scene in which the first participants slots are used.
// Participants enter one second apart.
func NewScene(participants int, seed int64, fps int) *Scene {
	if participants > models.BodyCount {
		participants = models.BodyCount
	}
	if fps <= 0 {
		fps = 30
	}
	s := &Scene{rng: rand.New(rand.NewSource(seed)), fps: fps}
	for i := range s.slots {
		if i < participants {
			s.slots[i].toggleAt = uint64((i + 1) * fps)
		} else {
			s.slots[i].toggleAt = math.MaxUint64
		}
	}
	return s
}

// Step advances the scene by one tick and returns the body slots.
func (s *Scene) Step() [models.BodyCount]models.Body {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	for i := range s.slots {
		sl := &s.slots[i]
		if s.tick < sl.toggleAt {
			continue
		}
		sl.present = !sl.present
		if sl.present {
			sl.trackingID = s.ids.next()
			sl.phase = s.rng.Float64() * 2 * math.Pi
			sl.toggleAt = s.tick + uint64((5+s.rng.Intn(10))*s.fps)
		} else {
			sl.trackingID = 0
			sl.toggleAt = s.tick + uint64((1+s.rng.Intn(3))*s.fps)
		}
	}
	return s.bodies()
}

func (s *Scene) bodies() [models.BodyCount]models.Body {
	var out [models.BodyCount]models.Body
	t := float64(s.tick) / float64(s.fps)
	for i, sl := range s.slots {
		if !sl.present {
			continue
		}
		b := &out[i]
		b.TrackingID = sl.trackingID
		b.IsTracked = true

		root := models.CameraSpacePoint{
			X: float32(-0.9 + 0.36*float64(i) + 0.05*math.Sin(t+sl.phase)),
			Y: -0.1,
			Z: float32(2.2 + 0.3*float64(i%3)),
		}
		raise := float32(0.2 * (1 + math.Sin(0.5*t+sl.phase)))
		for j := range b.Joints {
			p := skeleton[j]
			switch models.JointType(j) {
			case models.WristRight, models.HandRight, models.HandTipRight, models.ThumbRight:
				p.Y += raise
			case models.ElbowRight:
				p.Y += raise / 2
			}
			b.Joints[j] = models.Joint{
				Type: models.JointType(j),
				Position: models.CameraSpacePoint{
					X: root.X + p.X, Y: root.Y + p.Y, Z: root.Z + p.Z,
				},
				TrackingState: models.Tracked,
			}
		}
		// feet are often occluded
		if s.rng.Intn(4) == 0 {
			b.Joints[models.FootLeft].TrackingState = models.Inferred
			b.Joints[models.FootRight].TrackingState = models.Inferred
		}
	}
	return out
}

// sceneRaster is the depth-resolution rendering of one frame set.
type sceneRaster struct {
	desc  models.FrameDescription
	depth []uint16
	index []byte
}

func newSceneRaster(desc models.FrameDescription) *sceneRaster {
	return &sceneRaster{
		desc:  desc,
		depth: make([]uint16, desc.LengthInPixels()),
		index: make([]byte, desc.LengthInPixels()),
	}
}

// limbRadius is the thickness of a rendered bone in metres.
const limbRadius = 0.07

// render paints a back wall and every tracked body, nearest surface wins.
func (r *sceneRaster) render(bodies *[models.BodyCount]models.Body, mapper *SimulatedMapper) {
	w, h := r.desc.Width, r.desc.Height
	for y := 0; y < h; y++ {
		// floor rises towards the bottom of the image
		wall := uint16(4000 - 1500*y/h)
		row := r.depth[y*w : (y+1)*w]
		for x := range row {
			row[x] = wall
		}
	}
	for i := range r.index {
		r.index[i] = models.NoBody
	}

	for slot := range bodies {
		b := &bodies[slot]
		if !b.IsTracked {
			continue
		}
		for _, bone := range models.Bones {
			a, c := b.Joints[bone[0]].Position, b.Joints[bone[1]].Position
			for k := 0; k <= 8; k++ {
				f := float32(k) / 8
				p := models.CameraSpacePoint{
					X: a.X + (c.X-a.X)*f,
					Y: a.Y + (c.Y-a.Y)*f,
					Z: a.Z + (c.Z-a.Z)*f,
				}
				r.stamp(p, byte(slot), mapper)
			}
		}
		r.stamp(b.Joints[models.Head].Position, byte(slot), mapper)
	}
}

// stamp draws a disc of limbRadius around p.
func (r *sceneRaster) stamp(p models.CameraSpacePoint, slot byte, mapper *SimulatedMapper) {
	c := mapper.MapCameraPointToDepthSpace(p)
	if !c.IsValid() {
		return
	}
	rad := int(mapper.fx*limbRadius/p.Z) + 1
	mm := uint16(p.Z * 1000)
	cx, cy := int(c.X), int(c.Y)
	for dy := -rad; dy <= rad; dy++ {
		y := cy + dy
		if y < 0 || y >= r.desc.Height {
			continue
		}
		for dx := -rad; dx <= rad; dx++ {
			x := cx + dx
			if x < 0 || x >= r.desc.Width || dx*dx+dy*dy > rad*rad {
				continue
			}
			i := y*r.desc.Width + x
			if mm < r.depth[i] {
				r.depth[i] = mm
				r.index[i] = slot
			}
		}
	}
}

// infraredAt derives an infrared return from depth: nearer surfaces are brighter.
func infraredAt(depthMM uint16, noise int) uint16 {
	v := int(6000*(4500-int(depthMM)))/4500 + 2000 + noise
	if v < 0 {
		return 0
	}
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

// slotColors is the BGR tint of each body slot in the color stream.
var slotColors = [models.BodyCount][3]byte{
	{60, 60, 220}, {60, 200, 60}, {220, 120, 40},
	{40, 200, 220}, {200, 60, 200}, {200, 200, 60},
}
