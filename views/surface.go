package views

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"gesture-logger/models"
	"gesture-logger/utils"
)

var (
	boneColor     = [4]byte{255, 255, 255, 255} // BGRA
	trackedColor  = [4]byte{0, 220, 0, 255}
	inferredColor = [4]byte{0, 220, 220, 255}
)

// Surface is a headless display: it keeps the last presented BGRA frame,
// skeleton overlay, status text and elapsed time, and can snapshot them to BMP.
type Surface struct {
	mu       sync.Mutex
	width    int
	height   int
	pixels   []byte
	bodies   []models.BodyOverlay
	status   string
	elapsed  time.Duration
	presents uint64
	resizes  uint64
}

func NewSurface() *Surface {
	return &Surface{}
}

// Resize reallocates the backing bitmap, clearing it.
func (s *Surface) Resize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = w, h
	s.pixels = make([]byte, w*h*models.BytesPerPixel)
	s.bodies = nil
	s.resizes++
}

// Present copies a full BGRA frame into the bitmap. Frames that do not fit
// the current size are ignored.
func (s *Surface) Present(px []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(px) != len(s.pixels) {
		utils.L().Debug("surface: ignoring %d-byte frame for %dx%d bitmap", len(px), s.width, s.height)
		return
	}
	copy(s.pixels, px)
	s.presents++
}

// PresentBodies clears the bitmap and draws each skeleton in depth-space coordinates.
func (s *Surface) PresentBodies(bodies []models.BodyOverlay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies = append(s.bodies[:0], bodies...)
	clear(s.pixels)
	for i := range s.bodies {
		s.drawBody(&s.bodies[i])
	}
	s.presents++
}

func (s *Surface) SetStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

func (s *Surface) SetElapsed(d time.Duration) {
	s.mu.Lock()
	s.elapsed = d
	s.mu.Unlock()
}

func (s *Surface) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Surface) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Size returns the bitmap dimensions.
func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Presents returns the number of frames presented since creation.
func (s *Surface) Presents() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presents
}

// Bodies returns a copy of the last skeleton overlay.
func (s *Surface) Bodies() []models.BodyOverlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.BodyOverlay(nil), s.bodies...)
}

// Pixels returns a copy of the current bitmap.
func (s *Surface) Pixels() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.pixels...)
}

// Image converts the bitmap to RGBA and stamps the status line on it.
func (s *Surface) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for i := 0; i+3 < len(s.pixels); i += 4 {
		img.Pix[i+0] = s.pixels[i+2]
		img.Pix[i+1] = s.pixels[i+1]
		img.Pix[i+2] = s.pixels[i+0]
		img.Pix[i+3] = 255
	}

	dr := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{255, 255, 0, 255}),
		Face: basicfont.Face7x13,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(4 * 64),
			Y: fixed.Int26_6(14 * 64),
		},
	}
	dr.DrawString(s.status + "  " + utils.FormatElapsed(s.elapsed))
	return img
}

// WriteBMP writes the current bitmap to path.
func (s *Surface) WriteBMP(path string) error {
	img := s.Image()
	if img.Bounds().Empty() {
		return fmt.Errorf("surface has no bitmap")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot %s: %w", path, err)
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return f.Close()
}

func (s *Surface) drawBody(b *models.BodyOverlay) {
	for _, bone := range models.Bones {
		a, c := b.Joints[bone[0]], b.Joints[bone[1]]
		if a.TrackingState == models.NotTracked || c.TrackingState == models.NotTracked {
			continue
		}
		s.line(a.Point, c.Point, boneColor)
	}
	for _, j := range b.Joints {
		switch j.TrackingState {
		case models.Tracked:
			s.dot(j.Point, trackedColor)
		case models.Inferred:
			s.dot(j.Point, inferredColor)
		}
	}
}

func (s *Surface) line(a, b models.DepthSpacePoint, c [4]byte) {
	if !a.IsValid() || !b.IsValid() {
		return
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	// bound work for points projected far off screen
	steps := int(min(max(abs32(dx), abs32(dy)), float32(4*(s.width+s.height))))
	if steps == 0 {
		s.set(int(a.X), int(a.Y), c)
		return
	}
	for i := 0; i <= steps; i++ {
		f := float32(i) / float32(steps)
		s.set(int(a.X+dx*f), int(a.Y+dy*f), c)
	}
}

func (s *Surface) dot(p models.DepthSpacePoint, c [4]byte) {
	if !p.IsValid() {
		return
	}
	x, y := int(p.X), int(p.Y)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			s.set(x+dx, y+dy, c)
		}
	}
}

func (s *Surface) set(x, y int, c [4]byte) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return
	}
	o := (y*s.width + x) * models.BytesPerPixel
	copy(s.pixels[o:o+4], c[:])
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
