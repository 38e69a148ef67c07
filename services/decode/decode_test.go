package decode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gesture-logger/models"
)

var tiny = models.FrameDescription{Width: 4, Height: 2}

func TestDepthIntensity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name              string
		depth, minD, maxD uint16
		want              byte
	}{
		{"scenario A", 500, 400, 4000, 33},
		{"below min", 399, 400, 4000, 0},
		{"above max", 4001, 400, 4000, 0},
		{"at max clamps", 4000, 400, 4000, 255}, // 4000/15 = 266
		{"max below 256 divides by zero", 100, 0, 255, 0},
		{"zero depth inside range", 0, 0, 4500, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DepthIntensity(tt.depth, tt.minD, tt.maxD))
		})
	}
}

func TestInfraredIntensity_Scenarios(t *testing.T) {
	t.Parallel()
	p := DefaultInfraredParams()
	assert.Equal(t, byte(255), InfraredIntensity(65535, p), "scenario B")
	assert.Equal(t, byte(2), InfraredIntensity(0, p), "scenario C truncates 2.55")
}

func TestInfraredIntensity_Monotonic(t *testing.T) {
	t.Parallel()
	p := DefaultInfraredParams()
	prev := InfraredIntensity(0, p)
	for s := 1; s <= math.MaxUint16; s += 7 {
		cur := InfraredIntensity(uint16(s), p)
		require.GreaterOrEqual(t, cur, prev, "sample %d", s)
		require.GreaterOrEqual(t, cur, byte(2))
		prev = cur
	}
}

func TestInfraredDecoder_Decode(t *testing.T) {
	t.Parallel()
	d := NewInfraredDecoder(tiny, DefaultInfraredParams())
	f := models.NewInfraredFrame(tiny, []uint16{0, 65535, 0, 65535, 0, 0, 0, 0}, nil)

	px, ok := d.Decode(f)
	require.True(t, ok)
	require.Len(t, px, tiny.DisplayBytes())
	assert.Equal(t, []byte{2, 2, 2, 255}, px[0:4])
	assert.Equal(t, []byte{255, 255, 255, 255}, px[4:8])
}

func TestInfraredDecoder_MismatchIsNoOp(t *testing.T) {
	t.Parallel()
	d := NewInfraredDecoder(tiny, DefaultInfraredParams())
	before := append([]byte(nil), d.pixels...)

	wrong := models.FrameDescription{Width: 2, Height: 4} // same pixel count, different shape
	_, ok := d.Decode(models.NewInfraredFrame(wrong, make([]uint16, 8), nil))
	assert.False(t, ok)
	_, ok = d.Decode(nil)
	assert.False(t, ok)
	assert.Equal(t, before, d.pixels)
}

func TestInfraredDecoder_Adaptive(t *testing.T) {
	t.Parallel()
	p := DefaultInfraredParams()
	p.Adaptive = true
	d := NewInfraredDecoder(tiny, p)

	// a uniformly dim scene is stretched towards mid-grey instead of black
	samples := make([]uint16, 8)
	for i := range samples {
		samples[i] = 1000
	}
	px, ok := d.Decode(models.NewInfraredFrame(tiny, samples, nil))
	require.True(t, ok)
	assert.InDelta(t, 85, float64(px[0]), 1) // about (1/3) * 255
	assert.Less(t, InfraredIntensity(1000, DefaultInfraredParams()), px[0])

	// all-zero scene falls back to the fixed average
	px, ok = d.Decode(models.NewInfraredFrame(tiny, make([]uint16, 8), nil))
	require.True(t, ok)
	assert.Equal(t, byte(2), px[0])
}

func TestSceneStatistics(t *testing.T) {
	t.Parallel()
	mean, std := SceneStatistics([]uint16{0, 65535}, nil)
	assert.InDelta(t, 0.5, mean, 1e-9)
	assert.Greater(t, std, 0.0)

	mean, std = SceneStatistics(nil, nil)
	assert.Zero(t, mean)
	assert.Zero(t, std)
}

func TestDepthDecoder_Decode(t *testing.T) {
	t.Parallel()
	d := NewDepthDecoder(tiny)
	f := models.NewDepthFrame(tiny, []uint16{500, 399, 4001, 4000, 0, 0, 0, 0}, 400, 4000, nil)

	px, ok := d.Decode(f)
	require.True(t, ok)
	got := []byte{px[0], px[4], px[8], px[12]}
	assert.Equal(t, []byte{33, 0, 0, 255}, got)
	assert.Equal(t, byte(255), px[3], "alpha")

	_, ok = d.Decode(models.NewDepthFrame(models.FrameDescription{Width: 3, Height: 2}, make([]uint16, 6), 0, 4000, nil))
	assert.False(t, ok)
}

func TestColorDecoder(t *testing.T) {
	t.Parallel()
	d := NewColorDecoder(models.FrameDescription{Width: 2, Height: 1})

	bgra := models.NewColorFrame(models.FrameDescription{Width: 2, Height: 1}, models.ImageFormatBGRA,
		[]byte{1, 2, 3, 4, 5, 6, 7, 8}, nil)
	px, ok := d.Decode(bgra)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, px)

	rgba := models.NewColorFrame(models.FrameDescription{Width: 2, Height: 1}, models.ImageFormatRGBA,
		[]byte{1, 2, 3, 4, 5, 6, 7, 8}, nil)
	px, ok = d.Decode(rgba)
	require.True(t, ok)
	assert.Equal(t, []byte{3, 2, 1, 4, 7, 6, 5, 8}, px)

	// black in studio-range YUY2
	yuy2 := models.NewColorFrame(models.FrameDescription{Width: 2, Height: 1}, models.ImageFormatYUY2,
		[]byte{16, 128, 16, 128}, nil)
	px, ok = d.Decode(yuy2)
	require.True(t, ok)
	assert.Equal(t, []byte{0, 0, 0, 255, 0, 0, 0, 255}, px)

	_, ok = d.Decode(models.NewColorFrame(models.FrameDescription{Width: 1, Height: 2}, models.ImageFormatBGRA, make([]byte, 8), nil))
	assert.False(t, ok)
}

func TestMaskNonBodyPixels(t *testing.T) {
	t.Parallel()
	// depth image 2x2; body on pixel (1,0)
	bodyIndex := []byte{models.NoBody, 3, models.NoBody, models.NoBody}
	points := []models.DepthSpacePoint{
		{X: 1.2, Y: 0.1},               // → (1,0) body: keep
		{X: 0.4, Y: 0.4},               // → (0,0) background
		models.InvalidDepthSpacePoint,  // sentinel
		{X: 1.6, Y: 0.0},               // rounds to x=2: out of bounds
		{X: -0.7, Y: 0.2},              // truncates to (0,0): background
		{X: float32(math.NaN()), Y: 0}, // never in range
	}
	pixels := make([]byte, len(points)*4)
	for i := range pixels {
		pixels[i] = 9
	}

	MaskNonBodyPixels(points, bodyIndex, 2, 2, pixels)

	assert.Equal(t, []byte{9, 9, 9, 9}, pixels[0:4])
	for i := 1; i < len(points); i++ {
		assert.Equal(t, []byte{0, 0, 0, 0}, pixels[i*4:i*4+4], "pixel %d", i)
	}
}

func TestMaskNonBodyPixels_NegativeFractionKeepsBody(t *testing.T) {
	t.Parallel()
	bodyIndex := []byte{0, models.NoBody}
	points := []models.DepthSpacePoint{{X: -0.7, Y: 0}}
	pixels := []byte{5, 5, 5, 5}
	MaskNonBodyPixels(points, bodyIndex, 2, 1, pixels)
	assert.Equal(t, []byte{5, 5, 5, 5}, pixels)
}

type stubMapper struct {
	points []models.DepthSpacePoint
	err    error
}

func (m *stubMapper) MapColorFrameToDepthSpace(_ []uint16, out []models.DepthSpacePoint) error {
	if m.err != nil {
		return m.err
	}
	copy(out, m.points)
	return nil
}

func TestBodyMasker_Compose(t *testing.T) {
	t.Parallel()
	colorDesc := models.FrameDescription{Width: 2, Height: 1}
	depthDesc := models.FrameDescription{Width: 2, Height: 1}
	mapper := &stubMapper{points: []models.DepthSpacePoint{{X: 0, Y: 0}, {X: 1, Y: 0}}}
	m := NewBodyMasker(mapper, colorDesc)

	depth := models.NewDepthFrame(depthDesc, []uint16{1000, 1000}, 500, 4500, nil)
	color := models.NewColorFrame(colorDesc, models.ImageFormatBGRA, []byte{1, 2, 3, 4, 5, 6, 7, 8}, nil)
	index := models.NewBodyIndexFrame(depthDesc, []byte{0, models.NoBody}, nil)

	px, ok := m.Compose(depth, color, index)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0, 0, 0}, px)

	_, ok = m.Compose(depth, color, nil)
	assert.False(t, ok, "partial frame set is not processed")

	mapper.err = assert.AnError
	_, ok = m.Compose(depth, color, index)
	assert.False(t, ok)
}
