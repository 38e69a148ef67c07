package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayModeRoundTrip(t *testing.T) {
	t.Parallel()
	for _, m := range []DisplayMode{DisplayInfrared, DisplayColor, DisplayDepth, DisplayBodyMask, DisplayBodyJoints} {
		got, err := ParseDisplayMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseDisplayMode("thermal")
	assert.Error(t, err)
	got, err := ParseDisplayMode(" BodyMask ")
	require.NoError(t, err)
	assert.Equal(t, DisplayBodyMask, got)
}

func TestFrameRelease_RunsOnce(t *testing.T) {
	t.Parallel()
	n := 0
	f := NewDepthFrame(FrameDescription{Width: 1, Height: 1}, []uint16{1}, 0, 1, func() { n++ })
	f.Release()
	f.Release()
	assert.Equal(t, 1, n)

	assert.NotPanics(t, func() { NewBodyIndexFrame(FrameDescription{}, nil, nil).Release() })
}

func TestDepthSpacePoint_IsValid(t *testing.T) {
	t.Parallel()
	assert.False(t, InvalidDepthSpacePoint.IsValid())
	assert.True(t, DepthSpacePoint{X: -3, Y: 2}.IsValid())
}

func TestCopyConvertedFrameData(t *testing.T) {
	t.Parallel()
	desc := FrameDescription{Width: 2, Height: 1}
	dst := make([]byte, 8)

	// white in studio-range YUY2
	f := NewColorFrame(desc, ImageFormatYUY2, []byte{235, 128, 235, 128}, nil)
	require.NoError(t, f.CopyConvertedFrameData(dst, ImageFormatBGRA))
	assert.Equal(t, []byte{255, 255, 255, 255, 255, 255, 255, 255}, dst)

	assert.Error(t, f.CopyConvertedFrameData(dst, ImageFormatRGBA), "only BGRA output")
	assert.Error(t, f.CopyConvertedFrameData(dst[:4], ImageFormatBGRA))

	short := NewColorFrame(desc, ImageFormatBGRA, []byte{1, 2, 3}, nil)
	assert.Error(t, short.CopyConvertedFrameData(dst, ImageFormatBGRA))
}

func TestGestureResult_Validate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, (&GestureResult{Name: "A", Confidence: 1}).Validate())
	assert.Error(t, (&GestureResult{Confidence: 0.5}).Validate())
	assert.Error(t, (&GestureResult{Name: "A", Confidence: -0.1}).Validate())
	assert.Error(t, (&GestureResult{Name: "A", HasProgress: true, Progress: 2}).Validate())
}
