package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gesture-logger/models"
	"gesture-logger/services/decode"
	"gesture-logger/services/ingest"
)

type frameHarness struct {
	fc       *FrameController
	display  *fakeDisplay
	recorder *fakeRecorder
	pool     *GesturePool
}

func newFrameHarness(t *testing.T, mode models.DisplayMode) *frameHarness {
	t.Helper()
	pool, _, _ := newTestPool(t)
	h := &frameHarness{
		display:  &fakeDisplay{},
		recorder: &fakeRecorder{elapsed: 2 * time.Second},
		pool:     pool,
	}
	fc, err := NewFrameController(newFakeFrameSource(), h.display, NewBodyTracker(), pool, h.recorder,
		decode.DefaultInfraredParams(), mode)
	require.NoError(t, err)
	h.fc = fc
	return h
}

func TestFrameController_ExpiredArrivalIsSkipped(t *testing.T) {
	h := newFrameHarness(t, models.DisplayInfrared)
	assert.False(t, h.fc.ProcessArrival(fakeArrival{}))
	assert.Empty(t, h.display.presents)
	assert.Equal(t, uint64(1), h.fc.Stats().Skipped)
}

func TestFrameController_InfraredPresents(t *testing.T) {
	h := newFrameHarness(t, models.DisplayInfrared)
	f := &fakeFrame{bodies: bodiesWith(nil)}
	require.True(t, h.fc.ProcessArrival(fakeArrival{f}))

	require.Len(t, h.display.presents, 1)
	assert.Len(t, h.display.presents[0], testDepthDesc.DisplayBytes())
	assert.Equal(t, byte(2), h.display.presents[0][0])
	assert.Equal(t, f.acquired, f.released)
	assert.Equal(t, 2*time.Second, h.display.elapsed)
}

func TestFrameController_BodyMaskMissingBodyIndex(t *testing.T) {
	h := newFrameHarness(t, models.DisplayBodyMask)
	f := &fakeFrame{bodies: bodiesWith(nil), noIndex: true}

	assert.NotPanics(t, func() { h.fc.ProcessArrival(fakeArrival{f}) })
	assert.Empty(t, h.display.presents)
	assert.Equal(t, 3, f.acquired, "body, depth and color")
	assert.Equal(t, f.acquired, f.released)
}

func TestFrameController_BodyMaskComposes(t *testing.T) {
	h := newFrameHarness(t, models.DisplayBodyMask)
	f := &fakeFrame{bodies: bodiesWith(nil)}
	h.fc.ProcessArrival(fakeArrival{f})

	require.Len(t, h.display.presents, 1)
	px := h.display.presents[0]
	require.Len(t, px, testColorDesc.DisplayBytes())

	var kept int
	for i := 0; i < len(px); i += 4 {
		if px[i] != 0 {
			kept++
		}
	}
	assert.Positive(t, kept, "the body pixel survives")
	assert.Less(t, kept, testColorDesc.LengthInPixels(), "background is masked")
	assert.Equal(t, f.acquired, f.released)
}

func TestFrameController_LogsEveryMatchingSlot(t *testing.T) {
	h := newFrameHarness(t, models.DisplayDepth)

	h.fc.ProcessArrival(fakeArrival{&fakeFrame{bodies: bodiesWith(map[int]uint64{2: 72})}})
	h.fc.ProcessArrival(fakeArrival{&fakeFrame{bodies: bodiesWith(map[int]uint64{0: 10, 2: 72})}})
	// slot 2 leaves: its detector unbinds and its stale cached id no longer matches
	h.fc.ProcessArrival(fakeArrival{&fakeFrame{bodies: bodiesWith(map[int]uint64{0: 10})}})

	assert.Equal(t, []logCall{
		{Slot: 2, Participant: 1, TrackingID: 72},
		{Slot: 0, Participant: 2, TrackingID: 10},
		{Slot: 2, Participant: 1, TrackingID: 72},
		{Slot: 0, Participant: 2, TrackingID: 10},
	}, h.recorder.calls)

	st := h.fc.Stats()
	assert.Equal(t, uint64(4), st.LogRequests)
	assert.Equal(t, uint64(3), st.Processed)
	assert.Equal(t, uint64(3), st.Rebinds)
}

func TestFrameController_MissingBodyFrameSkipsTracking(t *testing.T) {
	h := newFrameHarness(t, models.DisplayDepth)
	f := &fakeFrame{}
	require.True(t, h.fc.ProcessArrival(fakeArrival{f}))
	assert.Empty(t, h.recorder.calls)
	assert.Len(t, h.display.presents, 1, "display mode still runs")
	assert.Equal(t, f.acquired, f.released)
}

func TestFrameController_ModeSwitchResizes(t *testing.T) {
	h := newFrameHarness(t, models.DisplayInfrared)
	assert.Equal(t, testDepthDesc.Width, h.display.w)

	require.NoError(t, h.fc.SetDisplayMode(models.DisplayColor))
	assert.Equal(t, models.DisplayColor, h.fc.DisplayMode())
	assert.Equal(t, testColorDesc.Width, h.display.w)
	assert.Equal(t, testColorDesc.Height, h.display.h)

	h.fc.ProcessArrival(fakeArrival{&fakeFrame{}})
	require.Len(t, h.display.presents, 1)
	assert.Len(t, h.display.presents[0], testColorDesc.DisplayBytes())

	assert.Error(t, h.fc.SetDisplayMode(models.DisplayMode(42)))
	assert.Equal(t, models.DisplayColor, h.fc.DisplayMode())
}

func TestFrameController_BodyJoints(t *testing.T) {
	h := newFrameHarness(t, models.DisplayBodyJoints)
	h.fc.ProcessArrival(fakeArrival{&fakeFrame{bodies: bodiesWith(map[int]uint64{4: 9})}})

	require.Len(t, h.display.bodies, 1)
	overlays := h.display.bodies[0]
	require.Len(t, overlays, 1)
	assert.Equal(t, 4, overlays[0].Slot)
	assert.Equal(t, uint64(9), overlays[0].TrackingID)
	head := overlays[0].Joints[models.Head]
	assert.InDelta(t, float64(testDepthDesc.Width)/2, float64(head.Point.X), 1e-3)
	assert.Equal(t, models.Tracked, head.TrackingState)
}

func TestFrameController_StartConsumesUntilClosed(t *testing.T) {
	h := newFrameHarness(t, models.DisplayInfrared)
	ch := make(chan ingest.FrameArrival, 2)
	ch <- fakeArrival{&fakeFrame{}}
	ch <- fakeArrival{}
	close(ch)

	h.fc.Start(context.Background(), ch)
	select {
	case <-h.fc.Done():
	case <-time.After(time.Second):
		t.Fatal("controller did not stop on closed stream")
	}
	st := h.fc.Stats()
	assert.Equal(t, uint64(1), st.Processed)
	assert.Equal(t, uint64(1), st.Skipped)
}
