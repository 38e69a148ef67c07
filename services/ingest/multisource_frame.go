package ingest

import (
	"sync/atomic"

	"gesture-logger/models"
)

// arrival is one tick of the simulated sensor.
type arrival struct {
	sensor *SimulatedSensor
	seq    uint64
	bodies [models.BodyCount]models.Body
}

// AcquireFrame returns nil once newer arrivals have pushed this one past the
// sensor's expiry window.
func (a *arrival) AcquireFrame() MultiSourceFrame {
	s := a.sensor
	if s.expireAfter > 0 && s.seq.Load()-a.seq > s.expireAfter {
		atomic.AddUint64(&s.expired, 1)
		return nil
	}
	return &multiSourceFrame{arrival: a}
}

// multiSourceFrame renders each modality on first acquisition.
type multiSourceFrame struct {
	*arrival
}

func (f *multiSourceFrame) AcquireBodyFrame() *models.BodyFrame {
	s := f.sensor
	if s.drop(models.SourceBody) {
		return nil
	}
	buf, ok := s.bodyPool.TryGet()
	if !ok {
		atomic.AddUint64(&s.starved, 1)
		return nil
	}
	*buf = f.bodies
	return models.NewBodyFrame(*buf, func() { s.bodyPool.Return(buf) })
}

func (f *multiSourceFrame) AcquireInfraredFrame() *models.InfraredFrame {
	s := f.sensor
	if s.drop(models.SourceInfrared) {
		return nil
	}
	buf, ok := s.infraredPool.TryGet()
	if !ok {
		atomic.AddUint64(&s.starved, 1)
		return nil
	}
	desc := s.descs[models.SourceInfrared]
	s.withRaster(f.arrival, func(r *sceneRaster) {
		resample(desc, r.desc, func(dst, src int) {
			buf[dst] = infraredAt(r.depth[src], int(f.seq*7+uint64(dst)*13)%200-100)
		})
	})
	return models.NewInfraredFrame(desc, buf, func() { s.infraredPool.Return(buf) })
}

func (f *multiSourceFrame) AcquireDepthFrame() *models.DepthFrame {
	s := f.sensor
	if s.drop(models.SourceDepth) {
		return nil
	}
	buf, ok := s.depthPool.TryGet()
	if !ok {
		atomic.AddUint64(&s.starved, 1)
		return nil
	}
	s.withRaster(f.arrival, func(r *sceneRaster) {
		copy(buf, r.depth)
	})
	return models.NewDepthFrame(s.descs[models.SourceDepth], buf, s.minReliable, s.maxReliable,
		func() { s.depthPool.Return(buf) })
}

func (f *multiSourceFrame) AcquireBodyIndexFrame() *models.BodyIndexFrame {
	s := f.sensor
	if s.drop(models.SourceBodyIndex) {
		return nil
	}
	buf, ok := s.bodyIndexPool.TryGet()
	if !ok {
		atomic.AddUint64(&s.starved, 1)
		return nil
	}
	desc := s.descs[models.SourceBodyIndex]
	s.withRaster(f.arrival, func(r *sceneRaster) {
		resample(desc, r.desc, func(dst, src int) {
			buf[dst] = r.index[src]
		})
	})
	return models.NewBodyIndexFrame(desc, buf, func() { s.bodyIndexPool.Return(buf) })
}

func (f *multiSourceFrame) AcquireColorFrame() *models.ColorFrame {
	s := f.sensor
	if s.drop(models.SourceColor) {
		return nil
	}
	buf, ok := s.colorPool.TryGet()
	if !ok {
		atomic.AddUint64(&s.starved, 1)
		return nil
	}
	desc := s.descs[models.SourceColor]
	s.withRaster(f.arrival, func(r *sceneRaster) {
		paintColor(buf, desc, s.colorFormat, r, s.mapper)
	})
	return models.NewColorFrame(desc, s.colorFormat, buf, func() { s.colorPool.Return(buf) })
}

// resample walks every pixel of dst with the nearest pixel of src.
func resample(dst, src models.FrameDescription, fn func(dstIdx, srcIdx int)) {
	for y := 0; y < dst.Height; y++ {
		sy := y * src.Height / dst.Height
		for x := 0; x < dst.Width; x++ {
			sx := x * src.Width / dst.Width
			fn(y*dst.Width+x, sy*src.Width+sx)
		}
	}
}

// paintColor fills raw with a background gradient and a tint over every body pixel.
func paintColor(raw []byte, desc models.FrameDescription, format models.ImageFormat, r *sceneRaster, m *SimulatedMapper) {
	var pair [2][3]byte // BGR of the current YUY2 macropixel
	for v := 0; v < desc.Height; v++ {
		for u := 0; u < desc.Width; u++ {
			bgr := [3]byte{90, byte(v * 255 / desc.Height), byte(u * 255 / desc.Width)}
			if x, y, ok := m.depthPointForColor(u, v); ok {
				if slot := r.index[y*r.desc.Width+x]; slot != models.NoBody {
					bgr = slotColors[slot]
				}
			}

			i := v*desc.Width + u
			switch format {
			case models.ImageFormatBGRA:
				o := i * 4
				raw[o], raw[o+1], raw[o+2], raw[o+3] = bgr[0], bgr[1], bgr[2], 255
			case models.ImageFormatRGBA:
				o := i * 4
				raw[o], raw[o+1], raw[o+2], raw[o+3] = bgr[2], bgr[1], bgr[0], 255
			case models.ImageFormatYUY2:
				pair[i&1] = bgr
				if i&1 == 1 {
					encodeYUY2(raw[(i-1)*2:(i+1)*2], pair)
				}
			}
		}
	}
}

// encodeYUY2 packs two BGR pixels as Y0 U Y1 V (BT.601, studio range).
func encodeYUY2(dst []byte, px [2][3]byte) {
	luma := func(c [3]byte) byte {
		b, g, r := int(c[0]), int(c[1]), int(c[2])
		return byte(((66*r+129*g+25*b+128)>>8) + 16)
	}
	b, g, r := int(px[0][0]), int(px[0][1]), int(px[0][2])
	dst[0] = luma(px[0])
	dst[1] = byte(((-38*r - 74*g + 112*b + 128) >> 8) + 128)
	dst[2] = luma(px[1])
	dst[3] = byte(((112*r - 94*g - 18*b + 128) >> 8) + 128)
}
