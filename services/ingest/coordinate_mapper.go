package ingest

import (
	"fmt"
	"math"

	"gesture-logger/models"
)

// Field of view of the depth and color cameras, in degrees.
const (
	depthHFOV = 70.6
	depthVFOV = 60.0
	colorHFOV = 84.1
	colorVFOV = 53.8
)

// SimulatedMapper is a pinhole model of a depth camera and a co-located,
// wider color camera. Color pixels outside the depth field of view, or over
// a depth pixel with no reading, map to models.InvalidDepthSpacePoint.
type SimulatedMapper struct {
	depth models.FrameDescription
	color models.FrameDescription

	fx, fy float32 // depth focal lengths in pixels
	cx, cy float32 // depth principal point

	// per-column and per-row depth coordinates of each color pixel centre
	colX []float32
	rowY []float32
}

// NewSimulatedMapper precomputes the color→depth tables for the given geometries.
func NewSimulatedMapper(depth, color models.FrameDescription) *SimulatedMapper {
	m := &SimulatedMapper{
		depth: depth,
		color: color,
		cx:    float32(depth.Width) / 2,
		cy:    float32(depth.Height) / 2,
		colX:  make([]float32, color.Width),
		rowY:  make([]float32, color.Height),
	}
	m.fx = float32(float64(depth.Width) / 2 / math.Tan(rad(depthHFOV/2)))
	m.fy = float32(float64(depth.Height) / 2 / math.Tan(rad(depthVFOV/2)))

	sx := float64(depth.Width) / float64(color.Width) * math.Tan(rad(colorHFOV/2)) / math.Tan(rad(depthHFOV/2))
	sy := float64(depth.Height) / float64(color.Height) * math.Tan(rad(colorVFOV/2)) / math.Tan(rad(depthVFOV/2))
	for u := range m.colX {
		m.colX[u] = float32((float64(u)+0.5-float64(color.Width)/2)*sx) + m.cx
	}
	for v := range m.rowY {
		m.rowY[v] = float32((float64(v)+0.5-float64(color.Height)/2)*sy) + m.cy
	}
	return m
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// MapColorFrameToDepthSpace fills out with one depth-space point per color pixel.
func (m *SimulatedMapper) MapColorFrameToDepthSpace(depth []uint16, out []models.DepthSpacePoint) error {
	if len(depth) != m.depth.LengthInPixels() {
		return fmt.Errorf("depth data has %d samples, want %d", len(depth), m.depth.LengthInPixels())
	}
	if len(out) != m.color.LengthInPixels() {
		return fmt.Errorf("output has %d points, want %d", len(out), m.color.LengthInPixels())
	}

	w, h := float32(m.depth.Width), float32(m.depth.Height)
	i := 0
	for _, y := range m.rowY {
		rowValid := y >= 0 && y < h
		for _, x := range m.colX {
			if !rowValid || x < 0 || x >= w || depth[int(y)*m.depth.Width+int(x)] == 0 {
				out[i] = models.InvalidDepthSpacePoint
			} else {
				out[i] = models.DepthSpacePoint{X: x, Y: y}
			}
			i++
		}
	}
	return nil
}

// MapCameraPointToDepthSpace projects a 3-D point onto the depth image plane.
func (m *SimulatedMapper) MapCameraPointToDepthSpace(p models.CameraSpacePoint) models.DepthSpacePoint {
	if p.Z <= 0 {
		return models.InvalidDepthSpacePoint
	}
	return models.DepthSpacePoint{
		X: m.cx + m.fx*p.X/p.Z,
		Y: m.cy - m.fy*p.Y/p.Z,
	}
}

// depthPointForColor returns the depth pixel under color pixel (u, v), or false
// when it lies outside the depth image.
func (m *SimulatedMapper) depthPointForColor(u, v int) (int, int, bool) {
	x, y := m.colX[u], m.rowY[v]
	if x < 0 || y < 0 || x >= float32(m.depth.Width) || y >= float32(m.depth.Height) {
		return 0, 0, false
	}
	return int(x), int(y), true
}
