package controller

import (
	"context"
	"fmt"
	"sync"

	"gesture-logger/services/ingest"
	"gesture-logger/utils"
)

const (
	StatusRunning      = "Running"
	StatusNotAvailable = "Not Available"
)

// SensorsController owns the sensor's lifecycle and mirrors its
// availability into the display status.
type SensorsController struct {
	sensor ingest.Sensor
	wg     sync.WaitGroup
}

// NewSensorsController creates the sensor described by cfg.
func NewSensorsController(cfg *utils.SensorsConfig) (*SensorsController, error) {
	if !cfg.Simulation.Enabled {
		return nil, fmt.Errorf("no hardware sensor driver in this build; set simulation.enabled")
	}
	s, err := ingest.NewSimulatedSensor(cfg)
	if err != nil {
		return nil, err
	}
	return NewSensorsControllerFor(s), nil
}

// NewSensorsControllerFor wraps an already constructed sensor.
func NewSensorsControllerFor(sensor ingest.Sensor) *SensorsController {
	return &SensorsController{sensor: sensor}
}

// Sensor returns the managed sensor.
func (sc *SensorsController) Sensor() ingest.Sensor { return sc.sensor }

// Start opens the sensor and keeps display's status in sync with its
// availability until ctx is cancelled.
func (sc *SensorsController) Start(ctx context.Context, display Display) error {
	if err := sc.sensor.Open(); err != nil {
		display.SetStatus(StatusNotAvailable)
		return fmt.Errorf("open sensor: %w", err)
	}
	display.SetStatus(statusText(sc.sensor.IsAvailable()))

	sc.wg.Add(1)
	go func() {
		defer sc.wg.Done()
		changes := sc.sensor.AvailabilityChanged()
		for {
			select {
			case <-ctx.Done():
				return
			case available := <-changes:
				display.SetStatus(statusText(available))
				utils.L().Info("sensor availability: %s", statusText(available))
			}
		}
	}()

	utils.L().Info("sensors controller: sensor opened  (bodies=%d)", sc.sensor.BodyCount())
	return nil
}

// Stop closes the sensor and waits for the availability watcher; the
// context passed to Start must be cancelled first.
func (sc *SensorsController) Stop(display Display) error {
	err := sc.sensor.Close()
	sc.wg.Wait()
	display.SetStatus(StatusNotAvailable)
	if err != nil {
		return fmt.Errorf("close sensor: %w", err)
	}
	return nil
}

func statusText(available bool) string {
	if available {
		return StatusRunning
	}
	return StatusNotAvailable
}

// LogStats prints the sensor's arrival and frame counters when it exposes them.
func (sc *SensorsController) LogStats() {
	if s, ok := sc.sensor.(interface{ Stats() (uint64, uint64) }); ok {
		p, d := s.Stats()
		utils.L().Info("  sensor   produced=%d  dropped=%d", p, d)
	}
	if s, ok := sc.sensor.(interface {
		FrameStats() (expired, unavailable, starved uint64)
	}); ok {
		e, u, st := s.FrameStats()
		utils.L().Info("  frames   expired=%d  unavailable=%d  pool_starved=%d", e, u, st)
	}
}
