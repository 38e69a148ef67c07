package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"gesture-logger/controller"
	"gesture-logger/models"
	"gesture-logger/services/decode"
	"gesture-logger/utils"
	"gesture-logger/views"
)

func main() {
	// ── CLI flags ────────────────────────────────────────────────────
	sensorsPath := flag.String("sensors", "config/sensors.yaml", "path to sensors.yaml")
	storagePath := flag.String("storage", "config/storage.yaml", "path to storage.yaml")
	logFile := flag.String("log", "", "optional log file path (stdout is always included)")
	logLevel := flag.String("level", "info", "log level: debug, info, warn, error")
	modeFlag := flag.String("mode", "", "initial display mode (overrides display.mode)")
	flag.Parse()

	// ── Logger ───────────────────────────────────────────────────────
	logger := utils.InitLogger(utils.ParseLogLevel(*logLevel), *logFile)
	defer logger.Close()

	utils.L().Info("═══════════════════════════════════════════════════")
	utils.L().Info("  Gesture-Logger  ·  Body Tracking Session Recorder")
	utils.L().Info("  GOMAXPROCS=%d  ·  PID=%d", runtime.GOMAXPROCS(0), os.Getpid())
	utils.L().Info("═══════════════════════════════════════════════════")

	// ── Load configs ─────────────────────────────────────────────────
	sensorsCfg, err := utils.LoadSensorsConfig(*sensorsPath)
	if err != nil {
		utils.L().Fatal("load sensors config: %v", err)
	}
	storageCfg, err := utils.LoadStorageConfig(*storagePath)
	if err != nil {
		utils.L().Fatal("load storage config: %v", err)
	}

	// Resolve relative base_dir to absolute.
	if !filepath.IsAbs(storageCfg.Storage.BaseDir) {
		abs, _ := filepath.Abs(storageCfg.Storage.BaseDir)
		storageCfg.Storage.BaseDir = abs
	}

	modeName := sensorsCfg.Display.Mode
	if *modeFlag != "" {
		modeName = *modeFlag
	}
	mode, err := models.ParseDisplayMode(modeName)
	if err != nil {
		utils.L().Fatal("display mode: %v", err)
	}

	// ── Context with OS signal cancellation ──────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Optional fixed duration from config.
	if duration := sensorsCfg.Simulation.DurationSeconds; duration > 0 {
		var timerCancel context.CancelFunc
		ctx, timerCancel = context.WithTimeout(ctx, time.Duration(duration)*time.Second)
		defer timerCancel()
		utils.L().Info("session will auto-stop after %ds", duration)
	}

	// ── Pipeline assembly ────────────────────────────────────────────
	//
	//  Sensor ──► arrivals chan ──► FrameController ──► Surface
	//                                 │        │
	//                       BodyTracker     GesturePool ◄── gesture sources
	//                                 │        │
	//                                 ▼        ▼
	//                        RecordingController ◄── FeatureMap
	//                          │       │       │
	//                     sample.txt  csv   sqlite

	features, err := models.NewFeatureMap(sensorsCfg.Gestures.Labels)
	if err != nil {
		utils.L().Fatal("feature map: %v", err)
	}
	surface := views.NewSurface()

	// 1. Sensor
	sensorCtrl, err := controller.NewSensorsController(sensorsCfg)
	if err != nil {
		utils.L().Fatal("init sensors controller: %v", err)
	}

	// 2. Gesture detectors
	gestures, err := controller.NewGesturePool(sensorCtrl.Sensor(), features)
	if err != nil {
		utils.L().Fatal("init gesture pool: %v", err)
	}

	// 3. Recording
	recordCtrl, err := controller.NewRecordingController(storageCfg, features, utils.RealClock{})
	if err != nil {
		gestures.Close()
		utils.L().Fatal("init recording controller: %v", err)
	}

	// 4. Frame pipeline
	ir := sensorsCfg.Sensors.Infrared
	irParams := decode.InfraredParams{
		SceneAverage: float32(ir.SceneAverage),
		SceneStdDevs: float32(ir.SceneStdDevs),
		OutputMin:    float32(ir.OutputMin),
		OutputMax:    float32(ir.OutputMax),
		Adaptive:     ir.Adaptive,
	}
	frameCtrl, err := controller.NewFrameController(sensorCtrl.Sensor(), surface, controller.NewBodyTracker(),
		gestures, recordCtrl, irParams, mode)
	if err != nil {
		gestures.Close()
		recordCtrl.Stop()
		utils.L().Fatal("init frame controller: %v", err)
	}

	recordCtrl.Start(ctx)
	gestures.Start(ctx)
	frameCtrl.Start(ctx, sensorCtrl.Sensor().Arrivals())
	if err := sensorCtrl.Start(ctx, surface); err != nil {
		utils.L().Error("%v", err)
	}

	utils.L().Info("pipeline running  (mode=%s, %s, log=%s)", mode, recordCtrl, recordCtrl.LogPath())
	utils.L().Info("commands: infrared | color | depth | bodymask | bodyjoints | status | quit")

	commands := readCommands(os.Stdin)

	// ── Stats ticker ─────────────────────────────────────────────────
	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	snapshotEvery := uint64(sensorsCfg.Display.SnapshotEvery)
	snapshotPath := sensorsCfg.Display.SnapshotPath
	var lastSnapshot uint64

	// ── Main event loop ──────────────────────────────────────────────
	for {
		select {
		case sig := <-sigCh:
			utils.L().Info("received signal: %v, shutting down", sig)
			cancel()
			goto shutdown

		case <-ctx.Done():
			goto shutdown

		case cmd, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			if quit := handleCommand(cmd, frameCtrl, surface); quit {
				cancel()
				goto shutdown
			}

		case <-statsTicker.C:
			logStats(sensorCtrl, frameCtrl, gestures, recordCtrl, surface)

			if snapshotPath != "" && snapshotEvery > 0 {
				if n := surface.Presents(); n-lastSnapshot >= snapshotEvery {
					lastSnapshot = n
					if err := surface.WriteBMP(snapshotPath); err != nil {
						utils.L().Warn("snapshot: %v", err)
					}
				}
			}
		}
	}

shutdown:
	utils.L().Info("stopping pipeline")

	if err := sensorCtrl.Stop(surface); err != nil {
		utils.L().Warn("%v", err)
	}
	<-frameCtrl.Done()
	if err := gestures.Close(); err != nil {
		utils.L().Warn("close gesture sources: %v", err)
	}
	recordCtrl.Stop()

	written, failed := recordCtrl.Stats()
	utils.L().Info("session %s saved to: %s", recordCtrl.SessionID(), recordCtrl.LogPath())
	utils.L().Info("total records: %d  (failed=%d)", written, failed)

	fmt.Println("\n✓ Gesture-Logger finished. Log at:", recordCtrl.LogPath())
}

// readCommands forwards trimmed stdin lines until EOF.
func readCommands(f *os.File) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				out <- line
			}
		}
	}()
	return out
}

func handleCommand(cmd string, fc *controller.FrameController, surface *views.Surface) bool {
	switch strings.ToLower(cmd) {
	case "quit", "exit", "q":
		return true
	case "status":
		w, h := surface.Size()
		utils.L().Info("mode=%s  status=%s  elapsed=%s  surface=%dx%d",
			fc.DisplayMode(), surface.Status(), utils.FormatElapsed(surface.Elapsed()), w, h)
		return false
	}
	mode, err := models.ParseDisplayMode(cmd)
	if err != nil {
		utils.L().Warn("%v", err)
		return false
	}
	if err := fc.SetDisplayMode(mode); err != nil {
		utils.L().Error("switch display mode: %v", err)
	}
	return false
}

func logStats(sc *controller.SensorsController, fc *controller.FrameController, gp *controller.GesturePool,
	rc *controller.RecordingController, surface *views.Surface) {
	utils.L().Info("── stats ─────────────────────────")
	sc.LogStats()

	fs := fc.Stats()
	utils.L().Info("  pipeline processed=%d  skipped=%d  presents=%d  mode_swaps=%d",
		fs.Processed, fs.Skipped, fs.Presents, fs.ModeSwaps)

	rebinds, accepted, rejected := gp.Stats()
	utils.L().Info("  gestures rebinds=%d  accepted=%d  rejected=%d", rebinds, accepted, rejected)

	written, failed := rc.Stats()
	requested, discarded, _ := rc.RequestStats()
	utils.L().Info("  records  requested=%d  written=%d  failed=%d  discarded=%d",
		requested, written, failed, discarded)
	utils.L().Info("  elapsed  %s", utils.FormatElapsed(surface.Elapsed()))
	utils.L().Info("──────────────────────────────────")
}
