package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/tigerbot-team/linefollower/pkg/config"
	"github.com/tigerbot-team/linefollower/pkg/control"
	"github.com/tigerbot-team/linefollower/pkg/hardware"
	"github.com/tigerbot-team/linefollower/pkg/logging"
	"github.com/tigerbot-team/linefollower/pkg/mixer"
	"github.com/tigerbot-team/linefollower/pkg/serialport"
	"github.com/tigerbot-team/linefollower/pkg/vision"
)

var CLI struct {
	Config   string `help:"Configuration file; missing means built-in defaults." default:"/cfg/linefollower.yaml" type:"path"`
	InUse    string `help:"Where to record the effective configuration." default:"/cfg/linefollower-in-use.yaml" type:"path"`
	Dummy    bool   `help:"Use simulated hardware with a centred line."`
	NoVision bool   `help:"Don't open the vision serial link; runs in safe mode throughout."`
	Debug    bool   `help:"Log per-tick telemetry."`
}

func main() {
	fmt.Println("---- Line follower ----")
	fmt.Println("GOMAXPROCS", runtime.GOMAXPROCS(0))

	kong.Parse(&CLI, kong.Description("Camera-assisted line following controller."))

	logger, err := logging.New(CLI.Debug)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := loadConfig(logger)

	// Our global context, we cancel it to trigger shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hook Ctrl-C etc.
	registerSignalHandlers(cancel)

	var hw hardware.Interface
	if CLI.Dummy {
		hw = hardware.NewDummy(cfg.Sensor.Channels, cfg.Sensor.FullScale, os.Stdout, logger)
	} else {
		hw, err = hardware.New(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to open hardware", zap.Error(err))
		}
	}
	defer func() {
		fmt.Println("Zeroing motors for shut down")
		hw.Shutdown()
		time.Sleep(100 * time.Millisecond)
	}()

	fmt.Println("Zeroing motors")
	if err := hw.SetWheels(mixer.Stop); err != nil {
		logger.Error("Failed to zero motors", zap.Error(err))
	}

	var store vision.Store
	var wg sync.WaitGroup
	if !CLI.NoVision {
		receiver := vision.NewReceiver(&store, cfg.Serial.MaxLineLength, logger.Named("vision"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			receiver.LoopReading(ctx, func() (io.ReadCloser, error) {
				p, err := serialport.Open(cfg.Serial.Device, cfg.Serial.Options)
				if err != nil {
					return nil, err
				}
				return p, nil
			})
			accepted, rejected, overflows := receiver.Stats()
			logger.Info("Vision receiver stopped",
				zap.Int("accepted", accepted),
				zap.Int("rejected", rejected),
				zap.Int("overflows", overflows))
		}()
	}

	loop := control.New(control.ParamsFromConfig(cfg), &store, hw, hw, logger.Named("control"))
	loop.Run(ctx)
	wg.Wait()
}

func loadConfig(logger *zap.Logger) config.Config {
	cfg := config.Default()
	if _, err := os.Stat(CLI.Config); err == nil {
		cfg, err = config.Load(CLI.Config)
		if err != nil {
			logger.Fatal("Failed to load config", zap.Error(err))
		}
		logger.Info("Loaded config", zap.String("path", CLI.Config))
	} else {
		logger.Info("No config file; using defaults", zap.String("path", CLI.Config))
	}
	if err := cfg.WriteInUse(CLI.InUse); err != nil {
		logger.Warn("Failed to write in-use config", zap.Error(err))
	}
	return cfg
}

func registerSignalHandlers(cancelFunc context.CancelFunc) {
	// Hook Ctrl-C to cause shut down.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		log.Println("Signal: ", s)
		cancelFunc()
		time.Sleep(2 * time.Second)
		os.Exit(0)
	}()
}
