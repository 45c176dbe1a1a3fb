// Command illusion-term previews the effects in a terminal. Frames come from
// a still image or from a synthetic moving blob.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/esimov/illusion/config"
	"github.com/esimov/illusion/detector"
	"github.com/esimov/illusion/dispatch"
	"github.com/esimov/illusion/frame"
)

func main() {
	configPath := flag.String("config", "", "JSON config file (optional)")
	imagePath := flag.String("image", "", "still image used as the capture (default: synthetic source)")
	mode := flag.String("mode", "", "start mode, canonical name or alias")
	seed := flag.Int64("seed", -1, "base seed, 0 for entropy (overrides the config)")
	logPath := flag.String("log", "", "write log output to this file instead of discarding it")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("illusion-term: %v", err)
		}
	}
	if *mode != "" {
		if _, ok := dispatch.ParseMode(*mode); !ok {
			log.Fatalf("illusion-term: unknown mode %q", *mode)
		}
		cfg.Mode = *mode
	}
	if *seed >= 0 {
		cfg.Seed = *seed
	}

	// The screen owns the terminal; log lines would tear the frame.
	logOut, err := openLog(*logPath)
	if err != nil {
		log.Fatalf("illusion-term: %v", err)
	}
	defer logOut.Close()
	log.SetOutput(logOut)

	source, err := openSource(*imagePath, cfg)
	if err != nil {
		log.Fatalf("illusion-term: %v", err)
	}

	var faces *detector.Poller
	if det, err := detector.Load(cfg.FaceCascade, cfg.PuplocCascade, detector.DefaultParams()); err != nil {
		log.Printf("illusion-term: detection disabled: %v", err)
	} else {
		faces = detector.NewPoller(det, cfg.Interval())
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(ctx, cfg, screen, source, faces)
	err = a.run(ctx)
	screen.Fini()
	if faces != nil {
		faces.Wait()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "illusion-term: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "rendered %d ticks, %d dropped\n", a.engine.Ticks(), a.engine.Failures())
}

func openSource(path string, cfg *config.Config) (frame.Source, error) {
	if path == "" {
		return frame.NewSynthetic(cfg.CaptureWidth, cfg.CaptureHeight), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return frame.NewStillScaled(img, cfg.CaptureWidth, cfg.CaptureHeight), nil
}

func openLog(path string) (*os.File, error) {
	if path == "" {
		return os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}
