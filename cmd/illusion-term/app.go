package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/esimov/illusion/config"
	"github.com/esimov/illusion/detector"
	"github.com/esimov/illusion/dispatch"
	"github.com/esimov/illusion/export"
	"github.com/esimov/illusion/frame"
	"github.com/esimov/illusion/mathx"
	"github.com/esimov/illusion/pipeline"
	"github.com/esimov/illusion/raster"
	"github.com/esimov/illusion/termsink"
)

const (
	orbitRange = 300.0
	orbitStep  = 20.0
)

// app ties the terminal to the pipeline. Key handling and ticking run on
// separate goroutines and share the engine under mu.
type app struct {
	mu      sync.Mutex
	cfg     *config.Config
	screen  tcell.Screen
	sink    *termsink.Sink
	source  frame.Source
	engine  *pipeline.Engine
	raster  *raster.Rasterizer
	faces   *detector.Poller
	poly    *export.Polygonizer
	mode    dispatch.Mode
	pointer struct{ x, y float64 }
	message string
}

func newApp(ctx context.Context, cfg *config.Config, screen tcell.Screen, source frame.Source, faces *detector.Poller) *app {
	opts := []pipeline.Option{
		pipeline.WithViewport(cfg.ViewportWidth, cfg.ViewportHeight),
		pipeline.WithSmoothing(cfg.CameraSmooth),
		pipeline.WithContext(ctx),
	}
	if faces != nil {
		opts = append(opts, pipeline.WithFaces(faces))
	}
	modes := dispatch.New(cfg.Seed, dispatch.WithMaxParticles(cfg.MaxParticles))

	return &app{
		cfg:    cfg,
		screen: screen,
		sink:   termsink.New(screen),
		source: source,
		engine: pipeline.New(modes, opts...),
		raster: raster.New(cfg.ViewportWidth, cfg.ViewportHeight, raster.WithBloom(cfg.BloomRadius)),
		faces:  faces,
		poly:   export.NewPolygonizer(0),
		mode:   cfg.StartMode(),
	}
}

// run ticks at the configured rate until the user quits or ctx is done.
func (a *app) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// PollEvent returns nil once the screen is finalized.
	events := make(chan tcell.Event)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-events:
				if a.handle(ev) {
					cancel()
					return nil
				}
			}
		}
	})
	g.Go(func() error {
		ticker := time.NewTicker(a.cfg.FrameDelay())
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := a.step(); err != nil {
					return err
				}
			}
		}
	})
	return g.Wait()
}

// step renders one tick onto the screen.
func (a *app) step() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var f *frame.Frame
	if a.source.Ready() {
		var err error
		if f, err = a.source.Next(); err != nil {
			return fmt.Errorf("next frame: %w", err)
		}
	}
	list := a.engine.Tick(f, a.mode)
	if err := a.raster.Draw(list); err != nil {
		log.Printf("illusion-term: %v", err)
	}
	a.sink.SetStatus(a.status())
	a.sink.Draw(a.raster.Image())
	return nil
}

func (a *app) status() string {
	s := fmt.Sprintf("%s  tick %d  orbit %.0f,%.0f", a.mode, a.engine.Ticks(), a.pointer.x, a.pointer.y)
	if a.engine.Frozen() {
		s += "  frozen"
	}
	if a.faces != nil {
		s += fmt.Sprintf("  faces %d", len(a.faces.Latest()))
	}
	if a.message != "" {
		s += "  " + a.message
	}
	return s
}

// handle applies one terminal event and reports whether to quit.
func (a *app) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		a.mu.Lock()
		defer a.mu.Unlock()

		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyTab:
			a.mode = a.mode.Next()
		case tcell.KeyLeft:
			a.orbit(-orbitStep, 0)
		case tcell.KeyRight:
			a.orbit(orbitStep, 0)
		case tcell.KeyUp:
			a.orbit(0, -orbitStep)
		case tcell.KeyDown:
			a.orbit(0, orbitStep)
		case tcell.KeyRune:
			r := ev.Rune()
			if m, ok := dispatch.KeyMode(r); ok {
				a.mode = m
				return false
			}
			switch r {
			case 'q':
				return true
			case ' ':
				a.engine.SetFrozen(!a.engine.Frozen())
			case 's':
				a.snapshot(false)
			case 'p':
				a.snapshot(true)
			}
		}
	}
	return false
}

func (a *app) orbit(dx, dy float64) {
	a.pointer.x = mathx.Clamp(a.pointer.x+dx, -orbitRange, orbitRange)
	a.pointer.y = mathx.Clamp(a.pointer.y+dy, -orbitRange, orbitRange)
	a.engine.SetPointer(a.pointer.x, a.pointer.y)
}

// snapshot saves the last composited frame, optionally with the detected
// faces rendered low-poly.
func (a *app) snapshot(lowPoly bool) {
	img := a.raster.Image()
	if lowPoly {
		var faces []detector.Face
		if a.faces != nil {
			w, h := a.source.Size()
			for _, f := range a.faces.Latest() {
				faces = append(faces, f.Fit(w, h, a.cfg.ViewportWidth, a.cfg.ViewportHeight))
			}
		}
		poly, err := a.poly.PolygonizeFaces(img, faces)
		if err != nil {
			a.message = err.Error()
			log.Printf("illusion-term: %v", err)
			return
		}
		path, err := export.Snapshot(a.cfg.SnapshotDir, poly)
		a.report(path, err)
		return
	}
	path, err := export.Snapshot(a.cfg.SnapshotDir, img)
	a.report(path, err)
}

func (a *app) report(path string, err error) {
	if err != nil {
		a.message = err.Error()
		log.Printf("illusion-term: %v", err)
		return
	}
	a.message = "saved " + path
	log.Printf("illusion-term: saved %s", path)
}
