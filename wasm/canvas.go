//go:build js && wasm

// Package wasm runs the effect pipeline in the browser: it reads the webcam
// through a hidden capture canvas, renders every animation frame with the
// software rasterizer and puts the result on the visible canvas.
package wasm

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"
	"sync"
	"syscall/js"

	"github.com/esimov/illusion/config"
	"github.com/esimov/illusion/detector"
	"github.com/esimov/illusion/dispatch"
	"github.com/esimov/illusion/export"
	"github.com/esimov/illusion/frame"
	"github.com/esimov/illusion/pipeline"
	"github.com/esimov/illusion/raster"
)

// orbitRange bounds the camera sliders in world units.
const orbitRange = 300

// Canvas struct holds the Javascript objects needed for the Canvas creation
type Canvas struct {
	done   chan struct{}
	succCh chan struct{}
	errCh  chan error

	// DOM elements
	window js.Value
	doc    js.Value
	body   js.Value

	// Canvas properties
	canvas    js.Value
	ctx       js.Value
	imageData js.Value
	reqID     js.Value
	renderer  js.Func
	handlers  []js.Func

	// Webcam properties
	video      js.Value
	capture    js.Value
	captureCtx js.Value

	mu      sync.Mutex
	cfg     *config.Config
	engine  *pipeline.Engine
	raster  *raster.Rasterizer
	poller  *detector.Poller
	poly    *export.Polygonizer
	mode    dispatch.Mode
	frame   *frame.Frame
	pointer struct{ x, y float64 }
}

// NewCanvas creates and initializes the new Canvas element
func NewCanvas(cfg *config.Config) *Canvas {
	c := &Canvas{cfg: cfg}
	c.window = js.Global()
	c.doc = c.window.Get("document")
	c.body = c.doc.Get("body")

	c.canvas = c.doc.Call("createElement", "canvas")
	c.canvas.Set("width", cfg.ViewportWidth)
	c.canvas.Set("height", cfg.ViewportHeight)
	c.canvas.Set("id", "canvas")
	c.body.Call("appendChild", c.canvas)
	c.ctx = c.canvas.Call("getContext", "2d")
	c.imageData = c.ctx.Call("createImageData", cfg.ViewportWidth, cfg.ViewportHeight)

	// The capture canvas downscales the webcam stream to the frame size.
	c.capture = c.doc.Call("createElement", "canvas")
	c.capture.Set("width", cfg.CaptureWidth)
	c.capture.Set("height", cfg.CaptureHeight)
	c.captureCtx = c.capture.Call("getContext", "2d", map[string]interface{}{"willReadFrequently": true})

	logger := func(format string, v ...interface{}) {
		c.Log(fmt.Sprintf(format, v...))
	}
	detector.SetLogger(logger)
	pipeline.SetLogger(logger)

	c.mode = cfg.StartMode()
	c.frame = frame.New(cfg.CaptureWidth, cfg.CaptureHeight)
	c.raster = raster.New(cfg.ViewportWidth, cfg.ViewportHeight, raster.WithBloom(cfg.BloomRadius))
	c.poly = export.NewPolygonizer(0)
	return c
}

// Render calls the `requestAnimationFrame` Javascript function in asynchronous mode.
func (c *Canvas) Render() error {
	c.done = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []pipeline.Option{
		pipeline.WithViewport(c.cfg.ViewportWidth, c.cfg.ViewportHeight),
		pipeline.WithSmoothing(c.cfg.CameraSmooth),
		pipeline.WithContext(ctx),
	}
	if det, err := c.loadDetector(); err != nil {
		c.Log("detector disabled: " + err.Error())
	} else {
		c.poller = detector.NewPoller(det, c.cfg.Interval())
		opts = append(opts, pipeline.WithFaces(c.poller))
	}
	modes := dispatch.New(c.cfg.Seed, dispatch.WithMaxParticles(c.cfg.MaxParticles))
	c.engine = pipeline.New(modes, opts...)

	c.renderer = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		go func() {
			c.stats("begin")
			c.reqID = c.window.Call("requestAnimationFrame", c.renderer)
			if err := c.tick(); err != nil {
				c.Log(err.Error())
			}
			c.stats("end")
		}()
		return nil
	})
	// Release renderer to free up resources.
	defer c.renderer.Release()

	c.createControls()
	c.window.Call("requestAnimationFrame", c.renderer)
	c.detectKeyPress()
	c.detectMouseHold()
	<-c.done

	for _, h := range c.handlers {
		h.Release()
	}
	if c.poller != nil {
		c.poller.Wait()
	}
	return nil
}

// tick captures the current webcam frame, runs the pipeline and puts the
// rasterized result on the canvas.
func (c *Canvas) tick() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := c.captureFrame()
	list := c.engine.Tick(f, c.mode)
	if err := c.raster.Draw(list); err != nil {
		return err
	}
	js.CopyBytesToJS(c.imageData.Get("data"), c.raster.Image().Pix)
	c.ctx.Call("putImageData", c.imageData, 0, 0)
	return nil
}

// captureFrame copies the webcam pixels into the frame buffer. It returns
// nil while the video has no data.
func (c *Canvas) captureFrame() *frame.Frame {
	// HAVE_CURRENT_DATA
	if c.video.IsUndefined() || c.video.Get("readyState").Int() < 2 {
		return nil
	}
	w, h := c.frame.Width, c.frame.Height
	c.captureCtx.Call("drawImage", c.video, 0, 0, w, h)
	rgba := c.captureCtx.Call("getImageData", 0, 0, w, h).Get("data")

	// Convert the rgba value of type Uint8ClampedArray to Uint8Array in order to
	// be able to transfer it from Javascript to Go via the js.CopyBytesToGo function.
	uint8Arr := js.Global().Get("Uint8Array").New(rgba)
	js.CopyBytesToGo(c.frame.Pix, uint8Arr)
	return c.frame
}

// Stop stops the rendering.
func (c *Canvas) Stop() {
	c.window.Call("cancelAnimationFrame", c.reqID)
	c.done <- struct{}{}
	close(c.done)
}

// StartWebcam reads the webcam data and feeds it into the canvas element.
// It returns an empty struct in case of success and error in case of failure.
func (c *Canvas) StartWebcam() (*Canvas, error) {
	var err error
	c.succCh = make(chan struct{})
	c.errCh = make(chan error)

	c.video = c.doc.Call("createElement", "video")

	// If we don't do this, the stream will not be played.
	c.video.Set("autoplay", 1)
	c.video.Set("playsinline", 1) // important for iPhones
	c.video.Set("width", 0)
	c.video.Set("height", 0)
	c.body.Call("appendChild", c.video)

	success := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		go func() {
			c.video.Set("srcObject", args[0])
			c.video.Call("play")
			c.succCh <- struct{}{}
		}()
		return nil
	})
	defer success.Release()

	failure := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		go func() {
			err = fmt.Errorf("failed initialising the camera: %s", args[0].String())
			c.errCh <- err
		}()
		return nil
	})
	defer failure.Release()

	opts := js.Global().Get("Object").New()

	videoSize := js.Global().Get("Object").New()
	videoSize.Set("width", c.cfg.ViewportWidth)
	videoSize.Set("height", c.cfg.ViewportHeight)
	videoSize.Set("aspectRatio", float64(c.cfg.CaptureWidth)/float64(c.cfg.CaptureHeight))

	opts.Set("video", videoSize)
	opts.Set("audio", false)

	promise := c.window.Get("navigator").Get("mediaDevices").Call("getUserMedia", opts)
	promise.Call("then", success, failure)

	select {
	case <-c.succCh:
		return c, nil
	case err := <-c.errCh:
		return nil, err
	}
}

// loadDetector fetches both cascades from the serving origin.
func (c *Canvas) loadDetector() (*detector.Detector, error) {
	face, err := fetch(c.cfg.FaceCascade)
	if err != nil {
		return nil, err
	}
	puploc, err := fetch(c.cfg.PuplocCascade)
	if err != nil {
		return nil, err
	}
	return detector.New(face, puploc, detector.DefaultParams())
}

func fetch(path string) ([]byte, error) {
	res, err := http.Get(path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", path, res.Status)
	}
	return io.ReadAll(res.Body)
}

// createControls adds the mode selector and the camera orbit sliders.
func (c *Canvas) createControls() {
	panel := c.doc.Call("createElement", "div")
	panel.Set("id", "controls")

	selector := c.doc.Call("createElement", "select")
	selector.Set("id", "mode")
	for _, m := range dispatch.Modes {
		opt := c.doc.Call("createElement", "option")
		opt.Set("value", m.String())
		opt.Set("textContent", m.String())
		if m == c.mode {
			opt.Set("selected", true)
		}
		selector.Call("appendChild", opt)
	}
	c.listen(selector, "change", func(this js.Value, args []js.Value) {
		m, ok := dispatch.ParseMode(this.Get("value").String())
		if !ok {
			c.Log("unknown mode, falling back to " + m.String())
		}
		c.setMode(m)
	})
	panel.Call("appendChild", selector)

	for _, axis := range []string{"x", "y"} {
		axis := axis
		slider := c.doc.Call("createElement", "input")
		slider.Set("type", "range")
		slider.Set("min", -orbitRange)
		slider.Set("max", orbitRange)
		slider.Set("value", 0)
		slider.Set("id", "orbit-"+axis)
		c.listen(slider, "input", func(this js.Value, args []js.Value) {
			v, err := strconv.ParseFloat(this.Get("value").String(), 64)
			if err != nil {
				return
			}
			go func() {
				c.mu.Lock()
				defer c.mu.Unlock()
				if axis == "x" {
					c.pointer.x = v
				} else {
					c.pointer.y = v
				}
				c.engine.SetPointer(c.pointer.x, c.pointer.y)
			}()
		})
		panel.Call("appendChild", slider)
	}
	c.body.Call("appendChild", panel)
}

// setMode selects the mode rendered from the next tick on.
func (c *Canvas) setMode(m dispatch.Mode) {
	go func() {
		c.mu.Lock()
		c.mode = m
		c.mu.Unlock()
	}()
	c.doc.Call("getElementById", "mode").Set("value", m.String())
}

// detectKeyPress listen for the keypress event and retrieves the key code.
func (c *Canvas) detectKeyPress() {
	c.listen(c.doc, "keypress", func(this js.Value, args []js.Value) {
		key := args[0].Get("key").String()
		if len(key) != 1 {
			return
		}
		if m, ok := dispatch.KeyMode(rune(key[0])); ok {
			c.setMode(m)
			return
		}
		switch key {
		case "s":
			go c.snapshot(false)
		case "p":
			go c.snapshot(true)
		case " ":
			go func() {
				c.mu.Lock()
				c.engine.SetFrozen(!c.engine.Frozen())
				c.mu.Unlock()
			}()
		}
	})
}

// detectMouseHold freezes time while a mouse button is held on the canvas.
func (c *Canvas) detectMouseHold() {
	freeze := func(frozen bool) func(js.Value, []js.Value) {
		return func(js.Value, []js.Value) {
			go func() {
				c.mu.Lock()
				c.engine.SetFrozen(frozen)
				c.mu.Unlock()
			}()
		}
	}
	c.listen(c.canvas, "mousedown", freeze(true))
	c.listen(c.canvas, "mouseup", freeze(false))
	c.listen(c.canvas, "mouseleave", freeze(false))
}

// snapshot downloads the last composited frame as PNG, optionally with the
// detected faces rendered low-poly.
func (c *Canvas) snapshot(lowPoly bool) {
	c.mu.Lock()
	img := image.NewRGBA(c.raster.Image().Bounds())
	copy(img.Pix, c.raster.Image().Pix)
	var faces []detector.Face
	if c.poller != nil {
		for _, f := range c.poller.Latest() {
			faces = append(faces, f.Fit(c.frame.Width, c.frame.Height, c.cfg.ViewportWidth, c.cfg.ViewportHeight))
		}
	}
	c.mu.Unlock()

	var out image.Image = img
	if lowPoly {
		poly, err := c.poly.PolygonizeFaces(img, faces)
		if err != nil {
			c.Log(err.Error())
			return
		}
		out = poly
	}

	var buf bytes.Buffer
	if err := export.Encode(&buf, out); err != nil {
		c.Log(err.Error())
		return
	}
	data := js.Global().Get("Uint8Array").New(buf.Len())
	js.CopyBytesToJS(data, buf.Bytes())

	blob := js.Global().Get("Blob").New([]interface{}{data}, map[string]interface{}{"type": "image/png"})
	url := js.Global().Get("URL").Call("createObjectURL", blob)
	link := c.doc.Call("createElement", "a")
	link.Set("href", url)
	link.Set("download", export.Name())
	link.Call("click")
	js.Global().Get("URL").Call("revokeObjectURL", url)
}

// listen registers an event handler released when rendering stops.
func (c *Canvas) listen(target js.Value, event string, fn func(this js.Value, args []js.Value)) {
	h := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		fn(this, args)
		return nil
	})
	c.handlers = append(c.handlers, h)
	target.Call("addEventListener", event, h)
}

func (c *Canvas) stats(method string) {
	if s := c.window.Get("stats"); s.Truthy() {
		s.Call(method)
	}
}

// Log calls the `console.log` Javascript function
func (c *Canvas) Log(args ...interface{}) {
	c.window.Get("console").Call("log", args...)
}

// Alert calls the `alert` Javascript function
func (c *Canvas) Alert(args ...interface{}) {
	alert := c.window.Get("alert")
	alert.Invoke(args...)
}
