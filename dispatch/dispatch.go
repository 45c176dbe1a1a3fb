// Package dispatch maps the external mode selector onto the effect
// renderers. Every renderer is built once, on first use, and keeps its state
// for the rest of the session.
package dispatch

import (
	"strings"

	"github.com/esimov/illusion/effect"
	"github.com/esimov/illusion/mathx"
	"github.com/esimov/illusion/particle"
)

// Mode identifies one effect.
type Mode int

// The available modes. Fiber is the fallback.
const (
	Fiber Mode = iota
	Rain
	Sand
	Glitch
	GlyphDense
	GlyphRepulsion
	GlyphChaos
)

// Modes lists every mode in selector order.
var Modes = []Mode{Fiber, Rain, Sand, Glitch, GlyphDense, GlyphRepulsion, GlyphChaos}

var names = map[Mode]string{
	Fiber:          "fiber",
	Rain:           "rain",
	Sand:           "sand",
	Glitch:         "glitch-hud",
	GlyphDense:     "glyph-dense",
	GlyphRepulsion: "glyph-repulsion",
	GlyphChaos:     "glyph-chaos",
}

var aliases = map[string]Mode{
	"default": Fiber,
	"fiber":   Fiber,
	"matrix":  Rain,
	"cyber":   Glitch,
	"code":    GlyphDense,
	"one":     GlyphRepulsion,
	"failure": GlyphChaos,
}

// String returns the canonical name of the mode.
func (m Mode) String() string {
	if n, ok := names[m]; ok {
		return n
	}
	return names[Fiber]
}

// ParseMode resolves a selector value, canonical or alias, ignoring case and
// surrounding blanks. Unknown values resolve to Fiber and ok is false.
func ParseMode(s string) (m Mode, ok bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if m, ok := aliases[key]; ok {
		return m, true
	}
	for m, n := range names {
		if n == key {
			return m, true
		}
	}
	return Fiber, false
}

// Next returns the mode following m in selector order, wrapping around.
func (m Mode) Next() Mode {
	for i, mm := range Modes {
		if mm == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return Fiber
}

// KeyMode maps the digit keys 1, 2 and 3 onto the glyph modes.
func KeyMode(key rune) (Mode, bool) {
	switch key {
	case '1':
		return GlyphDense, true
	case '2':
		return GlyphRepulsion, true
	case '3':
		return GlyphChaos, true
	}
	return Fiber, false
}

// Dispatcher owns one renderer per mode.
type Dispatcher struct {
	seed      int64
	particles int
	renderers map[Mode]effect.Renderer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMaxParticles sets the particle pool capacity of the sand mode.
func WithMaxParticles(n int) Option {
	return func(d *Dispatcher) { d.particles = n }
}

// WithRenderer installs r as the renderer of m instead of the built-in one.
func WithRenderer(m Mode, r effect.Renderer) Option {
	return func(d *Dispatcher) { d.renderers[d.normalize(m)] = r }
}

// New creates a dispatcher. Each mode draws its random numbers from a source
// derived from seed, so a fixed seed replays a session exactly. A zero seed
// selects an entropy seed.
func New(seed int64, opts ...Option) *Dispatcher {
	if seed == 0 {
		seed = mathx.EntropySeed()
	}
	d := &Dispatcher{
		seed:      seed,
		particles: particle.MaxParticles,
		renderers: make(map[Mode]effect.Renderer, len(Modes)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Seed returns the base seed of the session.
func (d *Dispatcher) Seed() int64 { return d.seed }

// Initialized reports whether the renderer of m has been built.
func (d *Dispatcher) Initialized(m Mode) bool {
	_, ok := d.renderers[d.normalize(m)]
	return ok
}

// Renderer returns the renderer of m, building it on first use. Modes out of
// range fall back to Fiber.
func (d *Dispatcher) Renderer(m Mode) effect.Renderer {
	m = d.normalize(m)
	if r, ok := d.renderers[m]; ok {
		return r
	}
	r := d.build(m)
	d.renderers[m] = r
	return r
}

// Reset drops the state of m. The renderer is rebuilt on next use.
func (d *Dispatcher) Reset(m Mode) {
	delete(d.renderers, d.normalize(m))
}

func (d *Dispatcher) normalize(m Mode) Mode {
	if _, ok := names[m]; !ok {
		return Fiber
	}
	return m
}

func (d *Dispatcher) rand(m Mode) *mathx.Rand {
	return mathx.NewRand(d.seed + int64(m+1)*7919)
}

func (d *Dispatcher) build(m Mode) effect.Renderer {
	switch m {
	case Rain:
		return effect.NewRain(d.rand(m))
	case Sand:
		return effect.NewSand(d.particles, d.rand(m))
	case Glitch:
		return effect.NewGlitch(d.rand(m))
	case GlyphDense:
		return effect.NewDense(d.rand(m))
	case GlyphRepulsion:
		return effect.NewRepulsion(d.rand(m))
	case GlyphChaos:
		return effect.NewChaos(d.rand(m))
	}
	return effect.NewFiber()
}
