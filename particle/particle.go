// Package particle implements the bounded particle pool of the falling sand
// effect.
package particle

const (
	// MaxParticles caps the pool. Spawns beyond it are dropped.
	MaxParticles = 3000
	// LifeStart is the life of a freshly spawned particle.
	LifeStart = 255.0
	// Gravity is subtracted from the vertical velocity on every step.
	Gravity = 0.15
	// Decay is subtracted from the life on every step.
	Decay = 3.0
	// FloorZ is the height below which a particle expires.
	FloorZ = -100.0
)

// Particle is a single glowing grain. Z is the height above the silhouette
// plane and VZ its velocity along that axis.
type Particle struct {
	X, Y, Z float64
	VZ      float64
	R, G, B uint8
	Life    float64
	Size    float64
}

// Alpha returns the remaining life as a fraction of LifeStart.
func (p *Particle) Alpha() float64 {
	return p.Life / LifeStart
}

// Expired reports whether the particle must leave the pool.
func (p *Particle) Expired() bool {
	return p.Z < FloorZ || p.Life <= 0
}

// Pool owns the live particles. It is not safe for concurrent use.
type Pool struct {
	items    []Particle
	capacity int
	dropped  uint64
}

// NewPool creates a pool with the given capacity. A non-positive capacity
// selects MaxParticles.
func NewPool(capacity int) *Pool {
	if capacity <= 0 {
		capacity = MaxParticles
	}
	return &Pool{
		items:    make([]Particle, 0, capacity),
		capacity: capacity,
	}
}

// Len returns the number of live particles.
func (p *Pool) Len() int { return len(p.items) }

// Cap returns the hard capacity of the pool.
func (p *Pool) Cap() int { return p.capacity }

// Full reports whether a spawn would be dropped.
func (p *Pool) Full() bool { return len(p.items) >= p.capacity }

// Dropped returns how many spawns were rejected because the pool was full.
func (p *Pool) Dropped() uint64 { return p.dropped }

// Spawn adds a particle. It reports false and drops the particle when the
// pool is at capacity.
func (p *Pool) Spawn(pt Particle) bool {
	if p.Full() {
		p.dropped++
		return false
	}
	p.items = append(p.items, pt)
	return true
}

// Step advances every particle by one tick and removes the expired ones.
// Survivors keep their relative order: removal compacts the slice towards
// its head instead of swapping the tail in.
func (p *Pool) Step() {
	n := 0
	for i := range p.items {
		pt := &p.items[i]
		pt.VZ -= Gravity
		pt.Z += pt.VZ
		pt.Life -= Decay

		if pt.Expired() {
			continue
		}
		if n != i {
			p.items[n] = *pt
		}
		n++
	}
	// Zero the abandoned tail so a later append starts from clean values.
	clear(p.items[n:])
	p.items = p.items[:n]
}

// Each calls fn for every live particle in pool order.
func (p *Pool) Each(fn func(*Particle)) {
	for i := range p.items {
		fn(&p.items[i])
	}
}

// Snapshot returns a copy of the live particles.
func (p *Pool) Snapshot() []Particle {
	out := make([]Particle, len(p.items))
	copy(out, p.items)
	return out
}

// Reset removes every particle.
func (p *Pool) Reset() {
	p.items = p.items[:0]
}
