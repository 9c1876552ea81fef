package visualizer

import "github.com/charmbracelet/harmonica"

// Peaks tracks a cap above every bar. A cap jumps to any new high and then
// falls back toward its bar under a critically damped spring.
type Peaks struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

// NewPeaks creates caps animated at fps frames per second.
func NewPeaks(fps int) *Peaks {
	return &Peaks{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

func (p *Peaks) resize(n int) {
	if len(p.pos) == n {
		return
	}
	p.pos = make([]float64, n)
	p.vel = make([]float64, n)
}

// Update steps every cap one frame toward heights and returns the cap
// positions. A cap never sits below its bar.
func (p *Peaks) Update(heights []float64) []float64 {
	p.resize(len(heights))
	for i, h := range heights {
		if h >= p.pos[i] {
			p.pos[i] = h
			p.vel[i] = 0
			continue
		}
		pos, vel := p.spring.Update(p.pos[i], p.vel[i], h)
		if pos < h {
			pos, vel = h, 0
		}
		p.pos[i] = pos
		p.vel[i] = vel
	}
	return p.pos
}

// Reset drops every cap to 0.
func (p *Peaks) Reset() {
	clear(p.pos)
	clear(p.vel)
}
