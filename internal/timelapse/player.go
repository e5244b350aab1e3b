package timelapse

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultDuration = 8 * time.Second
	DefaultTick     = 50 * time.Millisecond
)

// Clock supplies the ticks that drive Run.
type Clock interface {
	NewTicker(d time.Duration) (ticks <-chan time.Time, stop func())
}

type systemClock struct{}

func (systemClock) NewTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Player advances progress from 0 to 1 over duration in tick-sized steps.
type Player struct {
	mu       sync.Mutex
	progress float64
	playing  bool
	step     float64
	tick     time.Duration
	clock    Clock
}

func NewPlayer(duration, tick time.Duration) *Player {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Player{
		step:  float64(tick) / float64(duration),
		tick:  tick,
		clock: systemClock{},
	}
}

// WithClock replaces the wall-clock ticker used by Run.
func (p *Player) WithClock(c Clock) *Player {
	p.clock = c
	return p
}

func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = p.progress < 1
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.progress = 0
}

// Seek jumps to v clamped to [0, 1] without changing the play state.
func (p *Player) Seek(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress = clamp01(v)
}

// Advance moves one tick forward when playing and stops at 1.
func (p *Player) Advance() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return p.progress
	}
	next := p.progress + p.step
	if next >= 1 {
		next = 1
		p.playing = false
	}
	p.progress = next
	return next
}

func (p *Player) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Run plays from the current position, calling onFrame after every tick,
// until progress reaches 1, the player is paused or ctx is done.
func (p *Player) Run(ctx context.Context, onFrame func(progress float64) error) error {
	p.Play()

	ticks, stop := p.clock.NewTicker(p.tick)
	defer stop()

	for p.Playing() {
		select {
		case <-ctx.Done():
			p.Pause()
			return ctx.Err()
		case <-ticks:
			if err := onFrame(p.Advance()); err != nil {
				p.Pause()
				return err
			}
		}
	}
	return nil
}
