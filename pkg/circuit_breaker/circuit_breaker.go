package circuit_breaker

import (
	"errors"
	"sync"
	"time"
)

type State uint8

const (
	Closed State = iota + 1
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	// Window is how many recent calls are tracked.
	Window int `envconfig:"CB_WINDOW" default:"20"`
	// FailureRatio of the window that trips the breaker.
	FailureRatio float64 `envconfig:"CB_FAILURE_RATIO" default:"0.5"`
	// Cooldown before an open breaker lets a probe through.
	Cooldown time.Duration `envconfig:"CB_COOLDOWN" default:"10s"`
	// Probes is the number of successful half-open calls needed to close again.
	Probes int `envconfig:"CB_PROBES" default:"3"`
}

type CircuitBreaker interface {
	Call(fn func() error) error
	State() State
	Reset()
}

type breaker struct {
	cfg Config
	now func() time.Time

	mu       sync.Mutex
	state    State
	failures []bool
	next     int
	openedAt time.Time
	probes   int
}

func New(cfg Config) CircuitBreaker {
	if cfg.Window <= 0 {
		cfg.Window = 1
	}
	if cfg.Probes <= 0 {
		cfg.Probes = 1
	}
	return &breaker{
		cfg:      cfg,
		now:      time.Now,
		state:    Closed,
		failures: make([]bool, cfg.Window),
	}
}

func (b *breaker) Call(fn func() error) error {
	if !b.allow() {
		return ErrOpen
	}
	err := fn()
	b.record(err != nil)
	return err
}

func (b *breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Open {
		return true
	}
	if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
		return false
	}
	b.state = HalfOpen
	b.probes = 0
	return true
}

func (b *breaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == HalfOpen {
		if failed {
			b.trip()
			return
		}
		b.probes++
		if b.probes >= b.cfg.Probes {
			b.reset()
		}
		return
	}

	b.failures[b.next] = failed
	b.next = (b.next + 1) % len(b.failures)

	n := 0
	for _, f := range b.failures {
		if f {
			n++
		}
	}
	if float64(n)/float64(len(b.failures)) >= b.cfg.FailureRatio {
		b.trip()
	}
}

func (b *breaker) trip() {
	b.state = Open
	b.openedAt = b.now()
	b.probes = 0
}

func (b *breaker) reset() {
	for i := range b.failures {
		b.failures[i] = false
	}
	b.next = 0
	b.probes = 0
	b.state = Closed
}
