package networking

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/rafabd1/hashes/internal/utils"
)

const (
	DefaultInitialStandby   = 5 * time.Second
	DefaultStandbyIncrement = 5 * time.Second
	DefaultMaxStandby       = 1 * time.Minute
)

// Pacer spaces requests to the target. It enforces an optional requests per
// second ceiling shared by every client and puts all clients on standby when
// the target answers 429 Too Many Requests.
type Pacer struct {
	limiter *rate.Limiter
	logger  utils.Logger

	mu               sync.Mutex
	standbyUntil     time.Time
	nextStandby      time.Duration
	standbyIncrement time.Duration
	maxStandby       time.Duration
}

// NewPacer creates a pacer. rps <= 0 disables the ceiling.
func NewPacer(rps float64, logger utils.Logger) *Pacer {
	p := &Pacer{
		logger:           logger,
		nextStandby:      DefaultInitialStandby,
		standbyIncrement: DefaultStandbyIncrement,
		maxStandby:       DefaultMaxStandby,
	}
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return p
}

// SetStandby overrides the standby schedule applied after a 429.
func (p *Pacer) SetStandby(initial, increment, max time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextStandby = initial
	p.standbyIncrement = increment
	p.maxStandby = max
}

// Wait blocks until a request may be sent or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	until := p.standbyUntil
	p.mu.Unlock()

	if d := time.Until(until); d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	if p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}

// Observe records the status of a finished request.
func (p *Pacer) Observe(statusCode int) {
	if statusCode != http.StatusTooManyRequests {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.standbyUntil = time.Now().Add(p.nextStandby)
	p.logger.Warnf("Target answered 429 Too Many Requests. Pausing all clients for %s.", p.nextStandby)
	p.nextStandby += p.standbyIncrement
	if p.nextStandby > p.maxStandby {
		p.nextStandby = p.maxStandby
	}
}

// StandbyUntil reports when the current standby ends. Zero if never paused.
func (p *Pacer) StandbyUntil() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.standbyUntil
}
