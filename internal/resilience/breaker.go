package resilience

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrSourceOpen is returned when a source's breaker is open and the fetch
// is skipped for the cycle.
var ErrSourceOpen = eris.New("source breaker is open")

// Breaker is a per-source circuit breaker. After FailureThreshold
// consecutive fetch failures the source is skipped until ResetTimeout has
// passed; the next allowed attempt acts as the recovery probe. A failed
// probe re-opens the breaker for another full reset window.
type Breaker struct {
	mu         sync.Mutex
	failures   int
	openedAt   time.Time
	threshold  int
	resetAfter time.Duration
	nowFunc    func() time.Time
}

// NewBreaker creates a breaker. Zero values fall back to 4 failures / 10 min.
func NewBreaker(threshold int, resetAfter time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 4
	}
	if resetAfter <= 0 {
		resetAfter = 10 * time.Minute
	}
	return &Breaker{
		threshold:  threshold,
		resetAfter: resetAfter,
		nowFunc:    time.Now,
	}
}

// Allow reports whether a fetch should be attempted this cycle.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return true
	}
	// Open: let one probe through once the reset window has passed.
	return b.nowFunc().Sub(b.openedAt) >= b.resetAfter
}

// Record feeds a fetch outcome into the breaker.
func (b *Breaker) Record(source string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		return
	}

	b.failures++
	if b.failures < b.threshold {
		return
	}

	if b.failures == b.threshold {
		zap.L().Warn("resilience: source breaker opened",
			zap.String("source", source),
			zap.Int("consecutive_failures", b.failures),
		)
	}
	// Every failure at or past the threshold restarts the reset window,
	// so a failed recovery probe re-opens the breaker.
	b.openedAt = b.nowFunc()
}
