package shared

import (
	"fmt"
	"sync"
	"time"
)

// NumberGenerator issues human-auditable document numbers of the form
// PREFIX-<unix millis>. Numbers from one generator strictly increase even when
// the clock does not advance; the store's unique constraint stays the
// authority across processes.
type NumberGenerator struct {
	mu     sync.Mutex
	prefix string
	now    func() time.Time
	last   int64
}

// NewNumberGenerator builds a generator. A nil clock means time.Now.
func NewNumberGenerator(prefix string, now func() time.Time) *NumberGenerator {
	if now == nil {
		now = time.Now
	}
	return &NumberGenerator{prefix: prefix, now: now}
}

// Next returns the next document number.
func (g *NumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("%s-%d", g.prefix, ms)
}
