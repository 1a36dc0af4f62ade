package services

import (
	"strconv"
	"sync"
	"time"
)

// OrderIDGenerator issues ORD-<unix millis> ids. When the clock has not moved
// past the last issued token the next token is last+1, so ids never repeat
// within a process.
type OrderIDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewOrderIDGenerator creates a generator reading time from now.
func NewOrderIDGenerator(now func() time.Time) *OrderIDGenerator {
	if now == nil {
		now = time.Now
	}
	return &OrderIDGenerator{now: now}
}

// Next returns a fresh order id.
func (g *OrderIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	token := g.now().UnixMilli()
	if token <= g.last {
		token = g.last + 1
	}
	g.last = token
	return "ORD-" + strconv.FormatInt(token, 10)
}
