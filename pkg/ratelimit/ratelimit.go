package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter blocks callers until a request may be sent.
type Limiter interface {
	Wait(ctx context.Context) error
	Allow() bool
	Remaining() int
}

// TokenBucket refills continuously at rate tokens per second up to capacity.
type TokenBucket struct {
	capacity   float64
	tokens     float64
	rate       float64
	lastRefill time.Time
	mu         sync.Mutex
}

func NewTokenBucket(capacity int, ratePerSecond float64) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		rate:       ratePerSecond,
		lastRefill: time.Now(),
	}
}

func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill(time.Now())
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		if tb.Allow() {
			return nil
		}
		tb.mu.Lock()
		wait := time.Second
		if tb.rate > 0 {
			wait = time.Duration((1 - tb.tokens) / tb.rate * float64(time.Second))
		}
		tb.mu.Unlock()
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill(time.Now())
	return int(tb.tokens)
}

// SlidingWindow admits at most limit requests in any window.
type SlidingWindow struct {
	limit    int
	window   time.Duration
	requests []time.Time
	mu       sync.Mutex
}

func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{limit: limit, window: window}
}

func (sw *SlidingWindow) prune(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for i < len(sw.requests) && !sw.requests[i].After(cutoff) {
		i++
	}
	sw.requests = sw.requests[i:]
}

func (sw *SlidingWindow) Allow() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	now := time.Now()
	sw.prune(now)
	if len(sw.requests) >= sw.limit {
		return false
	}
	sw.requests = append(sw.requests, now)
	return true
}

func (sw *SlidingWindow) Wait(ctx context.Context) error {
	for {
		if sw.Allow() {
			return nil
		}
		sw.mu.Lock()
		wait := 10 * time.Millisecond
		if len(sw.requests) > 0 {
			if d := time.Until(sw.requests[0].Add(sw.window)); d > wait {
				wait = d
			}
		}
		sw.mu.Unlock()
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (sw *SlidingWindow) Remaining() int {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.prune(time.Now())
	if n := sw.limit - len(sw.requests); n > 0 {
		return n
	}
	return 0
}

// Manager holds one limiter per endpoint key plus a shared fallback.
type Manager struct {
	limiters map[string]Limiter
	fallback Limiter
	mu       sync.RWMutex
}

// NewManager returns a manager preloaded with the exchange's published limits.
func NewManager() *Manager {
	m := &Manager{
		limiters: make(map[string]Limiter),
		fallback: NewSlidingWindow(1200, time.Minute),
	}
	m.initDefaultLimiters()
	return m
}

func (m *Manager) initDefaultLimiters() {
	// signed writes
	m.limiters["order:post"] = NewTokenBucket(100, 10)
	m.limiters["order:put"] = NewTokenBucket(100, 10)
	m.limiters["order:delete"] = NewTokenBucket(100, 10)
	m.limiters["open-orders:delete"] = NewTokenBucket(20, 2)
	m.limiters["withdraw:post"] = NewSlidingWindow(10, time.Minute)
	m.limiters["referral:post"] = NewSlidingWindow(10, time.Minute)
	m.limiters["session:login"] = NewSlidingWindow(30, time.Minute)

	// market data
	m.limiters["depth:get"] = NewSlidingWindow(300, 10*time.Second)
	m.limiters["klines:get"] = NewSlidingWindow(300, 10*time.Second)
	m.limiters["ticker:get"] = NewSlidingWindow(300, 10*time.Second)
}

// Set installs or replaces the limiter for key.
func (m *Manager) Set(key string, l Limiter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiters[key] = l
}

// Limiter returns the limiter for key, or the shared fallback.
func (m *Manager) Limiter(key string) Limiter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.limiters[key]; ok {
		return l
	}
	return m.fallback
}

func (m *Manager) Wait(ctx context.Context, key string) error {
	return m.Limiter(key).Wait(ctx)
}

func (m *Manager) Allow(key string) bool {
	return m.Limiter(key).Allow()
}

func (m *Manager) Remaining(key string) int {
	return m.Limiter(key).Remaining()
}
