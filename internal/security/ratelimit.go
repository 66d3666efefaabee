package security

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter allows rate requests per window for each client key. The
// bucket refills completely once the window has elapsed.
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     int
	window   time.Duration
	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter creates a limiter and starts its cleanup loop.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go rl.cleanupVisitors()
	return rl
}

// Allow consumes a token for key and reports whether the request may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[key]
	if !exists || now.Sub(v.lastRefill) >= rl.window {
		v = &visitor{tokens: rl.rate, lastRefill: now}
		rl.visitors[key] = v
	}

	if v.tokens > 0 {
		v.tokens--
		return true
	}
	return false
}

// Stop ends the cleanup loop.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, v := range rl.visitors {
				if now.Sub(v.lastRefill) > rl.window*2 {
					delete(rl.visitors, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// GetClientIP extracts the client IP from the request, preferring the first
// hop recorded by a proxy.
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
